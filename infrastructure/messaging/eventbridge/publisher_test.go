package eventbridge

import (
	"context"
	"testing"

	"propcore-backend/domain/events"
	"propcore-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakePutEventsAPI struct {
	inputs  []*eventbridge.PutEventsInput
	outputs []*eventbridge.PutEventsOutput
}

func (f *fakePutEventsAPI) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.inputs = append(f.inputs, in)
	if len(f.outputs) > 0 {
		out := f.outputs[0]
		f.outputs = f.outputs[1:]
		return out, nil
	}
	results := make([]types.PutEventsResultEntry, len(in.Entries))
	for i := range results {
		results[i] = types.PutEventsResultEntry{EventId: aws.String("evt")}
	}
	return &eventbridge.PutEventsOutput{Entries: results}, nil
}

func newTestPublisher(api PutEventsAPI, logger *zap.Logger) *Publisher {
	metrics := observability.NewCollector("propcore_test")
	return NewPublisher(api, "propcore-events", metrics, logger).(*Publisher)
}

func envelopeOf(eventType string, payload interface{}) events.Envelope {
	return events.NewEnvelope(eventType, "tenant-1", "corr-1", "user-1", payload)
}

func TestPublishBatch_SplitsIntoPutEventsLimits(t *testing.T) {
	api := &fakePutEventsAPI{}
	publisher := newTestPublisher(api, zap.NewNop())

	envelopes := make([]events.Envelope, 25)
	for i := range envelopes {
		envelopes[i] = envelopeOf(events.TypeUnitCreated,
			events.UnitCreatedPayload{UnitID: "unit", PropertyID: "property"})
	}

	require.NoError(t, publisher.PublishBatch(context.Background(), envelopes))
	require.Len(t, api.inputs, 3)
	assert.Len(t, api.inputs[0].Entries, 10)
	assert.Len(t, api.inputs[1].Entries, 10)
	assert.Len(t, api.inputs[2].Entries, 5)
	assert.Equal(t, "propcore-events", aws.ToString(api.inputs[0].Entries[0].EventBusName))
	assert.Equal(t, events.Source, aws.ToString(api.inputs[0].Entries[0].Source))
}

func TestPublishBatch_RejectedEntryLogsItsOwnEnvelope(t *testing.T) {
	// The first envelope cannot be marshalled and never becomes an entry,
	// so the rejected second entry must be attributed to the third
	// envelope, not the second.
	api := &fakePutEventsAPI{
		outputs: []*eventbridge.PutEventsOutput{{
			FailedEntryCount: 1,
			Entries: []types.PutEventsResultEntry{
				{EventId: aws.String("evt-1")},
				{
					ErrorCode:    aws.String("ThrottlingException"),
					ErrorMessage: aws.String("rate exceeded"),
				},
			},
		}},
	}
	core, logs := observer.New(zap.ErrorLevel)
	publisher := newTestPublisher(api, zap.New(core))

	envelopes := []events.Envelope{
		envelopeOf(events.TypePropertyCreated, func() {}),
		envelopeOf(events.TypeUnitCreated, events.UnitCreatedPayload{UnitID: "u1"}),
		envelopeOf(events.TypeUnitDeleted, events.UnitDeletedPayload{UnitID: "u2"}),
	}

	err := publisher.PublishBatch(context.Background(), envelopes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 events failed")

	rejected := logs.FilterMessage("event entry rejected").All()
	require.Len(t, rejected, 1)
	assert.Equal(t, events.TypeUnitDeleted, rejected[0].ContextMap()["eventType"])
	assert.Equal(t, "ThrottlingException", rejected[0].ContextMap()["errorCode"])

	marshalFailures := logs.FilterMessage("failed to marshal event envelope").All()
	require.Len(t, marshalFailures, 1)
	assert.Equal(t, events.TypePropertyCreated, marshalFailures[0].ContextMap()["eventType"])
}

func TestPublishBatch_SkipsWhenNothingMarshals(t *testing.T) {
	api := &fakePutEventsAPI{}
	publisher := newTestPublisher(api, zap.NewNop())

	require.NoError(t, publisher.PublishBatch(context.Background(), nil))
	err := publisher.Publish(context.Background(),
		envelopeOf(events.TypeBlockCreated, func() {}))
	require.NoError(t, err)
	assert.Empty(t, api.inputs)
}
