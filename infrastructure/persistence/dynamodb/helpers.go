package dynamodb

import (
	"context"
	"strconv"

	pkgerrors "propcore-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// liveEntityFilter excludes soft-deleted items
func liveEntityFilter() expression.ConditionBuilder {
	return expression.AttributeNotExists(expression.Name("DeletedAt"))
}

func intToN(v int) string {
	return strconv.Itoa(v)
}

// nextSequence atomically increments a counter item and returns the new
// value. The ADD action creates the item on first use.
func nextSequence(ctx context.Context, client *dynamodb.Client, tableName, pk, sk string) (int64, error) {
	out, err := client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
		UpdateExpression: aws.String("ADD SeqValue :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("increment sequence", err)
	}

	raw, ok := out.Attributes["SeqValue"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, pkgerrors.NewInternalError("sequence counter returned no value")
	}
	value, err := strconv.ParseInt(raw.Value, 10, 64)
	if err != nil {
		return 0, pkgerrors.NewInternalError("sequence counter is not numeric").WithCause(err)
	}
	return value, nil
}
