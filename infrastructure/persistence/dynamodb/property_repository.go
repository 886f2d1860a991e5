package dynamodb

import (
	"context"
	"sort"
	"strings"
	"time"

	"propcore-backend/application/ports"
	"propcore-backend/domain/core/aggregates"
	"propcore-backend/domain/core/valueobjects"
	"propcore-backend/pkg/common"
	pkgerrors "propcore-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// PropertyRepository implements ports.PropertyRepository on DynamoDB.
// Counter and metadata updates are conditional on the Version attribute,
// which implements the optimistic-concurrency token.
type PropertyRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewPropertyRepository creates a new DynamoDB-backed property repository
func NewPropertyRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.PropertyRepository {
	return &PropertyRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// propertyItem is the DynamoDB item shape for a property
type propertyItem struct {
	PK            string               `dynamodbav:"PK"`
	SK            string               `dynamodbav:"SK"`
	GSI1PK        string               `dynamodbav:"GSI1PK"`
	GSI1SK        string               `dynamodbav:"GSI1SK"`
	EntityType    string               `dynamodbav:"EntityType"`
	PropertyID    string               `dynamodbav:"PropertyID"`
	TenantID      string               `dynamodbav:"TenantID"`
	OwnerID       string               `dynamodbav:"OwnerID"`
	Name          string               `dynamodbav:"Name"`
	Code          string               `dynamodbav:"Code"`
	PropertyType  string               `dynamodbav:"PropertyType"`
	Status        string               `dynamodbav:"Status"`
	Address       valueobjects.Address `dynamodbav:"Address"`
	TotalUnits    int                  `dynamodbav:"TotalUnits"`
	OccupiedUnits int                  `dynamodbav:"OccupiedUnits"`
	VacantUnits   int                  `dynamodbav:"VacantUnits"`
	Amenities     []string             `dynamodbav:"Amenities,omitempty"`
	ManagerID     *string              `dynamodbav:"ManagerID,omitempty"`
	CreatedAt     string               `dynamodbav:"CreatedAt"`
	UpdatedAt     string               `dynamodbav:"UpdatedAt"`
	CreatedBy     string               `dynamodbav:"CreatedBy"`
	UpdatedBy     string               `dynamodbav:"UpdatedBy"`
	DeletedAt     string               `dynamodbav:"DeletedAt,omitempty"`
	DeletedBy     string               `dynamodbav:"DeletedBy,omitempty"`
	Version       int                  `dynamodbav:"Version"`
}

func toPropertyItem(rec aggregates.PropertyRecord) propertyItem {
	return propertyItem{
		PK:            tenantPK(rec.TenantID),
		SK:            propertySK(rec.ID),
		GSI1PK:        propertyCodeGSI1PK(rec.TenantID, rec.Code),
		GSI1SK:        "METADATA",
		EntityType:    entityTypeProperty,
		PropertyID:    rec.ID,
		TenantID:      rec.TenantID,
		OwnerID:       rec.OwnerID,
		Name:          rec.Name,
		Code:          rec.Code,
		PropertyType:  rec.PropertyType,
		Status:        rec.Status,
		Address:       rec.Address,
		TotalUnits:    rec.TotalUnits,
		OccupiedUnits: rec.OccupiedUnits,
		VacantUnits:   rec.VacantUnits,
		Amenities:     rec.Amenities,
		ManagerID:     rec.ManagerID,
		CreatedAt:     encodeTime(rec.CreatedAt),
		UpdatedAt:     encodeTime(rec.UpdatedAt),
		CreatedBy:     rec.CreatedBy,
		UpdatedBy:     rec.UpdatedBy,
		DeletedAt:     encodeTimePtr(rec.DeletedAt),
		DeletedBy:     rec.DeletedBy,
		Version:       rec.Version,
	}
}

func (i propertyItem) toRecord() aggregates.PropertyRecord {
	return aggregates.PropertyRecord{
		ID:            i.PropertyID,
		TenantID:      i.TenantID,
		OwnerID:       i.OwnerID,
		Name:          i.Name,
		Code:          i.Code,
		PropertyType:  i.PropertyType,
		Status:        i.Status,
		Address:       i.Address,
		TotalUnits:    i.TotalUnits,
		OccupiedUnits: i.OccupiedUnits,
		VacantUnits:   i.VacantUnits,
		Amenities:     i.Amenities,
		ManagerID:     i.ManagerID,
		CreatedAt:     decodeTime(i.CreatedAt),
		UpdatedAt:     decodeTime(i.UpdatedAt),
		CreatedBy:     i.CreatedBy,
		UpdatedBy:     i.UpdatedBy,
		DeletedAt:     decodeTimePtr(i.DeletedAt),
		DeletedBy:     i.DeletedBy,
		Version:       i.Version,
	}
}

// FindByID retrieves a live property by id
func (r *PropertyRepository) FindByID(ctx context.Context, tenantID string, id valueobjects.PropertyID) (*aggregates.Property, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: propertySK(id.String())},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get property", err)
	}
	if out.Item == nil {
		return nil, r.notFound()
	}

	var item propertyItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal property", err)
	}
	if item.DeletedAt != "" {
		return nil, r.notFound()
	}
	return aggregates.ReconstructProperty(item.toRecord()), nil
}

// FindByCode retrieves a live property by its tenant-unique code via GSI1
func (r *PropertyRepository) FindByCode(ctx context.Context, tenantID, code string) (*aggregates.Property, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(propertyCodeGSI1PK(tenantID, code)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("build code query").WithCause(err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query property by code", err)
	}
	if len(out.Items) == 0 {
		return nil, r.notFound()
	}

	var item propertyItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal property", err)
	}
	if item.DeletedAt != "" {
		return nil, r.notFound()
	}
	return aggregates.ReconstructProperty(item.toRecord()), nil
}

// FindMany lists the tenant's live properties matching the filter, newest
// first. Pagination slices the matched set client-side after the query.
func (r *PropertyRepository) FindMany(ctx context.Context, tenantID string, filter ports.PropertyFilter, page common.PaginationParams) ([]*aggregates.Property, int, error) {
	filt := liveEntityFilter()
	if filter.Status != "" {
		filt = filt.And(expression.Name("Status").Equal(expression.Value(filter.Status)))
	}
	if filter.PropertyType != "" {
		filt = filt.And(expression.Name("PropertyType").Equal(expression.Value(filter.PropertyType)))
	}

	records, err := r.queryTenant(ctx, tenantID, filt)
	if err != nil {
		return nil, 0, err
	}

	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		kept := records[:0]
		for _, rec := range records {
			if strings.Contains(strings.ToLower(rec.Name), needle) ||
				strings.Contains(strings.ToLower(rec.Code), needle) {
				kept = append(kept, rec)
			}
		}
		records = kept
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	total := len(records)
	offset := page.CalculateOffset()
	if offset > total {
		offset = total
	}
	end := offset + page.PageSize
	if page.PageSize <= 0 || end > total {
		end = total
	}

	properties := make([]*aggregates.Property, 0, end-offset)
	for _, rec := range records[offset:end] {
		properties = append(properties, aggregates.ReconstructProperty(rec))
	}
	return properties, total, nil
}

// FindByOwner lists live properties owned by the given owner
func (r *PropertyRepository) FindByOwner(ctx context.Context, tenantID, ownerID string) ([]*aggregates.Property, error) {
	filt := liveEntityFilter().And(expression.Name("OwnerID").Equal(expression.Value(ownerID)))
	return r.queryProperties(ctx, tenantID, filt)
}

// FindByManager lists live properties assigned to the given manager
func (r *PropertyRepository) FindByManager(ctx context.Context, tenantID, managerID string) ([]*aggregates.Property, error) {
	filt := liveEntityFilter().And(expression.Name("ManagerID").Equal(expression.Value(managerID)))
	return r.queryProperties(ctx, tenantID, filt)
}

// Create persists a new property, refusing to overwrite an existing id
func (r *PropertyRepository) Create(ctx context.Context, property *aggregates.Property) error {
	item, err := attributevalue.MarshalMap(toPropertyItem(property.Record()))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal property", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewConflictError("property already exists")
		}
		return pkgerrors.NewDatabaseError("put property", err)
	}
	return nil
}

// Update persists changes conditional on the stored Version matching the
// aggregate's token. The put writes Version+1.
func (r *PropertyRepository) Update(ctx context.Context, property *aggregates.Property) error {
	rec := property.Record()
	expectedVersion := rec.Version
	rec.Version++

	item, err := attributevalue.MarshalMap(toPropertyItem(rec))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal property", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("Version = :expected AND attribute_not_exists(DeletedAt)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: intToN(expectedVersion)},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewConflictError("property was modified concurrently").
				WithCode(pkgerrors.CodeVersionConflict)
		}
		return pkgerrors.NewDatabaseError("update property", err)
	}
	return nil
}

// Delete soft-deletes a property by stamping the deletion attributes
func (r *PropertyRepository) Delete(ctx context.Context, tenantID string, id valueobjects.PropertyID, actor string) error {
	now := encodeTime(time.Now())
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: propertySK(id.String())},
		},
		UpdateExpression:    aws.String("SET DeletedAt = :now, DeletedBy = :actor, UpdatedAt = :now, UpdatedBy = :actor ADD Version :one"),
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_not_exists(DeletedAt)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now":   &types.AttributeValueMemberS{Value: now},
			":actor": &types.AttributeValueMemberS{Value: actor},
			":one":   &types.AttributeValueMemberN{Value: "1"},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return r.notFound()
		}
		return pkgerrors.NewDatabaseError("delete property", err)
	}
	return nil
}

// GetNextSequence atomically increments the tenant's per-year counter item
func (r *PropertyRepository) GetNextSequence(ctx context.Context, tenantID string, year int) (int64, error) {
	return nextSequence(ctx, r.client, r.tableName, tenantPK(tenantID), propertySequenceSK(year))
}

func (r *PropertyRepository) queryProperties(ctx context.Context, tenantID string, filt expression.ConditionBuilder) ([]*aggregates.Property, error) {
	records, err := r.queryTenant(ctx, tenantID, filt)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	properties := make([]*aggregates.Property, 0, len(records))
	for _, rec := range records {
		properties = append(properties, aggregates.ReconstructProperty(rec))
	}
	return properties, nil
}

// queryTenant pages through the tenant partition's property items applying
// the given filter
func (r *PropertyRepository) queryTenant(ctx context.Context, tenantID string, filt expression.ConditionBuilder) ([]aggregates.PropertyRecord, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(tenantPK(tenantID))).
		And(expression.Key("SK").BeginsWith("PROPERTY#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("build property query").WithCause(err)
	}

	records := make([]aggregates.PropertyRecord, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query properties", err)
		}
		for _, raw := range out.Items {
			var item propertyItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping malformed property item", zap.Error(err))
				continue
			}
			records = append(records, item.toRecord())
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}
	return records, nil
}

func (r *PropertyRepository) notFound() error {
	return pkgerrors.NewNotFoundError("property").
		WithCode(pkgerrors.CodePropertyNotFound)
}
