package dynamodb

import (
	"context"
	"sort"
	"time"

	"propcore-backend/application/ports"
	"propcore-backend/domain/core/entities"
	"propcore-backend/domain/core/valueobjects"
	pkgerrors "propcore-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// UnitRepository implements ports.UnitRepository on DynamoDB. Unit numbers
// are kept unique per property through a GSI1 lookup before the write; the
// services serialize number allocation per property so the lookup is safe.
type UnitRepository struct {
	client    *dynamodb.Client
	tableName string
	gsi1Name  string
	gsi2Name  string
	logger    *zap.Logger
}

// NewUnitRepository creates a new DynamoDB-backed unit repository
func NewUnitRepository(client *dynamodb.Client, tableName, gsi1Name, gsi2Name string, logger *zap.Logger) ports.UnitRepository {
	return &UnitRepository{
		client:    client,
		tableName: tableName,
		gsi1Name:  gsi1Name,
		gsi2Name:  gsi2Name,
		logger:    logger,
	}
}

// unitItem is the DynamoDB item shape for a unit
type unitItem struct {
	PK                string   `dynamodbav:"PK"`
	SK                string   `dynamodbav:"SK"`
	GSI1PK            string   `dynamodbav:"GSI1PK"`
	GSI1SK            string   `dynamodbav:"GSI1SK"`
	GSI2PK            string   `dynamodbav:"GSI2PK,omitempty"`
	EntityType        string   `dynamodbav:"EntityType"`
	UnitID            string   `dynamodbav:"UnitID"`
	PropertyID        string   `dynamodbav:"PropertyID"`
	TenantID          string   `dynamodbav:"TenantID"`
	BlockID           string   `dynamodbav:"BlockID,omitempty"`
	UnitNumber        string   `dynamodbav:"UnitNumber"`
	Floor             int      `dynamodbav:"Floor"`
	UnitType          string   `dynamodbav:"UnitType"`
	Bedrooms          int      `dynamodbav:"Bedrooms"`
	Bathrooms         int      `dynamodbav:"Bathrooms"`
	AreaSqm           float64  `dynamodbav:"AreaSqm"`
	RentAmount        int64    `dynamodbav:"RentAmount"`
	RentCurrency      string   `dynamodbav:"RentCurrency"`
	DepositAmount     int64    `dynamodbav:"DepositAmount"`
	DepositCurrency   string   `dynamodbav:"DepositCurrency,omitempty"`
	Status            string   `dynamodbav:"Status"`
	Amenities         []string `dynamodbav:"Amenities,omitempty"`
	NextInspectionDue string   `dynamodbav:"NextInspectionDue,omitempty"`
	CreatedAt         string   `dynamodbav:"CreatedAt"`
	UpdatedAt         string   `dynamodbav:"UpdatedAt"`
	CreatedBy         string   `dynamodbav:"CreatedBy"`
	UpdatedBy         string   `dynamodbav:"UpdatedBy"`
	DeletedAt         string   `dynamodbav:"DeletedAt,omitempty"`
	DeletedBy         string   `dynamodbav:"DeletedBy,omitempty"`
}

func toUnitItem(rec entities.UnitRecord) unitItem {
	item := unitItem{
		PK:                tenantPK(rec.TenantID),
		SK:                unitSK(rec.ID),
		GSI1PK:            propertyGSI1PK(rec.PropertyID),
		GSI1SK:            unitNumberGSI1SK(rec.UnitNumber),
		EntityType:        entityTypeUnit,
		UnitID:            rec.ID,
		PropertyID:        rec.PropertyID,
		TenantID:          rec.TenantID,
		BlockID:           rec.BlockID,
		UnitNumber:        rec.UnitNumber,
		Floor:             rec.Floor,
		UnitType:          rec.UnitType,
		Bedrooms:          rec.Bedrooms,
		Bathrooms:         rec.Bathrooms,
		AreaSqm:           rec.AreaSqm,
		RentAmount:        rec.RentAmount,
		RentCurrency:      rec.RentCurrency,
		DepositAmount:     rec.DepositAmount,
		DepositCurrency:   rec.DepositCurrency,
		Status:            rec.Status,
		Amenities:         rec.Amenities,
		NextInspectionDue: encodeTimePtr(rec.NextInspectionDue),
		CreatedAt:         encodeTime(rec.CreatedAt),
		UpdatedAt:         encodeTime(rec.UpdatedAt),
		CreatedBy:         rec.CreatedBy,
		UpdatedBy:         rec.UpdatedBy,
		DeletedAt:         encodeTimePtr(rec.DeletedAt),
		DeletedBy:         rec.DeletedBy,
	}
	if rec.BlockID != "" {
		item.GSI2PK = blockGSI2PK(rec.BlockID)
	}
	return item
}

func (i unitItem) toRecord() entities.UnitRecord {
	return entities.UnitRecord{
		ID:                i.UnitID,
		PropertyID:        i.PropertyID,
		TenantID:          i.TenantID,
		BlockID:           i.BlockID,
		UnitNumber:        i.UnitNumber,
		Floor:             i.Floor,
		UnitType:          i.UnitType,
		Bedrooms:          i.Bedrooms,
		Bathrooms:         i.Bathrooms,
		AreaSqm:           i.AreaSqm,
		RentAmount:        i.RentAmount,
		RentCurrency:      i.RentCurrency,
		DepositAmount:     i.DepositAmount,
		DepositCurrency:   i.DepositCurrency,
		Status:            i.Status,
		Amenities:         i.Amenities,
		NextInspectionDue: decodeTimePtr(i.NextInspectionDue),
		CreatedAt:         decodeTime(i.CreatedAt),
		UpdatedAt:         decodeTime(i.UpdatedAt),
		CreatedBy:         i.CreatedBy,
		UpdatedBy:         i.UpdatedBy,
		DeletedAt:         decodeTimePtr(i.DeletedAt),
		DeletedBy:         i.DeletedBy,
	}
}

// FindByID retrieves a live unit by id
func (r *UnitRepository) FindByID(ctx context.Context, tenantID string, id valueobjects.UnitID) (*entities.Unit, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: unitSK(id.String())},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get unit", err)
	}
	if out.Item == nil {
		return nil, r.notFound()
	}

	var item unitItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal unit", err)
	}
	if item.DeletedAt != "" {
		return nil, r.notFound()
	}
	return entities.ReconstructUnit(item.toRecord()), nil
}

// FindByUnitNumber retrieves a live unit by its property-unique number via
// GSI1
func (r *UnitRepository) FindByUnitNumber(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, unitNumber string) (*entities.Unit, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(propertyGSI1PK(propertyID.String()))).
		And(expression.Key("GSI1SK").Equal(expression.Value(unitNumberGSI1SK(unitNumber))))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(liveEntityFilter()).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("build unit number query").WithCause(err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.gsi1Name),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query unit by number", err)
	}

	for _, raw := range out.Items {
		var item unitItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			continue
		}
		if item.TenantID == tenantID {
			return entities.ReconstructUnit(item.toRecord()), nil
		}
	}
	return nil, r.notFound()
}

// FindByProperty lists all live units under a property ordered by unit number
func (r *UnitRepository) FindByProperty(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) ([]*entities.Unit, error) {
	return r.queryGSI1(ctx, tenantID, propertyID, liveEntityFilter())
}

// FindByBlock lists all live units grouped under a block via GSI2
func (r *UnitRepository) FindByBlock(ctx context.Context, tenantID string, blockID valueobjects.BlockID) ([]*entities.Unit, error) {
	records, err := r.queryBlock(ctx, tenantID, blockID)
	if err != nil {
		return nil, err
	}
	units := make([]*entities.Unit, 0, len(records))
	for _, rec := range records {
		units = append(units, entities.ReconstructUnit(rec))
	}
	sort.Slice(units, func(i, j int) bool {
		return units[i].UnitNumber() < units[j].UnitNumber()
	})
	return units, nil
}

// FindByStatus lists live units of a property in the given status
func (r *UnitRepository) FindByStatus(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, status entities.UnitStatus) ([]*entities.Unit, error) {
	filt := liveEntityFilter().And(expression.Name("Status").Equal(expression.Value(string(status))))
	return r.queryGSI1(ctx, tenantID, propertyID, filt)
}

// FindVacant lists a property's vacant units
func (r *UnitRepository) FindVacant(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) ([]*entities.Unit, error) {
	return r.FindByStatus(ctx, tenantID, propertyID, entities.UnitStatusVacant)
}

// Create persists a new unit, refusing to overwrite an existing id
func (r *UnitRepository) Create(ctx context.Context, unit *entities.Unit) error {
	item, err := attributevalue.MarshalMap(toUnitItem(unit.Record()))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal unit", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewConflictError("unit already exists")
		}
		return pkgerrors.NewDatabaseError("put unit", err)
	}
	return nil
}

// CreateMany persists a validated batch of units with BatchWriteItem,
// retrying unprocessed items
func (r *UnitRepository) CreateMany(ctx context.Context, units []*entities.Unit) error {
	const batchSize = 25

	requests := make([]types.WriteRequest, 0, len(units))
	for _, unit := range units {
		item, err := attributevalue.MarshalMap(toUnitItem(unit.Record()))
		if err != nil {
			return pkgerrors.NewDatabaseError("marshal unit", err)
		}
		requests = append(requests, types.WriteRequest{
			PutRequest: &types.PutRequest{Item: item},
		})
	}

	for start := 0; start < len(requests); start += batchSize {
		end := start + batchSize
		if end > len(requests) {
			end = len(requests)
		}
		if err := r.writeBatch(ctx, requests[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// Update persists changes to a unit
func (r *UnitRepository) Update(ctx context.Context, unit *entities.Unit) error {
	item, err := attributevalue.MarshalMap(toUnitItem(unit.Record()))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal unit", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_not_exists(DeletedAt)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return r.notFound()
		}
		return pkgerrors.NewDatabaseError("update unit", err)
	}
	return nil
}

// UpdateMany persists changes to a validated batch of units
func (r *UnitRepository) UpdateMany(ctx context.Context, units []*entities.Unit) error {
	for _, unit := range units {
		if err := r.Update(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

// Delete soft-deletes a unit
func (r *UnitRepository) Delete(ctx context.Context, tenantID string, id valueobjects.UnitID, actor string) error {
	now := encodeTime(time.Now())
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: unitSK(id.String())},
		},
		UpdateExpression:    aws.String("SET DeletedAt = :now, DeletedBy = :actor, UpdatedAt = :now, UpdatedBy = :actor"),
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_not_exists(DeletedAt)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now":   &types.AttributeValueMemberS{Value: now},
			":actor": &types.AttributeValueMemberS{Value: actor},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return r.notFound()
		}
		return pkgerrors.NewDatabaseError("delete unit", err)
	}
	return nil
}

// CountByProperty counts a property's live units partitioned by status
func (r *UnitRepository) CountByProperty(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) (ports.UnitCounts, error) {
	records, err := r.queryGSI1Records(ctx, tenantID, propertyID, liveEntityFilter())
	if err != nil {
		return ports.UnitCounts{}, err
	}
	return tallyCounts(records), nil
}

// CountByBlock counts a block's live units partitioned by status
func (r *UnitRepository) CountByBlock(ctx context.Context, tenantID string, blockID valueobjects.BlockID) (ports.UnitCounts, error) {
	records, err := r.queryBlock(ctx, tenantID, blockID)
	if err != nil {
		return ports.UnitCounts{}, err
	}
	return tallyCounts(records), nil
}

func tallyCounts(records []entities.UnitRecord) ports.UnitCounts {
	var counts ports.UnitCounts
	for _, rec := range records {
		counts.Total++
		switch entities.UnitStatus(rec.Status) {
		case entities.UnitStatusOccupied:
			counts.Occupied++
		case entities.UnitStatusVacant:
			counts.Vacant++
		case entities.UnitStatusUnderMaintenance:
			counts.UnderMaintenance++
		}
	}
	return counts
}

func (r *UnitRepository) queryGSI1(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, filt expression.ConditionBuilder) ([]*entities.Unit, error) {
	records, err := r.queryGSI1Records(ctx, tenantID, propertyID, filt)
	if err != nil {
		return nil, err
	}
	units := make([]*entities.Unit, 0, len(records))
	for _, rec := range records {
		units = append(units, entities.ReconstructUnit(rec))
	}
	return units, nil
}

// queryGSI1Records pages through a property's unit items on GSI1. GSI1SK
// ordering yields units sorted by unit number.
func (r *UnitRepository) queryGSI1Records(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, filt expression.ConditionBuilder) ([]entities.UnitRecord, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(propertyGSI1PK(propertyID.String()))).
		And(expression.Key("GSI1SK").BeginsWith("UNIT#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("build unit query").WithCause(err)
	}

	records := make([]entities.UnitRecord, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.gsi1Name),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query units", err)
		}
		for _, raw := range out.Items {
			var item unitItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping malformed unit item", zap.Error(err))
				continue
			}
			if item.TenantID != tenantID {
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

func (r *UnitRepository) queryBlock(ctx context.Context, tenantID string, blockID valueobjects.BlockID) ([]entities.UnitRecord, error) {
	keyCond := expression.Key("GSI2PK").Equal(expression.Value(blockGSI2PK(blockID.String())))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(liveEntityFilter()).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("build block units query").WithCause(err)
	}

	records := make([]entities.UnitRecord, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.gsi2Name),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query block units", err)
		}
		for _, raw := range out.Items {
			var item unitItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping malformed unit item", zap.Error(err))
				continue
			}
			if item.TenantID != tenantID {
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

func (r *UnitRepository) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	pending := requests
	for attempt := 0; attempt < 3 && len(pending) > 0; attempt++ {
		out, err := r.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				r.tableName: pending,
			},
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("batch write units", err)
		}
		pending = out.UnprocessedItems[r.tableName]
	}
	if len(pending) > 0 {
		return pkgerrors.NewDatabaseError("batch write units",
			pkgerrors.NewInternalError("unprocessed items remained after retries"))
	}
	return nil
}

func (r *UnitRepository) notFound() error {
	return pkgerrors.NewNotFoundError("unit").
		WithCode(pkgerrors.CodeUnitNotFound)
}
