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

// BlockRepository implements ports.BlockRepository on DynamoDB
type BlockRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewBlockRepository creates a new DynamoDB-backed block repository
func NewBlockRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.BlockRepository {
	return &BlockRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// blockItem is the DynamoDB item shape for a block
type blockItem struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	GSI1PK      string   `dynamodbav:"GSI1PK"`
	GSI1SK      string   `dynamodbav:"GSI1SK"`
	EntityType  string   `dynamodbav:"EntityType"`
	BlockID     string   `dynamodbav:"BlockID"`
	PropertyID  string   `dynamodbav:"PropertyID"`
	TenantID    string   `dynamodbav:"TenantID"`
	BlockCode   string   `dynamodbav:"BlockCode"`
	Name        string   `dynamodbav:"Name"`
	Description string   `dynamodbav:"Description,omitempty"`
	Status      string   `dynamodbav:"Status"`
	Amenities   []string `dynamodbav:"Amenities,omitempty"`
	Features    []string `dynamodbav:"Features,omitempty"`
	ManagerID   *string  `dynamodbav:"ManagerID,omitempty"`
	SortOrder   int      `dynamodbav:"SortOrder"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	UpdatedAt   string   `dynamodbav:"UpdatedAt"`
	CreatedBy   string   `dynamodbav:"CreatedBy"`
	UpdatedBy   string   `dynamodbav:"UpdatedBy"`
	DeletedAt   string   `dynamodbav:"DeletedAt,omitempty"`
	DeletedBy   string   `dynamodbav:"DeletedBy,omitempty"`
}

func toBlockItem(rec entities.BlockRecord) blockItem {
	return blockItem{
		PK:          tenantPK(rec.TenantID),
		SK:          blockSK(rec.ID),
		GSI1PK:      propertyGSI1PK(rec.PropertyID),
		GSI1SK:      blockCodeGSI1SK(rec.BlockCode),
		EntityType:  entityTypeBlock,
		BlockID:     rec.ID,
		PropertyID:  rec.PropertyID,
		TenantID:    rec.TenantID,
		BlockCode:   rec.BlockCode,
		Name:        rec.Name,
		Description: rec.Description,
		Status:      rec.Status,
		Amenities:   rec.Amenities,
		Features:    rec.Features,
		ManagerID:   rec.ManagerID,
		SortOrder:   rec.SortOrder,
		CreatedAt:   encodeTime(rec.CreatedAt),
		UpdatedAt:   encodeTime(rec.UpdatedAt),
		CreatedBy:   rec.CreatedBy,
		UpdatedBy:   rec.UpdatedBy,
		DeletedAt:   encodeTimePtr(rec.DeletedAt),
		DeletedBy:   rec.DeletedBy,
	}
}

func (i blockItem) toRecord() entities.BlockRecord {
	return entities.BlockRecord{
		ID:          i.BlockID,
		PropertyID:  i.PropertyID,
		TenantID:    i.TenantID,
		BlockCode:   i.BlockCode,
		Name:        i.Name,
		Description: i.Description,
		Status:      i.Status,
		Amenities:   i.Amenities,
		Features:    i.Features,
		ManagerID:   i.ManagerID,
		SortOrder:   i.SortOrder,
		CreatedAt:   decodeTime(i.CreatedAt),
		UpdatedAt:   decodeTime(i.UpdatedAt),
		CreatedBy:   i.CreatedBy,
		UpdatedBy:   i.UpdatedBy,
		DeletedAt:   decodeTimePtr(i.DeletedAt),
		DeletedBy:   i.DeletedBy,
	}
}

// FindByID retrieves a live block by id
func (r *BlockRepository) FindByID(ctx context.Context, tenantID string, id valueobjects.BlockID) (*entities.Block, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: blockSK(id.String())},
		},
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get block", err)
	}
	if out.Item == nil {
		return nil, r.notFound()
	}

	var item blockItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, pkgerrors.NewDatabaseError("unmarshal block", err)
	}
	if item.DeletedAt != "" {
		return nil, r.notFound()
	}
	return entities.ReconstructBlock(item.toRecord()), nil
}

// FindByBlockCode retrieves a live block by its property-unique code via GSI1
func (r *BlockRepository) FindByBlockCode(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID, blockCode string) (*entities.Block, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(propertyGSI1PK(propertyID.String()))).
		And(expression.Key("GSI1SK").Equal(expression.Value(blockCodeGSI1SK(blockCode))))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(liveEntityFilter()).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("build block code query").WithCause(err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query block by code", err)
	}

	for _, raw := range out.Items {
		var item blockItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			continue
		}
		if item.TenantID == tenantID {
			return entities.ReconstructBlock(item.toRecord()), nil
		}
	}
	return nil, r.notFound()
}

// FindByProperty lists a property's live blocks ordered by sort order
func (r *BlockRepository) FindByProperty(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) ([]*entities.Block, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(propertyGSI1PK(propertyID.String()))).
		And(expression.Key("GSI1SK").BeginsWith("BLOCK#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(liveEntityFilter()).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("build block query").WithCause(err)
	}

	blocks := make([]*entities.Block, 0)
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query blocks", err)
		}
		for _, raw := range out.Items {
			var item blockItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("skipping malformed block item", zap.Error(err))
				continue
			}
			if item.TenantID != tenantID {
				continue
			}
			blocks = append(blocks, entities.ReconstructBlock(item.toRecord()))
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].SortOrder() != blocks[j].SortOrder() {
			return blocks[i].SortOrder() < blocks[j].SortOrder()
		}
		return blocks[i].BlockCode() < blocks[j].BlockCode()
	})
	return blocks, nil
}

// Create persists a new block, refusing to overwrite an existing id
func (r *BlockRepository) Create(ctx context.Context, block *entities.Block) error {
	item, err := attributevalue.MarshalMap(toBlockItem(block.Record()))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal block", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return pkgerrors.NewConflictError("block already exists")
		}
		return pkgerrors.NewDatabaseError("put block", err)
	}
	return nil
}

// Update persists changes to a block
func (r *BlockRepository) Update(ctx context.Context, block *entities.Block) error {
	item, err := attributevalue.MarshalMap(toBlockItem(block.Record()))
	if err != nil {
		return pkgerrors.NewDatabaseError("marshal block", err)
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
		return pkgerrors.NewDatabaseError("update block", err)
	}
	return nil
}

// Delete soft-deletes a block
func (r *BlockRepository) Delete(ctx context.Context, tenantID string, id valueobjects.BlockID, actor string) error {
	now := encodeTime(time.Now())
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: blockSK(id.String())},
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
		return pkgerrors.NewDatabaseError("delete block", err)
	}
	return nil
}

// GetNextSequence atomically allocates the next per-property block code
// sequence number
func (r *BlockRepository) GetNextSequence(ctx context.Context, tenantID string, propertyID valueobjects.PropertyID) (int64, error) {
	return nextSequence(ctx, r.client, r.tableName, tenantPK(tenantID), blockSequenceSK(propertyID.String()))
}

func (r *BlockRepository) notFound() error {
	return pkgerrors.NewNotFoundError("block").
		WithCode(pkgerrors.CodeBlockNotFound)
}
