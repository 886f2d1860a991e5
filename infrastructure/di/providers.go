package di

import (
	"context"
	"fmt"

	"propcore-backend/application/ports"
	"propcore-backend/application/services"
	"propcore-backend/infrastructure/acl"
	"propcore-backend/infrastructure/config"
	"propcore-backend/infrastructure/messaging/eventbridge"
	"propcore-backend/infrastructure/messaging/local"
	"propcore-backend/infrastructure/persistence/dynamodb"
	"propcore-backend/infrastructure/persistence/memory"
	"propcore-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	PropertyRepo    ports.PropertyRepository
	UnitRepo        ports.UnitRepository
	BlockRepo       ports.BlockRepository
	EventBus        ports.EventBus
	LeaseChecker    ports.LeaseChecker
	Metrics         *observability.Collector
	PropertyService *services.PropertyService
	UnitService     *services.UnitService
	BlockService    *services.BlockService
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvidePropertyRepository creates a property repository. Development runs
// on the in-memory store so the service starts without AWS credentials.
func ProvidePropertyRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.PropertyRepository {
	if cfg.IsDevelopment() {
		return memory.NewPropertyRepository()
	}
	return dynamodb.NewPropertyRepository(client, cfg.DynamoDBTable, cfg.GSI1IndexName, logger)
}

// ProvideUnitRepository creates a unit repository
func ProvideUnitRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.UnitRepository {
	if cfg.IsDevelopment() {
		return memory.NewUnitRepository()
	}
	return dynamodb.NewUnitRepository(client, cfg.DynamoDBTable, cfg.GSI1IndexName, cfg.GSI2IndexName, logger)
}

// ProvideBlockRepository creates a block repository
func ProvideBlockRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.BlockRepository {
	if cfg.IsDevelopment() {
		return memory.NewBlockRepository()
	}
	return dynamodb.NewBlockRepository(client, cfg.DynamoDBTable, cfg.GSI1IndexName, logger)
}

// ProvideEventBus creates an event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) ports.EventBus {
	if cfg.IsDevelopment() {
		return local.NewBus(logger)
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, metrics, logger)
}

// ProvideLeaseChecker creates the lease lookup used to gate property deletion
func ProvideLeaseChecker() ports.LeaseChecker {
	return acl.NewStaticLeaseChecker(false)
}

// ProvideMetrics creates the metrics collector
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	namespace := fmt.Sprintf("propcore_%s", cfg.Environment)
	return observability.NewCollector(namespace)
}

// ProvidePropertyService creates the property application service
func ProvidePropertyService(
	properties ports.PropertyRepository,
	units ports.UnitRepository,
	leases ports.LeaseChecker,
	eventBus ports.EventBus,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.PropertyService {
	return services.NewPropertyService(properties, units, leases, eventBus, metrics, logger)
}

// ProvideUnitService creates the unit application service
func ProvideUnitService(
	units ports.UnitRepository,
	properties ports.PropertyRepository,
	eventBus ports.EventBus,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.UnitService {
	return services.NewUnitService(units, properties, eventBus, metrics, logger)
}

// ProvideBlockService creates the block application service
func ProvideBlockService(
	blocks ports.BlockRepository,
	units ports.UnitRepository,
	properties ports.PropertyRepository,
	eventBus ports.EventBus,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.BlockService {
	return services.NewBlockService(blocks, units, properties, eventBus, metrics, logger)
}
