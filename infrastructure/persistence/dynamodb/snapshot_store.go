package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"flowbuilder/application/ports"
	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/infrastructure/serialization"
	pkgerrors "flowbuilder/pkg/errors"
	"flowbuilder/pkg/utils"
)

const snapshotSortKey = "SNAPSHOT"

// API is the subset of the DynamoDB client the snapshot store uses
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// SnapshotStore keeps the last saved snapshot of each flow in a single
// DynamoDB item, guarded by a version condition.
type SnapshotStore struct {
	client     API
	tableName  string
	serializer *serialization.Serializer
	logger     *zap.Logger
}

// snapshotItem represents the DynamoDB item structure for a saved flow
type snapshotItem struct {
	PK          string `dynamodbav:"PK"` // FLOW#<flow_id>
	SK          string `dynamodbav:"SK"` // SNAPSHOT
	EntityType  string `dynamodbav:"EntityType"`
	FlowID      string `dynamodbav:"FlowID"`
	Name        string `dynamodbav:"Name"`
	Version     int    `dynamodbav:"Version"`
	NodeCount   int    `dynamodbav:"NodeCount"`
	EdgeCount   int    `dynamodbav:"EdgeCount"`
	Compression string `dynamodbav:"Compression"`
	Payload     []byte `dynamodbav:"Payload"`
	SavedAt     string `dynamodbav:"SavedAt"`
}

// NewSnapshotStore creates a new DynamoDB snapshot store
func NewSnapshotStore(client API, tableName string, serializer *serialization.Serializer, logger *zap.Logger) *SnapshotStore {
	return &SnapshotStore{
		client:     client,
		tableName:  tableName,
		serializer: serializer,
		logger:     logger,
	}
}

func flowKey(id valueobjects.FlowID) string {
	return fmt.Sprintf("FLOW#%s", id.String())
}

// Save writes the snapshot unless the table already holds a newer version
func (s *SnapshotStore) Save(ctx context.Context, flow ports.SavedFlow) error {
	payload, err := s.serializer.EncodeSnapshot(flow.Snapshot)
	if err != nil {
		return pkgerrors.NewInternalError("failed to encode snapshot").WithCause(err)
	}

	item, err := attributevalue.MarshalMap(snapshotItem{
		PK:          flowKey(flow.FlowID),
		SK:          snapshotSortKey,
		EntityType:  "FLOW_SNAPSHOT",
		FlowID:      flow.FlowID.String(),
		Name:        flow.Name,
		Version:     flow.Version,
		NodeCount:   flow.Snapshot.NodeCount(),
		EdgeCount:   flow.Snapshot.EdgeCount(),
		Compression: string(s.serializer.Compression()),
		Payload:     payload,
		SavedAt:     utils.FormatTimestamp(flow.SavedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot item: %w", err)
	}

	condition := expression.Name("PK").AttributeNotExists().
		Or(expression.Name("Version").LessThanEqual(expression.Value(flow.Version)))
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return pkgerrors.ErrConcurrentModification.
				WithDetail("flow_id", flow.FlowID.String()).
				WithDetail("version", flow.Version).
				WithCause(err)
		}
		return pkgerrors.NewDatabaseError("PutItem", err)
	}

	s.logger.Debug("Snapshot saved",
		zap.String("flowID", flow.FlowID.String()),
		zap.Int("version", flow.Version),
		zap.Int("bytes", len(payload)),
	)
	return nil
}

// Get reads the last saved snapshot
func (s *SnapshotStore) Get(ctx context.Context, id valueobjects.FlowID) (*ports.SavedFlow, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: flowKey(id)},
			"SK": &types.AttributeValueMemberS{Value: snapshotSortKey},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("GetItem", err)
	}
	if len(out.Item) == 0 {
		return nil, pkgerrors.ErrSavedFlowNotFound.WithDetail("flow_id", id.String())
	}

	var item snapshotItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot item: %w", err)
	}

	serializer := s.serializer
	if item.Compression != string(serializer.Compression()) {
		// written under a different SNAPSHOT_COMPRESSION setting
		compression, err := serialization.ParseCompression(item.Compression)
		if err != nil {
			return nil, err
		}
		if serializer, err = serialization.NewSerializer(compression); err != nil {
			return nil, err
		}
		defer serializer.Close()
	}

	snapshot, err := serializer.DecodeSnapshot(item.Payload)
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to decode snapshot").WithCause(err)
	}

	savedAt, err := time.Parse(time.RFC3339Nano, item.SavedAt)
	if err != nil {
		s.logger.Warn("Invalid SavedAt on snapshot item", zap.String("flowID", item.FlowID), zap.Error(err))
	}

	return &ports.SavedFlow{
		FlowID:   id,
		Name:     item.Name,
		Version:  item.Version,
		Snapshot: snapshot,
		SavedAt:  savedAt,
	}, nil
}
