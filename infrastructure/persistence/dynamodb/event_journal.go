package dynamodb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowbuilder/domain/events"
	pkgerrors "flowbuilder/pkg/errors"
)

// DynamoDB accepts at most 25 items per BatchWriteItem call
const maxBatchWrite = 25

// JournalAPI is the subset of the DynamoDB client the event journal uses
type JournalAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// EventJournal appends domain events to the flow's partition, next to its
// saved snapshot. It satisfies ports.EventBus.
type EventJournal struct {
	client    JournalAPI
	tableName string
	retention time.Duration
	logger    *zap.Logger
	newID     func() string
}

// eventItem represents the DynamoDB item structure for a journaled event
type eventItem struct {
	PK        string                 `dynamodbav:"PK"` // FLOW#<flow_id>
	SK        string                 `dynamodbav:"SK"` // EVENT#<timestamp>#<seq>#<event_id>
	EventID   string                 `dynamodbav:"EventID"`
	EventType string                 `dynamodbav:"EventType"`
	Version   int                    `dynamodbav:"Version"`
	Timestamp string                 `dynamodbav:"Timestamp"`
	Data      map[string]interface{} `dynamodbav:"Data"`
	TTL       int64                  `dynamodbav:"TTL,omitempty"`
}

// NewEventJournal creates a new journal. A zero retention keeps events forever.
func NewEventJournal(client JournalAPI, tableName string, retention time.Duration, logger *zap.Logger) *EventJournal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventJournal{
		client:    client,
		tableName: tableName,
		retention: retention,
		logger:    logger,
		newID:     func() string { return uuid.New().String() },
	}
}

// Publish journals a single event
func (j *EventJournal) Publish(ctx context.Context, event events.DomainEvent) error {
	return j.PublishBatch(ctx, []events.DomainEvent{event})
}

// PublishBatch journals events in chunks of 25
func (j *EventJournal) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	requests := make([]types.WriteRequest, 0, len(domainEvents))
	for i, event := range domainEvents {
		item, err := j.toItem(event, i)
		if err != nil {
			return err
		}
		av, err := attributevalue.MarshalMap(item)
		if err != nil {
			return fmt.Errorf("failed to marshal event %s: %w", event.GetEventType(), err)
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: av}})
	}

	for start := 0; start < len(requests); start += maxBatchWrite {
		end := start + maxBatchWrite
		if end > len(requests) {
			end = len(requests)
		}

		out, err := j.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{j.tableName: requests[start:end]},
		})
		if err != nil {
			return pkgerrors.NewDatabaseError("journal events", err)
		}
		if left := len(out.UnprocessedItems[j.tableName]); left > 0 {
			return pkgerrors.NewDatabaseError("journal events",
				fmt.Errorf("%d of %d events were not written", left, end-start))
		}
	}

	j.logger.Debug("Journaled events",
		zap.String("flowID", domainEvents[0].GetAggregateID()),
		zap.Int("count", len(domainEvents)),
	)
	return nil
}

// toItem flattens the event's JSON form into the item's Data map. seq keeps
// events that share a timestamp in batch order.
func (j *EventJournal) toItem(event events.DomainEvent, seq int) (eventItem, error) {
	raw, err := json.Marshal(event)
	if err != nil {
		return eventItem{}, fmt.Errorf("failed to marshal event %s: %w", event.GetEventType(), err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return eventItem{}, fmt.Errorf("failed to flatten event %s: %w", event.GetEventType(), err)
	}

	ts := event.GetTimestamp().UTC()
	id := j.newID()
	item := eventItem{
		PK:        fmt.Sprintf("FLOW#%s", event.GetAggregateID()),
		SK:        fmt.Sprintf("EVENT#%s#%04d#%s", ts.Format(time.RFC3339Nano), seq, id),
		EventID:   id,
		EventType: event.GetEventType(),
		Version:   event.GetVersion(),
		Timestamp: ts.Format(time.RFC3339Nano),
		Data:      data,
	}
	if j.retention > 0 {
		item.TTL = ts.Add(j.retention).Unix()
	}
	return item, nil
}
