package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"flowbuilder/domain/core/valueobjects"
	"flowbuilder/domain/events"
	pkgerrors "flowbuilder/pkg/errors"
)

type MockJournalAPI struct {
	mock.Mock
}

func (m *MockJournalAPI) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.BatchWriteItemOutput), args.Error(1)
}

func batchOf(n int) func(*dynamodb.BatchWriteItemInput) bool {
	return func(in *dynamodb.BatchWriteItemInput) bool {
		return len(in.RequestItems["flows"]) == n
	}
}

func selectedEvents(flowID valueobjects.FlowID, n int, at time.Time) []events.DomainEvent {
	out := make([]events.DomainEvent, n)
	for i := range out {
		out[i] = events.NewNodeSelected(flowID, i+1, valueobjects.NewNodeID(), at)
	}
	return out
}

func TestEventJournal_WritesInChunksOf25(t *testing.T) {
	client := new(MockJournalAPI)
	client.On("BatchWriteItem", mock.Anything, mock.MatchedBy(batchOf(25))).
		Return(&dynamodb.BatchWriteItemOutput{}, nil).Once()
	client.On("BatchWriteItem", mock.Anything, mock.MatchedBy(batchOf(5))).
		Return(&dynamodb.BatchWriteItemOutput{}, nil).Once()

	journal := NewEventJournal(client, "flows", 0, zaptest.NewLogger(t))
	err := journal.PublishBatch(context.Background(), selectedEvents(valueobjects.NewFlowID(), 30, time.Now()))

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestEventJournal_ItemLayout(t *testing.T) {
	flowID := valueobjects.NewFlowID()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var captured *dynamodb.BatchWriteItemInput
	client := new(MockJournalAPI)
	client.On("BatchWriteItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.BatchWriteItemInput) }).
		Return(&dynamodb.BatchWriteItemOutput{}, nil)

	journal := NewEventJournal(client, "flows", 24*time.Hour, zaptest.NewLogger(t))
	ids := []string{"e-1", "e-2"}
	journal.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}

	err := journal.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewFlowCreated(flowID, "Support", at),
		events.NewSelectionCleared(flowID, 1, at),
	})
	require.NoError(t, err)
	require.NotNil(t, captured)

	writes := captured.RequestItems["flows"]
	require.Len(t, writes, 2)

	var first, second eventItem
	require.NoError(t, attributevalue.UnmarshalMap(writes[0].PutRequest.Item, &first))
	require.NoError(t, attributevalue.UnmarshalMap(writes[1].PutRequest.Item, &second))

	assert.Equal(t, "FLOW#"+flowID.String(), first.PK)
	assert.Equal(t, "EVENT#2024-05-01T12:00:00Z#0000#e-1", first.SK)
	assert.Equal(t, events.TypeFlowCreated, first.EventType)
	assert.Equal(t, "Support", first.Data["name"])
	assert.Equal(t, at.Add(24*time.Hour).Unix(), first.TTL)

	// same timestamp, ordered by position in the batch
	assert.Equal(t, "EVENT#2024-05-01T12:00:00Z#0001#e-2", second.SK)
	assert.Less(t, first.SK, second.SK)
}

func TestEventJournal_Failures(t *testing.T) {
	flowID := valueobjects.NewFlowID()

	t.Run("client error", func(t *testing.T) {
		client := new(MockJournalAPI)
		client.On("BatchWriteItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		journal := NewEventJournal(client, "flows", 0, zaptest.NewLogger(t))
		err := journal.Publish(context.Background(), events.NewFlowCreated(flowID, "x", time.Now()))

		require.Error(t, err)
		assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeDatabase))
	})

	t.Run("unprocessed items", func(t *testing.T) {
		client := new(MockJournalAPI)
		client.On("BatchWriteItem", mock.Anything, mock.Anything).Return(&dynamodb.BatchWriteItemOutput{
			UnprocessedItems: map[string][]types.WriteRequest{"flows": {{}}},
		}, nil)

		journal := NewEventJournal(client, "flows", 0, zaptest.NewLogger(t))
		err := journal.PublishBatch(context.Background(), selectedEvents(flowID, 2, time.Now()))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 events were not written")
	})

	t.Run("nothing to write", func(t *testing.T) {
		client := new(MockJournalAPI)
		journal := NewEventJournal(client, "flows", 0, zaptest.NewLogger(t))

		require.NoError(t, journal.PublishBatch(context.Background(), nil))
		client.AssertNotCalled(t, "BatchWriteItem", mock.Anything, mock.Anything)
	})
}
