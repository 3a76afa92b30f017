package eventbridge

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mohammedfirdouss/serverless-book-tracker/domain/events"
)

type fakeEventsClient struct {
	inputs []*awseventbridge.PutEventsInput
	output *awseventbridge.PutEventsOutput
}

func (f *fakeEventsClient) PutEvents(ctx context.Context, params *awseventbridge.PutEventsInput, optFns ...func(*awseventbridge.Options)) (*awseventbridge.PutEventsOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.output != nil {
		return f.output, nil
	}
	return &awseventbridge.PutEventsOutput{
		Entries: make([]types.PutEventsResultEntry, len(params.Entries)),
	}, nil
}

// unsendableEvent cannot be serialized, so the publisher skips it before the
// bus call.
type unsendableEvent struct {
	events.BaseEvent
	Blocked chan struct{} `json:"blocked"`
}

func TestPublishBatchChunks(t *testing.T) {
	client := &fakeEventsClient{}
	p := NewPublisher(client, "test-bus", zap.NewNop())

	batch := make([]events.DomainEvent, 0, 12)
	for i := 0; i < 12; i++ {
		batch = append(batch, events.NewBookDeleted("u1", "b1"))
	}

	require.NoError(t, p.PublishBatch(context.Background(), batch))
	require.Len(t, client.inputs, 2)
	assert.Len(t, client.inputs[0].Entries, 10)
	assert.Len(t, client.inputs[1].Entries, 2)
}

// A marshal failure drops an event from the outgoing batch. The rejected-entry
// log must then name the event that actually went out at that position, not
// whatever sat at the same offset of the original batch.
func TestFailedEntryLogNamesSentEvent(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	client := &fakeEventsClient{
		output: &awseventbridge.PutEventsOutput{
			FailedEntryCount: 1,
			Entries: []types.PutEventsResultEntry{
				{EventId: aws.String("ok")},
				{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("boom")},
			},
		},
	}
	p := NewPublisher(client, "test-bus", zap.New(core))

	batch := []events.DomainEvent{
		events.NewBookDeleted("u1", "b1"),
		unsendableEvent{BaseEvent: events.BaseEvent{EventType: "unsendable"}},
		events.NewTagDeleted("u1", "t1"),
	}

	err := p.PublishBatch(context.Background(), batch)
	require.Error(t, err)
	require.Len(t, client.inputs, 1)
	assert.Len(t, client.inputs[0].Entries, 2)

	var rejected []observer.LoggedEntry
	for _, entry := range logs.All() {
		if entry.Message == "event rejected by event bus" {
			rejected = append(rejected, entry)
		}
	}
	require.Len(t, rejected, 1)
	assert.Equal(t, events.EventTypeTagDeleted, rejected[0].ContextMap()["eventType"])
}
