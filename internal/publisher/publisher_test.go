package publisher

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/LeonAdeoye/notional-limit-service/internal/messaging"
)

type published struct {
	topic messaging.Topic
	key   string
}

type fakeProducer struct {
	mu       sync.Mutex
	messages []published
}

func (f *fakeProducer) Publish(_ context.Context, topic messaging.Topic, key string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{topic: topic, key: key})
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func (f *fakeProducer) all() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.messages...)
}

func TestPublishRoutesToTopics(t *testing.T) {
	producer := &fakeProducer{}
	p := NewAsyncPublisher(producer, 16, zaptest.NewLogger(t))

	deskID := uuid.New()
	traderID := uuid.New()

	p.PublishLimitBreach(&messaging.BreachEvent{DeskID: deskID})
	p.PublishDeskNotionalUpdate(&messaging.NotionalUpdateEvent{DeskID: deskID})
	p.PublishTraderNotionalUpdate(&messaging.NotionalUpdateEvent{DeskID: deskID, TraderID: &traderID})

	p.Close()

	messages := producer.all()
	require.Len(t, messages, 3)
	assert.Equal(t, messaging.TopicLimitBreaches, messages[0].topic)
	assert.Equal(t, deskID.String(), messages[0].key)
	assert.Equal(t, messaging.TopicDeskNotionalUpdates, messages[1].topic)
	assert.Equal(t, messaging.TopicTraderNotionalUpdates, messages[2].topic)
	assert.Equal(t, traderID.String(), messages[2].key, "trader updates are keyed by trader id")
}

func TestTraderUpdateWithoutTraderFallsBackToDeskKey(t *testing.T) {
	producer := &fakeProducer{}
	p := NewAsyncPublisher(producer, 16, zaptest.NewLogger(t))

	deskID := uuid.New()
	p.PublishTraderNotionalUpdate(&messaging.NotionalUpdateEvent{DeskID: deskID})
	p.Close()

	messages := producer.all()
	require.Len(t, messages, 1)
	assert.Equal(t, deskID.String(), messages[0].key)
}

func TestCloseFlushesBufferedEvents(t *testing.T) {
	producer := &fakeProducer{}
	p := NewAsyncPublisher(producer, 64, zaptest.NewLogger(t))

	deskID := uuid.New()
	for i := 0; i < 20; i++ {
		p.PublishDeskNotionalUpdate(&messaging.NotionalUpdateEvent{DeskID: deskID})
	}
	p.Close()

	assert.Len(t, producer.all(), 20, "Close must drain everything already enqueued")
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	producer := &fakeProducer{}
	p := NewAsyncPublisher(producer, 16, zaptest.NewLogger(t))
	p.Close()

	p.PublishLimitBreach(&messaging.BreachEvent{DeskID: uuid.New()})
	p.Close()

	assert.Empty(t, producer.all())
}
