package broadcast

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	_, ch1 := b.Subscribe()
	_, ch2 := b.Subscribe()
	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(Event{Type: EventResourceUpdated, Resource: models.ResourceFuel})

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case e := <-ch:
			assert.Equal(t, EventResourceUpdated, e.Type)
			assert.Equal(t, models.ResourceFuel, e.Resource)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestPublishSkipsSlowSubscriber(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	_, slow := b.Subscribe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range subscriberBuffer * 3 {
			b.Publish(Event{Type: EventResourceUpdated})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, slow, subscriberBuffer)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcaster()
	defer b.Close()

	id, ch := b.Subscribe()
	b.Unsubscribe(id)
	b.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.SubscriberCount())
}

func TestCloseEndsConsumers(t *testing.T) {
	b := NewBroadcaster()

	var wg sync.WaitGroup
	for range 3 {
		_, ch := b.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range ch {
			}
		}()
	}

	b.Publish(Event{Type: EventEngineStopped})
	b.Close()
	wg.Wait()

	_, ch := b.Subscribe()
	_, ok := <-ch
	require.False(t, ok, "subscribing after close yields a closed channel")
}
