package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	got := make(map[int]Event)
	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		i := i
		bus.Subscribe(func(ev Event) {
			mu.Lock()
			got[i] = ev
			mu.Unlock()
			wg.Done()
		})
	}

	bus.Publish(Event{Type: QueueCalled, OccurredAt: time.Now(), Payload: map[string]any{"position": 1}})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscribers were not notified")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	for _, ev := range got {
		assert.Equal(t, QueueCalled, ev.Type)
	}
}

func TestBusPublishWithoutSubscribersIsANoOp(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.Publish(Event{Type: QueueEntryAdded})
	})
}
