package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	var mu sync.Mutex
	var got []string
	for _, name := range []string{"a", "b"} {
		name := name
		bus.Subscribe(func(ev Event) {
			mu.Lock()
			got = append(got, name+":"+ev.Type)
			mu.Unlock()
		})
	}

	bus.Publish(NewMatchCreated(1, 2, 3))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	})
	mu.Lock()
	assert.ElementsMatch(t, []string{"a:match_created", "b:match_created"}, got)
	mu.Unlock()
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	block := make(chan struct{})
	bus.Subscribe(func(Event) { <-block })

	done := make(chan struct{})
	go func() {
		// far more events than capacity; extras must be dropped silently
		for i := 0; i < 100; i++ {
			bus.Publish(NewMessageSent(1, uint64(i), 2, 3, "x"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full queue")
	}
	close(block)
}

func TestBusSurvivesPanickingHandler(t *testing.T) {
	bus := NewBus(8)
	defer bus.Close()

	var mu sync.Mutex
	delivered := 0
	bus.Subscribe(func(Event) { panic("boom") })
	bus.Subscribe(func(Event) {
		mu.Lock()
		delivered++
		mu.Unlock()
	})

	bus.Publish(NewMatchCreated(1, 2, 3))
	bus.Publish(NewMatchCreated(2, 3, 4))

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return delivered == 2
	})
}

func TestMessagePreviewCapped(t *testing.T) {
	long := make([]rune, 150)
	for i := range long {
		long[i] = 'ă'
	}
	ev := NewMessageSent(1, 2, 3, 4, string(long))
	require.NotNil(t, ev.MessageSent)
	assert.Len(t, []rune(ev.MessageSent.Preview), 103) // 100 runes plus "..."
}
