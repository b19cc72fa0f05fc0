package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
)

func makeEvents(n int) []domain.OrderEvent {
	base := time.Date(2024, 11, 1, 9, 0, 0, 0, time.UTC)
	events := make([]domain.OrderEvent, 0, n)
	for i := 0; i < n; i++ {
		events = append(events, domain.OrderCreated{
			OrderID:      string(rune('a'+i%26)) + "-order",
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
			RestaurantID: "r-1",
			UserID:       "u-1",
			TotalAmount:  "10.00",
		})
	}
	return events
}

// collector records delivered events and their arrival times.
type collector struct {
	mu     sync.Mutex
	events []domain.OrderEvent
	times  []time.Time
	fail   bool
}

func (c *collector) send(event domain.OrderEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("channel closed")
	}
	c.events = append(c.events, event)
	c.times = append(c.times, time.Now())
	return nil
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *collector) snapshot() ([]domain.OrderEvent, []time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.OrderEvent(nil), c.events...), append([]time.Time(nil), c.times...)
}

func TestPacerHeadImmediateTailPaced(t *testing.T) {
	const (
		total    = 15
		tail     = 5
		interval = 40 * time.Millisecond
	)
	events := makeEvents(total)
	pacer := NewPacer(events, tail, interval)

	c := &collector{}
	start := time.Now()
	replay := pacer.Start(c.send)

	select {
	case <-replay.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("replay did not complete")
	}

	got, times := c.snapshot()
	require.Len(t, got, total)
	// Original order preserved end to end.
	for i, event := range got {
		require.Equal(t, events[i].OccurredAt(), event.OccurredAt())
	}

	// The head arrives with no artificial delay between events.
	headDone := times[total-tail-1].Sub(start)
	require.Less(t, headDone, interval, "head delivery should not be paced")

	// Tail events are spaced by at least the interval, allowing scheduler
	// jitter.
	for i := total - tail + 1; i < total; i++ {
		gap := times[i].Sub(times[i-1])
		require.GreaterOrEqual(t, gap, interval-10*time.Millisecond,
			"tail events %d and %d arrived too close together", i-1, i)
	}
}

func TestPacerTailCoversWholeLogWhenTailExceedsLength(t *testing.T) {
	events := makeEvents(3)
	pacer := NewPacer(events, 10, 10*time.Millisecond)

	c := &collector{}
	start := time.Now()
	replay := pacer.Start(c.send)

	select {
	case <-replay.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not complete")
	}

	require.Equal(t, 3, c.count())
	// Everything was paced: the run takes at least one interval per event.
	require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestPacerEmptyLog(t *testing.T) {
	pacer := NewPacer(nil, 1000, time.Second)

	c := &collector{}
	replay := pacer.Start(c.send)

	select {
	case <-replay.Done():
	case <-time.After(time.Second):
		t.Fatal("replay did not complete")
	}
	require.Zero(t, c.count())
}

func TestPacerCancelStopsScheduledDeliveries(t *testing.T) {
	events := makeEvents(100)
	pacer := NewPacer(events, 100, 20*time.Millisecond)

	c := &collector{}
	replay := pacer.Start(c.send)

	// Let a couple of tail events through, then disconnect.
	time.Sleep(50 * time.Millisecond)
	replay.Cancel()

	select {
	case <-replay.Done():
	case <-time.After(time.Second):
		t.Fatal("replay did not stop after cancel")
	}

	delivered := c.count()
	require.Less(t, delivered, 100)

	// No further sends occur after cancellation.
	time.Sleep(80 * time.Millisecond)
	require.Equal(t, delivered, c.count())
}

func TestPacerCancelIdempotentAndSafeAfterCompletion(t *testing.T) {
	pacer := NewPacer(makeEvents(2), 0, time.Millisecond)

	c := &collector{}
	replay := pacer.Start(c.send)
	<-replay.Done()

	replay.Cancel()
	replay.Cancel()
	require.Equal(t, 2, c.count())
}

func TestPacerSendFailureIsTerminal(t *testing.T) {
	events := makeEvents(10)
	pacer := NewPacer(events, 0, time.Millisecond)

	c := &collector{fail: true}
	replay := pacer.Start(c.send)

	select {
	case <-replay.Done():
	case <-time.After(time.Second):
		t.Fatal("replay did not stop after send failure")
	}
	require.Zero(t, c.count())
}

func TestPacerObserversReplayIndependently(t *testing.T) {
	events := makeEvents(6)
	pacer := NewPacer(events, 0, time.Millisecond)

	first := &collector{}
	second := &collector{}
	replayA := pacer.Start(first.send)
	replayB := pacer.Start(second.send)
	<-replayA.Done()
	<-replayB.Done()

	gotA, _ := first.snapshot()
	gotB, _ := second.snapshot()
	require.Len(t, gotA, 6)
	require.Len(t, gotB, 6)
	for i := range gotA {
		require.Equal(t, events[i].OccurredAt(), gotA[i].OccurredAt())
		require.Equal(t, events[i].OccurredAt(), gotB[i].OccurredAt())
	}
}

func TestPacerZeroIntervalDeliversImmediately(t *testing.T) {
	events := makeEvents(8)
	pacer := NewPacer(events, 5, 0)

	got := &collector{}
	replay := pacer.Start(got.send)

	select {
	case <-replay.Done():
	case <-time.After(time.Second):
		t.Fatal("replay did not complete")
	}
	require.Equal(t, 8, got.count())
}
