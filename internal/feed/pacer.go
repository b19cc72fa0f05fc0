package feed

import (
	"sync"
	"time"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
)

// Sender delivers a single event to one observer. A send error is terminal
// for that observer's replay; deliveries are never retried.
type Sender func(event domain.OrderEvent) error

// Pacer replays the full event log to each newly connected observer: the
// head of the log is delivered back-to-back, then the tail is trickled out
// at a fixed interval to emulate a live feed. The log itself is never
// mutated and every observer gets an independent replay from index 0.
type Pacer struct {
	events   []domain.OrderEvent
	tailSize int
	interval time.Duration
}

// NewPacer creates a pacer over a read-only event sequence. tailSize is the
// number of trailing events delivered one per interval; if it meets or
// exceeds the log length the whole log is paced. A non-positive interval
// disables pacing and the whole log is delivered immediately.
func NewPacer(events []domain.OrderEvent, tailSize int, interval time.Duration) *Pacer {
	if tailSize < 0 || interval <= 0 {
		tailSize = 0
	}
	return &Pacer{events: events, tailSize: tailSize, interval: interval}
}

// Replay is the handle for one observer's scheduled replay. Cancelling stops
// any pending timed deliveries immediately; Cancel is idempotent and safe to
// call after the replay has completed on its own.
type Replay struct {
	cancel     chan struct{}
	done       chan struct{}
	cancelOnce sync.Once
}

// Cancel stops the replay schedule. An in-flight send may still complete,
// but no further deliveries are scheduled.
func (r *Replay) Cancel() {
	r.cancelOnce.Do(func() {
		close(r.cancel)
	})
}

// Done is closed once the replay has stopped, whether it ran to completion,
// failed a send, or was cancelled.
func (r *Replay) Done() <-chan struct{} {
	return r.done
}

// Start begins an asynchronous replay, delivering events through send, and
// returns its handle.
func (p *Pacer) Start(send Sender) *Replay {
	replay := &Replay{
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go p.run(replay, send)
	return replay
}

func (p *Pacer) run(replay *Replay, send Sender) {
	defer close(replay.done)

	head := len(p.events) - p.tailSize
	if head < 0 {
		head = 0
	}

	// Historical head: delivered immediately, back-to-back.
	for _, event := range p.events[:head] {
		select {
		case <-replay.cancel:
			return
		default:
		}
		if err := send(event); err != nil {
			return
		}
	}

	if head == len(p.events) {
		return
	}

	// Live tail: one event per interval, oldest remaining first.
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for _, event := range p.events[head:] {
		select {
		case <-replay.cancel:
			return
		case <-ticker.C:
			if err := send(event); err != nil {
				return
			}
		}
	}
}
