// Package ingest consumes the event delivery channel and maintains the
// per-order event histories the aggregation views are computed from.
package ingest

import (
	"sync"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
	"github.com/elenichas/orders-dashboard-app/internal/metrics"
)

// Snapshot is a read-only view of the engine's state: each order ID mapped
// to its ordered event history. Records are append-only, so a snapshot's
// slices are stable even while the engine keeps ingesting.
type Snapshot map[string][]domain.OrderEvent

// Engine maintains, per order ID, the ordered event history built from the
// arriving stream. Incoming events accumulate in a holding buffer and are
// applied to records when the buffer reaches the flush threshold or on an
// explicit Flush. Events are never reordered within an order ID, records are
// never evicted, and duplicate deliveries are not deduplicated.
type Engine struct {
	mu             sync.Mutex
	buffer         []domain.OrderEvent
	records        map[string][]domain.OrderEvent
	flushThreshold int
	metrics        *metrics.Metrics
}

// NewEngine creates an ingestion engine. A flushThreshold of zero or less
// disables buffering: every event is applied immediately.
func NewEngine(flushThreshold int, collector *metrics.Metrics) *Engine {
	if collector == nil {
		collector = metrics.NewMetrics()
	}
	return &Engine{
		records:        make(map[string][]domain.OrderEvent),
		flushThreshold: flushThreshold,
		metrics:        collector,
	}
}

// Ingest buffers one event for application. Once the buffer reaches the
// flush threshold the buffered events are applied to records in the exact
// order they were buffered.
func (e *Engine) Ingest(event domain.OrderEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.metrics.IncrementCounter(metrics.CounterEventsIngested)
	e.buffer = append(e.buffer, event)
	if e.flushThreshold <= 0 || len(e.buffer) >= e.flushThreshold {
		e.flushLocked()
	}
	e.metrics.SetGauge(metrics.GaugeBufferedEvents, int64(len(e.buffer)))
}

// Flush applies all buffered events to their records.
func (e *Engine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flushLocked()
	e.metrics.SetGauge(metrics.GaugeBufferedEvents, 0)
}

func (e *Engine) flushLocked() {
	if len(e.buffer) == 0 {
		return
	}
	for _, event := range e.buffer {
		id := event.Order()
		e.records[id] = append(e.records[id], event)
	}
	e.buffer = e.buffer[:0]
	e.metrics.IncrementCounter(metrics.CounterFlushes)
	e.metrics.SetGauge(metrics.GaugeTrackedOrders, int64(len(e.records)))
}

// Snapshot returns a consistent read-only view of all records. The view
// never observes a record mid-append.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := make(Snapshot, len(e.records))
	for id, events := range e.records {
		snapshot[id] = events
	}
	return snapshot
}

// Buffered returns the number of events held in the buffer, not yet applied
// to records.
func (e *Engine) Buffered() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.buffer)
}

// Orders returns the number of distinct orders with applied events.
func (e *Engine) Orders() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.records)
}
