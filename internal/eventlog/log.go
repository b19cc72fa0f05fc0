// Package eventlog holds the append-only, time-ordered event log the feed
// server replays to observers, and the restaurant reference data served
// alongside it. Both are loaded once at process start and are read-only for
// the life of the process.
package eventlog

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
)

// Log is an immutable, time-ordered sequence of order events. Concurrent
// observers replay it independently; delivery never mutates it.
type Log struct {
	events []domain.OrderEvent
}

// NewLog wraps an event sequence in a read-only log. The caller must not
// modify the slice afterwards.
func NewLog(events []domain.OrderEvent) *Log {
	return &Log{events: events}
}

// LoadLog reads an event log from a JSON file containing an array of wire
// events. Events that fail to decode are dropped and logged, never fatal.
func LoadLog(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read event log %s", path)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse event log %s", path)
	}

	events := make([]domain.OrderEvent, 0, len(raw))
	dropped := 0
	for _, msg := range raw {
		event, err := domain.UnmarshalEvent(msg)
		if err != nil {
			dropped++
			continue
		}
		events = append(events, event)
	}

	if dropped > 0 {
		log.Warn().
			Int("dropped", dropped).
			Str("path", path).
			Msg("Dropped undecodable events while loading event log")
	}

	log.Info().Int("events", len(events)).Str("path", path).Msg("Event log loaded")
	return &Log{events: events}, nil
}

// Len returns the number of events in the log.
func (l *Log) Len() int {
	return len(l.events)
}

// Events returns the full ordered event sequence. Callers must treat the
// returned slice as read-only.
func (l *Log) Events() []domain.OrderEvent {
	return l.events
}

// LoadRestaurants reads the restaurant reference list from a JSON file.
func LoadRestaurants(path string) ([]domain.Restaurant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read restaurant list %s", path)
	}

	var restaurants []domain.Restaurant
	if err := json.Unmarshal(data, &restaurants); err != nil {
		return nil, errors.Wrapf(err, "failed to parse restaurant list %s", path)
	}

	log.Info().Int("restaurants", len(restaurants)).Str("path", path).Msg("Restaurant reference data loaded")
	return restaurants, nil
}
