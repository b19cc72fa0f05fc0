package ingest

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
	"github.com/elenichas/orders-dashboard-app/internal/metrics"
)

// Subscriber is one observer of the event delivery channel: it dials the
// feed, receives one serialized event per message, and feeds the engine.
// Connection close by either side ends the subscription; there is no
// reconnect or resume, a new subscriber receives the full replay again.
type Subscriber struct {
	feedURL string
	engine  *Engine
	metrics *metrics.Metrics
}

// NewSubscriber creates a subscriber that ingests into engine.
func NewSubscriber(feedURL string, engine *Engine, collector *metrics.Metrics) *Subscriber {
	if collector == nil {
		collector = metrics.NewMetrics()
	}
	return &Subscriber{feedURL: feedURL, engine: engine, metrics: collector}
}

// Run connects to the feed and consumes events until the channel closes or
// the context is cancelled. Malformed events are dropped and logged; the
// channel closing is normal completion of the subscription lifecycle, not an
// error. Remaining buffered events are flushed before returning.
func (s *Subscriber) Run(ctx context.Context) error {
	origin, err := originFor(s.feedURL)
	if err != nil {
		return err
	}

	conn, err := websocket.Dial(s.feedURL, "", origin)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to feed %s", s.feedURL)
	}

	// Cancellation closes the connection, which unblocks the receive loop.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		_ = conn.Close()
	}()

	log.Info().Str("feed", s.feedURL).Msg("Subscribed to event feed")
	defer s.engine.Flush()

	for {
		var raw string
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			// Channel closed by either side: normal end of the
			// subscription.
			log.Info().Str("feed", s.feedURL).Msg("Event feed closed")
			return nil
		}

		event, err := domain.UnmarshalEvent([]byte(raw))
		if err != nil {
			s.metrics.IncrementCounter(metrics.CounterEventsDropped)
			log.Warn().Err(err).Msg("Dropped malformed event from feed")
			continue
		}

		s.engine.Ingest(event)
	}
}

// originFor derives the HTTP origin for the WebSocket handshake from the
// feed URL.
func originFor(feedURL string) (string, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return "", errors.Wrapf(err, "invalid feed URL %s", feedURL)
	}
	scheme := "http"
	if u.Scheme == "wss" {
		scheme = "https"
	}
	return scheme + "://" + u.Host, nil
}
