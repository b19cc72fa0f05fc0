package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/elenichas/orders-dashboard-app/config"
	"github.com/elenichas/orders-dashboard-app/internal/domain"
	"github.com/elenichas/orders-dashboard-app/internal/eventlog"
	"github.com/elenichas/orders-dashboard-app/internal/metrics"
)

var testRestaurants = []domain.Restaurant{
	{ID: "r-1", Name: "The Golden Fork", Rating: 4.5},
	{ID: "r-2", Name: "Pasta Republic", Rating: 3.9},
}

func newTestServer(t *testing.T, events []domain.OrderEvent, tailSize int, interval time.Duration) (*httptest.Server, *metrics.Metrics) {
	t.Helper()

	cfg := config.Config{
		Environment: "test",
		Server:      config.ServerConfig{Address: "127.0.0.1:0"},
		Feed: config.FeedConfig{
			WSPath:   "/ws",
			TailSize: tailSize,
			Interval: interval,
		},
	}
	collector := metrics.NewMetrics()
	server := NewServer(cfg, eventlog.NewLog(events), testRestaurants, collector)

	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return srv, collector
}

func dialFeed(t *testing.T, srv *httptest.Server, path string) (*websocket.Conn, error) {
	t.Helper()
	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + path
	return websocket.Dial(wsURL, "", srv.URL)
}

func receiveEvent(t *testing.T, conn *websocket.Conn) domain.OrderEvent {
	t.Helper()
	var raw string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, websocket.Message.Receive(conn, &raw))
	event, err := domain.UnmarshalEvent([]byte(raw))
	require.NoError(t, err)
	return event
}

func TestServerReplaysLogOverWebSocket(t *testing.T) {
	events := makeEvents(8)
	srv, collector := newTestServer(t, events, 3, 20*time.Millisecond)

	conn, err := dialFeed(t, srv, "/ws")
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < len(events); i++ {
		event := receiveEvent(t, conn)
		require.Equal(t, events[i].OccurredAt(), event.OccurredAt())
		require.Equal(t, events[i].Kind(), event.Kind())
	}

	require.Eventually(t, func() bool {
		return collector.GetCounters()[metrics.CounterEventsSent] == int64(len(events))
	}, time.Second, 10*time.Millisecond)
}

func TestServerRejectsUpgradeOnUnknownPath(t *testing.T) {
	srv, _ := newTestServer(t, makeEvents(2), 0, time.Millisecond)

	_, err := dialFeed(t, srv, "/events")
	require.Error(t, err)
}

func TestServerRestaurantsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil, 0, time.Millisecond)

	resp, err := http.Get(srv.URL + "/restaurants")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got []domain.Restaurant
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, testRestaurants, got)
}

func TestServerUnknownPathNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil, 0, time.Millisecond)

	resp, err := http.Get(srv.URL + "/orders")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerHealthAndMetricsEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, nil, 0, time.Millisecond)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	require.Contains(t, payload, "counters")
	require.Contains(t, payload, "uptime_seconds")
}

func TestServerObserverDisconnectStopsReplay(t *testing.T) {
	// Pace the entire log so the replay is still in flight when the
	// observer disconnects.
	events := makeEvents(50)
	srv, collector := newTestServer(t, events, len(events), 30*time.Millisecond)

	conn, err := dialFeed(t, srv, "/ws")
	require.NoError(t, err)

	receiveEvent(t, conn)
	receiveEvent(t, conn)
	require.NoError(t, conn.Close())

	// Give the server time to notice the close and cancel the schedule.
	require.Eventually(t, func() bool {
		return collector.GetCounters()[metrics.CounterObserverCloses] == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Allow any in-flight send to settle before sampling.
	time.Sleep(50 * time.Millisecond)
	sent := collector.GetCounters()[metrics.CounterEventsSent]
	require.Less(t, sent, int64(len(events)))

	time.Sleep(120 * time.Millisecond)
	require.Equal(t, sent, collector.GetCounters()[metrics.CounterEventsSent])
}

func TestServerConcurrentObserversDoNotInterfere(t *testing.T) {
	events := makeEvents(6)
	srv, _ := newTestServer(t, events, 0, time.Millisecond)

	first, err := dialFeed(t, srv, "/ws")
	require.NoError(t, err)
	defer first.Close()
	second, err := dialFeed(t, srv, "/ws")
	require.NoError(t, err)
	defer second.Close()

	for i := 0; i < len(events); i++ {
		require.Equal(t, events[i].OccurredAt(), receiveEvent(t, first).OccurredAt())
	}
	for i := 0; i < len(events); i++ {
		require.Equal(t, events[i].OccurredAt(), receiveEvent(t, second).OccurredAt())
	}
}
