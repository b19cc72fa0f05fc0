package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/elenichas/orders-dashboard-app/config"
	"github.com/elenichas/orders-dashboard-app/internal/eventlog"
	"github.com/elenichas/orders-dashboard-app/internal/feed"
	"github.com/elenichas/orders-dashboard-app/internal/metrics"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Start the feed server",
	Long:  `Start the WebSocket feed server that replays the recorded order event log to each observer`,
	RunE:  runFeed,
}

func init() {
	rootCmd.AddCommand(feedCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return err
	}

	// Configure logging
	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Load the recorded event log and restaurant reference data
	eventLog, err := eventlog.LoadLog(cfg.Data.EventsPath)
	if err != nil {
		return errors.Wrap(err, "failed to load event log")
	}
	restaurants, err := eventlog.LoadRestaurants(cfg.Data.RestaurantsPath)
	if err != nil {
		return errors.Wrap(err, "failed to load restaurants")
	}
	log.Info().
		Int("events", eventLog.Len()).
		Int("restaurants", len(restaurants)).
		Msg("Loaded feed fixtures")

	// Initialize metrics
	metricsCollector := metrics.NewMetrics()

	// Initialize and start the server
	server := feed.NewServer(cfg, eventLog, restaurants, metricsCollector)

	// Start the server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("Server error")
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	// Shutdown the server
	if err := server.Shutdown(context.Background()); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutting down feed server")
	return nil
}
