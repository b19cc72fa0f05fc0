package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/elenichas/orders-dashboard-app/config"
	"github.com/elenichas/orders-dashboard-app/internal/ingest"
	"github.com/elenichas/orders-dashboard-app/internal/metrics"
	"github.com/elenichas/orders-dashboard-app/internal/refdata"
	"github.com/elenichas/orders-dashboard-app/internal/views"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Start the dashboard aggregator",
	Long:  `Start the dashboard aggregator that subscribes to the feed server and maintains live order views`,
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
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

	// Create an error group to manage goroutines
	g, ctx := errgroup.WithContext(ctx)

	// Fetch restaurant reference data before consuming the stream
	refClient := refdata.NewClient(cfg.Ingest.RestaurantsURL)
	restaurants, err := refClient.FetchRestaurants(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to fetch restaurant reference data")
	}
	directory := refdata.NewDirectory(restaurants)
	log.Info().Int("restaurants", len(restaurants)).Msg("Loaded restaurant reference data")

	// Initialize metrics
	metricsCollector := metrics.NewMetrics()

	// Initialize the ingestion engine and feed subscriber
	engine := ingest.NewEngine(cfg.Ingest.FlushThreshold, metricsCollector)
	subscriber := ingest.NewSubscriber(cfg.Ingest.FeedURL, engine, metricsCollector)

	// Start the feed subscriber
	g.Go(func() error {
		log.Info().Str("feed_url", cfg.Ingest.FeedURL).Msg("Starting feed subscriber")
		return subscriber.Run(ctx)
	})

	// Start the fallback flush cron job. The engine already flushes when
	// the buffer reaches its threshold; this catches a quiet tail of the
	// stream that never fills the buffer.
	g.Go(func() error {
		log.Info().Msg("Starting fallback flush cron job")

		// Create a scheduler
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return err
		}

		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Ingest.FlushInterval),
			gocron.NewTask(func() {
				if buffered := engine.Buffered(); buffered > 0 {
					log.Debug().Int("buffered", buffered).Msg("Flushing buffered events on schedule")
					engine.Flush()
				}
			}),
		)
		if err != nil {
			return err
		}

		// Add the view summary job so operators can watch the aggregates
		// converge without a UI attached.
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.Ingest.SummaryInterval),
			gocron.NewTask(func() {
				logViewSummary(engine, directory)
			}),
		)
		if err != nil {
			return err
		}

		scheduler.Start()

		// Wait for context cancellation, then shut the scheduler down
		<-ctx.Done()
		return scheduler.Shutdown()
	})

	// Wait for all goroutines to complete
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Dashboard error")
		return err
	}

	// Final recompute over everything that arrived
	engine.Flush()
	logViewSummary(engine, directory)

	log.Info().Msg("Dashboard shutting down gracefully")
	return nil
}

func logViewSummary(engine *ingest.Engine, directory *refdata.Directory) {
	snapshot := engine.Snapshot()
	cards := views.OrderCards(snapshot, directory)
	buckets := views.DailyCounts(snapshot)
	stats := views.SortStatsByRevenue(views.RestaurantStatsView(snapshot, directory))

	log.Info().
		Int("orders", len(cards)).
		Int("days", len(buckets)).
		Msg("Dashboard summary")

	for _, b := range buckets {
		log.Info().
			Str("day", b.Day).
			Int("created", b.CreatedOrders).
			Int("delivered", b.DeliveredOrders).
			Int("cancelled", b.CancelledOrders).
			Msg("Daily counts")
	}
	for _, s := range stats {
		if s.Created == 0 {
			continue
		}
		log.Info().
			Str("restaurant", s.Name).
			Int("created", s.Created).
			Int("delivered", s.Delivered).
			Int("cancelled", s.Cancelled).
			Str("revenue", s.Revenue.String()).
			Str("lost_revenue", s.LostRevenue.String()).
			Msg("Restaurant stats")
	}
}
