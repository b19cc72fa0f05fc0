package eventlog

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
)

// GeneratorConfig controls synthetic fixture generation.
type GeneratorConfig struct {
	Restaurants int
	Orders      int
	// Start and Days bound the window order creation times are drawn from.
	Start time.Time
	Days  int
	// Seed of 0 uses the current time.
	Seed int64
}

// DefaultGeneratorConfig returns a config producing a feed comparable in
// shape to the recorded one.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Restaurants: 8,
		Orders:      600,
		Start:       time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
		Days:        30,
	}
}

var restaurantNames = []string{
	"The Golden Fork", "Pasta Republic", "Spice Route", "Burger Union",
	"Sakura House", "El Fuego", "The Green Bowl", "Pier 41 Fish Bar",
	"Casa Verde", "Midnight Noodles", "The Brass Kettle", "Olive & Thyme",
}

var driverNames = []string{
	"Sam", "Alex", "Priya", "Marcus", "Elena", "Tom", "Aisha", "Jordan",
}

// newID draws a UUID from the generator's own randomness source, so a fixed
// seed reproduces identities as well as lifecycles.
func newID(rng *rand.Rand) string {
	return uuid.Must(uuid.NewRandomFromReader(rng)).String()
}

// Generate produces a restaurant list and a time-ordered event log of
// synthetic order lifecycles.
func Generate(cfg GeneratorConfig) ([]domain.Restaurant, []domain.OrderEvent) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	restaurants := make([]domain.Restaurant, 0, cfg.Restaurants)
	for i := 0; i < cfg.Restaurants; i++ {
		restaurants = append(restaurants, domain.Restaurant{
			ID:     newID(rng),
			Name:   restaurantNames[i%len(restaurantNames)],
			Rating: float64(rng.Intn(21)+30) / 10, // 3.0 to 5.0
		})
	}

	window := time.Duration(cfg.Days) * 24 * time.Hour
	events := make([]domain.OrderEvent, 0, cfg.Orders*3)
	for i := 0; i < cfg.Orders; i++ {
		orderID := newID(rng)
		restaurant := restaurants[rng.Intn(len(restaurants))]
		createdAt := cfg.Start.Add(time.Duration(rng.Int63n(int64(window))))
		amount := fmt.Sprintf("%d.%02d", rng.Intn(60)+5, rng.Intn(100))

		events = append(events, domain.OrderCreated{
			OrderID:      orderID,
			Timestamp:    createdAt,
			RestaurantID: restaurant.ID,
			UserID:       newID(rng),
			TotalAmount:  amount,
		})

		// Roughly a tenth of orders are cancelled before pickup, the rest
		// go out for delivery and most of those complete.
		if rng.Intn(10) == 0 {
			events = append(events, domain.OrderCancelled{
				OrderID:   orderID,
				Timestamp: createdAt.Add(time.Duration(rng.Intn(15)+1) * time.Minute),
			})
			continue
		}

		pickedUpAt := createdAt.Add(time.Duration(rng.Intn(30)+10) * time.Minute)
		driver := rng.Intn(len(driverNames))
		events = append(events, domain.OrderEnRoute{
			OrderID:    orderID,
			Timestamp:  pickedUpAt,
			DriverID:   fmt.Sprintf("driver-%d", driver+1),
			DriverName: driverNames[driver],
		})

		settledAt := pickedUpAt.Add(time.Duration(rng.Intn(40)+5) * time.Minute)
		if rng.Intn(20) == 0 {
			events = append(events, domain.OrderCancelled{OrderID: orderID, Timestamp: settledAt})
		} else if rng.Intn(10) != 0 {
			events = append(events, domain.OrderDelivered{OrderID: orderID, Timestamp: settledAt})
		}
		// Otherwise the order stays in progress at the end of the feed.
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt().Before(events[j].OccurredAt())
	})

	return restaurants, events
}

// WriteFixtures writes the generated restaurant list and event log as the
// JSON files the feed server loads at startup.
func WriteFixtures(restaurants []domain.Restaurant, events []domain.OrderEvent, restaurantsPath, eventsPath string) error {
	restaurantData, err := json.MarshalIndent(restaurants, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal restaurant list")
	}
	if err := os.WriteFile(restaurantsPath, restaurantData, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", restaurantsPath)
	}

	wire := make([]json.RawMessage, 0, len(events))
	for _, event := range events {
		msg, err := domain.MarshalEvent(event)
		if err != nil {
			return errors.Wrap(err, "failed to marshal event")
		}
		wire = append(wire, msg)
	}
	eventData, err := json.MarshalIndent(wire, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal event log")
	}
	if err := os.WriteFile(eventsPath, eventData, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", eventsPath)
	}

	return nil
}
