package views

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
	"github.com/elenichas/orders-dashboard-app/internal/ingest"
	"github.com/elenichas/orders-dashboard-app/internal/refdata"
)

// RestaurantStats summarises order outcomes and money for one restaurant.
// Revenue counts only orders whose terminal event is a delivery; LostRevenue
// only those whose terminal event is a cancellation. Both sums resolve the
// amount from the order's own creation event.
type RestaurantStats struct {
	RestaurantID string
	Name         string
	Rating       float64
	Created      int
	Delivered    int
	Cancelled    int
	Revenue      decimal.Decimal
	LostRevenue  decimal.Decimal
}

// RestaurantStatsView computes per-restaurant stats over a snapshot. The
// result covers the union of the reference list and every restaurant seen in
// a creation event: reference restaurants with no observed orders appear
// with all-zero stats, and restaurant IDs missing from the reference list
// appear under the "Unknown" placeholder name. Reference-list order is
// preserved, with event-only restaurants appended sorted by ID.
func RestaurantStatsView(snapshot ingest.Snapshot, directory *refdata.Directory) []RestaurantStats {
	stats := make(map[string]*RestaurantStats)

	ensure := func(restaurantID string) *RestaurantStats {
		if s, ok := stats[restaurantID]; ok {
			return s
		}
		s := &RestaurantStats{
			RestaurantID: restaurantID,
			Name:         directory.NameFor(restaurantID),
			Revenue:      decimal.Zero,
			LostRevenue:  decimal.Zero,
		}
		if r, ok := directory.Lookup(restaurantID); ok {
			s.Rating = r.Rating
		}
		stats[restaurantID] = s
		return s
	}

	// The reference list drives the base set, so zero-order restaurants
	// still show up.
	for _, r := range directory.All() {
		ensure(r.ID)
	}

	for _, events := range snapshot {
		creation, ok := creationOf(events)
		if !ok {
			continue
		}
		s := ensure(creation.RestaurantID)
		s.Created++

		last := events[len(events)-1]
		switch last.Kind() {
		case domain.KindOrderDelivered:
			s.Delivered++
			s.Revenue = s.Revenue.Add(domain.AmountOrZero(creation.TotalAmount))
		case domain.KindOrderCancelled:
			s.Cancelled++
			s.LostRevenue = s.LostRevenue.Add(domain.AmountOrZero(creation.TotalAmount))
		case domain.KindOrderCreated, domain.KindOrderEnRoute:
			// Still in progress: counted as created only.
		}
	}

	// Reference-list order first; snapshot iteration is unordered, so
	// event-only restaurants follow sorted by ID.
	ordered := make([]string, 0, len(stats))
	inReference := make(map[string]bool)
	for _, r := range directory.All() {
		if !inReference[r.ID] {
			inReference[r.ID] = true
			ordered = append(ordered, r.ID)
		}
	}
	var extras []string
	for id := range stats {
		if !inReference[id] {
			extras = append(extras, id)
		}
	}
	sort.Strings(extras)
	ordered = append(ordered, extras...)

	result := make([]RestaurantStats, 0, len(ordered))
	for _, id := range ordered {
		result = append(result, *stats[id])
	}
	return result
}

// creationOf finds the order's creation event within its own record.
func creationOf(events []domain.OrderEvent) (domain.OrderCreated, bool) {
	for _, event := range events {
		if created, ok := event.(domain.OrderCreated); ok {
			return created, true
		}
	}
	return domain.OrderCreated{}, false
}
