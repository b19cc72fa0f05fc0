package views

import (
	"sort"
	"strings"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
)

// The helpers below are pure functions over materialized view snapshots:
// they copy, never mutate their input.

// FilterCardsByRestaurant keeps cards for the named restaurant. An empty
// name keeps everything.
func FilterCardsByRestaurant(cards []OrderCard, restaurantName string) []OrderCard {
	if restaurantName == "" {
		return append([]OrderCard(nil), cards...)
	}
	filtered := make([]OrderCard, 0, len(cards))
	for _, card := range cards {
		if card.RestaurantName == restaurantName {
			filtered = append(filtered, card)
		}
	}
	return filtered
}

// FilterCardsByDriver keeps cards whose driver name contains the given
// fragment, case-insensitively. An empty fragment keeps everything.
func FilterCardsByDriver(cards []OrderCard, driverFragment string) []OrderCard {
	if driverFragment == "" {
		return append([]OrderCard(nil), cards...)
	}
	fragment := strings.ToLower(driverFragment)
	filtered := make([]OrderCard, 0, len(cards))
	for _, card := range cards {
		if strings.Contains(strings.ToLower(card.DriverName), fragment) {
			filtered = append(filtered, card)
		}
	}
	return filtered
}

// FilterCardsByDay keeps cards created on the given day key (see DayKey).
// An empty key keeps everything.
func FilterCardsByDay(cards []OrderCard, dayKey string) []OrderCard {
	if dayKey == "" {
		return append([]OrderCard(nil), cards...)
	}
	filtered := make([]OrderCard, 0, len(cards))
	for _, card := range cards {
		if !card.CreatedTime.IsZero() && DayKey(card.CreatedTime) == dayKey {
			filtered = append(filtered, card)
		}
	}
	return filtered
}

// FilterCardsByKind keeps cards whose current kind (the last event in the
// sequence) matches.
func FilterCardsByKind(cards []OrderCard, kind domain.Kind) []OrderCard {
	filtered := make([]OrderCard, 0, len(cards))
	for _, card := range cards {
		if card.CurrentKind == kind {
			filtered = append(filtered, card)
		}
	}
	return filtered
}

// SortStatsByRevenue returns the stats ordered by revenue, highest first.
func SortStatsByRevenue(stats []RestaurantStats) []RestaurantStats {
	sorted := append([]RestaurantStats(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Revenue.GreaterThan(sorted[j].Revenue)
	})
	return sorted
}

// SortStatsByRating returns the stats ordered by rating, highest first.
func SortStatsByRating(stats []RestaurantStats) []RestaurantStats {
	sorted := append([]RestaurantStats(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rating > sorted[j].Rating
	})
	return sorted
}

// SortBucketsByDay returns the day buckets in chronological order.
func SortBucketsByDay(buckets []DayBucket) []DayBucket {
	sorted := append([]DayBucket(nil), buckets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}
