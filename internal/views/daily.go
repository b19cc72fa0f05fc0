package views

import (
	"sort"
	"time"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
	"github.com/elenichas/orders-dashboard-app/internal/ingest"
)

// dayKeyFormat keys day buckets by formatted calendar date.
const dayKeyFormat = "2006-01-02"

// DayBucket holds lifecycle counts for one calendar day.
type DayBucket struct {
	// Day is the formatted date key in the process-local zone.
	Day             string
	Date            time.Time
	CreatedOrders   int
	DeliveredOrders int
	CancelledOrders int
}

// DayKey returns the bucket key for a timestamp, in the process-local zone.
func DayKey(ts time.Time) string {
	return ts.In(time.Local).Format(dayKeyFormat)
}

// DailyCounts groups every event across all orders by the calendar day of
// its timestamp and counts creations and terminal transitions per day.
// Buckets are returned in chronological order.
func DailyCounts(snapshot ingest.Snapshot) []DayBucket {
	buckets := make(map[string]*DayBucket)

	for _, events := range snapshot {
		for _, event := range events {
			key := DayKey(event.OccurredAt())
			bucket, ok := buckets[key]
			if !ok {
				local := event.OccurredAt().In(time.Local)
				bucket = &DayBucket{
					Day:  key,
					Date: time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local),
				}
				buckets[key] = bucket
			}

			switch event.Kind() {
			case domain.KindOrderCreated:
				bucket.CreatedOrders++
			case domain.KindOrderDelivered:
				bucket.DeliveredOrders++
			case domain.KindOrderCancelled:
				bucket.CancelledOrders++
			case domain.KindOrderEnRoute:
				// Not counted in any day bucket.
			}
		}
	}

	result := make([]DayBucket, 0, len(buckets))
	for _, bucket := range buckets {
		result = append(result, *bucket)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})
	return result
}
