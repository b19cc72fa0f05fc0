// Package views projects the ingestion engine's state into the derived,
// stateless-recompute views the display layer reads: per-order status cards,
// per-day counts and per-restaurant stats. Every view is recomputed from a
// snapshot on each read; none of them patches state incrementally.
package views

import (
	"sort"
	"time"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
	"github.com/elenichas/orders-dashboard-app/internal/ingest"
	"github.com/elenichas/orders-dashboard-app/internal/refdata"
)

// Display statuses for order cards.
const (
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
	StatusInProgress = "In Progress"
	StatusPending    = "Pending"
)

// OrderCard is the current-state card for one order, reduced from its full
// event history.
type OrderCard struct {
	OrderID        string
	CreatedTime    time.Time
	RestaurantID   string
	RestaurantName string
	DriverName     string
	// DeliveryTime is set by an en-route event and overwritten by a later
	// terminal event's timestamp.
	DeliveryTime time.Time
	// Status is set only by a terminal event; empty means in progress.
	Status string
	// CurrentKind is the kind of the last event in the sequence, used for
	// filtering and colouring. It is not derived from Status.
	CurrentKind domain.Kind
}

// DisplayStatus returns the card status with the in-progress placeholder
// applied.
func (c OrderCard) DisplayStatus() string {
	if c.Status == "" {
		return StatusInProgress
	}
	return c.Status
}

// DisplayDeliveryTime formats the delivery time, or the pending placeholder
// if the order has not gone out yet.
func (c OrderCard) DisplayDeliveryTime() string {
	if c.DeliveryTime.IsZero() {
		return StatusPending
	}
	return c.DeliveryTime.Format(time.RFC3339)
}

// BuildOrderCard reduces one order's event sequence left to right into its
// status card.
func BuildOrderCard(orderID string, events []domain.OrderEvent, directory *refdata.Directory) OrderCard {
	card := OrderCard{
		OrderID:        orderID,
		RestaurantName: domain.UnknownRestaurantName,
	}

	for _, event := range events {
		card.CurrentKind = event.Kind()
		switch e := event.(type) {
		case domain.OrderCreated:
			card.CreatedTime = e.Timestamp
			card.RestaurantID = e.RestaurantID
			card.RestaurantName = directory.NameFor(e.RestaurantID)
		case domain.OrderEnRoute:
			card.DriverName = e.DriverName
			card.DeliveryTime = e.Timestamp
		case domain.OrderDelivered:
			card.Status = StatusDelivered
			card.DeliveryTime = e.Timestamp
		case domain.OrderCancelled:
			card.Status = StatusCancelled
			card.DeliveryTime = e.Timestamp
		}
	}

	return card
}

// OrderCards builds the cards for every order in the snapshot, newest
// created first.
func OrderCards(snapshot ingest.Snapshot, directory *refdata.Directory) []OrderCard {
	cards := make([]OrderCard, 0, len(snapshot))
	for orderID, events := range snapshot {
		cards = append(cards, BuildOrderCard(orderID, events, directory))
	}

	sort.Slice(cards, func(i, j int) bool {
		if !cards[i].CreatedTime.Equal(cards[j].CreatedTime) {
			return cards[i].CreatedTime.After(cards[j].CreatedTime)
		}
		return cards[i].OrderID < cards[j].OrderID
	})
	return cards
}
