package domain

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Kind identifies the type of an order lifecycle event.
type Kind string

// Order lifecycle event kinds, as they appear on the wire.
const (
	KindOrderCreated   Kind = "orderCreated"
	KindOrderEnRoute   Kind = "orderEnRoute"
	KindOrderDelivered Kind = "orderDelivered"
	KindOrderCancelled Kind = "orderCancelled"
)

// IsTerminal reports whether the kind ends an order's lifecycle.
func (k Kind) IsTerminal() bool {
	return k == KindOrderDelivered || k == KindOrderCancelled
}

// OrderEvent is one immutable event in an order's lifecycle. The union is
// sealed: the four event structs in this package are the only
// implementations.
type OrderEvent interface {
	// Kind returns the event kind.
	Kind() Kind
	// Order returns the ID of the order the event belongs to.
	Order() string
	// OccurredAt returns the UTC timestamp of the event.
	OccurredAt() time.Time

	isOrderEvent()
}

// OrderCreated records that an order has been placed.
type OrderCreated struct {
	OrderID      string
	Timestamp    time.Time
	RestaurantID string
	UserID       string
	// TotalAmount is the order total in pounds, encoded as a string.
	TotalAmount string
}

// OrderEnRoute records that an order has been handed off to a driver.
type OrderEnRoute struct {
	OrderID    string
	Timestamp  time.Time
	DriverID   string
	DriverName string
}

// OrderDelivered records that an order has been successfully delivered.
type OrderDelivered struct {
	OrderID   string
	Timestamp time.Time
}

// OrderCancelled records that an order has been cancelled by the customer.
type OrderCancelled struct {
	OrderID   string
	Timestamp time.Time
}

func (e OrderCreated) Kind() Kind   { return KindOrderCreated }
func (e OrderEnRoute) Kind() Kind   { return KindOrderEnRoute }
func (e OrderDelivered) Kind() Kind { return KindOrderDelivered }
func (e OrderCancelled) Kind() Kind { return KindOrderCancelled }

func (e OrderCreated) Order() string   { return e.OrderID }
func (e OrderEnRoute) Order() string   { return e.OrderID }
func (e OrderDelivered) Order() string { return e.OrderID }
func (e OrderCancelled) Order() string { return e.OrderID }

func (e OrderCreated) OccurredAt() time.Time   { return e.Timestamp }
func (e OrderEnRoute) OccurredAt() time.Time   { return e.Timestamp }
func (e OrderDelivered) OccurredAt() time.Time { return e.Timestamp }
func (e OrderCancelled) OccurredAt() time.Time { return e.Timestamp }

func (OrderCreated) isOrderEvent()   {}
func (OrderEnRoute) isOrderEvent()   {}
func (OrderDelivered) isOrderEvent() {}
func (OrderCancelled) isOrderEvent() {}

// envelope is the flat wire shape shared by all event kinds. Field names
// match the feed's JSON contract exactly.
type envelope struct {
	Kind         Kind      `json:"kind"`
	OrderID      string    `json:"orderId"`
	Timestamp    time.Time `json:"timestamp"`
	RestaurantID string    `json:"restaurantId,omitempty"`
	UserID       string    `json:"userId,omitempty"`
	TotalAmount  string    `json:"totalAmount,omitempty"`
	DriverID     string    `json:"driverId,omitempty"`
	DriverName   string    `json:"driverName,omitempty"`
}

// MarshalEvent serializes an event to its wire representation.
func MarshalEvent(event OrderEvent) ([]byte, error) {
	var env envelope
	switch e := event.(type) {
	case OrderCreated:
		env = envelope{
			Kind:         KindOrderCreated,
			OrderID:      e.OrderID,
			Timestamp:    e.Timestamp,
			RestaurantID: e.RestaurantID,
			UserID:       e.UserID,
			TotalAmount:  e.TotalAmount,
		}
	case OrderEnRoute:
		env = envelope{
			Kind:       KindOrderEnRoute,
			OrderID:    e.OrderID,
			Timestamp:  e.Timestamp,
			DriverID:   e.DriverID,
			DriverName: e.DriverName,
		}
	case OrderDelivered:
		env = envelope{Kind: KindOrderDelivered, OrderID: e.OrderID, Timestamp: e.Timestamp}
	case OrderCancelled:
		env = envelope{Kind: KindOrderCancelled, OrderID: e.OrderID, Timestamp: e.Timestamp}
	default:
		return nil, errors.Errorf("unsupported event type %T", event)
	}
	return json.Marshal(env)
}

// UnmarshalEvent parses an event from its wire representation. Events with
// an unknown kind or an empty order ID are rejected.
func UnmarshalEvent(data []byte) (OrderEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "failed to decode order event")
	}
	return env.toEvent()
}

func (env envelope) toEvent() (OrderEvent, error) {
	if env.OrderID == "" {
		return nil, errors.New("order event is missing orderId")
	}
	switch env.Kind {
	case KindOrderCreated:
		return OrderCreated{
			OrderID:      env.OrderID,
			Timestamp:    env.Timestamp,
			RestaurantID: env.RestaurantID,
			UserID:       env.UserID,
			TotalAmount:  env.TotalAmount,
		}, nil
	case KindOrderEnRoute:
		return OrderEnRoute{
			OrderID:    env.OrderID,
			Timestamp:  env.Timestamp,
			DriverID:   env.DriverID,
			DriverName: env.DriverName,
		}, nil
	case KindOrderDelivered:
		return OrderDelivered{OrderID: env.OrderID, Timestamp: env.Timestamp}, nil
	case KindOrderCancelled:
		return OrderCancelled{OrderID: env.OrderID, Timestamp: env.Timestamp}, nil
	default:
		return nil, errors.Errorf("unknown order event kind %q", env.Kind)
	}
}
