package domain

import "github.com/shopspring/decimal"

// Restaurant is read-only reference data used to resolve restaurant IDs for
// display.
type Restaurant struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// UnknownRestaurantName is the display placeholder for restaurant IDs with
// no matching reference entry.
const UnknownRestaurantName = "Unknown"

// AmountOrZero parses a string-encoded monetary amount. Unparsable or empty
// values contribute zero, never an error.
func AmountOrZero(amount string) decimal.Decimal {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}
