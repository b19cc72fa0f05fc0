// Package refdata fetches and resolves the restaurant reference data. The
// list is retrieved once at observer startup and is read-only afterwards; a
// fetch failure means the collaborator is down.
package refdata

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/elenichas/orders-dashboard-app/internal/domain"
)

// Client fetches the restaurant list from the reference-data endpoint.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient creates a reference-data client for the given endpoint URL.
func NewClient(url string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		url:        url,
	}
}

// FetchRestaurants retrieves the full restaurant list. There is no
// pagination or filtering; anything but a complete list is an error.
func (c *Client) FetchRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build restaurants request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "reference-data endpoint unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("reference-data endpoint returned status %d", resp.StatusCode)
	}

	var restaurants []domain.Restaurant
	if err := json.NewDecoder(resp.Body).Decode(&restaurants); err != nil {
		return nil, errors.Wrap(err, "failed to decode restaurant list")
	}

	return restaurants, nil
}

// Directory resolves restaurant IDs for display. Absence of a match resolves
// to the "Unknown" placeholder, never an error.
type Directory struct {
	byID map[string]domain.Restaurant
	list []domain.Restaurant
}

// NewDirectory builds a lookup directory over a restaurant list.
func NewDirectory(restaurants []domain.Restaurant) *Directory {
	byID := make(map[string]domain.Restaurant, len(restaurants))
	for _, r := range restaurants {
		byID[r.ID] = r
	}
	return &Directory{byID: byID, list: restaurants}
}

// NameFor returns the display name for a restaurant ID.
func (d *Directory) NameFor(id string) string {
	if r, ok := d.byID[id]; ok {
		return r.Name
	}
	return domain.UnknownRestaurantName
}

// Lookup returns the restaurant for an ID if it exists.
func (d *Directory) Lookup(id string) (domain.Restaurant, bool) {
	r, ok := d.byID[id]
	return r, ok
}

// All returns the full reference list in its original order. Callers must
// treat the returned slice as read-only.
func (d *Directory) All() []domain.Restaurant {
	return d.list
}
