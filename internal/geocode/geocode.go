// Package geocode wraps the Google Geocoding API for subjects that arrive
// without coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/yourorg/comps-api/internal/property"
)

type Client struct {
	key     string
	baseURL string
	http    *retryablehttp.Client
}

func NewClient(apiKey string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 2
	rc.Logger = nil
	rc.HTTPClient.Timeout = 6 * time.Second

	return &Client{
		key:     apiKey,
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
		http:    rc,
	}
}

// Geocode resolves a full street address. Returns (nil, nil) when Google
// has no result for it.
func (c *Client) Geocode(ctx context.Context, address, city, state, zip string) (*property.Coordinates, error) {
	q := url.Values{}
	q.Set("address", fmt.Sprintf("%s, %s, %s %s", address, city, state, zip))
	q.Set("key", c.key)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("geocode error %d", resp.StatusCode)
	}

	var body struct {
		Status  string `json:"status"`
		Results []struct {
			Geometry struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return nil, nil
	}
	loc := body.Results[0].Geometry.Location
	return &property.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, nil
}
