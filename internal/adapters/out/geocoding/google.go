// Package geocoding resolves free-text addresses with the Google Maps
// Geocoding API.
package geocoding

import (
	"context"
	"fmt"
	"time"

	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/core/ports"
	"kargo/internal/pkg/errs"

	"googlemaps.github.io/maps"
)

const DefaultRegion = "tr"

type GoogleGeocoder struct {
	client  *maps.Client
	region  string
	timeout time.Duration
}

var _ ports.Geocoder = (*GoogleGeocoder)(nil)

// NewGoogleGeocoder builds a geocoder for apiKey. Extra client options, such
// as maps.WithBaseURL, are passed through.
func NewGoogleGeocoder(apiKey string, timeout time.Duration, opts ...maps.ClientOption) (*GoogleGeocoder, error) {
	if apiKey == "" {
		return nil, errs.NewValueIsRequiredError("apiKey")
	}

	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}

	return &GoogleGeocoder{client: client, region: DefaultRegion, timeout: timeout}, nil
}

// Geocode returns the first match. An address with no match is ObjectNotFound.
func (g *GoogleGeocoder) Geocode(ctx context.Context, address string) (kernel.Location, error) {
	if address == "" {
		return kernel.Location{}, errs.NewValueIsRequiredError("address")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: address,
		Region:  g.region,
	})
	if err != nil {
		return kernel.Location{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return kernel.Location{}, errs.NewObjectNotFoundError("address", address)
	}

	loc := results[0].Geometry.Location
	return kernel.NewLocation(loc.Lat, loc.Lng)
}
