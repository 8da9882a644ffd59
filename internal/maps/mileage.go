// README: Lane mileage estimates from the Google Directions API.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

const metersPerMile = 1609.344

var (
	ErrNoRoute     = errors.New("no route found")
	ErrBadLane     = errors.New("origin and destination are required")
	ErrUnavailable = errors.New("mileage service not configured")
)

type directionsClient interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// MileageService estimates driving miles between two lane points.
type MileageService struct {
	client directionsClient
}

// NewMileageService creates a MileageService with the given API key.
func NewMileageService(apiKey string) (*MileageService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &MileageService{client: client}, nil
}

// LoadedMiles returns the driving distance of the first route, in miles.
func (s *MileageService) LoadedMiles(ctx context.Context, origin, destination string) (float64, error) {
	if s == nil || s.client == nil {
		return 0, ErrUnavailable
	}
	origin, destination = strings.TrimSpace(origin), strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return 0, ErrBadLane
	}

	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Units:       maps.UnitsImperial,
		Region:      "us",
	}
	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, ErrNoRoute
	}

	meters := 0
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	if meters <= 0 {
		return 0, ErrNoRoute
	}
	return float64(meters) / metersPerMile, nil
}
