// README: Google Maps Directions client used to turn an origin/destination pair into a driving distance.
package maps

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

var ErrNoRoute = errors.New("no route found")

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
	region string
}

// NewRouteService creates a new RouteService with the given API Key.
// region biases geocoding of free-form addresses (e.g. "in").
func NewRouteService(apiKey, region string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client, region: region}, nil
}

// DrivingDistanceKm returns the length of the first driving route between
// origin and destination, in kilometres.
func (s *RouteService) DrivingDistanceKm(ctx context.Context, origin, destination string) (float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Region:      s.region,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	return firstLegKm(routes)
}

func firstLegKm(routes []maps.Route) (float64, error) {
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
	return float64(meters) / 1000, nil
}
