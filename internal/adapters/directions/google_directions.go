package directions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/platform/obs"
	"delivery-tracking-service/internal/ports"
)

// GoogleDirectionsOptimizer implements RouteOptimizer using the Google
// Directions API with optimize:true waypoints.
//
// The provider only knows wire details; recovery from its failures lives in
// the route orderer. Every call is bounded by the client timeout, so a dead
// provider costs at most ten seconds before the caller falls back.
type GoogleDirectionsOptimizer struct {
	session *http.Client
	apiKey  string
	baseURL string
	mode    string
}

func NewGoogleDirectionsOptimizer(apiKey string) (*GoogleDirectionsOptimizer, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("google directions api key is empty")
	}

	return &GoogleDirectionsOptimizer{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://maps.googleapis.com",
		mode:    "driving",
	}, nil
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		WaypointOrder    []int `json:"waypoint_order"`
		OverviewPolyline struct {
			Points string `json:"points"`
		} `json:"overview_polyline"`
		Legs []struct {
			Distance struct {
				Value int `json:"value"`
			} `json:"distance"`
			Duration struct {
				Value int `json:"value"`
			} `json:"duration"`
			StartAddress string `json:"start_address"`
			EndAddress   string `json:"end_address"`
		} `json:"legs"`
		Warnings []string `json:"warnings"`
		Summary  string   `json:"summary"`
	} `json:"routes"`
}

// OptimizeRoute asks the Directions API to reorder the intermediate waypoints
// of a trip from origin to the last coordinate in waypoints.
func (g *GoogleDirectionsOptimizer) OptimizeRoute(
	ctx context.Context,
	origin domain.Coordinate,
	waypoints []domain.Coordinate,
) (_ ports.OptimizedRoute, err error) {
	defer obs.Time(ctx, "directions.OptimizeRoute")(&err)

	if len(waypoints) == 0 {
		return ports.OptimizedRoute{}, errors.New("optimize route: waypoints must be non-empty")
	}

	endpoint := g.baseURL + "/maps/api/directions/json"

	destination := waypoints[len(waypoints)-1]

	q := url.Values{}
	q.Set("origin", formatCoordinate(origin))
	q.Set("destination", formatCoordinate(destination))
	q.Set("key", g.apiKey)
	q.Set("mode", g.mode)
	if len(waypoints) > 1 {
		parts := make([]string, 0, len(waypoints)-1)
		for _, w := range waypoints[:len(waypoints)-1] {
			parts = append(parts, formatCoordinate(w))
		}
		q.Set("waypoints", "optimize:true|"+strings.Join(parts, "|"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return ports.OptimizedRoute{}, fmt.Errorf("optimize route: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		return ports.OptimizedRoute{}, fmt.Errorf("optimize route: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.OptimizedRoute{}, fmt.Errorf("optimize route: unexpected status %d", resp.StatusCode)
	}

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.OptimizedRoute{}, fmt.Errorf("optimize route: decode response: %w", err)
	}

	if decoded.Status != "OK" {
		return ports.OptimizedRoute{}, fmt.Errorf("optimize route: provider status %q", decoded.Status)
	}
	if len(decoded.Routes) == 0 {
		return ports.OptimizedRoute{}, errors.New("optimize route: empty route list")
	}

	route := decoded.Routes[0]

	legs := make([]domain.RouteLeg, 0, len(route.Legs))
	for _, leg := range route.Legs {
		legs = append(legs, domain.RouteLeg{
			DistanceMeters:  leg.Distance.Value,
			DurationSeconds: leg.Duration.Value,
			StartAddress:    leg.StartAddress,
			EndAddress:      leg.EndAddress,
		})
	}

	return ports.OptimizedRoute{
		WaypointOrder: route.WaypointOrder,
		Polyline:      route.OverviewPolyline.Points,
		Legs:          legs,
		Warnings:      route.Warnings,
		Summary:       route.Summary,
	}, nil
}

func formatCoordinate(c domain.Coordinate) string {
	return fmt.Sprintf("%f,%f", c.Lat, c.Lon)
}
