package dto

type RouteRequest struct {
	Date      string   `json:"date"`
	ClientIDs []int    `json:"client_ids"`
	StartLat  *float64 `json:"start_lat"`
	StartLon  *float64 `json:"start_lon"`
}

type RouteStopResponse struct {
	Order         int      `json:"order"`
	ClientID      int      `json:"client_id"`
	ClientName    string   `json:"client_name"`
	Address       string   `json:"address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	DeliveryID    *int     `json:"delivery_id"`
	Status        string   `json:"status"`
	ScheduledDate string   `json:"scheduled_date"`
	Notes         string   `json:"notes"`
}

type RouteLegResponse struct {
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
	StartAddress    string `json:"start_address"`
	EndAddress      string `json:"end_address"`
}

type RouteMetadataResponse struct {
	Polyline string             `json:"polyline"`
	Legs     []RouteLegResponse `json:"legs"`
	Warnings []string           `json:"warnings"`
	Summary  string             `json:"summary"`
}

type RouteResponse struct {
	StartLat float64                `json:"start_lat"`
	StartLon float64                `json:"start_lon"`
	Stops    []RouteStopResponse    `json:"stops"`
	Skipped  []RouteStopResponse    `json:"skipped"`
	Metadata *RouteMetadataResponse `json:"metadata,omitempty"`
}
