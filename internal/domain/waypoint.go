package domain

// Waypoint is a stop candidate offered to the route orderer: a client plus the
// delivery context it was selected for. Latitude/Longitude are optional; a
// waypoint without both can never be ordered and is reported as skipped.
type Waypoint struct {
	ClientID      int
	ClientName    string
	Address       string
	Latitude      *float64
	Longitude     *float64
	DeliveryID    *int
	Status        string
	ScheduledDate string
	Notes         string
}

// Coordinate returns the waypoint position and whether both components are set.
func (w Waypoint) Coordinate() (Coordinate, bool) {
	if w.Latitude == nil || w.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *w.Latitude, Lon: *w.Longitude}, true
}
