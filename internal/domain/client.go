package domain

import "time"

// Client is a delivery destination owned by the persistence collaborator.
// Coordinates are optional: clients registered without them are excluded from
// routing and visit detection until geocoded.
type Client struct {
	ID        int
	Name      string
	Phone     string
	Address   string
	Latitude  *float64
	Longitude *float64
	Notes     string
	CreatedAt time.Time
}

// Coordinate returns the client position and whether both components are set.
func (c Client) Coordinate() (Coordinate, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: *c.Latitude, Lon: *c.Longitude}, true
}
