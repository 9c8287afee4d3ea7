package repositories

import (
	"database/sql"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Initialize the database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "init schema: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	createClientsQuery := `
	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		phone TEXT,
		address TEXT,
		latitude REAL,
		longitude REAL,
		notes TEXT,
		created_at TEXT DEFAULT (datetime('now'))
	);
	`

	createDeliveriesQuery := `
	CREATE TABLE IF NOT EXISTS deliveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		client_id INTEGER NOT NULL,
		scheduled_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		quantity INTEGER,
		notes TEXT,
		arrived_at TEXT,
		stay_seconds INTEGER,
		completed_at TEXT,
		FOREIGN KEY (client_id) REFERENCES clients(id)
	);
	`

	createPositionsQuery := `
	CREATE TABLE IF NOT EXISTS driver_positions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL
	);
	`

	createStopEventsQuery := `
	CREATE TABLE IF NOT EXISTS stop_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		position_id INTEGER NOT NULL,
		client_id INTEGER NOT NULL,
		distance_km REAL NOT NULL,
		triggered_at TEXT NOT NULL,
		acknowledged_at TEXT,
		delivered INTEGER NOT NULL DEFAULT 0,
		quantity INTEGER,
		notes TEXT,
		FOREIGN KEY (position_id) REFERENCES driver_positions(id),
		FOREIGN KEY (client_id) REFERENCES clients(id)
	);
	`

	createDirectionsCacheQuery := `
	CREATE TABLE IF NOT EXISTS directions_cache (
		cache_key TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		cached_at TEXT NOT NULL
	);
	`

	createDeliveryIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_deliveries_client_date
	ON deliveries(client_id, scheduled_date);
	`

	createStopEventIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_stop_events_client_triggered
	ON stop_events(client_id, triggered_at);
	`

	statements := []string{
		createClientsQuery,
		createDeliveriesQuery,
		createPositionsQuery,
		createStopEventsQuery,
		createDirectionsCacheQuery,
		createDeliveryIndexQuery,
		createStopEventIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return errors.Wrapf(err, "init schema: exec statement #%d", i+1)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "init schema: commit tx")
	}

	return nil
}

type ClientSeed struct {
	Name      string   `json:"name"`
	Phone     string   `json:"phone"`
	Address   string   `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Notes     string   `json:"notes"`
}

// Populate the clients table from a JSON file. Existing clients (matched by
// name) are left untouched so reseeding a live database is safe.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return errors.Wrapf(err, "seed clients: read %q", jsonPath)
	}

	var data []ClientSeed
	if err := json.Unmarshal(raw, &data); err != nil {
		return errors.Wrap(err, "seed clients: parse json")
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "seed clients: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	for i, c := range data {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return errors.Errorf("seed clients: item at index %d: name cannot be empty", i+1)
		}

		var exists int
		err := tx.QueryRow(`SELECT COUNT(1) FROM clients WHERE name = ?;`, name).Scan(&exists)
		if err != nil {
			return errors.Wrapf(err, "seed clients: check %q", name)
		}
		if exists > 0 {
			continue
		}

		_, err = tx.Exec(`
		INSERT INTO clients (name, phone, address, latitude, longitude, notes)
		VALUES (?, ?, ?, ?, ?, ?);
		`, name, c.Phone, c.Address, c.Latitude, c.Longitude, c.Notes)
		if err != nil {
			return errors.Wrapf(err, "seed clients: insert %q", name)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "seed clients: commit tx")
	}

	return nil
}
