package repositories

import (
	"context"
	"database/sql"
	"time"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"

	"github.com/pkg/errors"
)

// SQLite-backed implementation of the ClientRepository port.
type SqliteClientRepository struct{ DB *sql.DB }

func NewSqliteClientRepository(db *sql.DB) *SqliteClientRepository {
	return &SqliteClientRepository{DB: db}
}

const clientColumns = `id, name, COALESCE(phone, ''), COALESCE(address, ''), latitude, longitude, COALESCE(notes, ''), COALESCE(created_at, '')`

func (s *SqliteClientRepository) ListClients(ctx context.Context) ([]domain.Client, error) {
	if s.DB == nil {
		return nil, errors.New("client repository: DB is nil")
	}

	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY name;`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "list clients: query clients table")
	}
	defer rows.Close()

	clients := make([]domain.Client, 0, 16)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list clients: scan row")
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list clients: row iteration")
	}

	return clients, nil
}

func (s *SqliteClientRepository) GetClient(ctx context.Context, id int) (domain.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?;`
	row := s.DB.QueryRowContext(ctx, query, id)

	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Client{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Client{}, errors.Wrapf(err, "get client %d", id)
	}
	return c, nil
}

func (s *SqliteClientRepository) CreateClient(ctx context.Context, c ports.NewClient) (domain.Client, error) {
	res, err := s.DB.ExecContext(ctx, `
	INSERT INTO clients (name, phone, address, latitude, longitude, notes)
	VALUES (?, ?, ?, ?, ?, ?);
	`, c.Name, c.Phone, c.Address, c.Latitude, c.Longitude, c.Notes)
	if err != nil {
		return domain.Client{}, errors.Wrap(err, "create client: insert")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Client{}, errors.Wrap(err, "create client: last insert id")
	}

	return s.GetClient(ctx, int(id))
}

func (s *SqliteClientRepository) UpdateClient(ctx context.Context, id int, c ports.NewClient) (domain.Client, error) {
	res, err := s.DB.ExecContext(ctx, `
	UPDATE clients
	SET name = ?, phone = ?, address = ?, latitude = ?, longitude = ?, notes = ?
	WHERE id = ?;
	`, c.Name, c.Phone, c.Address, c.Latitude, c.Longitude, c.Notes, id)
	if err != nil {
		return domain.Client{}, errors.Wrapf(err, "update client %d", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Client{}, errors.Wrapf(err, "update client %d: rows affected", id)
	}
	if affected == 0 {
		return domain.Client{}, domain.ErrNotFound
	}

	return s.GetClient(ctx, id)
}

func (s *SqliteClientRepository) DeleteClient(ctx context.Context, id int) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM clients WHERE id = ?;`, id)
	if err != nil {
		return errors.Wrapf(err, "delete client %d", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "delete client %d: rows affected", id)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (domain.Client, error) {
	var (
		c         domain.Client
		lat, lon  sql.NullFloat64
		createdAt string
	)

	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &lat, &lon, &c.Notes, &createdAt)
	if err != nil {
		return domain.Client{}, err
	}

	if lat.Valid {
		c.Latitude = &lat.Float64
	}
	if lon.Valid {
		c.Longitude = &lon.Float64
	}
	if ts, ok := parseDBTime(createdAt); ok {
		c.CreatedAt = ts
	}

	return c, nil
}

// parseDBTime accepts both RFC 3339 timestamps written by this service and
// the `datetime('now')` format SQLite defaults produce.
func parseDBTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, true
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return ts.UTC(), true
	}
	return time.Time{}, false
}
