package repositories

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"

	"github.com/pkg/errors"
)

// SQLite-backed implementation of the DeliveryRepository port.
type SqliteDeliveryRepository struct{ DB *sql.DB }

func NewSqliteDeliveryRepository(db *sql.DB) *SqliteDeliveryRepository {
	return &SqliteDeliveryRepository{DB: db}
}

const deliveryColumns = `
	deliveries.id, deliveries.client_id, clients.name,
	deliveries.scheduled_date, deliveries.status,
	deliveries.quantity, deliveries.notes,
	deliveries.arrived_at, deliveries.stay_seconds, deliveries.completed_at`

const deliveryJoin = `FROM deliveries JOIN clients ON clients.id = deliveries.client_id`

func (s *SqliteDeliveryRepository) ListDeliveries(ctx context.Context, date string) ([]domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` ` + deliveryJoin
	args := []any{}
	if date != "" {
		query += ` WHERE deliveries.scheduled_date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY deliveries.scheduled_date DESC, deliveries.id DESC;`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list deliveries: query")
	}
	defer rows.Close()

	deliveries := make([]domain.Delivery, 0, 32)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list deliveries: scan row")
		}
		deliveries = append(deliveries, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list deliveries: row iteration")
	}

	return deliveries, nil
}

func (s *SqliteDeliveryRepository) GetDelivery(ctx context.Context, id int) (domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` ` + deliveryJoin + ` WHERE deliveries.id = ?;`
	d, err := scanDelivery(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Delivery{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Delivery{}, errors.Wrapf(err, "get delivery %d", id)
	}
	return d, nil
}

func (s *SqliteDeliveryRepository) CreateDelivery(ctx context.Context, d ports.NewDelivery) (domain.Delivery, error) {
	res, err := s.DB.ExecContext(ctx, `
	INSERT INTO deliveries (client_id, scheduled_date, quantity, notes)
	VALUES (?, ?, ?, ?);
	`, d.ClientID, d.ScheduledDate, d.Quantity, d.Notes)
	if err != nil {
		return domain.Delivery{}, errors.Wrap(err, "create delivery: insert")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Delivery{}, errors.Wrap(err, "create delivery: last insert id")
	}

	return s.GetDelivery(ctx, int(id))
}

// CompleteDelivery keeps existing quantity/notes when the arguments are nil
// (COALESCE semantics).
func (s *SqliteDeliveryRepository) CompleteDelivery(ctx context.Context, id int, quantity *int, notes *string) (domain.Delivery, error) {
	res, err := s.DB.ExecContext(ctx, `
	UPDATE deliveries
	SET status = 'completed',
		quantity = COALESCE(?, quantity),
		notes = COALESCE(?, notes),
		completed_at = ?
	WHERE id = ?;
	`, quantity, notes, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return domain.Delivery{}, errors.Wrapf(err, "complete delivery %d", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Delivery{}, errors.Wrapf(err, "complete delivery %d: rows affected", id)
	}
	if affected == 0 {
		return domain.Delivery{}, domain.ErrNotFound
	}

	return s.GetDelivery(ctx, id)
}

func (s *SqliteDeliveryRepository) FindOpenDelivery(ctx context.Context, clientID int, date string) (domain.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` ` + deliveryJoin + `
	WHERE deliveries.client_id = ?
		AND deliveries.scheduled_date = ?
		AND deliveries.status != 'completed'
	ORDER BY deliveries.id
	LIMIT 1;`

	d, err := scanDelivery(s.DB.QueryRowContext(ctx, query, clientID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Delivery{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Delivery{}, errors.Wrapf(err, "find open delivery for client %d", clientID)
	}
	return d, nil
}

func (s *SqliteDeliveryRepository) CreateCompleted(ctx context.Context, clientID int, date string, quantity *int, notes *string) (domain.Delivery, error) {
	res, err := s.DB.ExecContext(ctx, `
	INSERT INTO deliveries (client_id, scheduled_date, status, quantity, notes, completed_at)
	VALUES (?, ?, 'completed', ?, ?, ?);
	`, clientID, date, quantity, notes, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return domain.Delivery{}, errors.Wrap(err, "create completed delivery: insert")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Delivery{}, errors.Wrap(err, "create completed delivery: last insert id")
	}

	return s.GetDelivery(ctx, int(id))
}

// MarkArrived only transitions deliveries that are still pending.
func (s *SqliteDeliveryRepository) MarkArrived(ctx context.Context, id int, arrivedAt time.Time, staySeconds int) error {
	_, err := s.DB.ExecContext(ctx, `
	UPDATE deliveries
	SET status = 'arrived', arrived_at = ?, stay_seconds = ?
	WHERE id = ? AND status = 'pending';
	`, arrivedAt.UTC().Format(time.RFC3339), staySeconds, id)
	if err != nil {
		return errors.Wrapf(err, "mark delivery %d arrived", id)
	}
	return nil
}

// ListRouteCandidates builds the waypoint set for route generation.
//
// Without explicit client ids: every client with a not-completed delivery
// (optionally restricted to the date), in schedule order. With explicit ids:
// the requested clients in name order, enriched with their open delivery when
// one exists.
func (s *SqliteDeliveryRepository) ListRouteCandidates(ctx context.Context, date string, clientIDs []int) ([]domain.Waypoint, error) {
	if len(clientIDs) == 0 {
		return s.candidatesFromOpenDeliveries(ctx, date)
	}
	return s.candidatesFromClientIDs(ctx, date, clientIDs)
}

func (s *SqliteDeliveryRepository) candidatesFromOpenDeliveries(ctx context.Context, date string) ([]domain.Waypoint, error) {
	query := `
	SELECT clients.id, clients.name, COALESCE(clients.address, ''),
		clients.latitude, clients.longitude, COALESCE(clients.notes, ''),
		deliveries.id, deliveries.status, deliveries.scheduled_date
	FROM deliveries
	JOIN clients ON deliveries.client_id = clients.id
	WHERE deliveries.status != 'completed'`
	args := []any{}
	if date != "" {
		query += ` AND deliveries.scheduled_date = ?`
		args = append(args, date)
	}
	query += ` ORDER BY deliveries.scheduled_date ASC, deliveries.id ASC;`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "route candidates: query open deliveries")
	}
	defer rows.Close()

	waypoints := make([]domain.Waypoint, 0, 16)
	for rows.Next() {
		var (
			w          domain.Waypoint
			lat, lon   sql.NullFloat64
			deliveryID int
		)
		err := rows.Scan(&w.ClientID, &w.ClientName, &w.Address, &lat, &lon, &w.Notes,
			&deliveryID, &w.Status, &w.ScheduledDate)
		if err != nil {
			return nil, errors.Wrap(err, "route candidates: scan row")
		}
		if lat.Valid {
			w.Latitude = &lat.Float64
		}
		if lon.Valid {
			w.Longitude = &lon.Float64
		}
		w.DeliveryID = &deliveryID
		waypoints = append(waypoints, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "route candidates: row iteration")
	}

	return waypoints, nil
}

func (s *SqliteDeliveryRepository) candidatesFromClientIDs(ctx context.Context, date string, clientIDs []int) ([]domain.Waypoint, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(clientIDs)), ",")
	args := make([]any, 0, len(clientIDs)+1)
	for _, id := range clientIDs {
		args = append(args, id)
	}

	query := `
	SELECT clients.id, clients.name, COALESCE(clients.address, ''),
		clients.latitude, clients.longitude, COALESCE(clients.notes, ''),
		deliveries.id, deliveries.status, deliveries.scheduled_date
	FROM clients
	LEFT JOIN deliveries ON deliveries.client_id = clients.id
		AND deliveries.status != 'completed'`
	if date != "" {
		query += ` AND deliveries.scheduled_date = ?`
		args = append(args, date)
	}
	query += ` WHERE clients.id IN (` + placeholders + `)
	GROUP BY clients.id
	ORDER BY clients.name;`

	// Client-id args come after the optional date arg in the LEFT JOIN.
	joinArgs := args[len(clientIDs):]
	idArgs := args[:len(clientIDs)]
	ordered := append(append([]any{}, joinArgs...), idArgs...)

	rows, err := s.DB.QueryContext(ctx, query, ordered...)
	if err != nil {
		return nil, errors.Wrap(err, "route candidates: query clients")
	}
	defer rows.Close()

	waypoints := make([]domain.Waypoint, 0, len(clientIDs))
	for rows.Next() {
		var (
			w          domain.Waypoint
			lat, lon   sql.NullFloat64
			deliveryID sql.NullInt64
			status     sql.NullString
			scheduled  sql.NullString
		)
		err := rows.Scan(&w.ClientID, &w.ClientName, &w.Address, &lat, &lon, &w.Notes,
			&deliveryID, &status, &scheduled)
		if err != nil {
			return nil, errors.Wrap(err, "route candidates: scan row")
		}
		if lat.Valid {
			w.Latitude = &lat.Float64
		}
		if lon.Valid {
			w.Longitude = &lon.Float64
		}
		if deliveryID.Valid {
			id := int(deliveryID.Int64)
			w.DeliveryID = &id
			w.Status = status.String
			w.ScheduledDate = scheduled.String
		} else {
			w.Status = domain.DeliveryPending
			w.ScheduledDate = date
		}
		waypoints = append(waypoints, w)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "route candidates: row iteration")
	}

	return waypoints, nil
}

func (s *SqliteDeliveryRepository) ListVisitTargets(ctx context.Context, date string) ([]domain.VisitTarget, error) {
	query := `
	SELECT deliveries.id, clients.id, clients.latitude, clients.longitude
	FROM deliveries
	JOIN clients ON deliveries.client_id = clients.id
	WHERE deliveries.status != 'completed' AND deliveries.scheduled_date = ?;`

	rows, err := s.DB.QueryContext(ctx, query, date)
	if err != nil {
		return nil, errors.Wrap(err, "visit targets: query")
	}
	defer rows.Close()

	targets := make([]domain.VisitTarget, 0, 16)
	for rows.Next() {
		var (
			t        domain.VisitTarget
			lat, lon sql.NullFloat64
		)
		if err := rows.Scan(&t.DeliveryID, &t.ClientID, &lat, &lon); err != nil {
			return nil, errors.Wrap(err, "visit targets: scan row")
		}
		if lat.Valid {
			t.Latitude = &lat.Float64
		}
		if lon.Valid {
			t.Longitude = &lon.Float64
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "visit targets: row iteration")
	}

	return targets, nil
}

func scanDelivery(row rowScanner) (domain.Delivery, error) {
	var (
		d           domain.Delivery
		quantity    sql.NullInt64
		notes       sql.NullString
		arrivedAt   sql.NullString
		staySeconds sql.NullInt64
		completedAt sql.NullString
	)

	err := row.Scan(&d.ID, &d.ClientID, &d.ClientName, &d.ScheduledDate, &d.Status,
		&quantity, &notes, &arrivedAt, &staySeconds, &completedAt)
	if err != nil {
		return domain.Delivery{}, err
	}

	if quantity.Valid {
		q := int(quantity.Int64)
		d.Quantity = &q
	}
	if notes.Valid {
		d.Notes = &notes.String
	}
	if staySeconds.Valid {
		s := int(staySeconds.Int64)
		d.StaySeconds = &s
	}
	if arrivedAt.Valid {
		if ts, ok := parseDBTime(arrivedAt.String); ok {
			d.ArrivedAt = &ts
		}
	}
	if completedAt.Valid {
		if ts, ok := parseDBTime(completedAt.String); ok {
			d.CompletedAt = &ts
		}
	}

	return d, nil
}
