package repositories

import (
	"context"
	"database/sql"
	"time"

	"delivery-tracking-service/internal/domain"
	"delivery-tracking-service/internal/ports"

	"github.com/pkg/errors"
)

// SQLite-backed implementation of the StopEventRepository port.
type SqliteStopEventRepository struct{ DB *sql.DB }

func NewSqliteStopEventRepository(db *sql.DB) *SqliteStopEventRepository {
	return &SqliteStopEventRepository{DB: db}
}

const stopEventColumns = `
	stop_events.id, stop_events.position_id, stop_events.client_id,
	COALESCE(clients.name, ''), stop_events.distance_km, stop_events.triggered_at,
	stop_events.acknowledged_at, stop_events.delivered,
	stop_events.quantity, stop_events.notes`

const stopEventJoin = `FROM stop_events LEFT JOIN clients ON clients.id = stop_events.client_id`

func (s *SqliteStopEventRepository) InsertStopEvent(ctx context.Context, candidate domain.StopCandidate) (domain.StopEvent, error) {
	res, err := s.DB.ExecContext(ctx, `
	INSERT INTO stop_events (position_id, client_id, distance_km, triggered_at)
	VALUES (?, ?, ?, ?);
	`, candidate.PositionID, candidate.ClientID, candidate.DistanceKm,
		candidate.TriggeredAt.UTC().Format(time.RFC3339))
	if err != nil {
		return domain.StopEvent{}, errors.Wrap(err, "insert stop event")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.StopEvent{}, errors.Wrap(err, "insert stop event: last insert id")
	}

	return s.GetStopEvent(ctx, int(id))
}

func (s *SqliteStopEventRepository) GetStopEvent(ctx context.Context, id int) (domain.StopEvent, error) {
	query := `SELECT ` + stopEventColumns + ` ` + stopEventJoin + ` WHERE stop_events.id = ?;`

	event, err := scanStopEvent(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StopEvent{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.StopEvent{}, errors.Wrapf(err, "get stop event %d", id)
	}
	return event, nil
}

func (s *SqliteStopEventRepository) FindUnacknowledged(ctx context.Context, clientID int, since time.Time) (domain.StopEvent, error) {
	query := `SELECT ` + stopEventColumns + ` ` + stopEventJoin + `
	WHERE stop_events.client_id = ?
		AND stop_events.acknowledged_at IS NULL
		AND stop_events.triggered_at >= ?
	ORDER BY stop_events.triggered_at DESC
	LIMIT 1;`

	event, err := scanStopEvent(s.DB.QueryRowContext(ctx, query, clientID, since.UTC().Format(time.RFC3339)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StopEvent{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.StopEvent{}, errors.Wrapf(err, "find unacknowledged stop event for client %d", clientID)
	}
	return event, nil
}

// AcknowledgeStopEvent is a compare-and-set on acknowledged_at: the update
// only lands while the column is still NULL, so a concurrent second attempt
// reports false instead of overwriting the first acknowledgment.
func (s *SqliteStopEventRepository) AcknowledgeStopEvent(ctx context.Context, id int, at time.Time, delivered bool, quantity *int, notes *string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
	UPDATE stop_events
	SET acknowledged_at = ?, delivered = ?, quantity = ?, notes = ?
	WHERE id = ? AND acknowledged_at IS NULL;
	`, at.UTC().Format(time.RFC3339), boolToInt(delivered), quantity, notes, id)
	if err != nil {
		return false, errors.Wrapf(err, "acknowledge stop event %d", id)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrapf(err, "acknowledge stop event %d: rows affected", id)
	}

	return affected == 1, nil
}

func (s *SqliteStopEventRepository) ListStopEvents(ctx context.Context, status string, since *time.Time) ([]domain.StopEvent, error) {
	query := `SELECT ` + stopEventColumns + ` ` + stopEventJoin + ` WHERE 1=1`
	args := []any{}

	switch status {
	case ports.StatusPending:
		query += ` AND stop_events.acknowledged_at IS NULL`
	case ports.StatusAcknowledged:
		query += ` AND stop_events.acknowledged_at IS NOT NULL`
	}

	if since != nil {
		query += ` AND stop_events.triggered_at >= ?`
		args = append(args, since.UTC().Format(time.RFC3339))
	}

	query += ` ORDER BY stop_events.triggered_at DESC, stop_events.id DESC;`

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list stop events: query")
	}
	defer rows.Close()

	events := make([]domain.StopEvent, 0, 16)
	for rows.Next() {
		event, err := scanStopEvent(rows)
		if err != nil {
			return nil, errors.Wrap(err, "list stop events: scan row")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list stop events: row iteration")
	}

	return events, nil
}

func scanStopEvent(row rowScanner) (domain.StopEvent, error) {
	var (
		event          domain.StopEvent
		triggeredAt    string
		acknowledgedAt sql.NullString
		delivered      int
		quantity       sql.NullInt64
		notes          sql.NullString
	)

	err := row.Scan(&event.ID, &event.PositionID, &event.ClientID, &event.ClientName,
		&event.DistanceKm, &triggeredAt, &acknowledgedAt, &delivered, &quantity, &notes)
	if err != nil {
		return domain.StopEvent{}, err
	}

	if ts, ok := parseDBTime(triggeredAt); ok {
		event.TriggeredAt = ts
	}
	if acknowledgedAt.Valid {
		if ts, ok := parseDBTime(acknowledgedAt.String); ok {
			event.AcknowledgedAt = &ts
		}
	}
	event.Delivered = delivered != 0
	if quantity.Valid {
		q := int(quantity.Int64)
		event.Quantity = &q
	}
	if notes.Valid {
		event.Notes = &notes.String
	}

	return event, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
