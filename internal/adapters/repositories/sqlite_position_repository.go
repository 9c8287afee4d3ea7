package repositories

import (
	"context"
	"database/sql"
	"time"

	"delivery-tracking-service/internal/domain"

	"github.com/pkg/errors"
)

// SQLite-backed implementation of the PositionRepository port.
type SqlitePositionRepository struct{ DB *sql.DB }

func NewSqlitePositionRepository(db *sql.DB) *SqlitePositionRepository {
	return &SqlitePositionRepository{DB: db}
}

func (s *SqlitePositionRepository) RecordPosition(ctx context.Context, coord domain.Coordinate, ts time.Time) (domain.TrajectorySample, error) {
	res, err := s.DB.ExecContext(ctx, `
	INSERT INTO driver_positions (timestamp, latitude, longitude)
	VALUES (?, ?, ?);
	`, ts.UTC().Format(time.RFC3339), coord.Lat, coord.Lon)
	if err != nil {
		return domain.TrajectorySample{}, errors.Wrap(err, "record position: insert")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.TrajectorySample{}, errors.Wrap(err, "record position: last insert id")
	}

	return domain.TrajectorySample{
		PositionID: int(id),
		Timestamp:  ts.UTC(),
		Coord:      coord,
	}, nil
}

func (s *SqlitePositionRepository) LatestPosition(ctx context.Context) (domain.TrajectorySample, error) {
	row := s.DB.QueryRowContext(ctx, `
	SELECT id, timestamp, latitude, longitude
	FROM driver_positions
	ORDER BY id DESC
	LIMIT 1;`)

	sample, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TrajectorySample{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.TrajectorySample{}, errors.Wrap(err, "latest position")
	}
	return sample, nil
}

func (s *SqlitePositionRepository) PositionBefore(ctx context.Context, positionID int) (domain.TrajectorySample, error) {
	row := s.DB.QueryRowContext(ctx, `
	SELECT id, timestamp, latitude, longitude
	FROM driver_positions
	WHERE id < ?
	ORDER BY id DESC
	LIMIT 1;`, positionID)

	sample, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TrajectorySample{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.TrajectorySample{}, errors.Wrapf(err, "position before %d", positionID)
	}
	return sample, nil
}

// TrajectorySince returns samples ascending by timestamp. Rows whose
// timestamp does not parse are dropped rather than failing the sweep.
func (s *SqlitePositionRepository) TrajectorySince(ctx context.Context, since time.Time) ([]domain.TrajectorySample, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, timestamp, latitude, longitude
	FROM driver_positions
	WHERE timestamp >= ?
	ORDER BY timestamp ASC, id ASC;
	`, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, errors.Wrap(err, "trajectory since: query")
	}
	defer rows.Close()

	samples := make([]domain.TrajectorySample, 0, 128)
	for rows.Next() {
		sample, err := scanPosition(rows)
		if err != nil {
			if errors.Is(err, errBadTimestamp) {
				continue
			}
			return nil, errors.Wrap(err, "trajectory since: scan row")
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "trajectory since: row iteration")
	}

	return samples, nil
}

func (s *SqlitePositionRepository) RecentPositions(ctx context.Context, limit int) ([]domain.TrajectorySample, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, timestamp, latitude, longitude
	FROM driver_positions
	ORDER BY id DESC
	LIMIT ?;
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "recent positions: query")
	}
	defer rows.Close()

	samples := make([]domain.TrajectorySample, 0, limit)
	for rows.Next() {
		sample, err := scanPosition(rows)
		if err != nil {
			if errors.Is(err, errBadTimestamp) {
				continue
			}
			return nil, errors.Wrap(err, "recent positions: scan row")
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "recent positions: row iteration")
	}

	return samples, nil
}

var errBadTimestamp = errors.New("malformed position timestamp")

func scanPosition(row rowScanner) (domain.TrajectorySample, error) {
	var (
		sample domain.TrajectorySample
		raw    string
	)
	if err := row.Scan(&sample.PositionID, &raw, &sample.Coord.Lat, &sample.Coord.Lon); err != nil {
		return domain.TrajectorySample{}, err
	}

	ts, ok := parseDBTime(raw)
	if !ok {
		return domain.TrajectorySample{}, errBadTimestamp
	}
	sample.Timestamp = ts

	return sample, nil
}
