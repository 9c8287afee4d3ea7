package repositories

import (
	"context"
	"database/sql"
	"time"

	"delivery-tracking-service/internal/domain"

	"github.com/pkg/errors"
)

// SQLite-backed implementation of the MetricsRepository port.
type SqliteMetricsRepository struct{ DB *sql.DB }

func NewSqliteMetricsRepository(db *sql.DB) *SqliteMetricsRepository {
	return &SqliteMetricsRepository{DB: db}
}

func (s *SqliteMetricsRepository) Summary(ctx context.Context) (domain.MetricsSummary, error) {
	var summary domain.MetricsSummary

	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM clients;`).Scan(&summary.TotalClients)
	if err != nil {
		return domain.MetricsSummary{}, errors.Wrap(err, "metrics summary: count clients")
	}

	err = s.DB.QueryRowContext(ctx, `SELECT COUNT(1) FROM deliveries;`).Scan(&summary.TotalDeliveries)
	if err != nil {
		return domain.MetricsSummary{}, errors.Wrap(err, "metrics summary: count deliveries")
	}

	today := time.Now().UTC().Format("2006-01-02")
	err = s.DB.QueryRowContext(ctx, `
	SELECT COUNT(1) FROM deliveries
	WHERE status = 'completed' AND scheduled_date = ?;
	`, today).Scan(&summary.CompletedToday)
	if err != nil {
		return domain.MetricsSummary{}, errors.Wrap(err, "metrics summary: count completed today")
	}

	byDay, err := s.quantityByDay(ctx)
	if err != nil {
		return domain.MetricsSummary{}, err
	}
	summary.QuantityByDay = byDay

	topClients, err := s.topClients(ctx)
	if err != nil {
		return domain.MetricsSummary{}, err
	}
	summary.TopClients = topClients

	return summary, nil
}

func (s *SqliteMetricsRepository) quantityByDay(ctx context.Context) ([]domain.DailyTotal, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT scheduled_date, SUM(COALESCE(quantity, 0))
	FROM deliveries
	WHERE status = 'completed'
	GROUP BY scheduled_date
	ORDER BY scheduled_date DESC
	LIMIT 14;
	`)
	if err != nil {
		return nil, errors.Wrap(err, "metrics summary: quantity by day")
	}
	defer rows.Close()

	totals := make([]domain.DailyTotal, 0, 14)
	for rows.Next() {
		var t domain.DailyTotal
		if err := rows.Scan(&t.Day, &t.Quantity); err != nil {
			return nil, errors.Wrap(err, "metrics summary: scan daily total")
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "metrics summary: daily total iteration")
	}

	return totals, nil
}

func (s *SqliteMetricsRepository) topClients(ctx context.Context) ([]domain.ClientCount, error) {
	rows, err := s.DB.QueryContext(ctx, `
	SELECT clients.name, COUNT(deliveries.id) AS total
	FROM deliveries
	JOIN clients ON clients.id = deliveries.client_id
	GROUP BY clients.id
	ORDER BY total DESC, clients.name ASC
	LIMIT 5;
	`)
	if err != nil {
		return nil, errors.Wrap(err, "metrics summary: top clients")
	}
	defer rows.Close()

	counts := make([]domain.ClientCount, 0, 5)
	for rows.Next() {
		var c domain.ClientCount
		if err := rows.Scan(&c.Name, &c.Deliveries); err != nil {
			return nil, errors.Wrap(err, "metrics summary: scan client count")
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "metrics summary: client count iteration")
	}

	return counts, nil
}
