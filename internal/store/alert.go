package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hmartin/gexsight/pkg/logger"
)

// AlertRepository persists detected alerts for the dashboard.
type AlertRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewAlertRepository creates a new alert history repository.
func NewAlertRepository(pool *pgxpool.Pool, log *logger.Logger) *AlertRepository {
	return &AlertRepository{pool: pool, log: log}
}

// AlertRecord is a persisted alert event.
type AlertRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Ticker    string    `json:"ticker"`
	Type      string    `json:"alert_type"`
	Message   string    `json:"message"`
	Details   *string   `json:"details"`
}

// Save records one alert event.
func (r *AlertRepository) Save(ctx context.Context, ticker, alertType, message string, details *string, ts time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO alert_history (timestamp, ticker, alert_type, message, details)
		VALUES ($1, $2, $3, $4, $5)
	`, ts, ticker, alertType, message, details)
	return err
}

// Recent returns alerts within the lookback window, newest first.
func (r *AlertRepository) Recent(ctx context.Context, hours, limit int) ([]AlertRecord, error) {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	rows, err := r.pool.Query(ctx, `
		SELECT timestamp, ticker, alert_type, message, details
		FROM alert_history
		WHERE timestamp >= $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AlertRecord
	for rows.Next() {
		var a AlertRecord
		if err := rows.Scan(&a.Timestamp, &a.Ticker, &a.Type, &a.Message, &a.Details); err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
