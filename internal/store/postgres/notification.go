package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ymonitor/ymonitor/internal/model"
)

// NotificationStore is the `alert_notifications` table repository
// (notify.NotificationStore). Attempts is ≥ 1 once status is in
// {sent, failed}, and sent_at is set iff status is sent — upheld by
// the dispatcher, persisted verbatim here.
type NotificationStore struct {
	pool *pgxpool.Pool
}

const notificationColumns = `id, alert_id, transport_id, status, attempts, last_attempt, sent_at, error, response`

func scanNotification(row pgx.Row) (model.Notification, error) {
	var n model.Notification
	err := row.Scan(&n.ID, &n.AlertID, &n.TransportID, &n.Status, &n.Attempts, &n.LastAttempt, &n.SentAt, &n.Error, &n.Response)
	return n, err
}

// Create inserts the pending notification row for one (alert,
// transport) dispatch attempt.
func (s *NotificationStore) Create(ctx context.Context, n model.Notification) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO alert_notifications (id, alert_id, transport_id, status, attempts, last_attempt, sent_at, error, response)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		n.ID, n.AlertID, n.TransportID, n.Status, n.Attempts, n.LastAttempt, n.SentAt, n.Error, n.Response,
	)
	return err
}

// Update persists the outcome of a dispatch attempt.
func (s *NotificationStore) Update(ctx context.Context, n model.Notification) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE alert_notifications SET status = $2, attempts = $3, last_attempt = $4, sent_at = $5, error = $6, response = $7
		WHERE id = $1`,
		n.ID, n.Status, n.Attempts, n.LastAttempt, n.SentAt, n.Error, n.Response,
	)
	return err
}

// ListByAlert returns every notification attempt for alertID, newest
// first, for inspection from the operational surface.
func (s *NotificationStore) ListByAlert(ctx context.Context, alertID string) ([]model.Notification, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+notificationColumns+` FROM alert_notifications
		WHERE alert_id = $1 ORDER BY last_attempt DESC NULLS LAST`, alertID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
