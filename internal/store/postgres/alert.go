package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ymonitor/ymonitor/internal/model"
)

// AlertStore is the `alerts` table repository. It satisfies both
// alertengine.AlertStore (GetActive/Create/Update) and notify.AlertStore
// (RecordDispatch) — two narrow interfaces declared independently by
// their consumer packages, one concrete implementation. At most one
// alert per (rule_id, device_id) may be in {open, acknowledged} at a
// time.
type AlertStore struct {
	pool *pgxpool.Pool
}

const alertColumns = `id, rule_id, device_id, severity, state, title, message, details,
	first_occurred, last_occurred, occurrences, acknowledged_at, acknowledged_by,
	resolved_at, resolved_by, suppressed_until, notifications_sent, last_notification_sent,
	escalation_level, correlation_key`

func scanAlert(row pgx.Row) (model.Alert, error) {
	var a model.Alert
	var details []byte
	err := row.Scan(
		&a.ID, &a.RuleID, &a.DeviceID, &a.Severity, &a.State, &a.Title, &a.Message, &details,
		&a.FirstOccurred, &a.LastOccurred, &a.Occurrences, &a.AcknowledgedAt, &a.AcknowledgedBy,
		&a.ResolvedAt, &a.ResolvedBy, &a.SuppressedUntil, &a.NotificationsSent, &a.LastNotificationSent,
		&a.EscalationLevel, &a.CorrelationKey,
	)
	if err != nil {
		return a, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &a.Details); err != nil {
			return a, err
		}
	}
	return a, nil
}

// GetActive returns the single alert in {open, acknowledged} for
// (ruleID, deviceID), if any — the query that enforces the
// at-most-one-active-alert rule above.
func (s *AlertStore) GetActive(ctx context.Context, ruleID, deviceID string) (*model.Alert, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts
		WHERE rule_id = $1 AND device_id = $2 AND state IN ('open', 'acknowledged')`, ruleID, deviceID)
	a, err := scanAlert(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Get returns a single alert by id, for the operational surface's
// resolve/acknowledge/suppress operations.
func (s *AlertStore) Get(ctx context.Context, alertID string) (*model.Alert, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM alerts WHERE id = $1`, alertID)
	a, err := scanAlert(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns alerts, optionally filtered by state, for list_alerts.
// An empty states slice returns every alert.
func (s *AlertStore) List(ctx context.Context, states []model.AlertState) ([]model.Alert, error) {
	var rows pgx.Rows
	var err error
	if len(states) == 0 {
		rows, err = s.pool.Query(ctx, `SELECT `+alertColumns+` FROM alerts ORDER BY last_occurred DESC`)
	} else {
		rows, err = s.pool.Query(ctx, `SELECT `+alertColumns+` FROM alerts WHERE state = ANY($1) ORDER BY last_occurred DESC`, states)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create inserts a newly triggered alert (alertengine.AlertStore).
func (s *AlertStore) Create(ctx context.Context, alert model.Alert) error {
	details, err := json.Marshal(alert.Details)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO alerts (id, rule_id, device_id, severity, state, title, message, details,
			first_occurred, last_occurred, occurrences, correlation_key)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		alert.ID, alert.RuleID, alert.DeviceID, alert.Severity, alert.State, alert.Title, alert.Message, details,
		alert.FirstOccurred, alert.LastOccurred, alert.Occurrences, alert.CorrelationKey,
	)
	return err
}

// Update persists the full alert row, covering every lifecycle
// transition (reoccur, acknowledge, resolve, suppress) the evaluator
// and operational surface perform (alertengine.AlertStore).
func (s *AlertStore) Update(ctx context.Context, alert model.Alert) error {
	details, err := json.Marshal(alert.Details)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		UPDATE alerts SET state = $2, last_occurred = $3, occurrences = $4,
			acknowledged_at = $5, acknowledged_by = $6, resolved_at = $7, resolved_by = $8,
			suppressed_until = $9, notifications_sent = $10, last_notification_sent = $11,
			escalation_level = $12, details = $13
		WHERE id = $1`,
		alert.ID, alert.State, alert.LastOccurred, alert.Occurrences,
		alert.AcknowledgedAt, alert.AcknowledgedBy, alert.ResolvedAt, alert.ResolvedBy,
		alert.SuppressedUntil, alert.NotificationsSent, alert.LastNotificationSent,
		alert.EscalationLevel, details,
	)
	return err
}

// RecordDispatch bumps notifications_sent/last_notification_sent after
// a dispatch pass (notify.AlertStore).
func (s *AlertStore) RecordDispatch(ctx context.Context, alertID string, dispatched int, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE alerts SET notifications_sent = notifications_sent + $2, last_notification_sent = $3
		WHERE id = $1`,
		alertID, dispatched, at,
	)
	return err
}

// Acknowledge transitions an alert to acknowledged (acknowledge_alert).
func (s *AlertStore) Acknowledge(ctx context.Context, alertID, by string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE alerts SET state = 'acknowledged', acknowledged_at = $2, acknowledged_by = $3
		WHERE id = $1`,
		alertID, at, by,
	)
	return err
}

// Resolve transitions an alert to resolved (resolve_alert).
func (s *AlertStore) Resolve(ctx context.Context, alertID, by string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE alerts SET state = 'resolved', resolved_at = $2, resolved_by = $3
		WHERE id = $1`,
		alertID, at, by,
	)
	return err
}

// Suppress transitions an alert to suppressed until until
// (suppress_alert); the evaluator reverts it to open once until elapses.
func (s *AlertStore) Suppress(ctx context.Context, alertID string, until time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE alerts SET state = 'suppressed', suppressed_until = $2 WHERE id = $1`,
		alertID, until,
	)
	return err
}
