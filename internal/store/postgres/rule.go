package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ymonitor/ymonitor/internal/model"
)

// RuleStore is the `alert_rules` table repository
// (alertengine.RuleSource).
type RuleStore struct {
	pool *pgxpool.Pool
}

const ruleColumns = `id, name, severity, enabled, device_filter, conditions, delay_seconds,
	interval_seconds, recovery, acknowledgeable, suppressable, translations`

func scanRule(row pgx.Row) (model.AlertRule, error) {
	var r model.AlertRule
	var deviceFilter, conditions, translations []byte
	err := row.Scan(
		&r.ID, &r.Name, &r.Severity, &r.Enabled, &deviceFilter, &conditions, &r.DelaySeconds,
		&r.IntervalSeconds, &r.Recovery, &r.Acknowledgeable, &r.Suppressable, &translations,
	)
	if err != nil {
		return r, err
	}
	if len(deviceFilter) > 0 {
		var f model.DeviceFilter
		if err := json.Unmarshal(deviceFilter, &f); err != nil {
			return r, err
		}
		r.DeviceFilter = &f
	}
	if len(conditions) > 0 {
		if err := json.Unmarshal(conditions, &r.Conditions); err != nil {
			return r, err
		}
	}
	if len(translations) > 0 {
		if err := json.Unmarshal(translations, &r.Translations); err != nil {
			return r, err
		}
	}
	return r, nil
}

// ListEnabled returns every enabled rule (alertengine.RuleSource).
func (s *RuleStore) ListEnabled(ctx context.Context) ([]model.AlertRule, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+ruleColumns+` FROM alert_rules WHERE enabled`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AlertRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get returns a single rule by id, for the operational surface's
// list_rules/test_rule operations.
func (s *RuleStore) Get(ctx context.Context, ruleID string) (*model.AlertRule, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+ruleColumns+` FROM alert_rules WHERE id = $1`, ruleID)
	r, err := scanRule(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// List returns every rule regardless of enablement, for list_rules.
func (s *RuleStore) List(ctx context.Context) ([]model.AlertRule, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+ruleColumns+` FROM alert_rules`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AlertRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Upsert inserts or updates a rule definition, serializing the
// nested DeviceFilter/Conditions/Translations as JSONB columns.
func (s *RuleStore) Upsert(ctx context.Context, r model.AlertRule) error {
	deviceFilter, err := json.Marshal(r.DeviceFilter)
	if err != nil {
		return err
	}
	conditions, err := json.Marshal(r.Conditions)
	if err != nil {
		return err
	}
	translations, err := json.Marshal(r.Translations)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO alert_rules (id, name, severity, enabled, device_filter, conditions, delay_seconds,
			interval_seconds, recovery, acknowledgeable, suppressable, translations)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, severity = EXCLUDED.severity, enabled = EXCLUDED.enabled,
			device_filter = EXCLUDED.device_filter, conditions = EXCLUDED.conditions,
			delay_seconds = EXCLUDED.delay_seconds, interval_seconds = EXCLUDED.interval_seconds,
			recovery = EXCLUDED.recovery, acknowledgeable = EXCLUDED.acknowledgeable,
			suppressable = EXCLUDED.suppressable, translations = EXCLUDED.translations`,
		r.ID, r.Name, r.Severity, r.Enabled, deviceFilter, conditions, r.DelaySeconds,
		r.IntervalSeconds, r.Recovery, r.Acknowledgeable, r.Suppressable, translations,
	)
	return err
}

// Delete removes a rule definition (delete_rule).
func (s *RuleStore) Delete(ctx context.Context, ruleID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM alert_rules WHERE id = $1`, ruleID)
	return err
}
