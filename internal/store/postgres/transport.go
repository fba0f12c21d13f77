package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ymonitor/ymonitor/internal/model"
)

// TransportStore is the `alert_transports` table repository
// (notify.TransportStore).
type TransportStore struct {
	pool *pgxpool.Pool
}

const transportColumns = `id, name, type, enabled, config, filter_conditions`

func scanTransport(row pgx.Row) (model.Transport, error) {
	var t model.Transport
	var config, filterConditions []byte
	err := row.Scan(&t.ID, &t.Name, &t.Type, &t.Enabled, &config, &filterConditions)
	if err != nil {
		return t, err
	}
	if len(config) > 0 {
		if err := json.Unmarshal(config, &t.Config); err != nil {
			return t, err
		}
	}
	if len(filterConditions) > 0 {
		if err := json.Unmarshal(filterConditions, &t.FilterConditions); err != nil {
			return t, err
		}
	}
	return t, nil
}

// ListEnabled returns every enabled transport (notify.TransportStore).
func (s *TransportStore) ListEnabled(ctx context.Context) ([]model.Transport, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+transportColumns+` FROM alert_transports WHERE enabled`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Transport
	for rows.Next() {
		t, err := scanTransport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// List returns every transport regardless of enablement, for
// list_transports.
func (s *TransportStore) List(ctx context.Context) ([]model.Transport, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+transportColumns+` FROM alert_transports`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Transport
	for rows.Next() {
		t, err := scanTransport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Get returns a single transport by id, for test_transport.
func (s *TransportStore) Get(ctx context.Context, transportID string) (*model.Transport, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+transportColumns+` FROM alert_transports WHERE id = $1`, transportID)
	t, err := scanTransport(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Upsert inserts or updates a transport configuration.
func (s *TransportStore) Upsert(ctx context.Context, t model.Transport) error {
	config, err := json.Marshal(t.Config)
	if err != nil {
		return err
	}
	filterConditions, err := json.Marshal(t.FilterConditions)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO alert_transports (id, name, type, enabled, config, filter_conditions)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type, enabled = EXCLUDED.enabled,
			config = EXCLUDED.config, filter_conditions = EXCLUDED.filter_conditions`,
		t.ID, t.Name, t.Type, t.Enabled, config, filterConditions,
	)
	return err
}

// Delete removes a transport configuration.
func (s *TransportStore) Delete(ctx context.Context, transportID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM alert_transports WHERE id = $1`, transportID)
	return err
}
