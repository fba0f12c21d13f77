package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ymonitor/ymonitor/internal/model"
)

// SensorStore is the `sensors` table repository. (device_id, index,
// type) is unique.
type SensorStore struct {
	pool *pgxpool.Pool
}

const sensorColumns = `id, device_id, index, type, descr, class, oid, value, prev_value,
	limit_high, limit_low, warn_high, warn_low, divisor, multiplier, disabled`

func scanSensor(row pgx.Row) (model.Sensor, error) {
	var s model.Sensor
	err := row.Scan(
		&s.ID, &s.DeviceID, &s.Index, &s.Type, &s.Descr, &s.Class, &s.OID, &s.Value, &s.PrevValue,
		&s.LimitHigh, &s.LimitLow, &s.WarnHigh, &s.WarnLow, &s.Divisor, &s.Multiplier, &s.Disabled,
	)
	return s, err
}

// Get returns a sensor by its natural key (discovery.SensorStore), or
// nil if none exists yet.
func (s *SensorStore) Get(ctx context.Context, deviceID string, index int, typ model.SensorType) (*model.Sensor, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+sensorColumns+` FROM sensors WHERE device_id = $1 AND index = $2 AND type = $3`,
		deviceID, index, typ)
	sensor, err := scanSensor(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sensor, nil
}

// ListByDevice returns every sensor for deviceID (poller.SensorRepository).
func (s *SensorStore) ListByDevice(ctx context.Context, deviceID string) ([]model.Sensor, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+sensorColumns+` FROM sensors WHERE device_id = $1`, deviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Sensor
	for rows.Next() {
		sensor, err := scanSensor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sensor)
	}
	return out, rows.Err()
}

// Upsert inserts or updates a sensor's inventory/calibration fields
// (discovery.SensorStore). It leaves the live Value untouched; that is
// owned by UpdateReading.
func (s *SensorStore) Upsert(ctx context.Context, sensor model.Sensor) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sensors (id, device_id, index, type, descr, class, oid, limit_high, limit_low, warn_high, warn_low, divisor, multiplier, disabled)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		ON CONFLICT (device_id, index, type) DO UPDATE SET
			descr = EXCLUDED.descr, class = EXCLUDED.class, oid = EXCLUDED.oid,
			limit_high = EXCLUDED.limit_high, limit_low = EXCLUDED.limit_low,
			warn_high = EXCLUDED.warn_high, warn_low = EXCLUDED.warn_low,
			divisor = EXCLUDED.divisor, multiplier = EXCLUDED.multiplier, disabled = EXCLUDED.disabled`,
		sensor.ID, sensor.DeviceID, sensor.Index, sensor.Type, sensor.Descr, sensor.Class, sensor.OID,
		sensor.LimitHigh, sensor.LimitLow, sensor.WarnHigh, sensor.WarnLow, sensor.Divisor, sensor.Multiplier, sensor.Disabled,
	)
	return err
}

// UpdateReading persists one poll's scaled sensor value
// (poller.SensorRepository), shifting the prior value to PrevValue.
func (s *SensorStore) UpdateReading(ctx context.Context, sensor model.Sensor) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sensors SET prev_value = value, value = $3
		WHERE device_id = $1 AND index = $2 AND type = $4`,
		sensor.DeviceID, sensor.Index, sensor.Value, sensor.Type,
	)
	return err
}
