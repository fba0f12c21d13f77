package discovery

import (
	"context"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/snmp"
)

// Entity-Sensor MIB columns.
const (
	oidEntSensorType    = "1.3.6.1.2.1.99.1.1.1.1"
	oidEntSensorScale   = "1.3.6.1.2.1.99.1.1.1.2"
	oidEntSensorValue   = "1.3.6.1.2.1.99.1.1.1.4"
	oidEntPhysicalDescr = "1.3.6.1.2.1.47.1.1.1.1.2"
)

// SensorStore is the minimal persistence seam the Sensors module needs.
type SensorStore interface {
	Get(ctx context.Context, deviceID string, index int, typ model.SensorType) (*model.Sensor, error)
	Upsert(ctx context.Context, sensor model.Sensor) error
}

// SensorsModule discovers environmental sensors via the Entity-Sensor
// MIB. Priority 3, depends on core. Windows/Linux/generic devices
// rarely expose this MIB and are skipped.
type SensorsModule struct {
	Transport *snmp.Transport
	Store     SensorStore
}

func (SensorsModule) Name() string           { return "sensors" }
func (SensorsModule) Description() string    { return "environmental sensor inventory" }
func (SensorsModule) Dependencies() []string { return []string{"core"} }
func (SensorsModule) Priority() int          { return 3 }

func (SensorsModule) CanDiscover(device model.Device) bool {
	switch device.OS {
	case "windows", "linux", "generic", "":
		return false
	default:
		return device.SNMP.CredentialsComplete()
	}
}

func (m SensorsModule) Discover(ctx context.Context, device model.Device, templates map[string]OSTemplate) Result {
	started := time.Now()
	res := newResult(m.Name(), device, started)

	typeR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidEntSensorType)
	if !typeR.Success {
		res.Errors = append(res.Errors, typeR.ToYMError("sensors.walk.type"))
		return res.finish(started)
	}
	scaleR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidEntSensorScale)
	valueR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidEntSensorValue)
	descrR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidEntPhysicalDescr)

	scales := indexVarbinds(scaleR.Varbinds)
	values := indexVarbinds(valueR.Varbinds)
	descrs := indexVarbinds(descrR.Varbinds)

	for _, vb := range typeR.Varbinds {
		idx, ok := trailingIndex(vb.Oid)
		if !ok {
			continue
		}
		sensorType, ok := sensorTypeOf(varbindInt(vb))
		if !ok {
			continue
		}

		sensor := model.Sensor{
			DeviceID:   device.ID,
			Index:      idx,
			Type:       sensorType,
			Descr:      varbindString(descrs[idx]),
			Multiplier: 1,
			Divisor:    scalingDivisor(varbindInt(scales[idx])),
		}

		if prev, err := m.Store.Get(ctx, device.ID, idx, sensorType); err == nil && prev != nil {
			sensor.PrevValue = prev.Value
			sensor.LimitHigh = prev.LimitHigh
			sensor.LimitLow = prev.LimitLow
			sensor.WarnHigh = prev.WarnHigh
			sensor.WarnLow = prev.WarnLow
		}

		if raw, ok := values[idx]; ok {
			if u, ok := raw.AsUint64(); ok {
				v := float64(u) * sensor.Multiplier / sensor.Divisor
				sensor.Value = &v
			}
		}

		if err := m.Store.Upsert(ctx, sensor); err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		res.Discovered = append(res.Discovered, sensor)
	}

	return res.finish(started)
}

func (SensorsModule) Validate(items []any) bool {
	for _, item := range items {
		if _, ok := item.(model.Sensor); !ok {
			return false
		}
	}
	return true
}

func indexVarbinds(vbs []snmp.Varbind) map[int]snmp.Varbind {
	out := make(map[int]snmp.Varbind, len(vbs))
	for _, vb := range vbs {
		if idx, ok := trailingIndex(vb.Oid); ok {
			out[idx] = vb
		}
	}
	return out
}

// sensorTypeOf maps entPhySensorType codes 3-12 to the model's sensor
// taxonomy (voltage, current, power, frequency, temperature, humidity,
// fan_speed, or other). 1 (other) and 2 (unknown) are not discoverable
// sensors and are skipped.
func sensorTypeOf(code int) (model.SensorType, bool) {
	switch code {
	case 3, 4: // voltsAC, voltsDC
		return model.SensorVoltage, true
	case 5: // amperes
		return model.SensorCurrent, true
	case 6: // watts
		return model.SensorPower, true
	case 7: // hertz
		return model.SensorFrequency, true
	case 8: // celsius
		return model.SensorTemperature, true
	case 9: // percentRH
		return model.SensorHumidity, true
	case 10: // rpm
		return model.SensorFanSpeed, true
	case 11, 12: // shaftPosition, intensity - not one of the mapped categories
		return model.SensorOther, true
	default:
		return "", false
	}
}

// scalingDivisor converts an entPhySensorScale exponent into the
// divisor applied to the raw integer reading. Entity-Sensor MIB scale
// codes run yocto(1)..yotta(17) centered on units(9).
func scalingDivisor(scale int) float64 {
	if scale == 0 {
		return 1
	}
	exp := 9 - scale
	d := 1.0
	for i := 0; i < exp; i++ {
		d *= 1000
	}
	for i := 0; i > exp; i-- {
		d /= 1000
	}
	return d
}
