package poller

import (
	"math"

	"github.com/ymonitor/ymonitor/internal/model"
)

// scaleRaw applies a magnitude-heuristic normalization before the
// sensor's own multiplier/divisor (set by the Entity-Sensor discovery
// module's entPhySensorScale-based transform in
// internal/discovery/sensors.go). The two transforms are deliberately
// distinct stages: discovery
// records the MIB-reported exponent once at discovery time, the
// poller re-normalizes every sample against vendor quirks that report
// raw integers at the wrong magnitude.
func scaleRaw(v float64, typ model.SensorType) float64 {
	switch typ {
	case model.SensorTemperature:
		if math.Abs(v) > 100 {
			return v / 10
		}
	case model.SensorVoltage:
		if math.Abs(v) > 1000 {
			return v / 1000
		}
	case model.SensorPower:
		if math.Abs(v) > 100000 {
			return v / 1000
		}
	}
	return v
}

// transform applies the full sensor value pipeline: the magnitude
// heuristic above, then the sensor's own multiplier/divisor.
func transform(raw float64, s model.Sensor) float64 {
	v := scaleRaw(raw, s.Type)
	multiplier := s.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	divisor := s.Divisor
	if divisor == 0 {
		divisor = 1
	}
	return v * multiplier / divisor
}
