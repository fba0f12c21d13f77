package poller

import (
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
)

// Rule ids for the synthetic threshold triggers forwarded to the
// alert engine.
const (
	RuleInterfaceMonitoring = "interface-monitoring"
	RuleSensorMonitoring    = "sensor-monitoring"
)

// Trigger is a synthetic rule firing produced by a poller's per-sample
// threshold checks. It is emitted onto a channel rather than delivered
// via a direct method call so that this package never imports
// internal/alertengine, the same pattern internal/alertengine uses one
// level up to avoid importing internal/notify.
type Trigger struct {
	RuleID   string
	DeviceID string
	PortID   string // set for interface triggers
	SensorID string // set for sensor triggers
	Severity model.Severity
	Message  string
	At       time.Time
}

// interfaceThresholds evaluates the interface threshold table against
// one derived sample, emitting at most one trigger (the most severe
// condition that fired).
func interfaceThresholds(port model.Port, r rates, errorThreshold float64, at time.Time) *Trigger {
	switch {
	case r.Utilization >= 95:
		return &Trigger{RuleID: RuleInterfaceMonitoring, DeviceID: port.DeviceID, PortID: port.ID,
			Severity: model.SeverityCritical, Message: "interface utilization critical", At: at}
	case r.Utilization >= 90:
		return &Trigger{RuleID: RuleInterfaceMonitoring, DeviceID: port.DeviceID, PortID: port.ID,
			Severity: model.SeverityWarning, Message: "interface utilization high", At: at}
	case r.ErrorRate > errorThreshold:
		return &Trigger{RuleID: RuleInterfaceMonitoring, DeviceID: port.DeviceID, PortID: port.ID,
			Severity: model.SeverityWarning, Message: "interface error rate elevated", At: at}
	case port.AdminStatus == model.IfAdminUp && port.OperStatus == model.IfOperDown:
		return &Trigger{RuleID: RuleInterfaceMonitoring, DeviceID: port.DeviceID, PortID: port.ID,
			Severity: model.SeverityWarning, Message: "interface administratively up but operationally down", At: at}
	}
	return nil
}

// sensorThresholds evaluates the sensor threshold table: per-sensor
// limit_high/limit_low first, then type-specific defaults.
func sensorThresholds(s model.Sensor, value float64, at time.Time) *Trigger {
	if s.LimitHigh != nil && value > *s.LimitHigh {
		return &Trigger{RuleID: RuleSensorMonitoring, DeviceID: s.DeviceID, SensorID: s.ID,
			Severity: model.SeverityCritical, Message: "sensor value above configured limit_high", At: at}
	}
	if s.LimitLow != nil && value < *s.LimitLow {
		return &Trigger{RuleID: RuleSensorMonitoring, DeviceID: s.DeviceID, SensorID: s.ID,
			Severity: model.SeverityCritical, Message: "sensor value below configured limit_low", At: at}
	}

	switch s.Type {
	case model.SensorTemperature:
		if value > 80 {
			return &Trigger{RuleID: RuleSensorMonitoring, DeviceID: s.DeviceID, SensorID: s.ID,
				Severity: model.SeverityCritical, Message: "temperature above 80", At: at}
		}
		if value > 70 {
			return &Trigger{RuleID: RuleSensorMonitoring, DeviceID: s.DeviceID, SensorID: s.ID,
				Severity: model.SeverityWarning, Message: "temperature above 70", At: at}
		}
	case model.SensorHumidity:
		if value > 80 || value < 10 {
			return &Trigger{RuleID: RuleSensorMonitoring, DeviceID: s.DeviceID, SensorID: s.ID,
				Severity: model.SeverityWarning, Message: "humidity out of range", At: at}
		}
	case model.SensorVoltage:
		if value < 5 {
			return &Trigger{RuleID: RuleSensorMonitoring, DeviceID: s.DeviceID, SensorID: s.ID,
				Severity: model.SeverityCritical, Message: "voltage critically low", At: at}
		}
		if value < 10 {
			return &Trigger{RuleID: RuleSensorMonitoring, DeviceID: s.DeviceID, SensorID: s.ID,
				Severity: model.SeverityWarning, Message: "voltage low", At: at}
		}
	}
	return nil
}
