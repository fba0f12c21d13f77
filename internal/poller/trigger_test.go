package poller

import (
	"testing"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
)

func TestInterfaceThresholdsCriticalAtOrAbove95(t *testing.T) {
	port := model.Port{ID: "p1", DeviceID: "d1"}
	trig := interfaceThresholds(port, rates{Utilization: 96}, 1, time.Now())
	if trig == nil || trig.Severity != model.SeverityCritical {
		t.Fatalf("expected critical trigger at 96%% utilization, got %+v", trig)
	}
}

func TestInterfaceThresholdsWarningAt90(t *testing.T) {
	port := model.Port{ID: "p1", DeviceID: "d1"}
	trig := interfaceThresholds(port, rates{Utilization: 91}, 1, time.Now())
	if trig == nil || trig.Severity != model.SeverityWarning {
		t.Fatalf("expected warning trigger at 91%% utilization, got %+v", trig)
	}
}

func TestInterfaceThresholdsAdminUpOperDown(t *testing.T) {
	port := model.Port{ID: "p1", DeviceID: "d1", AdminStatus: model.IfAdminUp, OperStatus: model.IfOperDown}
	trig := interfaceThresholds(port, rates{}, 1, time.Now())
	if trig == nil || trig.Severity != model.SeverityWarning {
		t.Fatalf("expected warning trigger for admin-up/oper-down, got %+v", trig)
	}
}

func TestInterfaceThresholdsNoneWhenHealthy(t *testing.T) {
	port := model.Port{ID: "p1", DeviceID: "d1", AdminStatus: model.IfAdminUp, OperStatus: model.IfOperUp}
	trig := interfaceThresholds(port, rates{Utilization: 10, ErrorRate: 0.1}, 1, time.Now())
	if trig != nil {
		t.Fatalf("expected no trigger for healthy interface, got %+v", trig)
	}
}

func TestSensorThresholdsCustomLimitsOverrideDefaults(t *testing.T) {
	limit := 50.0
	s := model.Sensor{ID: "s1", DeviceID: "d1", Type: model.SensorTemperature, LimitHigh: &limit}
	trig := sensorThresholds(s, 60, time.Now())
	if trig == nil || trig.Severity != model.SeverityCritical {
		t.Fatalf("expected critical trigger above custom limit_high, got %+v", trig)
	}
}

func TestSensorThresholdsTemperatureDefaults(t *testing.T) {
	s := model.Sensor{ID: "s1", DeviceID: "d1", Type: model.SensorTemperature}
	if trig := sensorThresholds(s, 75, time.Now()); trig == nil || trig.Severity != model.SeverityWarning {
		t.Fatalf("expected warning at 75 degrees, got %+v", trig)
	}
	if trig := sensorThresholds(s, 85, time.Now()); trig == nil || trig.Severity != model.SeverityCritical {
		t.Fatalf("expected critical at 85 degrees, got %+v", trig)
	}
}

func TestSensorThresholdsVoltageDefaults(t *testing.T) {
	s := model.Sensor{ID: "s1", DeviceID: "d1", Type: model.SensorVoltage}
	if trig := sensorThresholds(s, 3, time.Now()); trig == nil || trig.Severity != model.SeverityCritical {
		t.Fatalf("expected critical at 3V, got %+v", trig)
	}
	if trig := sensorThresholds(s, 8, time.Now()); trig == nil || trig.Severity != model.SeverityWarning {
		t.Fatalf("expected warning at 8V, got %+v", trig)
	}
}
