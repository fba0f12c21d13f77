package alertengine

import (
	"context"
	"testing"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
)

type fakeRules struct{ rules []model.AlertRule }

func (f *fakeRules) ListEnabled(ctx context.Context) ([]model.AlertRule, error) { return f.rules, nil }

type fakeDevices struct{ devices []model.Device }

func (f *fakeDevices) ListEnabled(ctx context.Context) ([]model.Device, error) { return f.devices, nil }

type fakeMetrics struct {
	dm      *model.DeviceMetrics
	ifaces  []model.InterfaceMetrics
	sensors []model.SensorReading
}

func (f *fakeMetrics) LatestDeviceMetrics(ctx context.Context, deviceID string) (*model.DeviceMetrics, error) {
	return f.dm, nil
}
func (f *fakeMetrics) LatestInterfaceMetrics(ctx context.Context, deviceID string) ([]model.InterfaceMetrics, error) {
	return f.ifaces, nil
}
func (f *fakeMetrics) LatestSensorReadings(ctx context.Context, deviceID string) ([]model.SensorReading, error) {
	return f.sensors, nil
}

type fakeAlertStore struct {
	active map[string]*model.Alert // key rule:device
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{active: make(map[string]*model.Alert)}
}

func (f *fakeAlertStore) GetActive(ctx context.Context, ruleID, deviceID string) (*model.Alert, error) {
	a, ok := f.active[ruleID+":"+deviceID]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (f *fakeAlertStore) Create(ctx context.Context, alert model.Alert) error {
	a := alert
	f.active[alert.RuleID+":"+alert.DeviceID] = &a
	return nil
}

func (f *fakeAlertStore) Update(ctx context.Context, alert model.Alert) error {
	a := alert
	f.active[alert.RuleID+":"+alert.DeviceID] = &a
	return nil
}

func cpuRule(delay int, recovery bool) model.AlertRule {
	return model.AlertRule{
		ID:           "rule-cpu",
		Name:         "High CPU",
		Severity:     model.SeverityWarning,
		Enabled:      true,
		Conditions:   []model.Condition{{Field: "device.cpu", Op: model.OpGt, Value: 90.0}},
		DelaySeconds: delay,
		Recovery:     recovery,
	}
}

func TestTickCreatesAlertWhenConditionTrueNoDelay(t *testing.T) {
	cpu := 95.0
	events := make(chan AlertEvent, 4)
	alerts := newFakeAlertStore()
	e := NewEvaluator(
		&fakeRules{rules: []model.AlertRule{cpuRule(0, true)}},
		&fakeDevices{devices: []model.Device{{ID: "d1", Hostname: "core-sw-1"}}},
		&fakeMetrics{dm: &model.DeviceMetrics{CPUUsage: &cpu}},
		alerts,
		events,
	)

	e.Tick(context.Background())

	a, err := alerts.GetActive(context.Background(), "rule-cpu", "d1")
	if err != nil || a == nil || a.State != model.AlertOpen {
		t.Fatalf("expected open alert to be created, got %+v err=%v", a, err)
	}
	select {
	case ev := <-events:
		if ev.Kind != EventCreated {
			t.Fatalf("expected created event, got %v", ev.Kind)
		}
	default:
		t.Fatalf("expected an AlertEvent to be emitted")
	}
}

func TestTickDoesNotDuplicateAlertOnReoccurrence(t *testing.T) {
	cpu := 95.0
	events := make(chan AlertEvent, 4)
	alerts := newFakeAlertStore()
	e := NewEvaluator(
		&fakeRules{rules: []model.AlertRule{cpuRule(0, true)}},
		&fakeDevices{devices: []model.Device{{ID: "d1"}}},
		&fakeMetrics{dm: &model.DeviceMetrics{CPUUsage: &cpu}},
		alerts,
		events,
	)

	e.Tick(context.Background())
	<-events
	e.Tick(context.Background())

	a, _ := alerts.GetActive(context.Background(), "rule-cpu", "d1")
	if a.Occurrences != 2 {
		t.Fatalf("expected occurrences to increment to 2, got %d", a.Occurrences)
	}
	ev := <-events
	if ev.Kind != EventReoccured {
		t.Fatalf("expected reoccurred event on second tick, got %v", ev.Kind)
	}
}

func TestTickRecoversWhenConditionGoesFalse(t *testing.T) {
	highCPU, lowCPU := 95.0, 10.0
	events := make(chan AlertEvent, 4)
	alerts := newFakeAlertStore()
	metrics := &fakeMetrics{dm: &model.DeviceMetrics{CPUUsage: &highCPU}}
	e := NewEvaluator(
		&fakeRules{rules: []model.AlertRule{cpuRule(0, true)}},
		&fakeDevices{devices: []model.Device{{ID: "d1"}}},
		metrics,
		alerts,
		events,
	)

	e.Tick(context.Background())
	<-events

	metrics.dm.CPUUsage = &lowCPU
	e.Tick(context.Background())

	a, _ := alerts.GetActive(context.Background(), "rule-cpu", "d1")
	if a.State != model.AlertResolved {
		t.Fatalf("expected alert to resolve once condition clears, got state %v", a.State)
	}
	ev := <-events
	if ev.Kind != EventResolved {
		t.Fatalf("expected resolved event, got %v", ev.Kind)
	}
}

func TestTickDelayedTriggerWaitsUntilDelayElapses(t *testing.T) {
	cpu := 95.0
	events := make(chan AlertEvent, 4)
	alerts := newFakeAlertStore()
	e := NewEvaluator(
		&fakeRules{rules: []model.AlertRule{cpuRule(60, true)}},
		&fakeDevices{devices: []model.Device{{ID: "d1"}}},
		&fakeMetrics{dm: &model.DeviceMetrics{CPUUsage: &cpu}},
		alerts,
		events,
	)

	e.Tick(context.Background())
	if a, _ := alerts.GetActive(context.Background(), "rule-cpu", "d1"); a != nil {
		t.Fatalf("expected no alert yet while delay pending, got %+v", a)
	}
	select {
	case ev := <-events:
		t.Fatalf("expected no event while pending, got %+v", ev)
	default:
	}
}

func TestSuppressedAlertIsIgnoredUntilExpiry(t *testing.T) {
	cpu := 95.0
	events := make(chan AlertEvent, 4)
	alerts := newFakeAlertStore()
	until := time.Now().Add(-time.Minute)
	alerts.active["rule-cpu:d1"] = &model.Alert{
		ID: "a1", RuleID: "rule-cpu", DeviceID: "d1",
		State: model.AlertSuppressed, SuppressedUntil: &until,
	}
	e := NewEvaluator(
		&fakeRules{rules: []model.AlertRule{cpuRule(0, true)}},
		&fakeDevices{devices: []model.Device{{ID: "d1"}}},
		&fakeMetrics{dm: &model.DeviceMetrics{CPUUsage: &cpu}},
		alerts,
		events,
	)

	e.Tick(context.Background())

	a, _ := alerts.GetActive(context.Background(), "rule-cpu", "d1")
	if a.State != model.AlertOpen {
		t.Fatalf("expected expired suppression to revert to open, got %v", a.State)
	}
}
