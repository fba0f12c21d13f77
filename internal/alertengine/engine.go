// Package alertengine evaluates alert rules against the latest polled
// metrics on a cron tick, and hands off the resulting state transitions
// as AlertEvent values on a buffered channel rather than calling
// internal/notify directly — avoiding a notify->alertengine->notify
// import cycle, grounded on rathix-command-center's notify.Engine
// StateSource inversion.
package alertengine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/model"
)

// RuleSource lists the rules each evaluation tick considers.
type RuleSource interface {
	ListEnabled(ctx context.Context) ([]model.AlertRule, error)
}

// DeviceSource lists the devices each evaluation tick considers.
type DeviceSource interface {
	ListEnabled(ctx context.Context) ([]model.Device, error)
}

// MetricsSource reads the latest sample for each metric family a rule's
// conditions may reference.
type MetricsSource interface {
	LatestDeviceMetrics(ctx context.Context, deviceID string) (*model.DeviceMetrics, error)
	LatestInterfaceMetrics(ctx context.Context, deviceID string) ([]model.InterfaceMetrics, error)
	LatestSensorReadings(ctx context.Context, deviceID string) ([]model.SensorReading, error)
}

// AlertStore is the relational seam the evaluator reads/writes alert
// lifecycle state through. At most one alert per (rule_id, device_id)
// may be in {open, acknowledged} at a time, upheld by GetActive
// returning that single row if any.
type AlertStore interface {
	GetActive(ctx context.Context, ruleID, deviceID string) (*model.Alert, error)
	Create(ctx context.Context, alert model.Alert) error
	Update(ctx context.Context, alert model.Alert) error
}

// Evaluator is the cron job for the alert rule evaluation tick,
// registered on a shared internal/scheduler.Scheduler at
// config.AlertEvalIntervalSeconds (default 60s).
type Evaluator struct {
	Rules   RuleSource
	Devices DeviceSource
	Metrics MetricsSource
	Alerts  AlertStore
	Events  chan<- AlertEvent

	state *State
}

// NewEvaluator builds an Evaluator with its own private State.
func NewEvaluator(rules RuleSource, devices DeviceSource, metrics MetricsSource, alerts AlertStore, events chan<- AlertEvent) *Evaluator {
	return &Evaluator{Rules: rules, Devices: devices, Metrics: metrics, Alerts: alerts, Events: events, state: NewState()}
}

// Run matches internal/scheduler.Handler's signature; concurrency is
// accepted for symmetry with the pollers but unused here, since rule
// evaluation for one device is cheap enough to run sequentially within
// a single tick.
func (e *Evaluator) Run(ctx context.Context, concurrency int) {
	e.Tick(ctx)
}

// Tick runs one full evaluation pass: every enabled rule against every
// matching enabled device.
func (e *Evaluator) Tick(ctx context.Context) {
	log := logging.L("alertengine")
	now := time.Now()
	e.state.PruneCorrelations(now)

	rules, err := e.Rules.ListEnabled(ctx)
	if err != nil {
		log.Error("failed to list enabled alert rules", "error", err)
		return
	}
	devices, err := e.Devices.ListEnabled(ctx)
	if err != nil {
		log.Error("failed to list enabled devices", "error", err)
		return
	}

	for _, device := range devices {
		dm, _ := e.Metrics.LatestDeviceMetrics(ctx, device.ID)
		ifaces, _ := e.Metrics.LatestInterfaceMetrics(ctx, device.ID)
		sensors, _ := e.Metrics.LatestSensorReadings(ctx, device.ID)
		mctx := NewMetricContext(device, dm, ifaces, sensors)

		for _, rule := range rules {
			if !DeviceMatches(device, rule.DeviceFilter) {
				continue
			}
			e.evaluateRule(ctx, rule, device, mctx, now)
		}
	}
}

func (e *Evaluator) evaluateRule(ctx context.Context, rule model.AlertRule, device model.Device, mctx *MetricContext, now time.Time) {
	log := logging.WithDevice(logging.L("alertengine"), device.ID, "evaluate_rule")
	key := rule.ID + ":" + device.ID
	result := EvaluateConditions(mctx, rule.Conditions)

	existing, err := e.Alerts.GetActive(ctx, rule.ID, device.ID)
	if err != nil {
		log.Error("failed to load active alert", "rule_id", rule.ID, "error", err)
		return
	}

	if existing != nil && existing.State == model.AlertSuppressed {
		if existing.SuppressedUntil != nil && now.After(*existing.SuppressedUntil) {
			existing.State = model.AlertOpen
			if err := e.Alerts.Update(ctx, *existing); err != nil {
				log.Error("failed to lift expired suppression", "alert_id", existing.ID, "error", err)
			}
		}
		return
	}

	switch {
	case !result:
		e.state.ClearPending(key)
		if rule.Recovery && existing != nil && existing.State.Active() {
			e.resolveAlert(ctx, *existing, rule, now)
		}

	case existing != nil:
		existing.Occurrences++
		existing.LastOccurred = now
		if err := e.Alerts.Update(ctx, *existing); err != nil {
			log.Error("failed to update recurring alert", "alert_id", existing.ID, "error", err)
			return
		}
		e.emit(rule, *existing, EventReoccured)

	case rule.DelaySeconds > 0:
		if e.state.PendingExpired(key, now) {
			e.createAlert(ctx, rule, device, mctx, now)
			e.state.ClearPending(key)
		} else if !e.state.HasPending(key) {
			e.state.RecordPending(key, time.Duration(rule.DelaySeconds)*time.Second, now)
		}

	default:
		e.createAlert(ctx, rule, device, mctx, now)
	}
}

func (e *Evaluator) createAlert(ctx context.Context, rule model.AlertRule, device model.Device, mctx *MetricContext, now time.Time) {
	log := logging.WithDevice(logging.L("alertengine"), device.ID, "create_alert")

	title, message := renderTranslation(rule, mctx)
	correlationKey := model.DefaultCorrelationKey(rule.ID, device.ID)

	alert := model.Alert{
		ID:             uuid.NewString(),
		RuleID:         rule.ID,
		DeviceID:       device.ID,
		Severity:       rule.Severity,
		State:          model.AlertOpen,
		Title:          title,
		Message:        message,
		FirstOccurred:  now,
		LastOccurred:   now,
		Occurrences:    1,
		CorrelationKey: correlationKey,
	}

	if err := e.Alerts.Create(ctx, alert); err != nil {
		log.Error("failed to persist new alert", "rule_id", rule.ID, "error", err)
		return
	}
	e.state.TrackCorrelation(correlationKey, now)
	e.emit(rule, alert, EventCreated)
}

func (e *Evaluator) resolveAlert(ctx context.Context, alert model.Alert, rule model.AlertRule, now time.Time) {
	log := logging.WithDevice(logging.L("alertengine"), alert.DeviceID, "resolve_alert")

	alert.State = model.AlertResolved
	alert.ResolvedAt = &now
	alert.ResolvedBy = "system"
	if err := e.Alerts.Update(ctx, alert); err != nil {
		log.Error("failed to persist alert recovery", "alert_id", alert.ID, "error", err)
		return
	}
	e.emit(rule, alert, EventResolved)
}

func (e *Evaluator) emit(rule model.AlertRule, alert model.Alert, kind EventKind) {
	if e.Events == nil {
		return
	}
	select {
	case e.Events <- AlertEvent{Alert: alert, Rule: rule, Kind: kind}:
	default:
		logging.L("alertengine").Warn("alert event channel full, dropping event", "alert_id", alert.ID, "kind", kind)
	}
}

func renderTranslation(rule model.AlertRule, mctx *MetricContext) (title, message string) {
	tr, ok := rule.Translations[""]
	if !ok {
		for _, v := range rule.Translations {
			tr = v
			break
		}
	}
	titleTmpl, messageTmpl := tr.Title, tr.Message
	if titleTmpl == "" && messageTmpl == "" {
		titleTmpl = fmt.Sprintf("%s triggered", rule.Name)
		messageTmpl = fmt.Sprintf("Rule %q matched on device {{device.hostname}}", rule.Name)
	}
	return renderTemplate(titleTmpl, mctx), renderTemplate(messageTmpl, mctx)
}
