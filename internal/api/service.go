// Package api defines the operational surface as contract only — not
// wired to any wire protocol: the programmatic entry points an
// (out-of-scope) HTTP/REST layer would bind to. No HTTP binding lives
// here — just the Go interface plus a concrete Service wiring it to the
// store/engine/orchestrator/dispatcher types the rest of the module
// already builds.
package api

import (
	"context"
	"time"

	"github.com/ymonitor/ymonitor/internal/alertengine"
	"github.com/ymonitor/ymonitor/internal/audit"
	"github.com/ymonitor/ymonitor/internal/discovery"
	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/notify"
	"github.com/ymonitor/ymonitor/internal/ymerrors"
)

// RuleStore is the subset of internal/store/postgres.RuleStore the
// operational surface needs.
type RuleStore interface {
	List(ctx context.Context) ([]model.AlertRule, error)
	Get(ctx context.Context, ruleID string) (*model.AlertRule, error)
	Upsert(ctx context.Context, r model.AlertRule) error
	Delete(ctx context.Context, ruleID string) error
}

// AlertStore is the subset of internal/store/postgres.AlertStore the
// operational surface needs.
type AlertStore interface {
	List(ctx context.Context, states []model.AlertState) ([]model.Alert, error)
	Get(ctx context.Context, alertID string) (*model.Alert, error)
	GetActive(ctx context.Context, ruleID, deviceID string) (*model.Alert, error)
	Acknowledge(ctx context.Context, alertID, by string, at time.Time) error
	Resolve(ctx context.Context, alertID, by string, at time.Time) error
	Suppress(ctx context.Context, alertID string, until time.Time) error
}

// TransportStore is the subset of internal/store/postgres.TransportStore
// the operational surface needs.
type TransportStore interface {
	List(ctx context.Context) ([]model.Transport, error)
	Get(ctx context.Context, transportID string) (*model.Transport, error)
}

// DeviceSource resolves a device id, shared with discovery.DeviceLoader.
type DeviceSource interface {
	Get(ctx context.Context, deviceID string) (*model.Device, error)
}

// AlertFilters narrows list_alerts. A nil/empty States matches every
// state.
type AlertFilters struct {
	States   []model.AlertState
	DeviceID string
	RuleID   string
}

// TestRuleResult is the outcome of evaluating a rule's conditions
// against one device's latest sample without creating an alert.
type TestRuleResult struct {
	Matched    bool
	Conditions []bool // per-condition outcome, in order
}

// Service implements the operational surface by composing the store
// adapters, the alert evaluator's condition engine, the notification
// dispatcher, and the discovery orchestrator that already exist — it
// adds no new business logic, only the contract boundary an HTTP layer
// (out of scope here) would sit behind.
type Service struct {
	Rules        RuleStore
	Alerts       AlertStore
	Transports   TransportStore
	Devices      DeviceSource
	Metrics      alertengine.MetricsSource
	Dispatcher   *notify.Dispatcher
	Orchestrator *discovery.Orchestrator

	// Audit, when set, records every mutating operation this surface
	// exposes to the tamper-evident audit log. Nil disables auditing.
	Audit *audit.Logger
}

func (s *Service) audit(eventType, commandID string, details map[string]any) {
	if s.Audit == nil {
		return
	}
	s.Audit.Log(eventType, commandID, details)
}

// ListRules returns every configured rule.
func (s *Service) ListRules(ctx context.Context) ([]model.AlertRule, error) {
	return s.Rules.List(ctx)
}

// CreateRule validates and persists a new rule. Validation failures are
// returned to the caller, never silently dropped.
func (s *Service) CreateRule(ctx context.Context, r model.AlertRule) error {
	if err := validateRule(r); err != nil {
		return err
	}
	if err := s.Rules.Upsert(ctx, r); err != nil {
		return err
	}
	s.audit(audit.EventRuleCreated, r.ID, map[string]any{"name": r.Name})
	return nil
}

// UpdateRule validates and persists changes to an existing rule.
func (s *Service) UpdateRule(ctx context.Context, r model.AlertRule) error {
	existing, err := s.Rules.Get(ctx, r.ID)
	if err != nil {
		return ymerrors.Internal(err)
	}
	if existing == nil {
		return ymerrors.NotFound("rule", r.ID)
	}
	if err := validateRule(r); err != nil {
		return err
	}
	if err := s.Rules.Upsert(ctx, r); err != nil {
		return err
	}
	s.audit(audit.EventRuleUpdated, r.ID, map[string]any{"name": r.Name})
	return nil
}

// DeleteRule removes a rule, refusing when active alerts still
// reference it: a rule with alerts in state open or acknowledged
// cannot be deleted, surfaced to the caller as ErrConflict.
func (s *Service) DeleteRule(ctx context.Context, ruleID string) error {
	existing, err := s.Rules.Get(ctx, ruleID)
	if err != nil {
		return ymerrors.Internal(err)
	}
	if existing == nil {
		return ymerrors.NotFound("rule", ruleID)
	}

	alerts, err := s.Alerts.List(ctx, []model.AlertState{model.AlertOpen, model.AlertAcknowledged})
	if err != nil {
		return ymerrors.Internal(err)
	}
	for _, a := range alerts {
		if a.RuleID == ruleID {
			return ymerrors.Conflict("rule %s has active alerts, resolve or acknowledge them first", ruleID)
		}
	}
	if err := s.Rules.Delete(ctx, ruleID); err != nil {
		return err
	}
	s.audit(audit.EventRuleDeleted, ruleID, nil)
	return nil
}

// TestRule evaluates a rule's conditions against a device's latest
// sample without creating or mutating an alert. When deviceID is
// empty, the context is built from a zero-value device with no
// samples: device attribute paths (device.hostname, device.status, ...)
// resolve to empty strings or zero, and metric paths (device.cpu,
// device.memory, ...) are unresolved, so conditions on them fail.
func (s *Service) TestRule(ctx context.Context, rule model.AlertRule, deviceID string) (TestRuleResult, error) {
	var device model.Device
	var dm *model.DeviceMetrics
	var ifaces []model.InterfaceMetrics
	var sensors []model.SensorReading

	if deviceID != "" {
		d, err := s.Devices.Get(ctx, deviceID)
		if err != nil {
			return TestRuleResult{}, ymerrors.NotFound("device", deviceID)
		}
		device = *d
		if s.Metrics != nil {
			dm, _ = s.Metrics.LatestDeviceMetrics(ctx, deviceID)
			ifaces, _ = s.Metrics.LatestInterfaceMetrics(ctx, deviceID)
			sensors, _ = s.Metrics.LatestSensorReadings(ctx, deviceID)
		}
	}

	mctx := alertengine.NewMetricContext(device, dm, ifaces, sensors)
	matched := alertengine.EvaluateConditions(mctx, rule.Conditions)

	outcomes := make([]bool, len(rule.Conditions))
	for i := range rule.Conditions {
		outcomes[i], _ = mctx.ConditionResult(i + 1)
	}
	return TestRuleResult{Matched: matched, Conditions: outcomes}, nil
}

// ListAlerts returns alerts matching filters.
func (s *Service) ListAlerts(ctx context.Context, f AlertFilters) ([]model.Alert, error) {
	alerts, err := s.Alerts.List(ctx, f.States)
	if err != nil {
		return nil, err
	}
	if f.DeviceID == "" && f.RuleID == "" {
		return alerts, nil
	}
	out := alerts[:0]
	for _, a := range alerts {
		if f.DeviceID != "" && a.DeviceID != f.DeviceID {
			continue
		}
		if f.RuleID != "" && a.RuleID != f.RuleID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// ResolveAlert transitions an alert to resolved.
func (s *Service) ResolveAlert(ctx context.Context, alertID, by string) error {
	alert, err := s.Alerts.Get(ctx, alertID)
	if err != nil {
		return ymerrors.Internal(err)
	}
	if alert == nil {
		return ymerrors.NotFound("alert", alertID)
	}
	if err := s.Alerts.Resolve(ctx, alertID, by, time.Now()); err != nil {
		return err
	}
	s.audit(audit.EventAlertResolved, alertID, map[string]any{"by": by})
	return nil
}

// AcknowledgeAlert transitions an alert to acknowledged. A no-op on an
// already-acknowledged alert.
func (s *Service) AcknowledgeAlert(ctx context.Context, alertID, by string) error {
	alert, err := s.Alerts.Get(ctx, alertID)
	if err != nil {
		return ymerrors.Internal(err)
	}
	if alert == nil {
		return ymerrors.NotFound("alert", alertID)
	}
	if alert.State == model.AlertAcknowledged {
		return nil
	}
	if err := s.Alerts.Acknowledge(ctx, alertID, by, time.Now()); err != nil {
		return err
	}
	s.audit(audit.EventAlertAcknowledged, alertID, map[string]any{"by": by})
	return nil
}

// SuppressAlert transitions an alert to suppressed until until.
func (s *Service) SuppressAlert(ctx context.Context, alertID string, until time.Time) error {
	alert, err := s.Alerts.Get(ctx, alertID)
	if err != nil {
		return ymerrors.Internal(err)
	}
	if alert == nil {
		return ymerrors.NotFound("alert", alertID)
	}
	if err := s.Alerts.Suppress(ctx, alertID, until); err != nil {
		return err
	}
	s.audit(audit.EventAlertSuppressed, alertID, map[string]any{"until": until})
	return nil
}

// StartDiscovery starts a discovery session.
func (s *Service) StartDiscovery(ctx context.Context, deviceID string, modules []string) (*discovery.Session, error) {
	session, err := s.Orchestrator.DiscoverDevice(ctx, deviceID, modules)
	if err != nil {
		return nil, err
	}
	s.audit(audit.EventDiscoveryStarted, session.ID, map[string]any{"device_id": deviceID, "modules": modules})
	return session, nil
}

// GetSession returns a discovery session by id.
func (s *Service) GetSession(sessionID string) (*discovery.Session, error) {
	return s.Orchestrator.GetSession(sessionID)
}

// CancelSession cancels a running discovery session.
func (s *Service) CancelSession(sessionID string) error {
	if err := s.Orchestrator.Cancel(sessionID); err != nil {
		return err
	}
	s.audit(audit.EventDiscoveryCanceled, sessionID, nil)
	return nil
}

// DetectOS probes a device's OS without running a full discovery
// session.
func (s *Service) DetectOS(ctx context.Context, deviceID string) (os, vendor string, confidence int, err error) {
	device, dErr := s.Devices.Get(ctx, deviceID)
	if dErr != nil {
		return "", "", 0, ymerrors.NotFound("device", deviceID)
	}
	return discovery.DetectOS(ctx, s.Orchestrator.Transport, s.Orchestrator.Cache, *device, s.Orchestrator.Templates)
}

// ListTransports returns every configured transport.
func (s *Service) ListTransports(ctx context.Context) ([]model.Transport, error) {
	return s.Transports.List(ctx)
}

// TestTransport sends a synthetic notification through one transport
// without involving an alert rule.
func (s *Service) TestTransport(ctx context.Context, transportID string) error {
	transport, err := s.Transports.Get(ctx, transportID)
	if err != nil {
		return ymerrors.Internal(err)
	}
	if transport == nil {
		return ymerrors.NotFound("transport", transportID)
	}

	payload := notify.Payload{
		AlertID:     "test-" + transportID,
		Title:       "Y Monitor test notification",
		Message:     "This is a test notification triggered via test_transport.",
		Severity:    model.SeverityInfo,
		State:       model.AlertOpen,
		Timestamp:   time.Now(),
		Occurrences: 1,
	}
	if err := s.Dispatcher.SendAlertNotifications(ctx, payload, []string{transportID}); err != nil {
		return err
	}
	s.audit(audit.EventTransportTested, transportID, nil)
	return nil
}

func validateRule(r model.AlertRule) error {
	if r.Name == "" {
		return ymerrors.Validation("rule name is required")
	}
	if !r.Severity.IsValid() {
		return ymerrors.Validation("rule severity %q is invalid", r.Severity)
	}
	if len(r.Conditions) == 0 {
		return ymerrors.Validation("rule must have at least one condition")
	}
	for i, c := range r.Conditions {
		if !c.Op.IsValid() {
			return ymerrors.Validation("condition %d has invalid operator %q", i, c.Op)
		}
		if i > 0 && c.Logical != model.LogicalAnd && c.Logical != model.LogicalOr && c.Logical != model.LogicalNone {
			return ymerrors.Validation("condition %d has invalid logical %q", i, c.Logical)
		}
	}
	return nil
}
