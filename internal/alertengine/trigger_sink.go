package alertengine

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/poller"
)

// TriggerSink turns the pollers' synthetic threshold triggers
// (interface/sensor threshold table breaches) into the same alert
// lifecycle transitions the rule Evaluator produces, and emits them
// onto the same Events channel so internal/notify has a single
// consumption path regardless of whether an alert originated from a
// configured rule or a poller's built-in thresholds.
type TriggerSink struct {
	Alerts AlertStore
	Events chan<- AlertEvent
}

// Run drains triggers until the channel is closed or ctx is cancelled.
func (s *TriggerSink) Run(ctx context.Context, triggers <-chan poller.Trigger) {
	log := logging.L("alertengine.triggersink")
	for {
		select {
		case <-ctx.Done():
			return
		case trig, ok := <-triggers:
			if !ok {
				return
			}
			s.handle(ctx, trig, log)
		}
	}
}

func (s *TriggerSink) handle(ctx context.Context, trig poller.Trigger, log *slog.Logger) {
	existing, err := s.Alerts.GetActive(ctx, trig.RuleID, trig.DeviceID)
	if err != nil {
		log.Error("failed to load active alert for trigger", "rule_id", trig.RuleID, "device_id", trig.DeviceID, "error", err)
		return
	}

	if existing != nil {
		existing.Occurrences++
		existing.LastOccurred = trig.At
		if err := s.Alerts.Update(ctx, *existing); err != nil {
			log.Error("failed to update recurring trigger alert", "alert_id", existing.ID, "error", err)
			return
		}
		s.emit(*existing, EventReoccured)
		return
	}

	details := map[string]any{}
	if trig.PortID != "" {
		details["port_id"] = trig.PortID
	}
	if trig.SensorID != "" {
		details["sensor_id"] = trig.SensorID
	}

	alert := model.Alert{
		ID:             uuid.NewString(),
		RuleID:         trig.RuleID,
		DeviceID:       trig.DeviceID,
		Severity:       trig.Severity,
		State:          model.AlertOpen,
		Title:          trig.Message,
		Message:        trig.Message,
		Details:        details,
		FirstOccurred:  trig.At,
		LastOccurred:   trig.At,
		Occurrences:    1,
		CorrelationKey: model.DefaultCorrelationKey(trig.RuleID, trig.DeviceID),
	}
	if err := s.Alerts.Create(ctx, alert); err != nil {
		log.Error("failed to persist trigger alert", "rule_id", trig.RuleID, "device_id", trig.DeviceID, "error", err)
		return
	}
	s.emit(alert, EventCreated)
}

func (s *TriggerSink) emit(alert model.Alert, kind EventKind) {
	if s.Events == nil {
		return
	}
	select {
	case s.Events <- AlertEvent{Alert: alert, Kind: kind}:
	default:
		logging.L("alertengine.triggersink").Warn("alert event channel full, dropping trigger event", "alert_id", alert.ID)
	}
}
