// Package notify implements the Notification Dispatcher: it
// resolves the applicable transport set for an alert, renders a
// per-transport payload, invokes the matching adapter, and records
// delivery bookkeeping. It is the sole consumer of the AlertEvent
// channel internal/alertengine owns, grounded on
// rathix-command-center's notify.Engine StateSource/adapters split.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ymonitor/ymonitor/internal/alertengine"
	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/model"
)

// TransportStore lists the configured transports the dispatcher
// resolves each alert against.
type TransportStore interface {
	ListEnabled(ctx context.Context) ([]model.Transport, error)
}

// NotificationStore persists the Notification bookkeeping row per
// (alert, transport) attempt. Attempts is ≥ 1 once status is in
// {sent, failed}; SentAt is set iff status is sent.
type NotificationStore interface {
	Create(ctx context.Context, n model.Notification) error
	Update(ctx context.Context, n model.Notification) error
}

// AlertStore records the dispatch side effect on the alert row itself:
// notifications_sent incremented, last_notification_sent updated.
type AlertStore interface {
	RecordDispatch(ctx context.Context, alertID string, dispatched int, at time.Time) error
}

// Payload is the rendered, transport-agnostic view of an alert an
// adapter turns into a wire message: id, title, message, severity,
// state, device_id, timestamp, occurrences, plus alert.details.
type Payload struct {
	AlertID     string
	Title       string
	Message     string
	Severity    model.Severity
	State       model.AlertState
	DeviceID    string
	RuleID      string
	Timestamp   time.Time
	Occurrences int
	Details     map[string]any
}

// Adapter sends a rendered Payload through one Transport. Adapter
// implementations carry their own network timeouts; exceeding them
// marks the notification failed.
type Adapter interface {
	Send(ctx context.Context, transport model.Transport, payload Payload) error
}

// Dispatcher is the cron-independent handler for send_alert_notifications.
// It is typically driven by Run, which consumes
// alertengine.AlertEvent values, but SendAlertNotifications can also be
// called directly from the operational surface's test_rule/resend path.
type Dispatcher struct {
	Transports    TransportStore
	Notifications NotificationStore
	Alerts        AlertStore
	Adapters      map[model.TransportType]Adapter
}

// NewDispatcher builds a Dispatcher with the default adapter set
// covering all six transport kinds.
func NewDispatcher(transports TransportStore, notifications NotificationStore, alerts AlertStore) *Dispatcher {
	return &Dispatcher{
		Transports:    transports,
		Notifications: notifications,
		Alerts:        alerts,
		Adapters: map[model.TransportType]Adapter{
			model.TransportEmail:    &EmailAdapter{},
			model.TransportWebhook:  &WebhookAdapter{},
			model.TransportSlack:    &SlackAdapter{},
			model.TransportTelegram: &TelegramAdapter{},
			model.TransportTeams:    &TeamsAdapter{},
			model.TransportSMS:      &SMSAdapter{},
		},
	}
}

// Run consumes AlertEvent values until ctx is cancelled or events is
// closed; this is the boundary that keeps internal/alertengine from
// ever importing internal/notify.
func (d *Dispatcher) Run(ctx context.Context, events <-chan alertengine.AlertEvent) {
	log := logging.L("notify.dispatcher")
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			payload := Payload{
				AlertID:     ev.Alert.ID,
				Title:       ev.Alert.Title,
				Message:     ev.Alert.Message,
				Severity:    ev.Alert.Severity,
				State:       ev.Alert.State,
				DeviceID:    ev.Alert.DeviceID,
				RuleID:      ev.Alert.RuleID,
				Timestamp:   ev.Alert.LastOccurred,
				Occurrences: ev.Alert.Occurrences,
				Details:     ev.Alert.Details,
			}
			if err := d.SendAlertNotifications(ctx, payload, nil); err != nil {
				log.Error("failed to dispatch alert notifications", "alert_id", ev.Alert.ID, "error", err)
			}
		}
	}
}

// SendAlertNotifications resolves the applicable transport set for
// payload (all enabled transports whose filter_conditions match,
// intersected with transportIDs if supplied), dispatches to each, and
// updates the alert's notification bookkeeping.
func (d *Dispatcher) SendAlertNotifications(ctx context.Context, payload Payload, transportIDs []string) error {
	log := logging.L("notify.dispatcher")

	transports, err := d.Transports.ListEnabled(ctx)
	if err != nil {
		return err
	}

	var wanted map[string]bool
	if len(transportIDs) > 0 {
		wanted = make(map[string]bool, len(transportIDs))
		for _, id := range transportIDs {
			wanted[id] = true
		}
	}

	fctx := filterContext{
		Severity: string(payload.Severity),
		State:    string(payload.State),
		DeviceID: payload.DeviceID,
		RuleID:   payload.RuleID,
	}

	dispatched := 0
	for _, transport := range transports {
		if wanted != nil && !wanted[transport.ID] {
			continue
		}
		if !matchesFilter(fctx, transport.FilterConditions) {
			continue
		}
		d.dispatchOne(ctx, transport, payload)
		dispatched++
	}

	if dispatched > 0 {
		if err := d.Alerts.RecordDispatch(ctx, payload.AlertID, dispatched, time.Now()); err != nil {
			log.Error("failed to record notification dispatch on alert", "alert_id", payload.AlertID, "error", err)
		}
	}
	return nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, transport model.Transport, payload Payload) {
	log := logging.L("notify.dispatcher")

	notification := model.Notification{
		ID:          uuid.NewString(),
		AlertID:     payload.AlertID,
		TransportID: transport.ID,
		Status:      model.NotificationPending,
		Attempts:    0,
	}
	if err := d.Notifications.Create(ctx, notification); err != nil {
		log.Error("failed to persist pending notification", "transport_id", transport.ID, "error", err)
		return
	}

	adapter, ok := d.Adapters[transport.Type]
	if !ok {
		notification.Status = model.NotificationFailed
		notification.Attempts = 1
		now := time.Now()
		notification.LastAttempt = &now
		notification.Error = "no adapter registered for transport type " + string(transport.Type)
		_ = d.Notifications.Update(ctx, notification)
		return
	}

	now := time.Now()
	notification.Attempts = 1
	notification.LastAttempt = &now

	err := adapter.Send(ctx, transport, payload)
	if err != nil {
		notification.Status = model.NotificationFailed
		notification.Error = err.Error()
		log.Warn("notification adapter failed", "transport_id", transport.ID, "transport_type", transport.Type, "error", err)
	} else {
		sentAt := time.Now()
		notification.Status = model.NotificationSent
		notification.SentAt = &sentAt
	}

	if err := d.Notifications.Update(ctx, notification); err != nil {
		log.Error("failed to persist notification outcome", "transport_id", transport.ID, "error", err)
	}
}
