package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
)

type fakeTransports struct{ transports []model.Transport }

func (f *fakeTransports) ListEnabled(ctx context.Context) ([]model.Transport, error) {
	return f.transports, nil
}

type fakeNotifications struct{ saved []model.Notification }

func (f *fakeNotifications) Create(ctx context.Context, n model.Notification) error {
	f.saved = append(f.saved, n)
	return nil
}
func (f *fakeNotifications) Update(ctx context.Context, n model.Notification) error {
	f.saved = append(f.saved, n)
	return nil
}

type fakeAlerts struct {
	dispatched int
	alertID    string
}

func (f *fakeAlerts) RecordDispatch(ctx context.Context, alertID string, dispatched int, at time.Time) error {
	f.dispatched += dispatched
	f.alertID = alertID
	return nil
}

type recordingAdapter struct {
	calls int
	err   error
}

func (a *recordingAdapter) Send(ctx context.Context, transport model.Transport, payload Payload) error {
	a.calls++
	return a.err
}

func TestSendAlertNotificationsDispatchesToMatchingTransports(t *testing.T) {
	transports := &fakeTransports{transports: []model.Transport{
		{ID: "t1", Type: model.TransportWebhook, Enabled: true, FilterConditions: []model.Condition{
			{Field: "severity", Op: model.OpEq, Value: "critical"},
		}},
		{ID: "t2", Type: model.TransportWebhook, Enabled: true, FilterConditions: []model.Condition{
			{Field: "severity", Op: model.OpEq, Value: "warning"},
		}},
	}}
	notifications := &fakeNotifications{}
	alerts := &fakeAlerts{}
	adapter := &recordingAdapter{}

	d := NewDispatcher(transports, notifications, alerts)
	d.Adapters[model.TransportWebhook] = adapter

	err := d.SendAlertNotifications(context.Background(), Payload{AlertID: "a1", Severity: model.SeverityCritical}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adapter.calls != 1 {
		t.Fatalf("expected exactly 1 matching transport dispatched, got %d", adapter.calls)
	}
	if alerts.dispatched != 1 || alerts.alertID != "a1" {
		t.Fatalf("expected alert dispatch bookkeeping to record 1 for a1, got %d/%s", alerts.dispatched, alerts.alertID)
	}
	if len(notifications.saved) != 2 {
		t.Fatalf("expected pending+final notification writes, got %d", len(notifications.saved))
	}
	last := notifications.saved[len(notifications.saved)-1]
	if last.Status != model.NotificationSent || last.SentAt == nil || last.Attempts < 1 {
		t.Fatalf("expected final notification sent with attempts>=1 and sent_at set, got %+v", last)
	}
}

func TestSendAlertNotificationsTransportIDsIntersect(t *testing.T) {
	transports := &fakeTransports{transports: []model.Transport{
		{ID: "t1", Type: model.TransportWebhook, Enabled: true},
		{ID: "t2", Type: model.TransportWebhook, Enabled: true},
	}}
	notifications := &fakeNotifications{}
	alerts := &fakeAlerts{}
	adapter := &recordingAdapter{}
	d := NewDispatcher(transports, notifications, alerts)
	d.Adapters[model.TransportWebhook] = adapter

	if err := d.SendAlertNotifications(context.Background(), Payload{AlertID: "a1"}, []string{"t2"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adapter.calls != 1 {
		t.Fatalf("expected intersection with transport_ids to dispatch exactly 1, got %d", adapter.calls)
	}
}

func TestDispatchOneMarksFailedOnAdapterError(t *testing.T) {
	transports := &fakeTransports{transports: []model.Transport{{ID: "t1", Type: model.TransportWebhook, Enabled: true}}}
	notifications := &fakeNotifications{}
	alerts := &fakeAlerts{}
	adapter := &recordingAdapter{err: errors.New("boom")}
	d := NewDispatcher(transports, notifications, alerts)
	d.Adapters[model.TransportWebhook] = adapter

	if err := d.SendAlertNotifications(context.Background(), Payload{AlertID: "a1"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := notifications.saved[len(notifications.saved)-1]
	if last.Status != model.NotificationFailed || last.Error == "" || last.Attempts < 1 {
		t.Fatalf("expected failed notification with attempts>=1 and error recorded, got %+v", last)
	}
}
