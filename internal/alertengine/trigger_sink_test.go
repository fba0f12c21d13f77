package alertengine

import (
	"context"
	"testing"
	"time"

	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/poller"
)

var testLog = logging.L("alertengine.triggersink.test")

func TestTriggerSinkCreatesAlertOnFirstTrigger(t *testing.T) {
	alerts := newFakeAlertStore()
	events := make(chan AlertEvent, 4)
	sink := &TriggerSink{Alerts: alerts, Events: events}

	sink.handle(context.Background(), poller.Trigger{
		RuleID: poller.RuleInterfaceMonitoring, DeviceID: "dev-1", PortID: "p1",
		Severity: model.SeverityWarning, Message: "interface utilization high", At: time.Now(),
	}, testLog)

	if len(alerts.active) != 1 {
		t.Fatalf("expected one alert created, got %d", len(alerts.active))
	}
	select {
	case ev := <-events:
		if ev.Kind != EventCreated {
			t.Fatalf("expected EventCreated, got %v", ev.Kind)
		}
	default:
		t.Fatal("expected an AlertEvent to be emitted")
	}
}

func TestTriggerSinkReoccursOnSecondTrigger(t *testing.T) {
	alerts := newFakeAlertStore()
	events := make(chan AlertEvent, 4)
	sink := &TriggerSink{Alerts: alerts, Events: events}

	trig := poller.Trigger{
		RuleID: poller.RuleSensorMonitoring, DeviceID: "dev-1", SensorID: "s1",
		Severity: model.SeverityCritical, Message: "temperature above 80", At: time.Now(),
	}
	sink.handle(context.Background(), trig, testLog)
	<-events
	sink.handle(context.Background(), trig, testLog)

	ev := <-events
	if ev.Kind != EventReoccured {
		t.Fatalf("expected EventReoccured, got %v", ev.Kind)
	}
	if ev.Alert.Occurrences != 2 {
		t.Fatalf("expected occurrences incremented to 2, got %d", ev.Alert.Occurrences)
	}
}
