package alertengine

import "github.com/ymonitor/ymonitor/internal/model"

// AlertEvent is emitted onto the evaluator's event channel whenever an
// alert is created, re-occurs, or resolves. internal/notify consumes
// this channel; internal/alertengine never imports internal/notify,
// avoiding a cyclic service graph (the same inversion
// rathix-command-center's notify.Engine uses via its StateSource
// abstraction).
type AlertEvent struct {
	Alert model.Alert
	Rule  model.AlertRule
	Kind  EventKind
}

// EventKind distinguishes why an AlertEvent was emitted.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventReoccured EventKind = "reoccurred"
	EventResolved  EventKind = "resolved"
)
