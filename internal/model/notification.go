package model

import "time"

// Notification is one delivery attempt record for an Alert through a
// Transport. Once Status is in {sent, failed}, Attempts must be ≥ 1;
// SentAt is set iff Status is sent.
type Notification struct {
	ID          string
	AlertID     string
	TransportID string
	Status      NotificationStatus
	Attempts    int
	LastAttempt *time.Time
	SentAt      *time.Time
	Error       string
	Response    string
}
