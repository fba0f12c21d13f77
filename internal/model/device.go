// Package model defines the Y Monitor data model: the entities every
// other package operates on. Nothing in this package depends on any
// other internal package — it is the leaf of the dependency graph, the
// same role kazuyuki114-snmp_collector's models package plays for that
// collector.
package model

import "time"

// DeviceStatus is the operational status of a monitored device.
type DeviceStatus string

const (
	DeviceUp      DeviceStatus = "up"
	DeviceDown    DeviceStatus = "down"
	DeviceWarning DeviceStatus = "warning"
	DeviceUnknown DeviceStatus = "unknown"
)

// IsValid reports whether s is a recognized device status.
func (s DeviceStatus) IsValid() bool {
	switch s {
	case DeviceUp, DeviceDown, DeviceWarning, DeviceUnknown:
		return true
	default:
		return false
	}
}

// Device is a monitored network element.
type Device struct {
	ID       string
	Hostname string
	Address  string
	SNMP     SNMPConfig

	OS       string
	Vendor   string
	Model    string
	Serial   string
	UptimeS  uint64
	Status   DeviceStatus
	Disabled bool

	LastPolled     *time.Time
	LastDiscovered *time.Time
}

// Ident returns the identity tuple the SNMP engine uses to key sessions
// and cache entries: (hostname, port, version).
func (d Device) Ident() (hostname string, port int, version SNMPVersion) {
	return d.Hostname, d.SNMP.Port, d.SNMP.Version
}
