package model

import (
	"strconv"
	"time"
)

// IfAdminStatus mirrors ifAdminStatus from the Interfaces MIB.
type IfAdminStatus string

const (
	IfAdminUp      IfAdminStatus = "up"
	IfAdminDown    IfAdminStatus = "down"
	IfAdminTesting IfAdminStatus = "testing"
)

func (s IfAdminStatus) IsValid() bool {
	switch s {
	case IfAdminUp, IfAdminDown, IfAdminTesting:
		return true
	default:
		return false
	}
}

// IfOperStatus mirrors ifOperStatus from the Interfaces MIB.
type IfOperStatus string

const (
	IfOperUp      IfOperStatus = "up"
	IfOperDown    IfOperStatus = "down"
	IfOperTesting IfOperStatus = "testing"
	IfOperUnknown IfOperStatus = "unknown"
)

func (s IfOperStatus) IsValid() bool {
	switch s {
	case IfOperUp, IfOperDown, IfOperTesting, IfOperUnknown:
		return true
	default:
		return false
	}
}

// Ignored ifType codes: loopback and tunnel interfaces are skipped
// during port discovery.
const (
	IfTypeLoopback = 24
	IfTypeTunnel   = 131
)

// Port is a device interface. (DeviceID, IfIndex) is unique.
type Port struct {
	ID         string
	DeviceID   string
	IfIndex    int
	Name       string
	Alias      string
	Type       string
	MTU        *int
	SpeedBps   *uint64
	AdminStatus IfAdminStatus
	OperStatus  IfOperStatus

	InOctets    uint64
	OutOctets   uint64
	InUcast     uint64
	OutUcast    uint64
	InDiscards  uint64
	OutDiscards uint64
	InErrors    uint64
	OutErrors   uint64

	HCInOctets  *uint64
	HCOutOctets *uint64

	Disabled   bool
	LastPolled *time.Time
}

// Key returns the (device_id, if_index) natural key used for uniqueness
// and for sharding the poller's single-writer-per-key discipline.
func (p Port) Key() string {
	return p.DeviceID + "/" + strconv.Itoa(p.IfIndex)
}
