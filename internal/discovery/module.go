// Package discovery implements the Discovery Engine: the five
// Discovery Modules (Core, Ports, Sensors, Entity, Topology) run in
// ascending priority order by the Orchestrator against a shared SNMP
// session, gated by an SNMP-based connectivity probe rather than an
// ICMP/ARP network sweep — this system monitors a known device fleet,
// it does not scan for unknown hosts.
package discovery

import (
	"context"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
)

// Result is the outcome of running one Module against one device.
type Result struct {
	Success     bool
	Module      string
	DeviceID    string
	Discovered  []any
	Errors      []error
	StartedAt   time.Time
	DurationMS  int64
}

// Module is the discovery module contract.
type Module interface {
	Name() string
	Description() string
	Dependencies() []string
	Priority() int
	CanDiscover(device model.Device) bool
	Discover(ctx context.Context, device model.Device, osTemplates map[string]OSTemplate) Result
	Validate(items []any) bool
}

// OSTemplate supplies the vendor-specific OID overlays a module consults
// (ifType ignore lists, sensor OID tables, LLDP/CDP capability bits)
// selected by the Orchestrator's OS-detection step.
type OSTemplate struct {
	Vendor          string
	OSFamily        string
	EntityOIDBase   string
	SensorOIDBase   string
	SupportsLLDP    bool
	SupportsCDP     bool
	IgnoredIfTypes  map[int]bool
}

func newResult(module string, device model.Device, started time.Time) Result {
	return Result{Module: module, DeviceID: device.ID, StartedAt: started}
}

func (r Result) finish(started time.Time) Result {
	r.DurationMS = time.Since(started).Milliseconds()
	r.Success = len(r.Errors) == 0
	return r
}
