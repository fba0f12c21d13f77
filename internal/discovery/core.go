package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/snmp"
)

// Core identity OIDs: sysDescr/sysObjectID drive OS/vendor matching.
const (
	oidSysDescr    = "1.3.6.1.2.1.1.1.0"
	oidSysObjectID = "1.3.6.1.2.1.1.2.0"
	oidSysUpTime   = "1.3.6.1.2.1.1.3.0"
	oidSysName     = "1.3.6.1.2.1.1.5.0"
)

// CoreModule discovers device identity: sysDescr/sysObjectID/sysName/
// sysUpTime and the OS/vendor classification they imply. Priority 1,
// no dependencies — every other module depends on it directly or
// transitively. Generalizes the teacher's
// apps/agent/internal/discovery/snmp.go (querySNMPv2c/querySNMPv3) and
// classify.go (ClassifyAsset) from a one-shot inventory probe into a
// dependency-gated discovery module over the shared SNMP Transport.
type CoreModule struct {
	Transport *snmp.Transport
}

func (CoreModule) Name() string           { return "core" }
func (CoreModule) Description() string    { return "device identity and OS detection" }
func (CoreModule) Dependencies() []string { return nil }
func (CoreModule) Priority() int          { return 1 }

func (CoreModule) CanDiscover(device model.Device) bool {
	return device.SNMP.CredentialsComplete()
}

// CoreIdentity is the discovered payload for this module.
type CoreIdentity struct {
	SysDescr    string
	SysObjectID string
	SysName     string
	UptimeS     uint64
	OS          string
	Vendor      string
	Confidence  int
}

func (m CoreModule) Discover(ctx context.Context, device model.Device, templates map[string]OSTemplate) Result {
	started := time.Now()
	res := newResult(m.Name(), device, started)

	r := m.Transport.Get(ctx, device.Hostname, device.SNMP, []string{oidSysDescr, oidSysObjectID, oidSysUpTime, oidSysName})
	if !r.Success {
		res.Errors = append(res.Errors, r.ToYMError("core.get"))
		return res.finish(started)
	}

	identity := CoreIdentity{}
	for _, vb := range r.Varbinds {
		switch vb.Oid {
		case oidSysDescr:
			identity.SysDescr = string(vb.Str)
		case oidSysObjectID:
			identity.SysObjectID = vb.OidVal
		case oidSysName:
			identity.SysName = string(vb.Str)
		case oidSysUpTime:
			if u, ok := vb.AsUint64(); ok {
				identity.UptimeS = u / 100 // sysUpTime is centiseconds
			}
		}
	}

	identity.OS, identity.Vendor, identity.Confidence = detectOS(identity.SysDescr, identity.SysObjectID, templates)
	res.Discovered = append(res.Discovered, identity)
	return res.finish(started)
}

func (CoreModule) Validate(items []any) bool {
	for _, item := range items {
		ci, ok := item.(CoreIdentity)
		if !ok || (ci.SysDescr == "" && ci.SysObjectID == "" && ci.SysName == "") {
			return false
		}
	}
	return true
}

// detectOS applies a fixed precedence: sysObjectID template match
// (confidence 90) beats a sysDescr keyword match (70-80) beats a
// generic guess (50) beats unknown (0). Keyword table generalizes the
// teacher's classify.go manufacturer switch.
func detectOS(sysDescr, sysObjectID string, templates map[string]OSTemplate) (os, vendor string, confidence int) {
	lowerDescr := strings.ToLower(sysDescr)
	lowerOID := strings.ToLower(sysObjectID)

	for _, name := range osDetectionOrder {
		tmpl, ok := templates[name]
		if ok && tmpl.EntityOIDBase != "" && strings.Contains(lowerOID, strings.ToLower(tmpl.EntityOIDBase)) {
			return name, tmpl.Vendor, 90
		}
	}
	for name, tmpl := range templates {
		if tmpl.EntityOIDBase != "" && strings.Contains(lowerOID, strings.ToLower(tmpl.EntityOIDBase)) {
			return name, tmpl.Vendor, 90
		}
	}

	// os values here match the template map keys in osDetectionOrder
	// (orchestrator.go), not the human-readable OS name, so a keyword
	// match resolves to the same candidate a sysObjectID match would.
	keywordConfidence := []struct {
		keyword    string
		os         string
		vendor     string
		confidence int
	}{
		{"ios-xe", "cisco-ios", "Cisco", 80},
		{"ios", "cisco-ios", "Cisco", 75},
		{"nx-os", "cisco-nxos", "Cisco", 80},
		{"junos", "junos", "Juniper", 80},
		{"routeros", "generic", "MikroTik", 80},
		{"arubaos", "generic", "Aruba", 75},
		{"fortios", "generic", "Fortinet", 75},
		{"windows", "windows", "Microsoft", 70},
		{"linux", "linux", "", 70},
	}
	for _, k := range keywordConfidence {
		if strings.Contains(lowerDescr, k.keyword) {
			return k.os, k.vendor, k.confidence
		}
	}

	switch {
	case strings.Contains(lowerDescr, "cisco"):
		return "unknown", "Cisco", 50
	case strings.Contains(lowerDescr, "juniper"):
		return "unknown", "Juniper", 50
	case sysDescr != "":
		return "unknown", "", 50
	default:
		return "generic", "", 0
	}
}
