package discovery

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/snmp"
)

// ifTable/ifXTable column OIDs.
const (
	oidIfDescr       = "1.3.6.1.2.1.2.2.1.2"
	oidIfType        = "1.3.6.1.2.1.2.2.1.3"
	oidIfMtu         = "1.3.6.1.2.1.2.2.1.4"
	oidIfSpeed       = "1.3.6.1.2.1.2.2.1.5"
	oidIfAdminStatus = "1.3.6.1.2.1.2.2.1.7"
	oidIfOperStatus  = "1.3.6.1.2.1.2.2.1.8"
	oidIfInOctets    = "1.3.6.1.2.1.2.2.1.10"
	oidIfInDiscards  = "1.3.6.1.2.1.2.2.1.13"
	oidIfInErrors    = "1.3.6.1.2.1.2.2.1.14"
	oidIfOutOctets   = "1.3.6.1.2.1.2.2.1.16"
	oidIfOutDiscards = "1.3.6.1.2.1.2.2.1.19"
	oidIfOutErrors   = "1.3.6.1.2.1.2.2.1.20"

	oidIfName       = "1.3.6.1.2.1.31.1.1.1.1"
	oidIfAlias      = "1.3.6.1.2.1.31.1.1.1.18"
	oidIfHighSpeed  = "1.3.6.1.2.1.31.1.1.1.15"
	oidIfHCInOctets = "1.3.6.1.2.1.31.1.1.1.6"
	oidIfHCOutOctets = "1.3.6.1.2.1.31.1.1.1.10"
)

// defaultIgnoreIf is applied regardless of OS template.
var defaultIgnoreIf = regexp.MustCompile(`^(lo|null|tunnel)|^vlan1$`)

// PortStore is the minimal persistence seam the Ports module needs: read
// back existing ports for this device so unseen ones can be marked
// disabled, and upsert the freshly discovered set.
type PortStore interface {
	ListByDevice(ctx context.Context, deviceID string) ([]model.Port, error)
	Upsert(ctx context.Context, port model.Port) error
	MarkDisabled(ctx context.Context, deviceID string, exceptIfIndexes map[int]bool) error
}

// PortsModule discovers interfaces via ifTable/ifXTable. Priority 2,
// depends on core.
type PortsModule struct {
	Transport *snmp.Transport
	Store     PortStore
}

func (PortsModule) Name() string           { return "ports" }
func (PortsModule) Description() string    { return "interface inventory and counters" }
func (PortsModule) Dependencies() []string { return []string{"core"} }
func (PortsModule) Priority() int          { return 2 }

func (PortsModule) CanDiscover(device model.Device) bool {
	return device.SNMP.CredentialsComplete()
}

func (m PortsModule) Discover(ctx context.Context, device model.Device, templates map[string]OSTemplate) Result {
	started := time.Now()
	res := newResult(m.Name(), device, started)

	columns := map[string]string{
		"descr": oidIfDescr, "type": oidIfType, "mtu": oidIfMtu, "speed": oidIfSpeed,
		"adminStatus": oidIfAdminStatus, "operStatus": oidIfOperStatus,
		"inOctets": oidIfInOctets, "inDiscards": oidIfInDiscards, "inErrors": oidIfInErrors,
		"outOctets": oidIfOutOctets, "outDiscards": oidIfOutDiscards, "outErrors": oidIfOutErrors,
		"name": oidIfName, "alias": oidIfAlias, "highSpeed": oidIfHighSpeed,
		"hcInOctets": oidIfHCInOctets, "hcOutOctets": oidIfHCOutOctets,
	}

	byIndex := make(map[int]map[string]snmp.Varbind)
	for col, oid := range columns {
		r := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oid)
		if !r.Success {
			// ifXTable columns are optional on older devices; only a
			// core ifTable column failure is fatal to the module.
			if col == "descr" || col == "type" || col == "adminStatus" || col == "operStatus" {
				res.Errors = append(res.Errors, r.ToYMError("ports.walk."+col))
				return res.finish(started)
			}
			continue
		}
		for _, vb := range r.Varbinds {
			idx, ok := trailingIndex(vb.Oid)
			if !ok {
				continue
			}
			if byIndex[idx] == nil {
				byIndex[idx] = make(map[string]snmp.Varbind)
			}
			byIndex[idx][col] = vb
		}
	}

	tmpl := templateFor(device, templates)
	var ports []model.Port
	seen := make(map[int]bool, len(byIndex))

	for idx, cols := range byIndex {
		name := varbindString(cols["name"])
		if name == "" {
			name = varbindString(cols["descr"])
		}
		ifType := varbindInt(cols["type"])

		if shouldIgnoreInterface(name, ifType, tmpl) {
			continue
		}
		seen[idx] = true

		port := model.Port{
			DeviceID:    device.ID,
			IfIndex:     idx,
			Name:        name,
			Alias:       varbindString(cols["alias"]),
			Type:        strconv.Itoa(ifType),
			AdminStatus: adminStatusOf(varbindInt(cols["adminStatus"])),
			OperStatus:  operStatusOf(varbindInt(cols["operStatus"])),
		}
		if mtu := varbindInt(cols["mtu"]); mtu > 0 {
			port.MTU = &mtu
		}
		speed := uint64(varbindInt(cols["speed"]))
		if hs, ok := cols["highSpeed"]; ok {
			if v, ok := hs.AsUint64(); ok && v > 0 {
				speed = v * 1_000_000
			}
		}
		if speed > 0 {
			port.SpeedBps = &speed
		}
		port.InOctets = varbindUint64(cols["inOctets"])
		port.OutOctets = varbindUint64(cols["outOctets"])
		port.InDiscards = varbindUint64(cols["inDiscards"])
		port.OutDiscards = varbindUint64(cols["outDiscards"])
		port.InErrors = varbindUint64(cols["inErrors"])
		port.OutErrors = varbindUint64(cols["outErrors"])
		if hc, ok := cols["hcInOctets"]; ok {
			if v, ok := hc.AsUint64(); ok {
				port.HCInOctets = &v
			}
		}
		if hc, ok := cols["hcOutOctets"]; ok {
			if v, ok := hc.AsUint64(); ok {
				port.HCOutOctets = &v
			}
		}

		if err := m.Store.Upsert(ctx, port); err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		ports = append(ports, port)
		res.Discovered = append(res.Discovered, port)
	}

	// Zero-interface guard: refuse to mark-all-missing on a failed pass.
	if len(seen) > 0 {
		if err := m.Store.MarkDisabled(ctx, device.ID, seen); err != nil {
			res.Errors = append(res.Errors, err)
		}
	}

	return res.finish(started)
}

func (PortsModule) Validate(items []any) bool {
	for _, item := range items {
		if _, ok := item.(model.Port); !ok {
			return false
		}
	}
	return true
}

func shouldIgnoreInterface(name string, ifType int, tmpl OSTemplate) bool {
	if defaultIgnoreIf.MatchString(strings.ToLower(name)) {
		return true
	}
	if ifType == model.IfTypeLoopback || ifType == model.IfTypeTunnel {
		return true
	}
	if tmpl.IgnoredIfTypes != nil && tmpl.IgnoredIfTypes[ifType] {
		return true
	}
	return false
}

func templateFor(device model.Device, templates map[string]OSTemplate) OSTemplate {
	if tmpl, ok := templates[device.OS]; ok {
		return tmpl
	}
	return OSTemplate{}
}

// trailingIndex extracts the final OID arc, which ifTable/ifXTable/
// Entity-MIB/sensor walks use as the row index.
func trailingIndex(oid string) (int, bool) {
	i := strings.LastIndex(oid, ".")
	if i < 0 || i == len(oid)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(oid[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func varbindString(vb snmp.Varbind) string {
	if vb.Kind == snmp.KindOctetString {
		return string(vb.Str)
	}
	return ""
}

func varbindInt(vb snmp.Varbind) int {
	u, ok := vb.AsUint64()
	if !ok {
		return 0
	}
	return int(u)
}

func varbindUint64(vb snmp.Varbind) uint64 {
	u, _ := vb.AsUint64()
	return u
}

func adminStatusOf(n int) model.IfAdminStatus {
	switch n {
	case 1:
		return model.IfAdminUp
	case 2:
		return model.IfAdminDown
	case 3:
		return model.IfAdminTesting
	default:
		return model.IfAdminDown
	}
}

func operStatusOf(n int) model.IfOperStatus {
	switch n {
	case 1:
		return model.IfOperUp
	case 2:
		return model.IfOperDown
	case 3:
		return model.IfOperTesting
	default:
		return model.IfOperUnknown
	}
}
