package discovery

import (
	"context"
	"strings"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/snmp"
)

// LLDP remote table and CDP cache table columns.
const (
	oidLLDPRemChassisID = "1.0.8802.1.1.2.1.4.1.1.5"
	oidLLDPRemPortID    = "1.0.8802.1.1.2.1.4.1.1.7"
	oidLLDPRemSysName   = "1.0.8802.1.1.2.1.4.1.1.9"
	oidLLDPRemSysDesc   = "1.0.8802.1.1.2.1.4.1.1.10"

	oidCDPCacheDeviceID   = "1.3.6.1.4.1.9.9.23.1.2.1.1.6"
	oidCDPCacheDevicePort = "1.3.6.1.4.1.9.9.23.1.2.1.1.7"
	oidCDPCachePlatform   = "1.3.6.1.4.1.9.9.23.1.2.1.1.8"
)

// TopologyStore is the minimal persistence seam the Topology module
// needs: fetch existing links for staleness pruning, and upsert fresh
// observations.
type TopologyStore interface {
	ListByDevice(ctx context.Context, deviceID string) ([]model.TopologyLink, error)
	Upsert(ctx context.Context, link model.TopologyLink) error
	Prune(ctx context.Context, deviceID string, olderThan time.Time, exceptKeys map[string]bool) error
}

// TopologyModule walks LLDP (and, for Cisco devices, CDP) neighbor
// tables. Priority 5, depends on core + ports.
type TopologyModule struct {
	Transport *snmp.Transport
	Store     TopologyStore
}

func (TopologyModule) Name() string           { return "topology" }
func (TopologyModule) Description() string    { return "LLDP/CDP neighbor discovery" }
func (TopologyModule) Dependencies() []string { return []string{"core", "ports"} }
func (TopologyModule) Priority() int          { return 5 }

func (TopologyModule) CanDiscover(device model.Device) bool {
	return device.SNMP.CredentialsComplete()
}

func (m TopologyModule) Discover(ctx context.Context, device model.Device, templates map[string]OSTemplate) Result {
	started := time.Now()
	res := newResult(m.Name(), device, started)

	var links []model.TopologyLink

	lldpLinks := m.walkLLDP(ctx, device)
	links = append(links, lldpLinks...)

	if strings.EqualFold(device.Vendor, "cisco") {
		links = append(links, m.walkCDP(ctx, device)...)
	}

	seen := make(map[string]bool, len(links))
	for _, link := range links {
		if err := m.Store.Upsert(ctx, link); err != nil {
			res.Errors = append(res.Errors, err)
			continue
		}
		seen[link.Key()] = true
		res.Discovered = append(res.Discovered, link)
	}

	// A pass producing zero neighbors must not prune: an all-neighbors-
	// lost walk is treated as a transient failure, not a topology change.
	if len(seen) > 0 {
		cutoff := time.Now().Add(-24 * time.Hour)
		if err := m.Store.Prune(ctx, device.ID, cutoff, seen); err != nil {
			res.Errors = append(res.Errors, err)
		}
	}

	return res.finish(started)
}

func (m TopologyModule) walkLLDP(ctx context.Context, device model.Device) []model.TopologyLink {
	chassisR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidLLDPRemChassisID)
	if !chassisR.Success {
		return nil
	}
	portR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidLLDPRemPortID)
	nameR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidLLDPRemSysName)
	descR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidLLDPRemSysDesc)

	ports := indexSuffixVarbinds(portR.Varbinds)
	names := indexSuffixVarbinds(nameR.Varbinds)
	descs := indexSuffixVarbinds(descR.Varbinds)

	now := time.Now()
	var links []model.TopologyLink
	for _, vb := range chassisR.Varbinds {
		suffix := lldpRowSuffix(vb.Oid)
		link := model.TopologyLink{
			DeviceID:        device.ID,
			Protocol:        model.ProtocolLLDP,
			LocalPort:       suffix,
			RemoteChassisID: varbindString(vb),
			RemotePortID:    varbindString(ports[suffix]),
			RemoteHostname:  varbindString(names[suffix]),
			RemotePlatform:  varbindString(descs[suffix]),
			LastUpdated:     now,
			Active:          true,
		}
		links = append(links, link)
	}
	return links
}

func (m TopologyModule) walkCDP(ctx context.Context, device model.Device) []model.TopologyLink {
	idR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidCDPCacheDeviceID)
	if !idR.Success {
		return nil
	}
	portR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidCDPCacheDevicePort)
	platformR := m.Transport.Walk(ctx, device.Hostname, device.SNMP, oidCDPCachePlatform)

	// CDP rows are indexed by cdpCacheIfIndex.cdpCacheDeviceIndex (two arcs).
	cdpRow := func(oid string) string {
		s := lldpRowSuffix(oid)
		return s[strings.Index(s, ".")+1:]
	}
	ports := make(map[string]snmp.Varbind, len(portR.Varbinds))
	for _, vb := range portR.Varbinds {
		ports[cdpRow(vb.Oid)] = vb
	}
	platforms := make(map[string]snmp.Varbind, len(platformR.Varbinds))
	for _, vb := range platformR.Varbinds {
		platforms[cdpRow(vb.Oid)] = vb
	}

	now := time.Now()
	var links []model.TopologyLink
	for _, vb := range idR.Varbinds {
		suffix := cdpRow(vb.Oid)
		link := model.TopologyLink{
			DeviceID:       device.ID,
			Protocol:       model.ProtocolCDP,
			LocalPort:      suffix,
			RemoteHostname: varbindString(vb),
			RemotePortID:   varbindString(ports[suffix]),
			RemotePlatform: varbindString(platforms[suffix]),
			LastUpdated:    now,
			Active:         true,
		}
		links = append(links, link)
	}
	return links
}

func (TopologyModule) Validate(items []any) bool {
	for _, item := range items {
		if _, ok := item.(model.TopologyLink); !ok {
			return false
		}
	}
	return true
}

// lldpRowSuffix returns the last three arcs of oid. For an LLDP
// remote-table column (indexed by lldpRemTimeMark.lldpRemLocalPortNum.
// lldpRemIndex) that is everything after the column OID; LLDP table
// indices are multi-valued, unlike ifTable's single trailing arc.
func lldpRowSuffix(oid string) string {
	i := strings.LastIndex(oid, ".")
	for c := 0; c < 2 && i > 0; c++ {
		i = strings.LastIndex(oid[:i], ".")
	}
	if i < 0 {
		return oid
	}
	return oid[i+1:]
}

func indexSuffixVarbinds(vbs []snmp.Varbind) map[string]snmp.Varbind {
	out := make(map[string]snmp.Varbind, len(vbs))
	for _, vb := range vbs {
		out[lldpRowSuffix(vb.Oid)] = vb
	}
	return out
}
