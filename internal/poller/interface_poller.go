package poller

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/ring"
	"github.com/ymonitor/ymonitor/internal/snmp"
	"github.com/ymonitor/ymonitor/internal/workerpool"
)

// Interfaces MIB / ifXTable scalar OIDs, one SNMP GET per port; each
// is suffixed with ".<ifIndex>" per port polled.
const (
	oidSysDescrProbe = "1.3.6.1.2.1.1.1.0"

	oidIfOperStatus   = "1.3.6.1.2.1.2.2.1.8"
	oidIfInOctets     = "1.3.6.1.2.1.2.2.1.10"
	oidIfInUcastPkts  = "1.3.6.1.2.1.2.2.1.11"
	oidIfInDiscards   = "1.3.6.1.2.1.2.2.1.13"
	oidIfInErrors     = "1.3.6.1.2.1.2.2.1.14"
	oidIfOutOctets    = "1.3.6.1.2.1.2.2.1.16"
	oidIfOutUcastPkts = "1.3.6.1.2.1.2.2.1.17"
	oidIfOutDiscards  = "1.3.6.1.2.1.2.2.1.19"
	oidIfOutErrors    = "1.3.6.1.2.1.2.2.1.20"
	oidIfHCInOctets   = "1.3.6.1.2.1.31.1.1.1.6"
	oidIfHCOutOctets  = "1.3.6.1.2.1.31.1.1.1.10"
)

// DeviceSource lists the devices each poller cycle enumerates.
type DeviceSource interface {
	ListEnabledWithPorts(ctx context.Context) ([]model.Device, error)
	ListEnabledWithSensors(ctx context.Context) ([]model.Device, error)
}

// PortRepository is the relational seam the interface poller reads
// current ports from and writes polled counters back to.
type PortRepository interface {
	ListByDevice(ctx context.Context, deviceID string) ([]model.Port, error)
	UpdateCounters(ctx context.Context, port model.Port) error
}

// SensorRepository is the relational seam the sensor poller reads
// current sensors from and writes polled readings back to.
type SensorRepository interface {
	ListByDevice(ctx context.Context, deviceID string) ([]model.Sensor, error)
	UpdateReading(ctx context.Context, sensor model.Sensor) error
}

// DeviceStatusRepository records the device-level reachability
// outcome of a poll cycle.
type DeviceStatusRepository interface {
	SetStatus(ctx context.Context, deviceID string, status model.DeviceStatus, responseTime time.Duration) error
}

// MetricsWriter persists raw poll samples to the time-series store.
type MetricsWriter interface {
	WriteInterfaceMetrics(ctx context.Context, m model.InterfaceMetrics) error
	WriteSensorReading(ctx context.Context, r model.SensorReading) error
	WriteDeviceMetrics(ctx context.Context, m model.DeviceMetrics) error
}

// InterfacePoller is the cron job that polls interface counters,
// registered on a shared internal/scheduler.Scheduler. Devices within
// a batch run concurrently through the teacher's internal/workerpool
// (reused unmodified); per-device work is sequential.
type InterfacePoller struct {
	Transport      *snmp.Transport
	Devices        DeviceSource
	Ports          PortRepository
	Status         DeviceStatusRepository
	Metrics        MetricsWriter
	Triggers       chan<- Trigger
	ErrorThreshold float64
	HistorySize    int

	Pool *workerpool.Pool

	lock      *KeyLock
	historyMu sync.Mutex
	history   map[string]*ring.Buffer[sample]
	initOnce  sync.Once
}

func (p *InterfacePoller) init() {
	p.initOnce.Do(func() {
		p.lock = NewKeyLock(64)
		p.history = make(map[string]*ring.Buffer[sample])
		if p.HistorySize <= 0 {
			p.HistorySize = 100
		}
	})
}

// Run executes one poll cycle: devices are chunked into batches
// (caller-supplied concurrency from scheduler admission control);
// batches run sequentially, devices within a batch concurrently.
func (p *InterfacePoller) Run(ctx context.Context, batchSize int) {
	p.init()
	log := logging.L("poller.interface")

	devices, err := p.Devices.ListEnabledWithPorts(ctx)
	if err != nil {
		log.Error("failed to list devices for interface poll", "error", err)
		return
	}

	for start := 0; start < len(devices); start += batchSize {
		end := start + batchSize
		if end > len(devices) {
			end = len(devices)
		}
		batch := devices[start:end]

		var wg sync.WaitGroup
		for _, device := range batch {
			device := device
			wg.Add(1)
			submitted := p.Pool.Submit(func() {
				defer wg.Done()
				p.pollDevice(ctx, device)
			})
			if !submitted {
				wg.Done()
				log.Warn("interface poll task rejected, pool saturated", "device_id", device.ID)
			}
		}
		wg.Wait()
	}
}

func (p *InterfacePoller) pollDevice(ctx context.Context, device model.Device) {
	log := logging.WithDevice(logging.L("poller.interface"), device.ID, "poll_interfaces")

	start := time.Now()
	probe := p.Transport.Get(ctx, device.Hostname, device.SNMP, []string{oidSysDescrProbe})
	responseTime := time.Since(start)
	now := time.Now()

	if !probe.Success {
		_ = p.Status.SetStatus(ctx, device.ID, model.DeviceDown, responseTime)
		if err := p.Metrics.WriteDeviceMetrics(ctx, model.DeviceMetrics{
			Timestamp: now, DeviceID: device.ID, Hostname: device.Hostname,
			Status: model.DeviceDown, ResponseTime: responseTime, Availability: 0,
		}); err != nil {
			log.Error("failed to write device time-series point", "error", err)
		}
		log.Warn("device unreachable, aborting interface poll", "error", probe.Error)
		return
	}
	_ = p.Status.SetStatus(ctx, device.ID, model.DeviceUp, responseTime)
	if err := p.Metrics.WriteDeviceMetrics(ctx, model.DeviceMetrics{
		Timestamp: now, DeviceID: device.ID, Hostname: device.Hostname,
		Status: model.DeviceUp, ResponseTime: responseTime, Availability: 1,
	}); err != nil {
		log.Error("failed to write device time-series point", "error", err)
	}

	ports, err := p.Ports.ListByDevice(ctx, device.ID)
	if err != nil {
		log.Error("failed to list ports", "error", err)
		return
	}

	for _, port := range ports {
		if port.Disabled {
			continue
		}
		p.pollPort(ctx, device, port)
	}
}

func (p *InterfacePoller) pollPort(ctx context.Context, device model.Device, port model.Port) {
	log := logging.WithDevice(logging.L("poller.interface"), device.ID, "poll_port")

	suffix := "." + strconv.Itoa(port.IfIndex)
	oids := []string{
		oidIfOperStatus + suffix,
		oidIfInOctets + suffix, oidIfOutOctets + suffix,
		oidIfInUcastPkts + suffix, oidIfOutUcastPkts + suffix,
		oidIfInDiscards + suffix, oidIfOutDiscards + suffix,
		oidIfInErrors + suffix, oidIfOutErrors + suffix,
		oidIfHCInOctets + suffix, oidIfHCOutOctets + suffix,
	}

	r := p.Transport.Get(ctx, device.Hostname, device.SNMP, oids)
	if !r.Success {
		log.Warn("failed to poll port counters", "if_index", port.IfIndex, "error", r.Error)
		return
	}

	now := time.Now()
	cur := sample{At: now}
	for _, vb := range r.Varbinds {
		switch {
		case hasPrefix(vb.Oid, oidIfOperStatus):
			port.OperStatus = operStatusOfCode(vb)
		case hasPrefix(vb.Oid, oidIfInOctets):
			cur.InOctets, _ = vb.AsUint64()
		case hasPrefix(vb.Oid, oidIfOutOctets):
			cur.OutOctets, _ = vb.AsUint64()
		case hasPrefix(vb.Oid, oidIfInUcastPkts):
			cur.InUcast, _ = vb.AsUint64()
		case hasPrefix(vb.Oid, oidIfOutUcastPkts):
			cur.OutUcast, _ = vb.AsUint64()
		case hasPrefix(vb.Oid, oidIfInDiscards):
			cur.InDiscards, _ = vb.AsUint64()
		case hasPrefix(vb.Oid, oidIfOutDiscards):
			cur.OutDiscards, _ = vb.AsUint64()
		case hasPrefix(vb.Oid, oidIfInErrors):
			cur.InErrors, _ = vb.AsUint64()
		case hasPrefix(vb.Oid, oidIfOutErrors):
			cur.OutErrors, _ = vb.AsUint64()
		case hasPrefix(vb.Oid, oidIfHCInOctets):
			if v, ok := vb.AsUint64(); ok {
				cur.HCInOctets = &v
			}
		case hasPrefix(vb.Oid, oidIfHCOutOctets):
			if v, ok := vb.AsUint64(); ok {
				cur.HCOutOctets = &v
			}
		}
	}

	var speedBps uint64
	if port.SpeedBps != nil {
		speedBps = *port.SpeedBps
	}

	rt := p.recordAndDerive(port.Key(), cur, speedBps)

	port.InOctets, port.OutOctets = cur.InOctets, cur.OutOctets
	port.InUcast, port.OutUcast = cur.InUcast, cur.OutUcast
	port.InDiscards, port.OutDiscards = cur.InDiscards, cur.OutDiscards
	port.InErrors, port.OutErrors = cur.InErrors, cur.OutErrors
	port.HCInOctets, port.HCOutOctets = cur.HCInOctets, cur.HCOutOctets
	port.LastPolled = &now

	if err := p.Ports.UpdateCounters(ctx, port); err != nil {
		log.Error("failed to persist port counters", "if_index", port.IfIndex, "error", err)
	}

	metrics := model.InterfaceMetrics{
		Timestamp:   now,
		DeviceID:    device.ID,
		PortID:      port.ID,
		IfIndex:     port.IfIndex,
		AdminStatus: port.AdminStatus,
		OperStatus:  port.OperStatus,

		InOctets: cur.InOctets, OutOctets: cur.OutOctets,
		InUcast: cur.InUcast, OutUcast: cur.OutUcast,
		InDiscards: cur.InDiscards, OutDiscards: cur.OutDiscards,
		InErrors: cur.InErrors, OutErrors: cur.OutErrors,
		HCInOctets: cur.HCInOctets, HCOutOctets: cur.HCOutOctets,

		Utilization:    rt.Utilization,
		InUtilization:  rt.InUtilization,
		OutUtilization: rt.OutUtilization,
		ErrorRate:      rt.ErrorRate,
		DiscardRate:    rt.DiscardRate,
	}
	if err := p.Metrics.WriteInterfaceMetrics(ctx, metrics); err != nil {
		log.Error("failed to write interface time-series point", "error", err)
	}

	if trig := interfaceThresholds(port, rt, p.ErrorThreshold, now); trig != nil && p.Triggers != nil {
		select {
		case p.Triggers <- *trig:
		default:
			log.Warn("trigger channel full, dropping interface threshold event", "port_id", port.ID)
		}
	}
}

func (p *InterfacePoller) recordAndDerive(key string, cur sample, speedBps uint64) rates {
	var rt rates
	p.lock.With(key, func() {
		p.historyMu.Lock()
		buf, ok := p.history[key]
		if !ok {
			buf = ring.New[sample](p.HistorySize)
			p.history[key] = buf
		}
		p.historyMu.Unlock()

		if prev, ok := buf.Last(); ok {
			rt = deriveRates(prev, cur, speedBps)
		}
		buf.Push(cur)
	})
	return rt
}

func hasPrefix(oid, prefix string) bool {
	return len(oid) > len(prefix) && oid[:len(prefix)] == prefix
}

func operStatusOfCode(vb snmp.Varbind) model.IfOperStatus {
	v, _ := vb.AsUint64()
	switch v {
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
