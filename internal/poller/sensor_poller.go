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

// Entity-Sensor MIB value column; suffixed with ".<index>" per sensor
// polled.
const oidEntSensorValuePoll = "1.3.6.1.4.1.9.9.91.1.1.1.1.4"

// SensorPoller is the cron job that polls environmental sensors.
type SensorPoller struct {
	Transport   *snmp.Transport
	Devices     DeviceSource
	Sensors     SensorRepository
	Status      DeviceStatusRepository
	Metrics     MetricsWriter
	Triggers    chan<- Trigger
	HistorySize int

	Pool *workerpool.Pool

	historyMu sync.Mutex
	history   map[string]*ring.Buffer[float64]
	initOnce  sync.Once
}

func (p *SensorPoller) init() {
	p.initOnce.Do(func() {
		p.history = make(map[string]*ring.Buffer[float64])
		if p.HistorySize <= 0 {
			p.HistorySize = 200
		}
	})
}

// Run executes one sensor poll cycle: batches run sequentially,
// devices within a batch concurrently.
func (p *SensorPoller) Run(ctx context.Context, batchSize int) {
	p.init()
	log := logging.L("poller.sensor")

	devices, err := p.Devices.ListEnabledWithSensors(ctx)
	if err != nil {
		log.Error("failed to list devices for sensor poll", "error", err)
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
				log.Warn("sensor poll task rejected, pool saturated", "device_id", device.ID)
			}
		}
		wg.Wait()
	}
}

func (p *SensorPoller) pollDevice(ctx context.Context, device model.Device) {
	log := logging.WithDevice(logging.L("poller.sensor"), device.ID, "poll_sensors")

	start := time.Now()
	probe := p.Transport.Get(ctx, device.Hostname, device.SNMP, []string{oidSysDescrProbe})
	responseTime := time.Since(start)
	if !probe.Success {
		_ = p.Status.SetStatus(ctx, device.ID, model.DeviceDown, responseTime)
		log.Warn("device unreachable, aborting sensor poll", "error", probe.Error)
		return
	}
	_ = p.Status.SetStatus(ctx, device.ID, model.DeviceUp, responseTime)

	sensors, err := p.Sensors.ListByDevice(ctx, device.ID)
	if err != nil {
		log.Error("failed to list sensors", "error", err)
		return
	}

	for _, s := range sensors {
		if s.Disabled {
			continue
		}
		p.pollSensor(ctx, device, s)
	}
}

func (p *SensorPoller) pollSensor(ctx context.Context, device model.Device, s model.Sensor) {
	log := logging.WithDevice(logging.L("poller.sensor"), device.ID, "poll_sensor")

	oid := oidEntSensorValuePoll + "." + strconv.Itoa(s.Index)
	r := p.Transport.Get(ctx, device.Hostname, device.SNMP, []string{oid})
	if !r.Success || len(r.Varbinds) == 0 {
		log.Warn("failed to poll sensor value", "index", s.Index, "error", r.Error)
		return
	}

	raw, ok := r.Varbinds[0].AsUint64()
	if !ok {
		log.Warn("sensor value not numeric", "index", s.Index)
		return
	}

	value := transform(float64(raw), s)

	now := time.Now()
	p.pushHistory(s.Key(), value)

	s.PrevValue = s.Value
	s.Value = &value

	if err := p.Sensors.UpdateReading(ctx, s); err != nil {
		log.Error("failed to persist sensor reading", "index", s.Index, "error", err)
	}

	reading := model.SensorReading{
		Timestamp:  now,
		DeviceID:   device.ID,
		SensorID:   s.ID,
		SensorType: s.Type,
		Unit:       s.Type.Unit(),
		Value:      value,
	}
	if err := p.Metrics.WriteSensorReading(ctx, reading); err != nil {
		log.Error("failed to write sensor time-series point", "error", err)
	}

	if trig := sensorThresholds(s, value, now); trig != nil && p.Triggers != nil {
		select {
		case p.Triggers <- *trig:
		default:
			log.Warn("trigger channel full, dropping sensor threshold event", "sensor_id", s.ID)
		}
	}
}

func (p *SensorPoller) pushHistory(key string, v float64) {
	p.historyMu.Lock()
	defer p.historyMu.Unlock()
	buf, ok := p.history[key]
	if !ok {
		buf = ring.New[float64](p.HistorySize)
		p.history[key] = buf
	}
	buf.Push(v)
}
