// Package metriccache holds the most recent poll sample per device,
// satisfying internal/alertengine.MetricsSource so the rule evaluator
// and internal/api's test_rule operation can read "the current value"
// without round-tripping to the time-series store on every tick. The
// RWMutex-guarded map generalizes the same session-table shape
// internal/snmp.Transport and internal/discovery.Orchestrator use for
// their own process-local state.
package metriccache

import (
	"context"
	"sync"

	"github.com/ymonitor/ymonitor/internal/model"
)

// Cache is the in-memory latest-sample store. Construct it with New; the
// zero value has nil maps and the Put methods panic on it.
type Cache struct {
	mu      sync.RWMutex
	devices map[string]model.DeviceMetrics
	ifaces  map[string]map[string]model.InterfaceMetrics // deviceID -> portID -> sample
	sensors map[string]map[string]model.SensorReading    // deviceID -> sensorID -> sample
}

// New constructs an empty Cache.
func New() *Cache {
	return &Cache{
		devices: make(map[string]model.DeviceMetrics),
		ifaces:  make(map[string]map[string]model.InterfaceMetrics),
		sensors: make(map[string]map[string]model.SensorReading),
	}
}

// PutDeviceMetrics records device's latest sample.
func (c *Cache) PutDeviceMetrics(m model.DeviceMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.devices[m.DeviceID] = m
}

// PutInterfaceMetrics records a port's latest sample.
func (c *Cache) PutInterfaceMetrics(m model.InterfaceMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byPort, ok := c.ifaces[m.DeviceID]
	if !ok {
		byPort = make(map[string]model.InterfaceMetrics)
		c.ifaces[m.DeviceID] = byPort
	}
	byPort[m.PortID] = m
}

// PutSensorReading records a sensor's latest sample.
func (c *Cache) PutSensorReading(r model.SensorReading) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byID, ok := c.sensors[r.DeviceID]
	if !ok {
		byID = make(map[string]model.SensorReading)
		c.sensors[r.DeviceID] = byID
	}
	byID[r.SensorID] = r
}

// LatestDeviceMetrics implements alertengine.MetricsSource.
func (c *Cache) LatestDeviceMetrics(_ context.Context, deviceID string) (*model.DeviceMetrics, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.devices[deviceID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// LatestInterfaceMetrics implements alertengine.MetricsSource.
func (c *Cache) LatestInterfaceMetrics(_ context.Context, deviceID string) ([]model.InterfaceMetrics, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	byPort := c.ifaces[deviceID]
	out := make([]model.InterfaceMetrics, 0, len(byPort))
	for _, m := range byPort {
		out = append(out, m)
	}
	return out, nil
}

// LatestSensorReadings implements alertengine.MetricsSource.
func (c *Cache) LatestSensorReadings(_ context.Context, deviceID string) ([]model.SensorReading, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	byID := c.sensors[deviceID]
	out := make([]model.SensorReading, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	return out, nil
}
