package main

import (
	"context"

	"github.com/ymonitor/ymonitor/internal/metriccache"
	"github.com/ymonitor/ymonitor/internal/model"
	"github.com/ymonitor/ymonitor/internal/store/timeseries"
)

// metricsFanout satisfies internal/poller.MetricsWriter by writing
// every sample to both the time-series store (durable history) and
// the in-memory latest-sample cache (what the alert evaluator and
// internal/api's test_rule read back on the next tick), so the
// pollers have a single write path regardless of how many downstream
// consumers a sample has.
type metricsFanout struct {
	series *timeseries.Writer
	latest *metriccache.Cache
}

func (f *metricsFanout) WriteInterfaceMetrics(ctx context.Context, m model.InterfaceMetrics) error {
	f.latest.PutInterfaceMetrics(m)
	return f.series.WriteInterfaceMetrics(ctx, m)
}

func (f *metricsFanout) WriteSensorReading(ctx context.Context, r model.SensorReading) error {
	f.latest.PutSensorReading(r)
	return f.series.WriteSensorReading(ctx, r)
}

func (f *metricsFanout) WriteDeviceMetrics(ctx context.Context, m model.DeviceMetrics) error {
	f.latest.PutDeviceMetrics(m)
	return f.series.WriteDeviceMetrics(ctx, m)
}
