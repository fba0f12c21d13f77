// Package timeseries writes the four measurements
// (interface_metrics, device_metrics, sensor_metrics, alert_metrics) to
// an external time-series store over plain HTTP using the line
// protocol, sending each point as its own write through the teacher's
// internal/httputil.Do retry helper (reused unmodified — its
// exponential backoff + jitter over retryable HTTP statuses is exactly
// what a time-series HTTP write needs). No pack repo carries an
// InfluxDB client SDK as a dependency outside a k8s-cluster-management
// tool, so this one store adapter is built on net/http directly; see
// DESIGN.md for the justification.
package timeseries

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ymonitor/ymonitor/internal/httputil"
	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/model"
)

var log = logging.L("store.timeseries")

// Writer posts line-protocol points to a time-series HTTP endpoint
// (e.g. an InfluxDB /write or /api/v2/write URL). It writes points
// individually rather than batching across ticks: the poller cadence
// (default tens of seconds) already bounds request volume, and
// per-point writes keep a single slow device from delaying every
// other device's point.
type Writer struct {
	URL        string
	HTTPClient *http.Client
	RetryCfg   httputil.RetryConfig
}

// New builds a Writer posting to url (empty url disables writes,
// letting a deployment run without a time-series backend configured).
func New(url string) *Writer {
	return &Writer{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		RetryCfg:   httputil.DefaultRetryConfig(),
	}
}

// WriteInterfaceMetrics writes one interface_metrics point, satisfying
// internal/poller.MetricsWriter.
func (w *Writer) WriteInterfaceMetrics(ctx context.Context, m model.InterfaceMetrics) error {
	tags := map[string]string{
		"device_id":    m.DeviceID,
		"port_id":      m.PortID,
		"oper_status":  string(m.OperStatus),
		"admin_status": string(m.AdminStatus),
	}
	fields := map[string]float64{
		"if_index":        float64(m.IfIndex),
		"in_octets":       float64(m.InOctets),
		"out_octets":      float64(m.OutOctets),
		"in_errors":       float64(m.InErrors),
		"out_errors":      float64(m.OutErrors),
		"in_discards":     float64(m.InDiscards),
		"out_discards":    float64(m.OutDiscards),
		"utilization":     m.Utilization,
		"in_utilization":  m.InUtilization,
		"out_utilization": m.OutUtilization,
		"error_rate":      m.ErrorRate,
		"discard_rate":    m.DiscardRate,
	}
	return w.write(ctx, "interface_metrics", tags, fields, m.Timestamp)
}

// WriteDeviceMetrics writes one device_metrics point.
func (w *Writer) WriteDeviceMetrics(ctx context.Context, m model.DeviceMetrics) error {
	tags := map[string]string{
		"device_id": m.DeviceID,
		"hostname":  m.Hostname,
		"status":    string(m.Status),
	}
	fields := map[string]float64{
		"response_time_ms": float64(m.ResponseTime.Milliseconds()),
		"availability":     m.Availability,
	}
	if m.CPUUsage != nil {
		fields["cpu"] = *m.CPUUsage
	}
	if m.MemoryUsage != nil {
		fields["memory"] = *m.MemoryUsage
	}
	if m.DiskUsage != nil {
		fields["disk"] = *m.DiskUsage
	}
	return w.write(ctx, "device_metrics", tags, fields, m.Timestamp)
}

// WriteSensorReading writes one sensor_metrics point.
func (w *Writer) WriteSensorReading(ctx context.Context, r model.SensorReading) error {
	tags := map[string]string{
		"device_id":   r.DeviceID,
		"sensor_id":   r.SensorID,
		"sensor_type": string(r.SensorType),
		"unit":        r.Unit,
	}
	fields := map[string]float64{"value": r.Value}
	return w.write(ctx, "sensor_metrics", tags, fields, r.Timestamp)
}

// WriteAlertMetric writes one alert_metrics aggregate point.
func (w *Writer) WriteAlertMetric(ctx context.Context, p model.AlertMetricPoint) error {
	tags := map[string]string{
		"device_id":  p.DeviceID,
		"alert_type": p.AlertType,
		"severity":   string(p.Severity),
	}
	fields := map[string]float64{"count": float64(p.Count)}
	return w.write(ctx, "alert_metrics", tags, fields, p.Timestamp)
}

func (w *Writer) write(ctx context.Context, measurement string, tags map[string]string, fields map[string]float64, ts time.Time) error {
	if w.URL == "" {
		return nil
	}
	line := encodeLine(measurement, tags, fields, ts)

	resp, err := httputil.Do(ctx, w.HTTPClient, http.MethodPost, w.URL, []byte(line), http.Header{
		"Content-Type": []string{"text/plain; charset=utf-8"},
	}, w.RetryCfg)
	if err != nil {
		log.Warn("time-series write failed", "measurement", measurement, "error", err)
		return fmt.Errorf("timeseries: write %s: %w", measurement, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("timeseries: write %s: unexpected status %d", measurement, resp.StatusCode)
	}
	return nil
}

// encodeLine renders one line-protocol point: measurement,tag=val
// field=val 000000000.
func encodeLine(measurement string, tags map[string]string, fields map[string]float64, ts time.Time) string {
	var b strings.Builder
	b.WriteString(escapeMeasurement(measurement))
	for k, v := range tags {
		if v == "" {
			continue
		}
		b.WriteByte(',')
		b.WriteString(escapeTag(k))
		b.WriteByte('=')
		b.WriteString(escapeTag(v))
	}
	b.WriteByte(' ')
	first := true
	for k, v := range fields {
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(escapeTag(k))
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(ts.UnixNano(), 10))
	return b.String()
}

func escapeMeasurement(s string) string {
	return strings.NewReplacer(",", "\\,", " ", "\\ ").Replace(s)
}

func escapeTag(s string) string {
	return strings.NewReplacer(",", "\\,", " ", "\\ ", "=", "\\=").Replace(s)
}
