package alertengine

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/ymonitor/ymonitor/internal/model"
)

// MetricContext is the per-(device, tick) document condition.go resolves
// dotted field paths against ("device.cpu", "condition_3.result", etc).
// It is marshaled to JSON once per Resolve call so gjson.GetBytes can
// walk arbitrary dotted paths, including into the condition_N.result
// entries appended as earlier conditions in the same rule evaluate, so
// a condition can reference an earlier condition's outcome left to right.
type MetricContext struct {
	data map[string]any
}

// NewMetricContext builds a context from a device's latest samples. dm,
// ifaces, and sensors may be nil/empty when no sample has landed yet.
func NewMetricContext(device model.Device, dm *model.DeviceMetrics, ifaces []model.InterfaceMetrics, sensors []model.SensorReading) *MetricContext {
	deviceMap := map[string]any{
		"id":       device.ID,
		"hostname": device.Hostname,
		"address":  device.Address,
		"os":       device.OS,
		"vendor":   device.Vendor,
		"model":    device.Model,
		"status":   string(device.Status),
		"uptime_s": device.UptimeS,
	}
	if dm != nil {
		deviceMap["response_time_ms"] = float64(dm.ResponseTime.Milliseconds())
		deviceMap["availability"] = dm.Availability
		if dm.CPUUsage != nil {
			deviceMap["cpu"] = *dm.CPUUsage
		}
		if dm.MemoryUsage != nil {
			deviceMap["memory"] = *dm.MemoryUsage
		}
		if dm.DiskUsage != nil {
			deviceMap["disk"] = *dm.DiskUsage
		}
	}

	ifaceList := make([]map[string]any, 0, len(ifaces))
	for _, m := range ifaces {
		ifaceList = append(ifaceList, map[string]any{
			"if_index":        m.IfIndex,
			"utilization":     m.Utilization,
			"in_utilization":  m.InUtilization,
			"out_utilization": m.OutUtilization,
			"error_rate":      m.ErrorRate,
			"discard_rate":    m.DiscardRate,
			"admin_status":    string(m.AdminStatus),
			"oper_status":     string(m.OperStatus),
		})
	}

	sensorList := make([]map[string]any, 0, len(sensors))
	for _, s := range sensors {
		sensorList = append(sensorList, map[string]any{
			"sensor_type": string(s.SensorType),
			"value":       s.Value,
			"unit":        s.Unit,
		})
	}

	return &MetricContext{data: map[string]any{
		"device":     deviceMap,
		"interfaces": ifaceList,
		"sensors":    sensorList,
	}}
}

// SetConditionResult records condition index's outcome (1-based) so a
// later condition in the same rule can reference it via
// "condition_N.result".
func (c *MetricContext) SetConditionResult(index int, result bool) {
	c.data[conditionKey(index)] = map[string]any{"result": result}
}

func conditionKey(index int) string {
	return "condition_" + itoa(index)
}

// ConditionResult returns a previously recorded condition outcome
// (1-based index), for callers that evaluate a rule's conditions and
// then need each individual outcome (e.g. a rule dry-run/test endpoint).
func (c *MetricContext) ConditionResult(index int) (bool, bool) {
	v, ok := c.data[conditionKey(index)]
	if !ok {
		return false, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return false, false
	}
	r, ok := m["result"].(bool)
	return r, ok
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Resolve walks path against the context, returning the gjson result and
// whether it existed. An unresolved path yields exists=false, which fails
// every operator.
func (c *MetricContext) Resolve(path string) (gjson.Result, bool) {
	doc, err := json.Marshal(c.data)
	if err != nil {
		return gjson.Result{}, false
	}
	r := gjson.GetBytes(doc, path)
	return r, r.Exists()
}

// Raw exposes the underlying document for template rendering.
func (c *MetricContext) Raw() map[string]any {
	return c.data
}
