package timeseries

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
)

func TestEncodeLineIncludesMeasurementTagsAndFields(t *testing.T) {
	ts := time.Unix(0, 1700000000000000000)
	line := encodeLine("interface_metrics",
		map[string]string{"device_id": "dev-1"},
		map[string]float64{"utilization": 42.5},
		ts,
	)
	if !strings.HasPrefix(line, "interface_metrics,device_id=dev-1 ") {
		t.Fatalf("unexpected line prefix: %q", line)
	}
	if !strings.Contains(line, "utilization=42.5") {
		t.Fatalf("expected utilization field, got %q", line)
	}
	if !strings.HasSuffix(line, "1700000000000000000") {
		t.Fatalf("expected nanosecond timestamp suffix, got %q", line)
	}
}

func TestEncodeLineEscapesSpacesAndCommas(t *testing.T) {
	line := encodeLine("sensor_metrics",
		map[string]string{"unit": "deg C, F"},
		map[string]float64{"value": 1},
		time.Unix(0, 0),
	)
	if !strings.Contains(line, `unit=deg\ C\,\ F`) {
		t.Fatalf("expected escaped tag value, got %q", line)
	}
}

func TestWriteIsNoOpWithoutURL(t *testing.T) {
	w := New("")
	err := w.WriteSensorReading(context.Background(), model.SensorReading{
		Timestamp: time.Now(),
		DeviceID:  "dev-1",
	})
	if err != nil {
		t.Fatalf("expected no-op write to succeed with empty URL, got %v", err)
	}
}
