package metriccache

import (
	"context"
	"testing"

	"github.com/ymonitor/ymonitor/internal/model"
)

func TestLatestDeviceMetricsReturnsNilWhenAbsent(t *testing.T) {
	c := New()
	m, err := c.LatestDeviceMetrics(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil for unknown device, got %+v", m)
	}
}

func TestPutAndLatestDeviceMetricsRoundTrips(t *testing.T) {
	c := New()
	c.PutDeviceMetrics(model.DeviceMetrics{DeviceID: "dev-1", Availability: 1})
	m, err := c.LatestDeviceMetrics(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m == nil || m.Availability != 1 {
		t.Fatalf("expected cached sample, got %+v", m)
	}
}

func TestLatestInterfaceMetricsReturnsAllPortsForDevice(t *testing.T) {
	c := New()
	c.PutInterfaceMetrics(model.InterfaceMetrics{DeviceID: "dev-1", PortID: "p1"})
	c.PutInterfaceMetrics(model.InterfaceMetrics{DeviceID: "dev-1", PortID: "p2"})
	c.PutInterfaceMetrics(model.InterfaceMetrics{DeviceID: "dev-2", PortID: "p3"})

	got, err := c.LatestInterfaceMetrics(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 ports for dev-1, got %d", len(got))
	}
}

func TestPutInterfaceMetricsOverwritesSamePort(t *testing.T) {
	c := New()
	c.PutInterfaceMetrics(model.InterfaceMetrics{DeviceID: "dev-1", PortID: "p1", Utilization: 10})
	c.PutInterfaceMetrics(model.InterfaceMetrics{DeviceID: "dev-1", PortID: "p1", Utilization: 90})

	got, err := c.LatestInterfaceMetrics(context.Background(), "dev-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Utilization != 90 {
		t.Fatalf("expected single updated sample, got %+v", got)
	}
}
