package alertengine

import (
	"testing"

	"github.com/ymonitor/ymonitor/internal/model"
)

func TestDeviceMatchesNilFilterMatchesAll(t *testing.T) {
	d := model.Device{Hostname: "any-host"}
	if !DeviceMatches(d, nil) {
		t.Fatalf("expected nil filter to match every device")
	}
}

func TestDeviceMatchesHostnameRegexCaseInsensitive(t *testing.T) {
	d := model.Device{Hostname: "CORE-SW-01"}
	filter := &model.DeviceFilter{Hostname: []string{"^core-sw-\\d+$"}}
	if !DeviceMatches(d, filter) {
		t.Fatalf("expected case-insensitive hostname regex to match")
	}
}

func TestDeviceMatchesIPExact(t *testing.T) {
	d := model.Device{Address: "10.0.0.1"}
	filter := &model.DeviceFilter{IP: []string{"10.0.0.2"}}
	if DeviceMatches(d, filter) {
		t.Fatalf("expected exact IP mismatch to not match")
	}
}

func TestDeviceMatchesExcludeInverts(t *testing.T) {
	d := model.Device{OS: "ios"}
	filter := &model.DeviceFilter{OS: []string{"ios"}, Exclude: true}
	if DeviceMatches(d, filter) {
		t.Fatalf("expected exclude filter to invert a matching OS")
	}
}
