package poller

import (
	"math"
	"testing"

	"github.com/ymonitor/ymonitor/internal/model"
)

func TestScaleRawTemperatureDividesWhenOverMagnitude(t *testing.T) {
	if got := scaleRaw(255, model.SensorTemperature); got != 25.5 {
		t.Fatalf("scaleRaw(255, temperature) = %v, want 25.5", got)
	}
	if got := scaleRaw(25, model.SensorTemperature); got != 25 {
		t.Fatalf("scaleRaw(25, temperature) = %v, want 25 (below magnitude threshold)", got)
	}
}

func TestScaleRawVoltageAndPower(t *testing.T) {
	if got := scaleRaw(12500, model.SensorVoltage); got != 12.5 {
		t.Fatalf("scaleRaw(12500, voltage) = %v, want 12.5", got)
	}
	if got := scaleRaw(150000, model.SensorPower); got != 150 {
		t.Fatalf("scaleRaw(150000, power) = %v, want 150", got)
	}
}

func TestTransformAppliesMultiplierAndDivisor(t *testing.T) {
	s := model.Sensor{Type: model.SensorCurrent, Multiplier: 2, Divisor: 4}
	got := transform(100, s)
	want := 50.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("transform() = %v, want %v", got, want)
	}
}

func TestTransformDefaultsMultiplierDivisorToOne(t *testing.T) {
	s := model.Sensor{Type: model.SensorOther}
	if got := transform(42, s); got != 42 {
		t.Fatalf("transform() = %v, want 42", got)
	}
}
