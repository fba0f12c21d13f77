package poller

import (
	"math"
	"testing"
	"time"
)

func TestCounterDelta32Rollover(t *testing.T) {
	// t=0 in_octets=2^32-1000; t=10 in_octets=1000. Expected delta =
	// 2000 bytes.
	prev := uint64(1)<<32 - 1000
	cur := uint64(1000)
	if got := counterDelta32(cur, prev); got != 2000 {
		t.Fatalf("counterDelta32() = %d, want 2000", got)
	}
}

func TestCounterDelta32NoRollover(t *testing.T) {
	if got := counterDelta32(1_000_000_000, 900_000_000); got != 100_000_000 {
		t.Fatalf("counterDelta32() = %d, want 100000000", got)
	}
}

func TestCounterDelta64WrapsModularly(t *testing.T) {
	prev := uint64(1)<<64 - 500
	cur := uint64(500)
	if got := counterDelta64(cur, prev); got != 1000 {
		t.Fatalf("counterDelta64() = %d, want 1000", got)
	}
}

func TestDeriveRatesUtilizationScenario(t *testing.T) {
	// speed_bps=1e9, in_octets 900M -> 1000M over 300s. Expected
	// in_utilization = 0.2667% (within 1e-3).
	t0 := time.Unix(0, 0)
	prev := sample{At: t0, InOctets: 900_000_000}
	cur := sample{At: t0.Add(300 * time.Second), InOctets: 1_000_000_000}

	rt := deriveRates(prev, cur, 1_000_000_000)
	want := 0.2667
	if math.Abs(rt.InUtilization-want) > 1e-3 {
		t.Fatalf("InUtilization = %v, want ~%v", rt.InUtilization, want)
	}
}

func TestDeriveRatesRolloverScenario(t *testing.T) {
	// A rollover across the sample boundary: utilization =
	// (2000*8/10)/1e9*100 = 0.00016%.
	t0 := time.Unix(0, 0)
	prev := sample{At: t0, InOctets: uint64(1)<<32 - 1000}
	cur := sample{At: t0.Add(10 * time.Second), InOctets: 1000}

	rt := deriveRates(prev, cur, 1_000_000_000)
	want := 0.00016
	if math.Abs(rt.InUtilization-want) > 1e-5 {
		t.Fatalf("InUtilization = %v, want ~%v", rt.InUtilization, want)
	}
}

func TestDeriveRatesZeroOrNegativeDtYieldsZero(t *testing.T) {
	t0 := time.Unix(100, 0)
	prev := sample{At: t0, InOctets: 100}
	cur := sample{At: t0, InOctets: 200} // dt = 0
	rt := deriveRates(prev, cur, 1_000_000_000)
	if rt.Utilization != 0 || rt.InUtilization != 0 || rt.OutUtilization != 0 {
		t.Fatalf("expected zero rates when dt_s <= 0, got %+v", rt)
	}
}

func TestDeriveRatesErrorRate(t *testing.T) {
	t0 := time.Unix(0, 0)
	prev := sample{At: t0, InUcast: 1000, OutUcast: 1000, InErrors: 0, OutErrors: 0}
	cur := sample{At: t0.Add(time.Minute), InUcast: 2000, OutUcast: 2000, InErrors: 10, OutErrors: 10}
	rt := deriveRates(prev, cur, 0)
	// (10+10)/(1000+1000)*100 = 1%
	if math.Abs(rt.ErrorRate-1.0) > 1e-9 {
		t.Fatalf("ErrorRate = %v, want 1.0", rt.ErrorRate)
	}
}

func TestDeriveDeltasPrefersHCWhenBothSamplesReportIt(t *testing.T) {
	hcPrev := uint64(5_000_000_000)
	hcCur := uint64(6_000_000_000)
	prev := sample{InOctets: 1, HCInOctets: &hcPrev}
	cur := sample{InOctets: 2, HCInOctets: &hcCur}
	d := deriveDeltas(prev, cur)
	if d.InOctets != 1_000_000_000 {
		t.Fatalf("deriveDeltas() InOctets = %d, want HC-derived 1000000000", d.InOctets)
	}
}
