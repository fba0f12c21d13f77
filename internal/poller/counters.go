package poller

import "time"

// thirtyTwoBitSpan is 2^32, the wraparound modulus for the Interfaces
// MIB's 32-bit traffic counters.
const thirtyTwoBitSpan = uint64(1) << 32

// counterDelta32 computes the delta between two samples of a 32-bit
// counter, detecting a single wraparound: for any two consecutive
// samples where current < previous, the delta is current + 2^32 -
// previous.
func counterDelta32(current, previous uint64) uint64 {
	if current >= previous {
		return current - previous
	}
	return current + (thirtyTwoBitSpan - previous)
}

// counterDelta64 is the HC (64-bit) counterpart, using modular 2^64
// arithmetic: Go's uint64 subtraction already wraps modulo 2^64, so a
// rollover delta falls out of the same expression as the steady-state
// case.
func counterDelta64(current, previous uint64) uint64 {
	return current - previous
}

// sample holds one poll's worth of raw counters for a port, used as
// both "previous" and "current" in deriveInterfaceRates.
type sample struct {
	At time.Time

	InOctets, OutOctets     uint64
	InErrors, OutErrors     uint64
	InDiscards, OutDiscards uint64
	InUcast, OutUcast       uint64

	HCInOctets, HCOutOctets *uint64
}

// deltas is the set of per-counter deltas computed between two
// samples.
type deltas struct {
	InOctets, OutOctets     uint64
	InErrors, OutErrors     uint64
	InDiscards, OutDiscards uint64
	InUcast, OutUcast       uint64
}

// deriveDeltas computes per-counter deltas between prev and cur,
// preferring HC (64-bit) octet counters over the 32-bit ones when both
// samples report them.
func deriveDeltas(prev, cur sample) deltas {
	d := deltas{
		InErrors:    counterDelta32(cur.InErrors, prev.InErrors),
		OutErrors:   counterDelta32(cur.OutErrors, prev.OutErrors),
		InDiscards:  counterDelta32(cur.InDiscards, prev.InDiscards),
		OutDiscards: counterDelta32(cur.OutDiscards, prev.OutDiscards),
		InUcast:     counterDelta32(cur.InUcast, prev.InUcast),
		OutUcast:    counterDelta32(cur.OutUcast, prev.OutUcast),
	}

	if prev.HCInOctets != nil && cur.HCInOctets != nil {
		d.InOctets = counterDelta64(*cur.HCInOctets, *prev.HCInOctets)
	} else {
		d.InOctets = counterDelta32(cur.InOctets, prev.InOctets)
	}

	if prev.HCOutOctets != nil && cur.HCOutOctets != nil {
		d.OutOctets = counterDelta64(*cur.HCOutOctets, *prev.HCOutOctets)
	} else {
		d.OutOctets = counterDelta32(cur.OutOctets, prev.OutOctets)
	}

	return d
}

// rates is the derived-field bundle attached to every InterfaceMetrics
// sample.
type rates struct {
	Utilization    float64
	InUtilization  float64
	OutUtilization float64
	ErrorRate      float64
	DiscardRate    float64
}

// deriveRates computes utilization from octet deltas against
// speed_bps, and error/discard rate as a fraction of unicast packet
// deltas, gated on a positive elapsed time between samples.
func deriveRates(prev, cur sample, speedBps uint64) rates {
	dtS := cur.At.Sub(prev.At).Seconds()
	if dtS <= 0 {
		return rates{}
	}

	d := deriveDeltas(prev, cur)

	var inUtil, outUtil float64
	if speedBps > 0 {
		inUtil = clampPercent((float64(d.InOctets) * 8 / dtS) / float64(speedBps) * 100)
		outUtil = clampPercent((float64(d.OutOctets) * 8 / dtS) / float64(speedBps) * 100)
	}

	var errRate float64
	if denom := d.InUcast + d.OutUcast; denom > 0 {
		errRate = float64(d.InErrors+d.OutErrors) / float64(denom) * 100
	}

	var discardRate float64
	if denom := d.InUcast + d.OutUcast; denom > 0 {
		discardRate = float64(d.InDiscards+d.OutDiscards) / float64(denom) * 100
	}

	util := inUtil
	if outUtil > util {
		util = outUtil
	}

	return rates{
		Utilization:    util,
		InUtilization:  inUtil,
		OutUtilization: outUtil,
		ErrorRate:      errRate,
		DiscardRate:    discardRate,
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
