// Package types holds small domain-specific value types used across
// voltcapd, mirroring the teacher's practice of wrapping raw numeric
// kinds (see the upstream Bytes type) rather than passing bare floats
// and ints between packages.
package types

import "fmt"

// Points is a stress-accounting balance. Positive means headroom remains;
// it is allowed to go arbitrarily negative while the rail stays capped.
type Points float64

func (p Points) String() string {
	return fmt.Sprintf("%.3f pts", float64(p))
}

// Millivolts is a rail voltage reading or cap ceiling.
type Millivolts int

func (m Millivolts) String() string {
	return fmt.Sprintf("%dmV", int(m))
}

// Deci10ms is a cumulative dwell-time counter reported by the kernel in
// units of 10 milliseconds. It only grows across the lifetime of a boot.
type Deci10ms uint64

// Seconds converts a duration expressed in 10ms ticks to seconds.
func (d Deci10ms) Seconds() float64 {
	return float64(d) / 100
}

// MilliCelsius is a temperature reading in thousandths of a degree Celsius,
// the unit the kernel thermal framework and this daemon's breakpoint table
// both use.
type MilliCelsius int
