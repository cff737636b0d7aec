// Package telemetry decodes the two independent kernel telemetry
// sources this daemon consumes: the rail-statistics sysfs file and the
// thermal generic-netlink event channel. Both paths only decode; they
// never interpret data semantically or mutate accounting state.
package telemetry

import "github.com/voltcapd/voltcapd/internal/types"

// RailPair is one voltage bin's cumulative dwell time, as reported by a
// single reading of the rail-stats file.
type RailPair struct {
	VoltageMV          types.Millivolts
	CumulativeTime10ms types.Deci10ms
}

// RailSnapshot is a full reading of the rail-stats file: one pair per
// voltage bin. A zero-length snapshot means the read failed or the file
// was malformed; callers must not mutate accounting state from it.
type RailSnapshot struct {
	Pairs []RailPair
}

// ThermalEvent is a decoded thermal trip-point crossing.
type ThermalEvent struct {
	TempMilliC types.MilliCelsius
	IsRise     bool
}
