package telemetry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/voltcapd/voltcapd/internal/types"
)

// ReadRailStats opens and parses the rail-statistics sysfs file at path.
// On any error it returns a zero-length snapshot alongside the error; the
// caller is expected to log and skip the tick rather than mutate
// accounting state from a partial read.
func ReadRailStats(path string) (RailSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return RailSnapshot{}, fmt.Errorf("telemetry: open rail-stats: %w", err)
	}
	defer f.Close()

	snap, err := ParseRailStats(f)
	if err != nil {
		return RailSnapshot{}, err
	}
	return snap, nil
}

// ParseRailStats decodes the rail-stats text format:
//
//	millivolts   time
//	vdd_cpu (bin: 23.000mV)
//	900 1234
//	1200 5678
//	vdd_core (bin: ...)
//	...
//
// It skips the header and the vdd_cpu label line, then reads
// "<mV> <time_10ms>" pairs until a non-numeric terminator label (the
// start of the next rail's section) is encountered.
func ParseRailStats(r io.Reader) (RailSnapshot, error) {
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		return RailSnapshot{}, fmt.Errorf("telemetry: rail-stats file is empty")
	}
	if !sc.Scan() {
		return RailSnapshot{}, fmt.Errorf("telemetry: rail-stats missing rail label line")
	}

	var pairs []RailPair
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		mv, err := strconv.Atoi(fields[0])
		if err != nil {
			// Non-numeric first token: the next rail's label line, i.e.
			// the terminator for this rail's section.
			break
		}
		if len(fields) < 2 {
			return RailSnapshot{}, fmt.Errorf("telemetry: malformed rail-stats pair %q", line)
		}
		t10, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return RailSnapshot{}, fmt.Errorf("telemetry: malformed rail-stats pair %q", line)
		}

		pairs = append(pairs, RailPair{
			VoltageMV:          types.Millivolts(mv),
			CumulativeTime10ms: types.Deci10ms(t10),
		})
	}
	if err := sc.Err(); err != nil {
		return RailSnapshot{}, fmt.Errorf("telemetry: scan rail-stats: %w", err)
	}

	return RailSnapshot{Pairs: pairs}, nil
}
