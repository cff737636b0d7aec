package telemetry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRailStats = `millivolts   time
vdd_cpu (bin: 23.000mV)
900 1000
1200 2000
vdd_core (bin: 11.000mV)
800 500
`

func TestParseRailStats_OK(t *testing.T) {
	snap, err := ParseRailStats(strings.NewReader(sampleRailStats))
	require.NoError(t, err)
	require.Len(t, snap.Pairs, 2)
	assert.Equal(t, 900, int(snap.Pairs[0].VoltageMV))
	assert.Equal(t, uint64(1000), uint64(snap.Pairs[0].CumulativeTime10ms))
	assert.Equal(t, 1200, int(snap.Pairs[1].VoltageMV))
	assert.Equal(t, uint64(2000), uint64(snap.Pairs[1].CumulativeTime10ms))
}

func TestParseRailStats_StopsAtNextRailLabel(t *testing.T) {
	snap, err := ParseRailStats(strings.NewReader(sampleRailStats))
	require.NoError(t, err)
	for _, p := range snap.Pairs {
		assert.NotEqual(t, 800, int(p.VoltageMV), "vdd_core's reading must not leak into vdd_cpu's snapshot")
	}
}

func TestParseRailStats_EmptyFile(t *testing.T) {
	_, err := ParseRailStats(strings.NewReader(""))
	assert.Error(t, err)
}

func TestParseRailStats_MalformedPair(t *testing.T) {
	bad := "millivolts   time\nvdd_cpu (bin: 23.000mV)\n900 notanumber\n"
	_, err := ParseRailStats(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestReadRailStats_MissingFile(t *testing.T) {
	snap, err := ReadRailStats("/nonexistent/path/does/not/exist")
	assert.Error(t, err)
	assert.Empty(t, snap.Pairs)
}
