package telemetry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZone(t *testing.T, root string, idx int, zoneType string) {
	t.Helper()
	dir := filepath.Join(root, "thermal_zone"+itoa(idx))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "type"), []byte(zoneType+"\n"), 0o644))
}

func itoa(i int) string {
	return string(rune('0' + i))
}

func TestDiscoverThermalZone_FindsCPUZone(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, 0, "battery-therm")
	writeZone(t, root, 1, "CPU-therm")

	temp, zone, err := DiscoverThermalZone(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "thermal_zone1", "temp"), temp)
	assert.Equal(t, filepath.Join(root, "thermal_zone1"), zone)
}

func TestDiscoverThermalZone_NoneFound(t *testing.T) {
	root := t.TempDir()
	writeZone(t, root, 0, "battery-therm")

	_, _, err := DiscoverThermalZone(root)
	assert.Error(t, err)
}

func TestDiscoverThermalZone_EmptyRoot(t *testing.T) {
	root := t.TempDir()
	_, _, err := DiscoverThermalZone(root)
	assert.Error(t, err)
}
