package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// cpuThermalZoneType is the thermal_zone*/type content identifying the
// CPU rail's thermal zone.
const cpuThermalZoneType = "CPU-therm"

// maxThermalZonesScanned bounds the thermal_zone{0..N} scan, matching
// the kernel's thermal sysfs convention of a small, dense zone index
// range.
const maxThermalZonesScanned = 10

// DiscoverThermalZone scans root/thermal_zone{0..9}/type for the zone
// whose content is "CPU-therm" and returns its temp file path and zone
// directory. This is the one fatal, non-zero-exit startup dependency:
// if no matching zone exists, the daemon cannot run.
func DiscoverThermalZone(root string) (tempPath, zonePath string, err error) {
	for i := 0; i < maxThermalZonesScanned; i++ {
		zone := filepath.Join(root, fmt.Sprintf("thermal_zone%d", i))
		typePath := filepath.Join(zone, "type")

		b, err := os.ReadFile(typePath)
		if err != nil {
			// Zones are densely numbered from 0; the first missing index
			// ends the scan, matching the source's break-on-fopen-failure.
			break
		}
		if strings.TrimSpace(string(b)) == cpuThermalZoneType {
			return filepath.Join(zone, "temp"), zone, nil
		}
	}
	return "", "", fmt.Errorf("telemetry: no thermal zone of type %q found under %s", cpuThermalZoneType, root)
}
