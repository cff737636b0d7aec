// Package config assembles voltcapd's process-wide tunables: kernel
// sysfs paths, the persisted-state and debug-FIFO paths, the burn-table
// source, and the poll/credit/save cadence. Defaults match the spec's
// fixed 5-minute/1-hour/6-hour cadence and the vendor's sysfs layout;
// everything is overridable from the CLI for testing.
package config

import "time"

// Config holds every externally-configurable value the supervisor needs
// to wire the accounting core to its kernel collaborators.
type Config struct {
	RailStatsPath  string
	CapCeilingPath string
	CapEnablePath  string
	ThermalRoot    string
	StateFilePath  string
	DebugFIFOPath  string
	BurnTablePath  string

	PollInterval   time.Duration // voltage-poll worker cadence (spec: 5 minutes)
	UpdateInterval time.Duration // credit-tick cadence (spec: 1 hour)
	SaveInterval   time.Duration // persistence save cadence (spec: 6 hours)

	LogAll    bool // -a: verbose/debug logging
	LogEvents bool // -e: event-level logging
}

// Default returns the vendor's stock sysfs layout and the spec's fixed
// cadence.
func Default() Config {
	return Config{
		RailStatsPath:  "/sys/power/tegra_rail_stats",
		CapCeilingPath: "/sys/kernel/tegra_cpu_volt_cap/volt",
		CapEnablePath:  "/sys/kernel/tegra_cpu_volt_cap/capping_state",
		ThermalRoot:    "/sys/class/thermal",
		StateFilePath:  "/data/device_config.txt",
		DebugFIFOPath:  "/data/dev_cmd",
		BurnTablePath:  "/etc/voltcapd/burn_table.yaml",

		PollInterval:   5 * time.Minute,
		UpdateInterval: time.Hour,
		SaveInterval:   6 * time.Hour,
	}
}
