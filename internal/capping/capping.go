// Package capping is the actuator that engages or releases the kernel
// voltage cap by writing ASCII values to two sysfs control files. Writes
// are best-effort: the kernel accepts repeated identical writes, and a
// failed write is logged but never changes accounting state.
package capping

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/voltcapd/voltcapd/internal/types"
)

// Actuator writes the voltage-cap ceiling and enable flag to fixed
// kernel control paths.
type Actuator struct {
	ceilingPath string
	enablePath  string
	log         *slog.Logger
}

// New returns an Actuator targeting the given sysfs paths.
func New(ceilingPath, enablePath string, log *slog.Logger) *Actuator {
	if log == nil {
		log = slog.Default()
	}
	return &Actuator{ceilingPath: ceilingPath, enablePath: enablePath, log: log}
}

// SetCeiling writes the millivolt ceiling as an ASCII decimal string.
func (a *Actuator) SetCeiling(mV types.Millivolts) error {
	if err := writeSysfs(a.ceilingPath, strconv.Itoa(int(mV))); err != nil {
		a.log.Warn("write voltage cap ceiling failed", "path", a.ceilingPath, "err", err)
		return err
	}
	return nil
}

// SetEnabled writes "1" to engage capping or "0" to release it.
func (a *Actuator) SetEnabled(enabled bool) error {
	val := "0"
	if enabled {
		val = "1"
	}
	if err := writeSysfs(a.enablePath, val); err != nil {
		a.log.Warn("write capping enable flag failed", "path", a.enablePath, "err", err)
		return err
	}
	return nil
}

func writeSysfs(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("capping: open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(value); err != nil {
		return fmt.Errorf("capping: write %s: %w", path, err)
	}
	return nil
}
