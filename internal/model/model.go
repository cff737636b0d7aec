// Package model holds the static, read-only burn-rate matrix and
// temperature breakpoint vector that drive the accounting core's debit
// calculation. Tables are loaded once at startup from a YAML document
// supplied by the calibration/provider team and never mutated afterward.
package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/voltcapd/voltcapd/internal/types"
)

// source is the on-disk shape of the burn-table document. Each row in
// BurnTableMV carries the voltage bin's label in column 0 followed by its
// per-temperature-bin burn rates (points per 10ms), matching the row
// layout the kernel vendor's Hyper-Voltaging table uses.
type source struct {
	TempBreakpointsMilliC []int       `yaml:"temp_breakpoints_millic"`
	BurnTableMV           [][]float64 `yaml:"burn_table"`
}

// Table is the immutable, shared burn-rate matrix plus its temperature
// breakpoint vector.
type Table struct {
	breakpoints []int
	cells       []float64 // row-major, V rows x (T+1) cols; col 0 is the voltage label
	v, t        int
}

// Load reads and validates a burn-table YAML document from path.
func Load(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("model: read %s: %w", path, err)
	}

	var src source
	if err := yaml.Unmarshal(b, &src); err != nil {
		return nil, fmt.Errorf("model: parse %s: %w", path, err)
	}

	return build(src)
}

func build(src source) (*Table, error) {
	t := len(src.TempBreakpointsMilliC)
	if t == 0 {
		return nil, fmt.Errorf("model: no temperature breakpoints")
	}
	for i := 1; i < t; i++ {
		if src.TempBreakpointsMilliC[i] <= src.TempBreakpointsMilliC[i-1] {
			return nil, fmt.Errorf("model: temperature breakpoints must be strictly ascending")
		}
	}

	v := len(src.BurnTableMV)
	if v == 0 {
		return nil, fmt.Errorf("model: burn table has no rows")
	}

	cells := make([]float64, 0, v*(t+1))
	for i, row := range src.BurnTableMV {
		if len(row) != t+1 {
			return nil, fmt.Errorf("model: row %d has %d columns, want %d (label + %d temp bins)", i, len(row), t+1, t)
		}
		cells = append(cells, row...)
	}

	return &Table{
		breakpoints: append([]int(nil), src.TempBreakpointsMilliC...),
		cells:       cells,
		v:           v,
		t:           t,
	}, nil
}

// V is the number of voltage bins (rows).
func (tbl *Table) V() int { return tbl.v }

// T is the number of temperature bins (columns, excluding the label column).
func (tbl *Table) T() int { return tbl.t }

// Breakpoints returns the ascending temperature breakpoint vector, in
// millidegrees Celsius.
func (tbl *Table) Breakpoints() []int {
	return append([]int(nil), tbl.breakpoints...)
}

// Cell returns B[v, col], the burn rate in points per 10ms for voltage
// bin v and table column col (col 0 is the voltage label; accounting
// reads col = tempIndex+1).
func (tbl *Table) Cell(v, col int) float64 {
	return tbl.cells[v*(tbl.t+1)+col]
}

// VoltBin returns the row index whose label column equals mV, matching
// by exact value since the kernel already quantises rail readings to the
// table's bins.
func (tbl *Table) VoltBin(mV types.Millivolts) (int, bool) {
	for v := 0; v < tbl.v; v++ {
		if int(tbl.cells[v*(tbl.t+1)]) == int(mV) {
			return v, true
		}
	}
	return 0, false
}

// TempBin returns the smallest index i such that breakpoints[i] >= temp.
// If temp exceeds every breakpoint it returns T-1. A temp at or below the
// first breakpoint naturally returns 0 through the same scan (this is
// the normalised behavior for the out-of-range-low case: the source's
// -1 branch is never taken here).
func (tbl *Table) TempBin(temp types.MilliCelsius) int {
	for i, bp := range tbl.breakpoints {
		if bp >= int(temp) {
			return i
		}
	}
	return tbl.t - 1
}
