package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltcapd/voltcapd/internal/types"
)

// testTable builds the spec's S1-S6 fixture: T=2, breakpoints=[40,80],
// V=2 with labels 900 and 1200.
func testTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := build(source{
		TempBreakpointsMilliC: []int{40, 80},
		BurnTableMV: [][]float64{
			{900, 1.0, 2.0},
			{1200, 4.0, 8.0},
		},
	})
	require.NoError(t, err)
	return tbl
}

func TestTable_Dims(t *testing.T) {
	tbl := testTable(t)
	assert.Equal(t, 2, tbl.V())
	assert.Equal(t, 2, tbl.T())
}

func TestVoltBin_ExactMatch(t *testing.T) {
	tbl := testTable(t)

	v, ok := tbl.VoltBin(900)
	require.True(t, ok)
	assert.Equal(t, 0, v)

	v, ok = tbl.VoltBin(1200)
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestVoltBin_NoneForUnknownLabel(t *testing.T) {
	tbl := testTable(t)
	_, ok := tbl.VoltBin(1000)
	assert.False(t, ok)
}

func TestTempBin_Monotonic(t *testing.T) {
	tbl := testTable(t)

	cases := []struct {
		temp types.MilliCelsius
		want int
	}{
		{0, 0},
		{40, 0},
		{41, 1},
		{80, 1},
		{85, 1}, // S4: no breakpoint >= 85 -> last bin
		{1000, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, tbl.TempBin(c.temp), "temp=%d", c.temp)
	}

	// Monotonic non-decreasing over an ascending sweep.
	prev := -1
	for temp := -10; temp <= 200; temp++ {
		got := tbl.TempBin(types.MilliCelsius(temp))
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func TestCell_LayoutMatchesSpecFixture(t *testing.T) {
	tbl := testTable(t)
	assert.Equal(t, 1.0, tbl.Cell(0, 1))
	assert.Equal(t, 2.0, tbl.Cell(0, 2))
	assert.Equal(t, 4.0, tbl.Cell(1, 1))
	assert.Equal(t, 8.0, tbl.Cell(1, 2))
}

func TestBuild_RejectsNonAscendingBreakpoints(t *testing.T) {
	_, err := build(source{
		TempBreakpointsMilliC: []int{80, 40},
		BurnTableMV:           [][]float64{{900, 1, 2}},
	})
	assert.Error(t, err)
}

func TestBuild_RejectsWrongRowWidth(t *testing.T) {
	_, err := build(source{
		TempBreakpointsMilliC: []int{40, 80},
		BurnTableMV:           [][]float64{{900, 1.0}},
	})
	assert.Error(t, err)
}
