// Package accounting holds the single source of truth for the rail's
// stress budget: the current temperature bin, per-voltage-bin last-seen
// cumulative dwell time, and the running points balance. All mutations
// go through Core's single mutex, and capping is re-evaluated at the
// tail of every mutator.
package accounting

import (
	"sync"

	"github.com/voltcapd/voltcapd/internal/model"
	"github.com/voltcapd/voltcapd/internal/telemetry"
	"github.com/voltcapd/voltcapd/internal/types"
	"github.com/voltcapd/voltcapd/internal/util"
)

const (
	// SafeLimit is the balance threshold at/below which capping engages.
	SafeLimit types.Points = 100
	// CapCeilingMV is the fixed voltage ceiling written when capped.
	// The source documents 1000mV in a nearby comment but writes 1300;
	// this pins the behavioral value.
	CapCeilingMV types.Millivolts = 1300
	// DailyPointsUpdate is the number of points credited per 24h of
	// idle/elapsed time.
	DailyPointsUpdate = 100.0

	secondsPerDay = 86400
)

// Capper is the capping actuator's view from the accounting core's
// perspective, invoked from inside Core's critical section.
type Capper interface {
	SetCeiling(mV types.Millivolts) error
	SetEnabled(enabled bool) error
}

// State is the observable two-state capping state machine.
type State int

const (
	Uncapped State = iota
	Capped
)

func (s State) String() string {
	if s == Capped {
		return "CAPPED"
	}
	return "UNCAPPED"
}

// Core is the accounting singleton. It is an explicitly owned value, not
// a package-level global, so tests can construct independent instances.
type Core struct {
	mu sync.Mutex

	table      *model.Table
	curTempIdx int
	lastSeen   []uint64 // cumulative time_10ms per voltage bin, indexed by bin
	balance    types.Points

	cap Capper
}

// New constructs a Core over table, starting at balance with the given
// capping actuator. curTempIdx starts at 0 (coldest bin) until the first
// thermal event arrives.
func New(table *model.Table, cap Capper, balance types.Points) *Core {
	return &Core{
		table:    table,
		lastSeen: make([]uint64, table.V()),
		balance:  balance,
		cap:      cap,
	}
}

// Balance returns the current points balance.
func (c *Core) Balance() types.Points {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.balance
}

// State returns the current observable capping state.
func (c *Core) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Core) stateLocked() State {
	if c.balance <= SafeLimit {
		return Capped
	}
	return Uncapped
}

// OnRail debits points for elapsed dwell time reported in snap, against
// the current temperature bin, then re-evaluates capping.
func (c *Core) OnRail(snap telemetry.RailSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRailLocked(snap)
	c.reevaluateCapLocked()
}

// OnThermal updates the current temperature bin in response to a trip
// crossing, then re-evaluates capping.
func (c *Core) OnThermal(ev telemetry.ThermalEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onThermalLocked(ev)
	c.reevaluateCapLocked()
}

// CombinedUpdate applies a rail snapshot against the pre-event
// temperature bin and then applies the thermal transition, as one
// update under a single lock acquisition. This is what the thermal
// worker calls: the rail debit for the interval leading up to a trip
// crossing is posted against the temperature the rail was actually at.
func (c *Core) CombinedUpdate(snap telemetry.RailSnapshot, ev telemetry.ThermalEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRailLocked(snap)
	c.onThermalLocked(ev)
	c.reevaluateCapLocked()
}

// Credit adds idle-time credit for seconds elapsed, then re-evaluates
// capping.
func (c *Core) Credit(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balance += types.Points(seconds * DailyPointsUpdate / secondsPerDay)
	c.reevaluateCapLocked()
}

// SetBalance overrides the balance directly (used by the debug command
// FIFO's write_points command). It re-evaluates capping like any other
// mutator.
func (c *Core) SetBalance(p types.Points) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balance = p
	c.reevaluateCapLocked()
}

// Snapshot describes the accounting core's state for diagnostics
// (the debug FIFO's read_data command).
type Snapshot struct {
	CurTempIndex int
	LastSeen     []uint64
	Balance      types.Points
}

func (c *Core) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		CurTempIndex: c.curTempIdx,
		LastSeen:     append([]uint64(nil), c.lastSeen...),
		Balance:      c.balance,
	}
}

func (c *Core) onRailLocked(snap telemetry.RailSnapshot) {
	for _, pair := range snap.Pairs {
		v, ok := c.table.VoltBin(pair.VoltageMV)
		if !ok {
			continue
		}
		delta := util.DeltaU64(uint64(pair.CumulativeTime10ms), c.lastSeen[v])
		c.lastSeen[v] = uint64(pair.CumulativeTime10ms)
		rate := c.table.Cell(v, c.curTempIdx+1)
		c.balance -= types.Points(rate * float64(delta) / 100)
	}
}

func (c *Core) onThermalLocked(ev telemetry.ThermalEvent) {
	i := c.table.TempBin(ev.TempMilliC)
	if !ev.IsRise {
		i = util.ClampMin0(i - 1)
	}
	c.curTempIdx = i
}

func (c *Core) reevaluateCapLocked() {
	if c.cap == nil {
		return
	}
	if c.balance <= SafeLimit {
		_ = c.cap.SetCeiling(CapCeilingMV)
		_ = c.cap.SetEnabled(true)
		return
	}
	_ = c.cap.SetEnabled(false)
}
