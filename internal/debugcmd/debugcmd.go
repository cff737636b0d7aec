// Package debugcmd serves the named-pipe diagnostic interface: a fixed
// set of ASCII commands for inspecting and poking the accounting core
// and the supervisor's worker cadence without restarting the daemon.
package debugcmd

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/voltcapd/voltcapd/internal/accounting"
	"github.com/voltcapd/voltcapd/internal/types"
)

// Accounting is the subset of *accounting.Core the debug commands read
// and mutate.
type Accounting interface {
	Balance() types.Points
	SetBalance(types.Points)
	Snapshot() accounting.Snapshot
}

// Scheduler is the subset of *supervisor.Supervisor the debug commands
// retune.
type Scheduler interface {
	SetSleepInterval(time.Duration)
	SetSaveInterval(time.Duration)
}

// Handler dispatches one line of FIFO input to the matching command.
type Handler struct {
	core  Accounting
	sched Scheduler
	log   *slog.Logger
}

// New returns a Handler bound to the given accounting core and scheduler.
func New(core Accounting, sched Scheduler, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{core: core, sched: sched, log: log}
}

// command pairs a name with the function that consumes the rest of the
// line (for commands that take an argument) and returns response text.
type command struct {
	name string
	run  func(h *Handler, rest string) (string, error)
}

var commands = []command{
	{"read_data", (*Handler).readData},
	{"read_points", (*Handler).readPoints},
	{"write_points", (*Handler).writePoints},
	{"write_sleep_time", (*Handler).writeSleepTime},
	{"write_save_time", (*Handler).writeSaveTime},
}

// Dispatch matches line against the known command prefixes, in the
// original order, and runs the first match.
func (h *Handler) Dispatch(line string) (string, error) {
	for _, c := range commands {
		if strings.HasPrefix(line, c.name) {
			rest := strings.TrimSpace(strings.TrimPrefix(line, c.name))
			return c.run(h, rest)
		}
	}
	return "", fmt.Errorf("debugcmd: unrecognized command %q", line)
}

func (h *Handler) readData(rest string) (string, error) {
	snap := h.core.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "cur_temp_index: %d\n", snap.CurTempIndex)
	for i := len(snap.LastSeen) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "last_seen[%d]: %d\n", i, snap.LastSeen[i])
	}
	fmt.Fprintf(&b, "balance_points: %f\n", float64(snap.Balance))
	return b.String(), nil
}

func (h *Handler) readPoints(rest string) (string, error) {
	return fmt.Sprintf("balance_points: %f\n", float64(h.core.Balance())), nil
}

func (h *Handler) writePoints(rest string) (string, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
	if err != nil {
		return "", fmt.Errorf("debugcmd: write_points: %w", err)
	}
	h.core.SetBalance(types.Points(v))
	h.log.Info("debug command set balance", "points", v)
	return fmt.Sprintf("Points added:%f\n", v), nil
}

func (h *Handler) writeSleepTime(rest string) (string, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return "", fmt.Errorf("debugcmd: write_sleep_time: %w", err)
	}
	d := time.Duration(v) * time.Second
	h.sched.SetSleepInterval(d)
	h.log.Info("debug command set sleep interval", "seconds", v)
	return fmt.Sprintf("Sleep interval %d s", v), nil
}

func (h *Handler) writeSaveTime(rest string) (string, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
	if err != nil {
		return "", fmt.Errorf("debugcmd: write_save_time: %w", err)
	}
	d := time.Duration(v) * time.Second
	h.sched.SetSaveInterval(d)
	h.log.Info("debug command set save interval", "seconds", v)
	return fmt.Sprintf("Point save interval %d s", v), nil
}

// ServeConn reads one command line from r and writes its response to w.
// Callers loop this over successive FIFO opens (each FIFO open/close
// cycle is one request/response round-trip, matching the original
// fopen/fgets/fclose-per-command protocol).
func ServeConn(h *Handler, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return scanner.Err()
	}
	line := scanner.Text()

	resp, err := h.Dispatch(line)
	if err != nil {
		h.log.Warn("debug command failed", "line", line, "err", err)
		return err
	}
	if w != nil {
		_, err = io.WriteString(w, resp)
	}
	return err
}
