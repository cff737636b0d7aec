//go:build linux

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/voltcapd/voltcapd/internal/accounting"
	"github.com/voltcapd/voltcapd/internal/capping"
	"github.com/voltcapd/voltcapd/internal/config"
	"github.com/voltcapd/voltcapd/internal/debugcmd"
	"github.com/voltcapd/voltcapd/internal/model"
	"github.com/voltcapd/voltcapd/internal/persistence"
	"github.com/voltcapd/voltcapd/internal/supervisor"
	"github.com/voltcapd/voltcapd/internal/telemetry"
)

func main() {
	cfg := config.Default()

	root := &cobra.Command{
		Use:   "voltcapd",
		Short: "CPU voltage-rail stress supervisor",
		Long: `voltcapd tracks the CPU voltage rail's cumulative dwell time at each
voltage/temperature bin against a burn-rate table and debits a points
balance accordingly. Idle time credits the balance back. When the
balance falls to or below the safe limit, voltcapd engages a voltage
ceiling on the rail via sysfs until the balance recovers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	root.Flags().BoolVarP(&cfg.LogAll, "all", "a", cfg.LogAll, "log all debug data")
	root.Flags().BoolVarP(&cfg.LogEvents, "events", "e", cfg.LogEvents, "log all event data")

	root.Flags().StringVar(&cfg.RailStatsPath, "rail-stats-path", cfg.RailStatsPath, "rail cumulative dwell-time stats file")
	root.Flags().StringVar(&cfg.CapCeilingPath, "cap-path", cfg.CapCeilingPath, "voltage cap ceiling sysfs control file")
	root.Flags().StringVar(&cfg.CapEnablePath, "cap-enable-path", cfg.CapEnablePath, "voltage cap enable sysfs control file")
	root.Flags().StringVar(&cfg.ThermalRoot, "thermal-root", cfg.ThermalRoot, "thermal sysfs class root")
	root.Flags().StringVar(&cfg.StateFilePath, "state-file", cfg.StateFilePath, "persisted balance state file")
	root.Flags().StringVar(&cfg.DebugFIFOPath, "debug-fifo", cfg.DebugFIFOPath, "debug command named pipe")
	root.Flags().StringVar(&cfg.BurnTablePath, "burn-table", cfg.BurnTablePath, "burn-rate table YAML document")

	root.Flags().DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "voltage-only poll cadence")
	root.Flags().DurationVar(&cfg.UpdateInterval, "credit-interval", cfg.UpdateInterval, "idle-credit tick cadence")
	root.Flags().DurationVar(&cfg.SaveInterval, "save-interval", cfg.SaveInterval, "persisted-state save cadence")

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	log := newLogger(cfg)
	slog.SetDefault(log)

	table, err := model.Load(cfg.BurnTablePath)
	if err != nil {
		return fmt.Errorf("voltcapd: load burn table: %w", err)
	}
	log.Info("loaded burn table", "voltage_bins", table.V(), "temp_bins", table.T())

	store := persistence.New(cfg.StateFilePath)
	balance, creditElapsed := store.Load()
	log.Info("restored persisted state", "balance", float64(balance), "credit_elapsed", creditElapsed)

	actuator := capping.New(cfg.CapCeilingPath, cfg.CapEnablePath, log)
	core := accounting.New(table, actuator, balance)
	if creditElapsed {
		elapsed := time.Since(store.LastSavedAt())
		core.Credit(elapsed.Seconds())
		log.Info("credited elapsed time since last save", "seconds", elapsed.Seconds())
	}

	tempPath, zonePath, err := telemetry.DiscoverThermalZone(cfg.ThermalRoot)
	if err != nil {
		return fmt.Errorf("voltcapd: discover thermal zone: %w", err)
	}
	log.Info("discovered thermal zone", "temp_path", tempPath, "zone_path", zonePath)

	thermal, err := telemetry.NewThermalSubscriber()
	if err != nil {
		return fmt.Errorf("voltcapd: subscribe to thermal events: %w", err)
	}
	defer thermal.Close()

	sup := supervisor.New(cfg, core, store, thermal, log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	defer stop()

	if cfg.LogAll || cfg.LogEvents {
		handler := debugcmd.New(core, sup, log)
		go func() {
			if err := debugcmd.Serve(ctx, handler, cfg.DebugFIFOPath); err != nil {
				log.Warn("debug command fifo exited", "err", err)
			}
		}()
	}

	log.Info("voltcapd started",
		"poll_interval", cfg.PollInterval,
		"credit_interval", cfg.UpdateInterval,
		"save_interval", cfg.SaveInterval,
	)

	return sup.Run(ctx)
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case cfg.LogAll:
		level = slog.LevelDebug
	case cfg.LogEvents:
		level = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
