package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/worklog/worklog/internal/clock"
	"github.com/worklog/worklog/internal/config"
	"github.com/worklog/worklog/internal/daemon"
	"github.com/worklog/worklog/internal/database"
	"github.com/worklog/worklog/internal/logging"
	"github.com/worklog/worklog/internal/metrics"
	"github.com/worklog/worklog/internal/tracker"
	"github.com/worklog/worklog/pkg/detector"
)

var (
	startRate       float64
	startDelay      float64
	startForeground bool
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start recording",
	Long: `Start recording samples. The tracker detaches into the background unless
--foreground is given.`,
	Example: `  worklog start
  worklog start -r 2 -d 30
  worklog start --foreground`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	startCmd.Flags().Float64VarP(&startRate, "rate", "r", 1.0, "Samples per second")
	startCmd.Flags().Float64VarP(&startDelay, "start-delay", "d", 0, "Seconds to wait before the first sample")
	startCmd.Flags().BoolVar(&startForeground, "foreground", false, "Run in the foreground")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("rate") {
		if err := cfg.SetRate(startRate); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("start-delay") {
		if err := cfg.SetStartDelaySeconds(startDelay); err != nil {
			return err
		}
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return errors.Wrap(err, "failed to check daemon status")
	}
	if running {
		return errors.Errorf("tracker is already running (PID: %d)", pid)
	}

	if !startForeground && !daemon.IsChild() {
		pid, err := daemon.Detach()
		if err != nil {
			return err
		}
		fmt.Printf("Tracker started (PID: %d)\n", pid)
		fmt.Printf("Data: %s\n", cfg.Storage.LogDir)
		fmt.Printf("Logs: %s\n", filepath.Join(cfg.Storage.LogDir, logging.ErrorLogName))
		return nil
	}

	return runTracker(cfg, dm)
}

func runTracker(cfg *config.Config, dm *daemon.Daemon) error {
	console := os.Stderr
	if daemon.IsChild() {
		console = nil
	}
	logger, logCloser, err := logging.Setup(cfg.Logging, cfg.Storage.LogDir, console)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	logger.Info().Str("version", version).Msg("Starting worklog")
	logger.Debug().Msg(cfg.String())

	db, err := database.Connect(cfg.GetDatabasePath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to database")
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database")
		}
	}()
	if err := db.Initialize(); err != nil {
		logger.Error().Err(err).Msg("Failed to initialize database")
		return err
	}
	repo := database.NewRepository(db)

	probes, err := detector.New(detector.Options{
		Display:       cfg.Display.Name,
		WindowBackend: cfg.Display.WindowBackend,
		IdleBackend:   cfg.Display.IdleBackend,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to select window system backends")
		return err
	}

	if err := dm.WritePID(); err != nil {
		logger.Error().Err(err).Msg("Failed to write PID file")
		return err
	}
	defer func() {
		if err := dm.RemovePID(); err != nil {
			logger.Error().Err(err).Msg("Failed to remove PID file")
		}
	}()

	if cfg.Metrics.Address != "" {
		srv := metrics.NewServer(cfg.Metrics.Address, logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := tracker.NewService(cfg, repo, probes.Window, probes.Idle, clock.RealClock{}, logger)

	if err := daemon.NotifyReady(); err != nil {
		logger.Warn().Err(err).Msg("Failed to notify service manager")
	}
	runErr := svc.Run(ctx)
	if err := daemon.NotifyStopping(); err != nil {
		logger.Warn().Err(err).Msg("Failed to notify service manager")
	}

	if runErr != nil {
		return runErr
	}
	logger.Info().Msg("Tracker stopped successfully")
	return nil
}
