package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/worklog/worklog/internal/clock"
	"github.com/worklog/worklog/internal/config"
	"github.com/worklog/worklog/internal/daemon"
	"github.com/worklog/worklog/internal/database"
	"github.com/worklog/worklog/internal/sampler"
	"github.com/worklog/worklog/internal/sink"
	"github.com/worklog/worklog/internal/tracker"
	"github.com/worklog/worklog/pkg/detector"
	"github.com/worklog/worklog/pkg/utils"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background tracker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		dm := daemon.New(cfg.Daemon.PIDFile)

		running, pid, err := dm.IsRunning()
		if err != nil {
			return errors.Wrap(err, "failed to check daemon status")
		}
		if !running {
			fmt.Println("Tracker is not running")
			return nil
		}

		fmt.Printf("Stopping tracker (PID: %d)...\n", pid)
		if err := dm.Stop(); err != nil {
			return err
		}
		fmt.Println("Tracker stopped successfully")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracker status and the current sample",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(stopCmd, statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return errors.Wrap(err, "failed to check daemon status")
	}

	if running {
		green.Printf("Status: Running (PID: %d)\n", pid)
	} else {
		yellow.Println("Status: Not running")
	}
	fmt.Printf("Rate: %v samples/s\n", cfg.Sampler.Rate)
	fmt.Printf("Data: %s\n", filepath.Join(cfg.Storage.LogDir, sink.LogFileName(time.Now())))

	sample, source, err := currentSample(cfg)
	if err != nil {
		yellow.Printf("\nCould not take a sample: %v\n", err)
		return nil
	}

	cyan.Printf("\nCurrent Sample (%s):\n", source)
	fmt.Printf("  Program: %s\n", sample.ProgramName)
	fmt.Printf("  Title:   %s\n", sample.Title())
	fmt.Printf("  Idle:    %s\n", utils.FormatRoundedUnit(int64(sample.IdleSeconds)))
	fmt.Printf("  Time:    %s\n", utils.FormatUnixSeconds(sample.Timestamp))
	return nil
}

// currentSample prefers the tracker's last mirrored sample and falls back to
// probing the display directly.
func currentSample(cfg *config.Config) (sampler.Sample, string, error) {
	if cfg.Storage.MirrorSamples {
		if sample, ok := latestMirrored(cfg); ok {
			return sample, "recorded", nil
		}
	}

	probes, err := detector.New(detector.Options{
		Display:       cfg.Display.Name,
		WindowBackend: cfg.Display.WindowBackend,
		IdleBackend:   cfg.Display.IdleBackend,
	})
	if err != nil {
		return sampler.Sample{}, "", err
	}
	svc := tracker.NewService(cfg, nil, probes.Window, probes.Idle, clock.RealClock{}, zerolog.Nop())
	sample, err := svc.Snapshot()
	return sample, "live", err
}

func latestMirrored(cfg *config.Config) (sampler.Sample, bool) {
	db, err := database.Connect(cfg.GetDatabasePath())
	if err != nil {
		return sampler.Sample{}, false
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		return sampler.Sample{}, false
	}

	record, err := database.NewRepository(db).GetLatestSample()
	if err != nil || record == nil {
		return sampler.Sample{}, false
	}
	return sampler.Sample{
		WindowTitle: record.WindowTitle,
		ProgramName: record.ProgramName,
		IdleSeconds: record.IdleSeconds,
		Timestamp:   record.Timestamp,
	}, true
}
