package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/worklog/worklog/internal/config"
	"github.com/worklog/worklog/internal/database"
)

var (
	errorsSince time.Duration
	errorsLimit int
	errorsClear bool
)

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "List errors that stopped the tracker",
	Example: `  worklog errors
  worklog errors --since 168h
  worklog errors --clear`,
	Args: cobra.NoArgs,
	RunE: runErrors,
}

func init() {
	errorsCmd.Flags().DurationVar(&errorsSince, "since", 24*time.Hour, "How far back to look")
	errorsCmd.Flags().IntVar(&errorsLimit, "limit", 20, "Maximum number of errors to show (0 for all)")
	errorsCmd.Flags().BoolVar(&errorsClear, "clear", false, "Delete all stored errors")
	rootCmd.AddCommand(errorsCmd)
}

func runErrors(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.GetDatabasePath())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Initialize(); err != nil {
		return err
	}
	repo := database.NewRepository(db)

	if errorsClear {
		if err := repo.ClearErrors(); err != nil {
			return err
		}
		fmt.Println("Errors cleared")
		return nil
	}

	logs, err := repo.GetErrorsSince(time.Now().Add(-errorsSince), errorsLimit)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		color.Green("No errors in the last %v", errorsSince)
		return nil
	}

	red := color.New(color.FgRed, color.Bold)
	for _, l := range logs {
		fmt.Printf("%s ", l.Timestamp.Format("2006-01-02 15:04:05"))
		red.Printf("[%s] ", l.Kind)
		fmt.Println(l.ErrorMsg)
	}
	return nil
}
