package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lookout-hud/lookout/internal/bridge"
	"github.com/lookout-hud/lookout/internal/config"
	"github.com/lookout-hud/lookout/internal/ingest"
	"github.com/lookout-hud/lookout/internal/store"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "lookout",
		Short: "Lookout - notification store ingestion and decoding core",
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := map[string]interface{}{
				"version": version,
				"go":      "1.23",
			}
			return printJSON(output)
		},
	}

	pathsCmd := &cobra.Command{
		Use:   "paths",
		Short: "Print Lookout application paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			output := map[string]interface{}{
				"app_dir":       cfg.AppDir,
				"notif_db_path": cfg.NotifDBPath,
				"snapshot_dir":  cfg.SnapshotDir,
				"settings_path": cfg.SettingsPath,
			}
			return printJSON(output)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single read pass and print stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(config.Load())
			if err != nil {
				return err
			}
			result, err := engine.CheckForChanges()
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the notification store until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := newEngine(config.Load())
			if err != nil {
				return err
			}
			if err := engine.Start(); err != nil {
				return err
			}
			defer engine.Stop()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			sig := <-sigCh
			log.Printf("received %v, shutting down", sig)
			return nil
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newEngine(cfg *config.Config) (*ingest.Engine, error) {
	engine, err := ingest.NewEngine(ingest.Options{
		LivePath:    cfg.NotifDBPath,
		SnapshotDir: cfg.SnapshotDir,
		Store:       store.New(cfg.Settings.MaxEntries),
		Registry:    bridge.NewRegistry(),
		Presenter:   logPresenter{},
		AutoExpand:  cfg.Settings.AutoExpand,
		EnrichRPM:   cfg.Settings.EnrichRPM,
	})
	if err != nil {
		return nil, err
	}
	if m := cfg.Settings.LookbackMinutes; m > 0 {
		engine.SetCursor(ingest.NewCursorAt(time.Now().Add(-time.Duration(m) * time.Minute)))
	}
	return engine, nil
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
