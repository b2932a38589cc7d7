package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jingkaihe/skillctl/pkg/docs"
	"github.com/jingkaihe/skillctl/pkg/logger"
	"github.com/jingkaihe/skillctl/pkg/presenter"
	"github.com/jingkaihe/skillctl/pkg/watch"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	Refresh      bool
	Strict       bool
	DebounceTime int
}

// NewWatchConfig creates a new WatchConfig with default values
func NewWatchConfig() *WatchConfig {
	return &WatchConfig{
		Refresh:      false,
		Strict:       cfg.Strict,
		DebounceTime: int(watch.DefaultDebounce / time.Millisecond),
	}
}

// Validate validates the WatchConfig and returns an error if invalid
func (c *WatchConfig) Validate() error {
	if c.DebounceTime <= 0 {
		return errors.Errorf("debounce time must be positive: %d", c.DebounceTime)
	}
	return nil
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-audit skills whenever their files change",
	Long: `Watch the skills directory and re-audit the affected skills after every burst
of changes. With --refresh, the skills table and reference document are
regenerated whenever the audit passes.

Press Ctrl+C to stop.`,
	Args: usageArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getWatchConfigFromFlags(cmd)
		if err := config.Validate(); err != nil {
			return usageError(err)
		}
		return runWatchMode(cmd.Context(), config)
	},
}

func init() {
	defaults := NewWatchConfig()
	watchCmd.Flags().Bool("refresh", defaults.Refresh, "Regenerate documentation after each passing audit")
	watchCmd.Flags().Bool("strict", defaults.Strict, "Fail on warnings as well as errors")
	watchCmd.Flags().IntP("debounce", "d", defaults.DebounceTime, "Debounce time in milliseconds for file change events")
	rootCmd.AddCommand(watchCmd)
}

func getWatchConfigFromFlags(cmd *cobra.Command) *WatchConfig {
	config := NewWatchConfig()
	if refresh, err := cmd.Flags().GetBool("refresh"); err == nil {
		config.Refresh = refresh
	}
	if cmd.Flags().Changed("strict") {
		if strict, err := cmd.Flags().GetBool("strict"); err == nil {
			config.Strict = strict
		}
	}
	if debounce, err := cmd.Flags().GetInt("debounce"); err == nil {
		config.DebounceTime = debounce
	}
	return config
}

func runWatchMode(ctx context.Context, config *WatchConfig) error {
	discovery, err := newDiscovery()
	if err != nil {
		return err
	}

	watcher, err := watch.New(discovery.Dir(), time.Duration(config.DebounceTime)*time.Millisecond)
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := auditAndRefresh(ctx, config, nil); err != nil {
		return err
	}

	presenter.Info(fmt.Sprintf("Watching %s for changes... Press Ctrl+C to stop", discovery.Dir()))
	logger.G(ctx).WithField("skills_dir", discovery.Dir()).Info("file watcher initialized")

	return watcher.Run(ctx, func(ctx context.Context, change watch.Change) error {
		logger.G(ctx).WithField("skills", change.Skills).WithField("files", len(change.Paths)).Debug("change detected")

		presenter.Separator()
		if len(change.Skills) > 0 {
			presenter.Section(fmt.Sprintf("Change detected: %s", strings.Join(change.Skills, ", ")))
		} else {
			presenter.Section("Change detected")
		}
		return auditAndRefresh(ctx, config, change.Skills)
	})
}

// auditAndRefresh audits the skill set and reports on names, or on every
// skill when names is empty. Only a missing skills directory is fatal.
func auditAndRefresh(ctx context.Context, config *WatchConfig, names []string) error {
	_, all, err := loadSkills(ctx)
	if err != nil {
		return err
	}

	full, err := auditSelected(ctx, all, nil, config.Strict)
	if err != nil {
		return err
	}
	report := full
	if len(names) > 0 {
		report = full.ForSkills(names...)
	}
	printReport(report)

	if !config.Refresh {
		return nil
	}
	if full.Failed() {
		presenter.Warning("Skipping documentation refresh until the audit passes")
		return nil
	}

	if changed, err := docs.SpliceFile(cfg.ProjectDoc, docs.Table(all), cfg.DocMarkers()); err != nil {
		presenter.Error(err, "Failed to refresh the skills table")
	} else {
		reportWrite(cfg.ProjectDoc, changed)
	}
	if changed, err := docs.WriteFile(cfg.ReferenceDoc, docs.Reference(all)); err != nil {
		presenter.Error(err, "Failed to refresh the reference document")
	} else {
		reportWrite(cfg.ReferenceDoc, changed)
	}
	return nil
}
