package commands

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/yairfalse/driftscan/internal/analyzer"
	"github.com/yairfalse/driftscan/internal/collectors"
	"github.com/yairfalse/driftscan/internal/collectors/docker"
	"github.com/yairfalse/driftscan/internal/collectors/terraform"
	dserrors "github.com/yairfalse/driftscan/internal/errors"
	"github.com/yairfalse/driftscan/internal/logger"
	"github.com/yairfalse/driftscan/internal/notify"
	"github.com/yairfalse/driftscan/internal/output"
	"github.com/yairfalse/driftscan/pkg/types"
)

// collectTimeout bounds the whole collection phase. Terraform backends and
// a wedged Docker daemon can otherwise hang a scheduled check forever.
const collectTimeout = 2 * time.Minute

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check",
		Short:        "Run a drift check and store the report",
		SilenceUsage: true,
		Long: `Check collects the expected state from Terraform and the actual state
from Docker, compares them, stores the resulting report and renders it.

A collector that fails marks its side of the report as unavailable and
the check continues with what it has. Storage failures abort the check.`,
		Example: `  # Check the current directory's Terraform state against Docker
  driftscan check

  # Check a specific environment and keep a copy of the report
  driftscan check --environment staging --output-file report.json

  # Machine-readable output for CI
  driftscan check --format json`,
		RunE: runCheck,
	}

	cmd.Flags().StringP("output-file", "o", "", "also write the report JSON to a file")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := newLogger().WithField("environment", cfg.Environment)

	outputFile, _ := cmd.Flags().GetString("output-file")

	expected, actual := collectStates(cmd.Context(), log)

	engine := analyzer.New()
	drift, findings := engine.Analyze(expected, actual)
	report := analyzer.BuildReport(findings, expected, actual, cfg.Environment, time.Now())

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.StoreReport(cmd.Context(), report)
	if err != nil {
		return err
	}
	log.WithFields(map[string]interface{}{
		"report_id": id,
		"findings":  report.Summary.TotalIssues,
	}).Debug("report stored")

	renderer, err := newRenderer()
	if err != nil {
		return err
	}
	rendered, err := renderer.FormatReport(&report)
	if err != nil {
		return err
	}
	printRendered(rendered)

	if outputFile != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		if err := output.WriteToFile(data, outputFile); err != nil {
			return err
		}
	}

	notifier := notify.NewWebhookNotifier(cfg.Notifications.WebhookURL)
	if notifier.Enabled() && (drift || cfg.Notifications.AlwaysNotify) {
		if err := notifier.Notify(cmd.Context(), report); err != nil {
			// A dead webhook must not fail the check itself.
			log.Error("webhook notification failed", err)
			dserrors.DisplayWarning("webhook notification failed")
		}
	}

	if drift {
		store.Close()
		os.Exit(dserrors.ExitDrift)
	}
	return nil
}

// collectStates runs the enabled collectors concurrently. A failed or
// disabled collector leaves its side nil; the report records the absence.
func collectStates(ctx context.Context, log logger.Logger) (*types.ResourceSnapshot, *types.ResourceSnapshot) {
	cfg := GetConfig()
	runner := collectors.NewExecRunner()

	ctx, cancel := context.WithTimeout(ctx, collectTimeout)
	defer cancel()

	var (
		expected *types.ResourceSnapshot
		actual   *types.ResourceSnapshot
		wg       sync.WaitGroup
	)

	if cfg.Collectors.Terraform.Enabled {
		collector := terraform.NewCollector(runner, cfg.Collectors.Terraform.Binary, cfg.Collectors.Terraform.Dir)
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshot, err := collector.Collect(ctx)
			if err != nil {
				log.Error("terraform state collection failed", err)
				dserrors.DisplayWarning("Terraform state unavailable, continuing without it")
				return
			}
			expected = snapshot
		}()
	}

	if cfg.Collectors.Docker.Enabled {
		collector := docker.NewCollector(runner, cfg.Collectors.Docker.Binary, cfg.Collectors.Docker.NameFilter)
		wg.Add(1)
		go func() {
			defer wg.Done()
			snapshot, err := collector.Collect(ctx)
			if err != nil {
				log.Error("docker state collection failed", err)
				dserrors.DisplayWarning("Docker state unavailable, continuing without it")
				return
			}
			actual = snapshot
		}()
	}

	wg.Wait()
	return expected, actual
}
