package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yairfalse/driftscan/internal/collectors"
	"github.com/yairfalse/driftscan/internal/collectors/docker"
	"github.com/yairfalse/driftscan/internal/collectors/terraform"
	dserrors "github.com/yairfalse/driftscan/internal/errors"
	"github.com/yairfalse/driftscan/internal/storage"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "status",
		Short:        "Show configuration, store and collector status",
		SilenceUsage: true,
		Long: `Status probes everything a check depends on: the configuration in
effect, the report store and its schema, both collector binaries and
the webhook, and reports what it found.`,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := GetConfig()

	fmt.Println("driftscan Status")
	fmt.Println("================")
	fmt.Println()

	fmt.Println("System:")
	fmt.Printf("  Version: %s\n", Version)
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "not found (defaults in effect)"
	}
	fmt.Printf("  Config File: %s\n", configFile)
	fmt.Printf("  Environment: %s\n", cfg.Environment)
	fmt.Println()

	fmt.Println("Store:")
	store, err := openStore()
	if err != nil {
		fmt.Printf("  [FAIL] %s: %s\n", cfg.Storage.Path, probeFailure(err))
	} else {
		defer store.Close()
		if err := store.CheckSchema(); err != nil {
			fmt.Printf("  [WARN] %s: schema not current: %s\n", store.Path(), probeFailure(err))
		} else {
			latest := "no reports stored"
			reports, err := store.ListReports(ctx, storage.ListFilter{Limit: 1})
			if err == nil && len(reports) > 0 {
				latest = fmt.Sprintf("last report %s (#%d)",
					reports[0].Timestamp.Format("2006-01-02 15:04:05"), reports[0].ID)
			}
			fmt.Printf("  [OK] %s: schema current, %s\n", store.Path(), latest)
		}
	}
	fmt.Println()

	fmt.Println("Collectors:")
	runner := collectors.NewExecRunner()
	if cfg.Collectors.Terraform.Enabled {
		collector := terraform.NewCollector(runner, cfg.Collectors.Terraform.Binary, cfg.Collectors.Terraform.Dir)
		if err := collector.Status(ctx); err != nil {
			fmt.Printf("  [FAIL] terraform: %s\n", probeFailure(err))
		} else {
			fmt.Printf("  [OK] terraform: %s available (dir: %s)\n",
				cfg.Collectors.Terraform.Binary, cfg.Collectors.Terraform.Dir)
		}
	} else {
		fmt.Printf("  [-] terraform: disabled\n")
	}
	if cfg.Collectors.Docker.Enabled {
		collector := docker.NewCollector(runner, cfg.Collectors.Docker.Binary, cfg.Collectors.Docker.NameFilter)
		if err := collector.Status(ctx); err != nil {
			fmt.Printf("  [FAIL] docker: %s\n", probeFailure(err))
		} else {
			fmt.Printf("  [OK] docker: %s available\n", cfg.Collectors.Docker.Binary)
		}
	} else {
		fmt.Printf("  [-] docker: disabled\n")
	}
	fmt.Println()

	fmt.Println("Notifications:")
	if cfg.Notifications.WebhookURL != "" {
		fmt.Printf("  [OK] webhook configured\n")
	} else {
		fmt.Printf("  [-] webhook: not configured\n")
	}

	return nil
}

// probeFailure keeps status lines to one line: the cause, not the full
// guidance rendering.
func probeFailure(err error) string {
	var dserr *dserrors.DriftscanError
	if errors.As(err, &dserr) && dserr.Cause != "" {
		return dserr.Cause
	}
	return err.Error()
}
