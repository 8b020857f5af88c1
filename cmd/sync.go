package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"proxydash/core/config"
	"proxydash/core/logger"
	"proxydash/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunSync bool
	onlineSync bool
	yesConfirm bool
)

// syncCmd runs one reconciliation from the command line.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile proxy routes into the application inventory",
	Long: `Reads every active proxy manager instance, resolves overlapping routes,
classifies new applications and updates the inventory.

Examples:
  # Show the plan without writing anything
  sync --dry-run

  # Apply, using the online catalog for unknown applications
  sync --online

  # Apply without prompting before orphan removal
  sync --yes`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Plan only; make no changes")
	syncCmd.Flags().BoolVar(&onlineSync, "online", false, "Use the online catalog fallback")
	syncCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm orphan removal (non-interactive)")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	rt, err := newRuntime(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer rt.Close()

	l.Info("Planning sync...", zap.Bool("online", onlineSync))
	plan, err := rt.service.Plan(ctx, onlineSync)
	if err != nil {
		return fmt.Errorf("failed to plan sync: %w", err)
	}

	printSyncPlan(l, plan)

	if dryRunSync {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	if plan.Summary.Deletes > 0 && !confirmDestructiveAction(plan.Summary.Deletes) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	stats := rt.engine.Apply(ctx, plan)
	l.Info("Sync applied",
		zap.String("run_id", stats.RunID),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("unchanged", stats.Unchanged),
		zap.Int("errored", stats.Errored),
		zap.Int("removed", stats.Removed),
	)
	for _, e := range stats.Errors {
		l.Warn("Sync error", zap.String("error", e))
	}
	return nil
}

// printSyncPlan prints a formatted plan using logger.
func printSyncPlan(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	for _, inst := range plan.Instances {
		if inst.Error != "" {
			l.Warn("Instance unreachable", zap.String("instance", inst.Name), zap.String("error", inst.Error))
			continue
		}
		l.Info("Instance read",
			zap.String("instance", inst.Name),
			zap.Int("routes", inst.Routes),
			zap.Bool("degraded", inst.Degraded))
	}

	l.Info("Sync plan",
		zap.Int("total_routes", s.TotalRoutes),
		zap.Int("resolved_domains", s.ResolvedDomains),
		zap.Int("creates", s.Creates),
		zap.Int("updates", s.Updates),
		zap.Int("unchanged", s.Unchanged),
		zap.Int("deletes", s.Deletes),
		zap.Int("tier2_detections", s.Tier2Detections),
	)

	maxShow := 10
	shown := 0
	for _, a := range plan.Actions {
		if a.Type == reconcile.ActionUnchanged {
			continue
		}
		if shown == maxShow {
			l.Info("Additional actions not shown", zap.Int("count", s.Creates+s.Updates+s.Deletes-maxShow))
			break
		}
		fields := []zap.Field{
			zap.String("type", string(a.Type)),
			zap.String("domain", a.Domain),
			zap.String("reason", a.Reason),
		}
		if a.Detection != nil {
			fields = append(fields, zap.String("detected", a.Detection.Type), zap.String("method", string(a.Detection.Method)))
		}
		l.Info("Planned action", fields...)
		shown++
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction(deletes int) bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  %d orphaned applications will be removed. Type 'yes' to confirm: ", deletes)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
