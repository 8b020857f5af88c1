package cmd

import (
	"context"
	"fmt"
	"strings"

	"proxydash/core/config"
	"proxydash/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var catalogLimit int

// catalogCmd is the parent command for catalog queries.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the detection tables and the online catalog",
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the online catalog by name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(ctx context.Context, rt *runtime) error {
			results, err := rt.service.SearchCatalog(ctx, strings.Join(args, " "), catalogLimit)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				rt.logger.Info("No catalog entries found")
			}
			for _, r := range results {
				rt.logger.Info("Catalog entry",
					zap.String("name", r.Name),
					zap.String("category", r.Category),
					zap.String("match", string(r.Match)),
					zap.String("description", r.Description))
			}
			return nil
		})
	},
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show signature table and online catalog sizes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(ctx context.Context, rt *runtime) error {
			s := rt.service.CatalogStats(ctx)
			rt.logger.Info("Catalog stats",
				zap.String("signature_version", s.SignatureVersion),
				zap.Int("patterns", s.PatternCount),
				zap.Int("types", s.TypeCount),
				zap.Bool("online_available", s.OnlineAvailable),
				zap.Int("online_entries", s.OnlineCount))
			return nil
		})
	},
}

// withRuntime loads config and logger, builds the runtime and runs fn.
func withRuntime(fn func(ctx context.Context, rt *runtime) error) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	ctx := context.Background()
	rt, err := newRuntime(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func init() {
	catalogSearchCmd.Flags().IntVar(&catalogLimit, "limit", 10, "Maximum number of results")
	catalogCmd.AddCommand(catalogSearchCmd, catalogStatsCmd)
	RootCmd.AddCommand(catalogCmd)
}
