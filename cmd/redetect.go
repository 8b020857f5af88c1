package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// redetectCmd re-classifies one application.
var redetectCmd = &cobra.Command{
	Use:   "redetect <application-id>",
	Short: "Run detection again for one application",
	Long: `Runs the detection cascade for one application. A result below the
configured confidence floor does not replace an earlier detection.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid application id %q", args[0])
		}

		return withRuntime(func(ctx context.Context, rt *runtime) error {
			res, err := rt.service.RedetectOne(ctx, uint(id))
			if err != nil {
				return err
			}
			rt.logger.Info("Redetect finished",
				zap.Uint64("id", id),
				zap.String("method", string(res.Method)),
				zap.Strings("changed", res.Changed),
				zap.String("message", res.Message))
			return nil
		})
	},
}

func init() {
	RootCmd.AddCommand(redetectCmd)
}
