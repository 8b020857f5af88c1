package cmd

import (
	"context"
	"fmt"

	"proxydash/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var newInstance reconcile.Instance

// instanceCmd is the parent command for managing proxy manager instances.
var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage proxy manager instances",
}

var instanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured instances",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(func(ctx context.Context, rt *runtime) error {
			instances, err := rt.store.ListInstances(ctx, false)
			if err != nil {
				return err
			}
			for _, inst := range instances {
				rt.logger.Info("Instance",
					zap.Uint("id", inst.ID),
					zap.String("name", inst.Name),
					zap.String("mode", string(inst.Mode)),
					zap.Int("priority", inst.Priority),
					zap.Bool("active", inst.Active),
					zap.Bool("online", inst.IsOnline),
					zap.String("last_error", inst.LastError))
			}
			return nil
		})
	},
}

var instanceAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a proxy manager instance",
	Long: `Registers an instance read either from its database or from its API.

Examples:
  instance add main --mode database --priority 1 --db-host npm-db --db-user npm --db-password secret --db-name npm
  instance add edge --mode api --priority 2 --api-url https://npm.edge.lan --api-identity admin@example.com --api-secret secret`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst := newInstance
		inst.Name = args[0]
		switch inst.Mode {
		case reconcile.ModeDatabase:
			if inst.DBName == "" {
				return fmt.Errorf("--db-name is required in database mode")
			}
		case reconcile.ModeAPI:
			if inst.APIURL == "" {
				return fmt.Errorf("--api-url is required in api mode")
			}
		default:
			return fmt.Errorf("unknown mode %q (database, api)", inst.Mode)
		}

		return withRuntime(func(ctx context.Context, rt *runtime) error {
			if err := rt.store.SaveInstance(ctx, &inst); err != nil {
				return err
			}
			rt.logger.Info("Instance registered", zap.Uint("id", inst.ID), zap.String("name", inst.Name))
			return nil
		})
	},
}

func init() {
	f := instanceAddCmd.Flags()
	f.StringVar((*string)(&newInstance.Mode), "mode", string(reconcile.ModeDatabase), "Transport: database or api")
	f.IntVar(&newInstance.Priority, "priority", 1, "Lower wins when instances publish the same domain")
	f.BoolVar(&newInstance.Active, "active", true, "Include the instance in syncs")
	f.StringVar(&newInstance.DBDriver, "db-driver", "mysql", "Database driver (mysql, sqlite)")
	f.StringVar(&newInstance.DBHost, "db-host", "", "Database host")
	f.IntVar(&newInstance.DBPort, "db-port", 3306, "Database port")
	f.StringVar(&newInstance.DBUser, "db-user", "", "Database user")
	f.StringVar(&newInstance.DBPassword, "db-password", "", "Database password")
	f.StringVar(&newInstance.DBName, "db-name", "", "Database name, or file path for sqlite")
	f.StringVar(&newInstance.APIURL, "api-url", "", "Management API base URL")
	f.StringVar(&newInstance.APIIdentity, "api-identity", "", "API login identity")
	f.StringVar(&newInstance.APISecret, "api-secret", "", "API login secret")

	instanceCmd.AddCommand(instanceListCmd, instanceAddCmd)
	RootCmd.AddCommand(instanceCmd)
}
