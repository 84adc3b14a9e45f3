/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap"
	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize database schema and seed the ledger registry",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *tracking.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		owner, _ := cmd.Flags().GetString("owner")
		logging.Info(ctx, "start init", slog.String("owner", owner))

		if err := app.InitSchema(ctx); err != nil {
			logging.Error(ctx, "initialize schema failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "initialize schema")
		}

		if err := svc.Initialize(ctx, tracking.InitializeInput{Owner: owner}); err != nil {
			logging.Error(ctx, "seed registry failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "seed registry")
		}

		logging.Info(ctx, "init finished",
			slog.String("database_dsn", app.Config.Database.DSN),
			slog.Int64("methanol_limit_ppm", svc.MethanolLimitPPM()),
		)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "ledger initialized: %s (owner %s, methanol limit %d ppm)\n",
			app.Config.Database.DSN, owner, svc.MethanolLimitPPM()); err != nil {
			return errs.Wrap(err, "write init output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().String("owner", "", "Owner identity for the ledger")
	_ = initCmd.MarkFlagRequired("owner")
}
