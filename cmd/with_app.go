package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap"
	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

func withApp(run func(cmd *cobra.Command, app *bootstrap.App, trackingSvc *tracking.Service) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := logging.WithAttrs(
			cmd.Context(),
			slog.String("command", cmd.CommandPath()),
			slog.String("config_file", cfgFile),
		)

		var app *bootstrap.App
		var trackingSvc *tracking.Service
		fxApp := fx.New(
			bootstrap.Module,
			fx.Provide(func() context.Context { return ctx }),
			fx.Provide(
				fx.Annotate(
					func() string { return cfgFile },
					fx.ResultTags(`name:"configFile"`),
				),
			),
			fx.Populate(&app, &trackingSvc),
		)

		startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
		defer cancelStart()
		if err := fxApp.Start(startCtx); err != nil {
			logging.Error(ctx, "bootstrap application failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "start fx application")
		}

		defer func() {
			stopCtx, cancelStop := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancelStop()
			if err := fxApp.Stop(stopCtx); err != nil {
				logging.Error(ctx, "fx application stop failed", slog.Any("err", errs.Loggable(err)))
			}
		}()

		if err := run(cmd, app, trackingSvc); err != nil {
			return errs.Wrap(err, "run command")
		}
		return nil
	}
}

// resolveCaller turns the --as flag into a ledger identity.
func resolveCaller() (string, error) {
	name := strings.TrimSpace(callerName)
	if name == "" {
		return "", errors.New("acting identity is required: pass --as <name>")
	}
	return resolveIdentity(name)
}

// resolveIdentity maps a profile name to its ledger identity. Names not in
// the profile (or when no profile file is present) pass through verbatim,
// so raw identities keep working in scripts.
func resolveIdentity(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", errors.New("identity is required")
	}

	profile, err := tracking.LoadIdentityProfile(identitiesFile)
	if err != nil {
		if os.IsNotExist(err) {
			return trimmed, nil
		}
		return "", errs.Wrap(err, "load identity profile")
	}

	identity, err := profile.Resolve(trimmed)
	if err != nil {
		return trimmed, nil
	}
	return identity, nil
}
