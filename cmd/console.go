package cmd

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap"
	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/lotconsole"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive lot ledger console",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		state, _ := cmd.Flags().GetString("state")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")
		if refreshInterval <= 0 {
			refreshInterval = 5 * time.Second
		}

		model := lotconsole.NewConsoleModel(ctx, svc, lotconsole.Options{
			StateFilter:     state,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run lot console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().String("state", "", "Optional state filter (CREATED|UNDER_ANALYSIS|APPROVED|REJECTED|DISTRIBUTED|BLOCKED)")
	consoleCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
}
