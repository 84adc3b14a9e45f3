package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap"
	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

// setupCmd grants the full participant set in one shot, so a fresh ledger
// is operational after init + setup.
var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Grant manufacturer, laboratory, distributor and inspector roles",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caller, err := resolveCaller()
		if err != nil {
			return err
		}

		grants := []struct {
			role domainlot.Role
			flag string
		}{
			{role: domainlot.RoleManufacturer, flag: "manufacturer"},
			{role: domainlot.RoleLaboratory, flag: "laboratory"},
			{role: domainlot.RoleDistributor, flag: "distributor"},
			{role: domainlot.RoleInspector, flag: "inspector"},
		}

		for _, grant := range grants {
			name, _ := cmd.Flags().GetString(grant.flag)
			if name == "" {
				continue
			}
			identity, err := resolveIdentity(name)
			if err != nil {
				return err
			}

			if err := svc.GrantRole(ctx, tracking.RoleChangeInput{
				Role:     string(grant.role),
				Identity: identity,
				Caller:   caller,
			}); err != nil {
				logging.Error(ctx, "grant role failed",
					slog.String("role", string(grant.role)),
					slog.Any("err", errs.Loggable(err)),
				)
				return errs.Wrapf(err, "grant %s role", grant.role)
			}

			logging.Info(ctx, "role granted",
				slog.String("role", string(grant.role)),
				slog.String("identity", identity),
			)
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "granted %s to %s\n", grant.role, identity); err != nil {
				return errs.Wrap(err, "write setup output")
			}
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(setupCmd)

	setupCmd.Flags().String("manufacturer", "", "Identity to grant the manufacturer role")
	setupCmd.Flags().String("laboratory", "", "Identity to grant the laboratory role")
	setupCmd.Flags().String("distributor", "", "Identity to grant the distributor role")
	setupCmd.Flags().String("inspector", "", "Identity to grant the inspector role")
}
