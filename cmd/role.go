package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap"
	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	domainlot "github.com/thiagodalladea/bebida-segura/internal/domain/lot"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage participant roles",
}

var roleGrantCmd = &cobra.Command{
	Use:   "grant <role> <identity>",
	Short: "Grant a role to an identity (owner only)",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		return changeRole(cmd, svc, svc.GrantRole, "granted")
	}),
}

var roleRevokeCmd = &cobra.Command{
	Use:   "revoke <role> <identity>",
	Short: "Revoke a role from an identity (owner only)",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		return changeRole(cmd, svc, svc.RevokeRole, "revoked")
	}),
}

var roleShowCmd = &cobra.Command{
	Use:   "show [identity]",
	Short: "Show roles of an identity, or members of every role",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		ctx := cmd.Context()

		if len(cmd.Flags().Args()) == 1 {
			identity, err := resolveIdentity(cmd.Flags().Arg(0))
			if err != nil {
				return err
			}
			roles, err := svc.ListIdentityRoles(ctx, identity)
			if err != nil {
				return errs.Wrap(err, "list identity roles")
			}
			if len(roles) == 0 {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: no roles\n", identity)
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", identity, strings.Join(roles, ", "))
			return err
		}

		for _, role := range domainlot.AllRoles() {
			members, err := svc.ListRoleMembers(ctx, string(role))
			if err != nil {
				return errs.Wrapf(err, "list %s members", role)
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", role, strings.Join(members, ", ")); err != nil {
				return errs.Wrap(err, "write role show output")
			}
		}
		return nil
	}),
}

type roleChangeFunc func(ctx context.Context, input tracking.RoleChangeInput) error

func changeRole(cmd *cobra.Command, svc *tracking.Service, apply roleChangeFunc, verb string) error {
	ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

	caller, err := resolveCaller()
	if err != nil {
		return err
	}
	identity, err := resolveIdentity(cmd.Flags().Arg(1))
	if err != nil {
		return err
	}
	role := cmd.Flags().Arg(0)

	if err := apply(ctx, tracking.RoleChangeInput{
		Role:     role,
		Identity: identity,
		Caller:   caller,
	}); err != nil {
		logging.Error(ctx, "role change failed",
			slog.String("role", role),
			slog.String("identity", identity),
			slog.Any("err", errs.Loggable(err)),
		)
		return errs.Wrapf(err, "%s role", verb)
	}

	logging.Info(ctx, "role "+verb, slog.String("role", role), slog.String("identity", identity))
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s for %s\n", verb, role, identity); err != nil {
		return errs.Wrap(err, "write role output")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(roleCmd)
	roleCmd.AddCommand(roleGrantCmd)
	roleCmd.AddCommand(roleRevokeCmd)
	roleCmd.AddCommand(roleShowCmd)
}
