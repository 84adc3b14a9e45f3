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

var distributeCmd = &cobra.Command{
	Use:   "distribute <lot-id>",
	Short: "Ship an approved lot to its destination (distributor role)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caller, err := resolveCaller()
		if err != nil {
			return err
		}
		lotID, err := parseLotID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		destination, _ := cmd.Flags().GetString("destination")

		if err := svc.RegisterDistribution(ctx, tracking.RegisterDistributionInput{
			LotID:       lotID,
			Destination: destination,
			Caller:      caller,
		}); err != nil {
			logging.Error(ctx, "register distribution failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "register distribution")
		}

		logging.Info(ctx, "lot distributed",
			slog.Uint64("lot_id", lotID),
			slog.String("destination", destination),
		)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "lot %d distributed to %s\n", lotID, destination); err != nil {
			return errs.Wrap(err, "write distribute output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(distributeCmd)

	distributeCmd.Flags().String("destination", "", "Destination of the shipment")
	_ = distributeCmd.MarkFlagRequired("destination")
}
