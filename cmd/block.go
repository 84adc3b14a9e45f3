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

var blockCmd = &cobra.Command{
	Use:   "block <lot-id>",
	Short: "Block a lot out of circulation (inspector role)",
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
		reason, _ := cmd.Flags().GetString("reason")

		if err := svc.BlockLot(ctx, tracking.BlockLotInput{
			LotID:  lotID,
			Reason: reason,
			Caller: caller,
		}); err != nil {
			logging.Error(ctx, "block lot failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "block lot")
		}

		logging.Info(ctx, "lot blocked",
			slog.Uint64("lot_id", lotID),
			slog.String("reason", reason),
		)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "lot %d blocked: %s\n", lotID, reason); err != nil {
			return errs.Wrap(err, "write block output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(blockCmd)

	blockCmd.Flags().String("reason", "", "Reason for blocking the lot")
	_ = blockCmd.MarkFlagRequired("reason")
}
