package cmd

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap"
	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Register and inspect lab reports",
}

var reportRegisterCmd = &cobra.Command{
	Use:   "register <lot-id>",
	Short: "Register the lab report of a lot (laboratory role)",
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

		methanolPPM, _ := cmd.Flags().GetInt64("methanol-ppm")
		approved, _ := cmd.Flags().GetBool("approved")
		hash, _ := cmd.Flags().GetString("hash")
		if hash == "" {
			// Off-chain report document reference; generated when the
			// laboratory has none to hand.
			hash = uuid.NewString()
		}

		state, err := svc.RegisterLabReport(ctx, tracking.RegisterReportInput{
			LotID:       lotID,
			MethanolPPM: methanolPPM,
			Approved:    approved,
			ReportHash:  hash,
			Caller:      caller,
		})
		if err != nil {
			logging.Error(ctx, "register report failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "register report")
		}

		logging.Info(ctx, "report registered",
			slog.Uint64("lot_id", lotID),
			slog.Int64("methanol_ppm", methanolPPM),
			slog.String("resulting_state", string(state)),
		)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "report registered for lot %d, lot is now %s\n", lotID, state); err != nil {
			return errs.Wrap(err, "write report output")
		}
		return nil
	}),
}

var reportShowCmd = &cobra.Command{
	Use:   "show <lot-id>",
	Short: "Show the lab report of a lot",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		lotID, err := parseLotID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}

		report, err := svc.GetLabReport(cmd.Context(), lotID)
		if err != nil {
			return errs.Wrap(err, "get lab report")
		}

		out := cmd.OutOrStdout()
		if !report.Performed {
			fmt.Fprintf(out, "lot %d has no lab report\n", lotID)
			return nil
		}

		verdict := "rejected"
		if report.Approved {
			verdict = "approved"
		}
		fmt.Fprintf(out, "lot %d: %s, methanol %d ppm (limit %d)\n", lotID, verdict, report.MethanolPPM, svc.MethanolLimitPPM())
		fmt.Fprintf(out, "  hash %s, by %s at %s\n", report.ReportHash, report.Laboratory, report.AnalyzedAt)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportRegisterCmd)
	reportCmd.AddCommand(reportShowCmd)

	reportRegisterCmd.Flags().Int64("methanol-ppm", 0, "Measured methanol concentration in PPM")
	reportRegisterCmd.Flags().Bool("approved", false, "Laboratory verdict")
	reportRegisterCmd.Flags().String("hash", "", "Report document hash (generated when omitted)")
	_ = reportRegisterCmd.MarkFlagRequired("methanol-ppm")
}
