package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap"
	"github.com/thiagodalladea/bebida-segura/internal/bootstrap/logging"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

var lotCmd = &cobra.Command{
	Use:   "lot",
	Short: "Create and inspect beverage lots",
}

var lotCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Register a new lot (manufacturer role)",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		caller, err := resolveCaller()
		if err != nil {
			return err
		}

		code, _ := cmd.Flags().GetString("code")
		description, _ := cmd.Flags().GetString("description")
		producedAt, _ := cmd.Flags().GetString("produced-at")

		created, err := svc.CreateLot(ctx, tracking.CreateLotInput{
			ExternalCode: code,
			Description:  description,
			ProducedAt:   producedAt,
			Caller:       caller,
		})
		if err != nil {
			logging.Error(ctx, "create lot failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "create lot")
		}

		logging.Info(ctx, "lot created",
			slog.Uint64("lot_id", created.LotID),
			slog.String("external_code", created.ExternalCode),
		)
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "lot %d created (%s)\n", created.LotID, created.ExternalCode); err != nil {
			return errs.Wrap(err, "write lot create output")
		}
		return nil
	}),
}

var lotGetCmd = &cobra.Command{
	Use:   "get <lot-id>",
	Short: "Show a lot with its lab report",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		lotID, err := parseLotID(cmd.Flags().Arg(0))
		if err != nil {
			return err
		}

		detail, err := svc.GetLotDetail(cmd.Context(), lotID)
		if err != nil {
			return errs.Wrap(err, "get lot")
		}

		printLot(cmd, detail.Lot)
		if detail.Report.Performed {
			verdict := "rejected"
			if detail.Report.Approved {
				verdict = "approved"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  report: %s, methanol %d ppm, hash %s, by %s at %s\n",
				verdict, detail.Report.MethanolPPM, detail.Report.ReportHash,
				detail.Report.Laboratory, detail.Report.AnalyzedAt)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "  report: none")
		}
		return nil
	}),
}

var lotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lots, optionally filtered by state or manufacturer",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		states, _ := cmd.Flags().GetStringSlice("state")
		manufacturer, _ := cmd.Flags().GetString("manufacturer")

		filter := ports.LotFilter{Manufacturer: strings.TrimSpace(manufacturer)}
		for _, state := range states {
			filter.States = append(filter.States, strings.ToUpper(strings.TrimSpace(state)))
		}

		lots, err := svc.ListLots(cmd.Context(), filter)
		if err != nil {
			return errs.Wrap(err, "list lots")
		}

		for _, item := range lots {
			printLot(cmd, item)
		}
		if len(lots) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no lots")
		}
		return nil
	}),
}

var lotSendAnalysisCmd = &cobra.Command{
	Use:   "send-analysis <lot-id>",
	Short: "Move a lot into analysis (laboratory role)",
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

		if err := svc.SendToAnalysis(ctx, tracking.SendToAnalysisInput{LotID: lotID, Caller: caller}); err != nil {
			logging.Error(ctx, "send to analysis failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "send to analysis")
		}

		logging.Info(ctx, "lot under analysis", slog.Uint64("lot_id", lotID))
		fmt.Fprintf(cmd.OutOrStdout(), "lot %d is now UNDER_ANALYSIS\n", lotID)
		return nil
	}),
}

func parseLotID(raw string) (uint64, error) {
	lotID, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || lotID == 0 {
		return 0, fmt.Errorf("invalid lot id %q", raw)
	}
	return lotID, nil
}

func printLot(cmd *cobra.Command, item ports.Lot) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "lot %d [%s] %s: %s (by %s, produced %s)\n",
		item.LotID, item.State, item.ExternalCode, item.Description, item.Manufacturer, item.ProducedAt)
	if item.BlockReason != nil {
		fmt.Fprintf(out, "  block reason: %s\n", *item.BlockReason)
	}
	if item.Destination != nil {
		fmt.Fprintf(out, "  destination: %s\n", *item.Destination)
	}
}

func init() {
	rootCmd.AddCommand(lotCmd)
	lotCmd.AddCommand(lotCreateCmd)
	lotCmd.AddCommand(lotGetCmd)
	lotCmd.AddCommand(lotListCmd)
	lotCmd.AddCommand(lotSendAnalysisCmd)

	lotCreateCmd.Flags().String("code", "", "External lot code, e.g. LT-2026-001")
	lotCreateCmd.Flags().String("description", "", "Product description")
	lotCreateCmd.Flags().String("produced-at", "", "Production date (RFC 3339 or YYYY-MM-DD)")
	_ = lotCreateCmd.MarkFlagRequired("code")
	_ = lotCreateCmd.MarkFlagRequired("description")

	lotListCmd.Flags().StringSlice("state", nil, "Filter by lot state (repeatable)")
	lotListCmd.Flags().String("manufacturer", "", "Filter by manufacturer identity")
}
