package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thiagodalladea/bebida-segura/internal/bootstrap"
	"github.com/thiagodalladea/bebida-segura/internal/errs"
	"github.com/thiagodalladea/bebida-segura/internal/ports"
	"github.com/thiagodalladea/bebida-segura/internal/usecase/tracking"
)

// eventsCmd reads the event trail: scoped to one lot when a lot id is given,
// otherwise the global stream for incremental consumers.
var eventsCmd = &cobra.Command{
	Use:   "events [lot-id]",
	Short: "Show the event trail of a lot, or the global event stream",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *tracking.Service) error {
		ctx := cmd.Context()

		var events []ports.LotEvent
		if len(cmd.Flags().Args()) == 1 {
			lotID, err := parseLotID(cmd.Flags().Arg(0))
			if err != nil {
				return err
			}
			events, err = svc.ListLotEvents(ctx, lotID)
			if err != nil {
				return errs.Wrap(err, "list lot events")
			}
		} else {
			after, _ := cmd.Flags().GetUint64("after")
			limit, _ := cmd.Flags().GetInt("limit")
			var err error
			events, err = svc.ListEventsAfter(ctx, after, limit)
			if err != nil {
				return errs.Wrap(err, "list events")
			}
		}

		out := cmd.OutOrStdout()
		for _, event := range events {
			if _, err := fmt.Fprintf(out, "%d %s lot=%d %s %s\n",
				event.EventID, event.RecordedAt, event.LotID, event.Type, event.Payload); err != nil {
				return errs.Wrap(err, "write events output")
			}
		}
		if len(events) == 0 {
			fmt.Fprintln(out, "no events")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().Uint64("after", 0, "Only events with id greater than this")
	eventsCmd.Flags().Int("limit", 100, "Maximum number of events to return")
}
