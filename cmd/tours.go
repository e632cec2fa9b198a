package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"fieldtour/internal/bootstrap"
	"fieldtour/internal/bootstrap/logging"
	"fieldtour/internal/errs"
	"fieldtour/internal/usecase/account"
	syncuc "fieldtour/internal/usecase/sync"
)

var toursCmd = &cobra.Command{
	Use:   "tours",
	Short: "Work with the local tour mirror",
}

var toursListCmd = &cobra.Command{
	Use:   "list",
	Short: "List mirrored tours with their derived status",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tours, err := syncSvc.ListTours(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TOUR\tZONE\tDATE\tSTATUS")
		for _, tour := range tours {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", tour.TourID, tour.ZoneID, tour.TourDate, tour.Status)
		}
		return errs.Wrap(w.Flush(), "flush tour listing")
	}),
}

var toursRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Replace the local tour mirror with today's server snapshot",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		count, err := syncSvc.RefreshTours(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "mirrored %d tours\n", count)
		return err
	}),
}

var toursWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the tour mirror refreshed until interrupted",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return syncSvc.RunPoller(ctx, app.Config.Sync.RefreshInterval())
	}),
}

var toursStartCmd = &cobra.Command{
	Use:   "start <tour-id>",
	Short: "Mark a tour started on the server",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := syncSvc.StartTour(ctx, cmd.Flags().Args()[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "tour started")
		return err
	}),
}

func init() {
	rootCmd.AddCommand(toursCmd)
	toursCmd.AddCommand(toursListCmd)
	toursCmd.AddCommand(toursRefreshCmd)
	toursCmd.AddCommand(toursWatchCmd)
	toursCmd.AddCommand(toursStartCmd)
}
