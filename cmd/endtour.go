package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"fieldtour/internal/bootstrap"
	"fieldtour/internal/bootstrap/logging"
	"fieldtour/internal/domain/survey"
	"fieldtour/internal/usecase/account"
	syncuc "fieldtour/internal/usecase/sync"
)

var endTourCmd = &cobra.Command{
	Use:   "end-tour <tour-id>",
	Short: "Upload all unsynced visits for a tour and retire them locally",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))
		tourID := cmd.Flags().Args()[0]

		result, err := syncSvc.EndTour(ctx, tourID)
		if errors.Is(err, survey.ErrNothingToSend) {
			_, writeErr := fmt.Fprintln(cmd.OutOrStdout(), "no new visits to send for this tour")
			return writeErr
		}
		if err != nil {
			// Unsynced rows are untouched; re-running the command retries
			// the same batch.
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "tour %s ended, %d visits uploaded\n",
			result.TourID, len(result.VisitIDs))
		return err
	}),
}

func init() {
	rootCmd.AddCommand(endTourCmd)
}
