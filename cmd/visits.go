package cmd

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fieldtour/internal/bootstrap"
	"fieldtour/internal/bootstrap/logging"
	"fieldtour/internal/domain/survey"
	"fieldtour/internal/errs"
	"fieldtour/internal/ports"
	"fieldtour/internal/usecase/account"
	syncuc "fieldtour/internal/usecase/sync"
)

var visitsCmd = &cobra.Command{
	Use:   "visits",
	Short: "Record and inspect locally collected visits",
}

var visitsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a visit against a tour",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		flags := cmd.Flags()
		tourID, _ := flags.GetString("tour")
		name, _ := flags.GetString("name")
		status, _ := flags.GetString("status")
		lat, _ := flags.GetString("lat")
		lng, _ := flags.GetString("lng")
		note, _ := flags.GetString("note")
		imagePaths, _ := flags.GetStringArray("image")

		images, err := loadMediaFiles(imagePaths, survey.MediaTypeRegular)
		if err != nil {
			return err
		}

		visit := survey.Visit{
			TourID: tourID,
			Name:   name,
			Status: status,
			Lat:    lat,
			Lng:    lng,
			Note:   note,
			Images: images,
		}
		if lat != "" && lng != "" {
			visit.Address = lat + ", " + lng
		}

		id, err := syncSvc.AddVisit(ctx, syncuc.AddVisitInput{Visit: visit})
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "visit recorded with id %d\n", id)
		return err
	}),
}

var visitsListCmd = &cobra.Command{
	Use:   "list <tour-id>",
	Short: "List collected visits for a tour, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		visits, err := syncSvc.ListVisits(ctx, cmd.Flags().Args()[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tIMAGES\tCREATED")
		for _, visit := range visits {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
				visit.ID, visit.Name, visit.Status, len(visit.Images), visit.Created)
		}
		return errs.Wrap(w.Flush(), "flush visit listing")
	}),
}

var visitsDeleteCmd = &cobra.Command{
	Use:   "delete <visit-id>",
	Short: "Delete one local visit and its media files",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		id, err := strconv.ParseUint(cmd.Flags().Args()[0], 10, 64)
		if err != nil {
			return errs.Wrap(err, "parse visit id")
		}

		if err := syncSvc.DeleteVisit(ctx, id); err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "visit deleted")
		return err
	}),
}

var visitsDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Manage the resumable visit form draft for a tour",
}

var visitsDraftSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the in-progress form state for a tour",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		flags := cmd.Flags()
		tourID, _ := flags.GetString("tour")
		step, _ := flags.GetInt("step")
		payload, _ := flags.GetString("payload")

		if err := syncSvc.SaveDraft(ctx, ports.Draft{TourID: tourID, Step: step, Payload: payload}); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "draft saved")
		return err
	}),
}

var visitsDraftShowCmd = &cobra.Command{
	Use:   "show <tour-id>",
	Short: "Show the saved form draft for a tour",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		draft, found, err := syncSvc.LoadDraft(ctx, cmd.Flags().Args()[0])
		if err != nil {
			return err
		}
		if !found {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "no draft for this tour")
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "step %d (updated %s)\n%s\n",
			draft.Step, draft.UpdatedAt, draft.Payload)
		return err
	}),
}

var visitsDraftClearCmd = &cobra.Command{
	Use:   "clear <tour-id>",
	Short: "Discard the saved form draft for a tour",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, syncSvc *syncuc.Service, _ *account.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		if err := syncSvc.ClearDraft(ctx, cmd.Flags().Args()[0]); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "draft cleared")
		return err
	}),
}

// loadMediaFiles reads image files from disk into embedded media items,
// preserving the order the flags were given in.
func loadMediaFiles(paths []string, mediaType string) ([]survey.MediaItem, error) {
	items := make([]survey.MediaItem, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrapf(err, "read image %q", path)
		}
		items = append(items, survey.MediaItem{
			Title:     path,
			Base64:    base64.StdEncoding.EncodeToString(raw),
			Timestamp: time.Now().UnixMilli(),
			Type:      mediaType,
		})
	}
	return items, nil
}

func init() {
	rootCmd.AddCommand(visitsCmd)
	visitsCmd.AddCommand(visitsAddCmd)
	visitsCmd.AddCommand(visitsListCmd)
	visitsCmd.AddCommand(visitsDeleteCmd)
	visitsCmd.AddCommand(visitsDraftCmd)
	visitsDraftCmd.AddCommand(visitsDraftSaveCmd)
	visitsDraftCmd.AddCommand(visitsDraftShowCmd)
	visitsDraftCmd.AddCommand(visitsDraftClearCmd)

	visitsDraftSaveCmd.Flags().String("tour", "", "Tour id the draft belongs to")
	visitsDraftSaveCmd.Flags().Int("step", 0, "Form step to resume at")
	visitsDraftSaveCmd.Flags().String("payload", "", "Serialized form state")
	_ = visitsDraftSaveCmd.MarkFlagRequired("tour")

	visitsAddCmd.Flags().String("tour", "", "Tour id the visit belongs to")
	visitsAddCmd.Flags().String("name", "", "Entity name")
	visitsAddCmd.Flags().String("status", "active", "Visit status")
	visitsAddCmd.Flags().String("lat", "", "Latitude in decimal degrees")
	visitsAddCmd.Flags().String("lng", "", "Longitude in decimal degrees")
	visitsAddCmd.Flags().String("note", "", "Free-text note")
	visitsAddCmd.Flags().StringArray("image", nil, "Image file to attach (repeatable, order preserved)")
	_ = visitsAddCmd.MarkFlagRequired("tour")
	_ = visitsAddCmd.MarkFlagRequired("name")
}
