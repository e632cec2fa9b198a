package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fieldtour/internal/bootstrap/logging"
	"fieldtour/internal/domain/survey"
	"fieldtour/internal/errs"
	"fieldtour/internal/ports"
)

// Service is the sync coordinator: it mirrors server-authoritative tours
// into the local store and pushes locally accumulated visits outward on an
// explicit end-tour action.
type Service struct {
	visits ports.VisitRepository
	tours  ports.TourRepository
	api    ports.TourAPI
	uow    ports.UnitOfWork
	drafts ports.DraftStore
	now    func() time.Time
}

func NewService(
	visits ports.VisitRepository,
	tours ports.TourRepository,
	api ports.TourAPI,
	uow ports.UnitOfWork,
	drafts ports.DraftStore,
) *Service {
	return &Service{
		visits: visits,
		tours:  tours,
		api:    api,
		uow:    uow,
		drafts: drafts,
		now:    time.Now,
	}
}

// RefreshTours fetches today's tours and replaces the local mirror with the
// server snapshot. Overlapping refreshes are not coordinated against each
// other; the polling interval is assumed long enough for one refresh to
// finish before the next fires.
func (s *Service) RefreshTours(ctx context.Context) (int, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}

	serverTours, err := s.api.ToursToday(ctx)
	if err != nil {
		return 0, errs.Wrap(err, "fetch today's tours")
	}

	tours := make([]survey.Tour, 0, len(serverTours))
	for _, st := range serverTours {
		tours = append(tours, survey.Tour{
			TourID:    st.ID,
			AdminID:   st.AdminID,
			ZoneID:    st.ZoneID,
			Note:      st.Note,
			TourDate:  st.TourDate,
			StartDate: derefOr(st.StartDate),
			EndDate:   derefOr(st.EndDate),
			CreatedAt: st.CreatedAt,
			UpdatedAt: st.UpdatedAt,
			DeletedAt: derefOr(st.DeletedAt),
		})
	}

	if err := s.tours.ReplaceAll(ctx, tours); err != nil {
		return 0, errs.Wrap(err, "replace tour mirror")
	}

	logging.Info(logging.WithAttrs(ctx, slog.String("component", "sync.service")),
		"tour mirror refreshed", slog.Int("tours", len(tours)))
	return len(tours), nil
}

// TourWithStatus pairs a mirrored tour with its read-time derived state.
type TourWithStatus struct {
	survey.Tour
	Status survey.TourStatus
}

func (s *Service) ListTours(ctx context.Context) ([]TourWithStatus, error) {
	tours, err := s.tours.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]TourWithStatus, 0, len(tours))
	for _, tour := range tours {
		out = append(out, TourWithStatus{Tour: tour, Status: tour.Status(now)})
	}
	return out, nil
}

func (s *Service) StartTour(ctx context.Context, tourID string) error {
	if err := s.api.StartTour(ctx, tourID); err != nil {
		return errs.Wrap(err, "start tour")
	}

	// Pull the updated start_date into the mirror right away; a refresh
	// failure here is not fatal since the poller will catch up.
	if _, err := s.RefreshTours(ctx); err != nil {
		logging.Warn(logging.WithAttrs(ctx, slog.String("component", "sync.service")),
			"post-start refresh failed", slog.Any("err", errs.Loggable(err)))
	}
	return nil
}

// AddVisitInput is a visit as collected by the form, before the store
// assigns a local id.
type AddVisitInput struct {
	Visit survey.Visit
}

func (s *Service) AddVisit(ctx context.Context, input AddVisitInput) (uint64, error) {
	visit := input.Visit
	if visit.Created == "" {
		visit.Created = s.now().UTC().Format(time.RFC3339Nano)
	}
	if err := survey.ValidateVisit(visit); err != nil {
		return 0, err
	}

	var id uint64
	err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		newID, err := s.visits.Insert(txCtx, visit)
		if err != nil {
			return err
		}
		id = newID
		// The form is complete once the row exists; drop its resume draft.
		return s.drafts.Clear(txCtx, visit.TourID)
	})
	if err != nil {
		return 0, errs.Wrap(err, "add visit")
	}
	return id, nil
}

func (s *Service) ListVisits(ctx context.Context, tourID string) ([]survey.Visit, error) {
	return s.visits.ListByTour(ctx, tourID)
}

func (s *Service) DeleteVisit(ctx context.Context, id uint64) error {
	return s.visits.Delete(ctx, id)
}

func (s *Service) SaveDraft(ctx context.Context, draft ports.Draft) error {
	return s.drafts.Save(ctx, draft)
}

func (s *Service) LoadDraft(ctx context.Context, tourID string) (ports.Draft, bool, error) {
	return s.drafts.Load(ctx, tourID)
}

func (s *Service) ClearDraft(ctx context.Context, tourID string) error {
	return s.drafts.Clear(ctx, tourID)
}

// EndTourResult reports what one end-tour upload covered.
type EndTourResult struct {
	TourID   string
	VisitIDs []uint64
}

// EndTour uploads every unsynced visit for the tour in one batch, then
// retires exactly those rows. On upload failure nothing local changes and
// the visits stay eligible for a later retry.
func (s *Service) EndTour(ctx context.Context, tourID string) (EndTourResult, error) {
	if ctx == nil {
		return EndTourResult{}, errors.New("context is required")
	}

	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "sync.service"),
		slog.String("tour_id", tourID))

	visits, err := s.visits.ListForUpload(ctx, tourID)
	if err != nil {
		return EndTourResult{}, errs.Wrap(err, "list visits for upload")
	}

	if len(visits) == 0 {
		logging.Info(logCtx, "no unsynced visits, skipping upload")
		return EndTourResult{}, survey.ErrNothingToSend
	}

	ids, uploads := buildUploadBatch(visits)

	logging.Info(logCtx, "uploading visit batch", slog.Int("visits", len(uploads)))
	if err := s.api.EndTour(ctx, ports.EndTourRequest{TourID: tourID, Visits: uploads}); err != nil {
		return EndTourResult{}, errs.Wrap(err, "upload visit batch")
	}

	// Only the ids that were in the batch are retired; visits created after
	// the batch was assembled stay unsynced.
	err = s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.visits.MarkSynced(txCtx, ids); err != nil {
			return err
		}
		return s.drafts.Clear(txCtx, tourID)
	})
	if err != nil {
		return EndTourResult{}, errs.Wrap(err, "retire synced visits")
	}

	logging.Info(logCtx, "tour ended", slog.Int("visits", len(ids)))
	return EndTourResult{TourID: tourID, VisitIDs: ids}, nil
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
