package sync

import (
	"context"
	"errors"
	"path/filepath"
	stdsync "sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"fieldtour/internal/domain/survey"
	"fieldtour/internal/infrastructure/cache"
	"fieldtour/internal/infrastructure/media"
	"fieldtour/internal/infrastructure/persistence/sqlite/model"
	"fieldtour/internal/infrastructure/persistence/sqlite/repository"
	"fieldtour/internal/infrastructure/persistence/sqlite/uow"
	"fieldtour/internal/ports"
)

// stubTourAPI records calls and returns scripted results. The mutex makes it
// safe to script errors and read counters while the poller goroutine runs.
type stubTourAPI struct {
	mu          stdsync.Mutex
	tours       []ports.ServerTour
	toursErr    error
	toursCalls  int
	startErr    error
	startedIDs  []string
	endErr      error
	endRequests []ports.EndTourRequest
}

func (s *stubTourAPI) ToursToday(ctx context.Context) ([]ports.ServerTour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toursCalls++
	if s.toursErr != nil {
		return nil, s.toursErr
	}
	return s.tours, nil
}

func (s *stubTourAPI) refreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toursCalls
}

func (s *stubTourAPI) StartTour(ctx context.Context, tourID string) error {
	s.startedIDs = append(s.startedIDs, tourID)
	return s.startErr
}

func (s *stubTourAPI) EndTour(ctx context.Context, req ports.EndTourRequest) error {
	s.endRequests = append(s.endRequests, req)
	return s.endErr
}

func setupService(t *testing.T, api ports.TourAPI) (*Service, *gorm.DB) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "sync.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Visit{}, &model.Tour{}, &model.VisitDraft{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	visits := repository.NewVisitRepository(db, media.NewStore(t.TempDir()))
	tours := repository.NewTourRepository(db)
	svc := NewService(visits, tours, api, uow.NewUnitOfWork(db), cache.NewDraftStore(db))
	return svc, db
}

func addVisit(t *testing.T, svc *Service, tourID, name, createdAt string) uint64 {
	t.Helper()
	id, err := svc.AddVisit(context.Background(), AddVisitInput{Visit: survey.Visit{
		TourID:  tourID,
		Name:    name,
		Status:  "active",
		Created: createdAt,
		Images: []survey.MediaItem{
			{Title: name, Base64: "aW1n", Timestamp: 1, Type: survey.MediaTypeRegular},
		},
	}})
	if err != nil {
		t.Fatalf("AddVisit(%q) error = %v", name, err)
	}
	return id
}

func TestRefreshToursReplacesMirror(t *testing.T) {
	start := "2025-06-15T06:00:00Z"
	api := &stubTourAPI{tours: []ports.ServerTour{
		{ID: 10, ZoneID: 1, AdminID: 2, TourDate: "2025-06-15", StartDate: &start, CreatedAt: "2025-06-14T08:00:00Z", UpdatedAt: "2025-06-14T08:00:00Z"},
		{ID: 11, ZoneID: 1, AdminID: 2, TourDate: "2025-06-15", CreatedAt: "2025-06-14T09:00:00Z", UpdatedAt: "2025-06-14T09:00:00Z"},
	}}
	svc, _ := setupService(t, api)
	ctx := context.Background()

	count, err := svc.RefreshTours(ctx)
	if err != nil {
		t.Fatalf("RefreshTours() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("RefreshTours() count = %d", count)
	}

	// Next snapshot drops tour 10: the mirror must match it exactly.
	api.tours = api.tours[1:]
	if _, err := svc.RefreshTours(ctx); err != nil {
		t.Fatalf("RefreshTours() error = %v", err)
	}

	tours, err := svc.ListTours(ctx)
	if err != nil {
		t.Fatalf("ListTours() error = %v", err)
	}
	if len(tours) != 1 || tours[0].TourID != 11 {
		t.Fatalf("ListTours() = %#v", tours)
	}
}

func TestRefreshToursFailureLeavesMirror(t *testing.T) {
	api := &stubTourAPI{tours: []ports.ServerTour{
		{ID: 10, TourDate: "2025-06-15", CreatedAt: "2025-06-14T08:00:00Z", UpdatedAt: "2025-06-14T08:00:00Z"},
	}}
	svc, _ := setupService(t, api)
	ctx := context.Background()

	if _, err := svc.RefreshTours(ctx); err != nil {
		t.Fatalf("RefreshTours() error = %v", err)
	}

	api.toursErr = errors.New("network down")
	if _, err := svc.RefreshTours(ctx); err == nil {
		t.Fatalf("RefreshTours() expected error")
	}

	tours, err := svc.ListTours(ctx)
	if err != nil {
		t.Fatalf("ListTours() error = %v", err)
	}
	if len(tours) != 1 {
		t.Fatalf("mirror changed on failed refresh: %#v", tours)
	}
}

func TestListToursDerivesStatusAtReadTime(t *testing.T) {
	started := "2025-06-15T06:00:00Z"
	ended := "2025-06-15T14:00:00Z"
	api := &stubTourAPI{tours: []ports.ServerTour{
		{ID: 1, TourDate: "2025-06-15", CreatedAt: "2025-06-14T08:00:00Z", UpdatedAt: "2025-06-14T08:00:00Z"},
		{ID: 2, TourDate: "2025-06-15", StartDate: &started, CreatedAt: "2025-06-14T09:00:00Z", UpdatedAt: "2025-06-14T09:00:00Z"},
		{ID: 3, TourDate: "2025-06-15", StartDate: &started, EndDate: &ended, CreatedAt: "2025-06-14T10:00:00Z", UpdatedAt: "2025-06-14T10:00:00Z"},
	}}
	svc, _ := setupService(t, api)
	svc.now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	if _, err := svc.RefreshTours(ctx); err != nil {
		t.Fatalf("RefreshTours() error = %v", err)
	}

	tours, err := svc.ListTours(ctx)
	if err != nil {
		t.Fatalf("ListTours() error = %v", err)
	}

	byID := map[int64]survey.TourStatus{}
	for _, tour := range tours {
		byID[tour.TourID] = tour.Status
	}
	if byID[1] != survey.TourPending || byID[2] != survey.TourInProgress || byID[3] != survey.TourCompleted {
		t.Fatalf("statuses = %v", byID)
	}
}

func TestAddVisitRejectsInvalid(t *testing.T) {
	svc, _ := setupService(t, &stubTourAPI{})

	_, err := svc.AddVisit(context.Background(), AddVisitInput{Visit: survey.Visit{
		TourID: "42",
		Status: "active",
	}})
	if !errors.Is(err, survey.ErrValidation) {
		t.Fatalf("AddVisit() error = %v, want validation error", err)
	}

	visits, listErr := svc.ListVisits(context.Background(), "42")
	if listErr != nil {
		t.Fatalf("ListVisits() error = %v", listErr)
	}
	if len(visits) != 0 {
		t.Fatalf("invalid visit was stored: %#v", visits)
	}
}

func TestAddVisitClearsDraft(t *testing.T) {
	svc, _ := setupService(t, &stubTourAPI{})
	ctx := context.Background()

	if err := svc.SaveDraft(ctx, ports.Draft{TourID: "42", Step: 3, Payload: `{"name":"partial"}`}); err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}

	addVisit(t, svc, "42", "finished form", "2025-06-15T08:00:00Z")

	_, found, err := svc.LoadDraft(ctx, "42")
	if err != nil {
		t.Fatalf("LoadDraft() error = %v", err)
	}
	if found {
		t.Fatalf("draft survived visit submission")
	}
}

func TestEndTourUploadsBatchInOrderAndRetiresRows(t *testing.T) {
	api := &stubTourAPI{}
	svc, db := setupService(t, api)
	ctx := context.Background()

	addVisit(t, svc, "42", "earliest", "2025-06-15T08:00:00Z")
	addVisit(t, svc, "42", "latest", "2025-06-15T09:00:00Z")
	addVisit(t, svc, "7", "other tour", "2025-06-15T08:30:00Z")

	result, err := svc.EndTour(ctx, "42")
	if err != nil {
		t.Fatalf("EndTour() error = %v", err)
	}
	if result.TourID != "42" || len(result.VisitIDs) != 2 {
		t.Fatalf("EndTour() result = %#v", result)
	}

	if len(api.endRequests) != 1 {
		t.Fatalf("EndTour API calls = %d", len(api.endRequests))
	}
	req := api.endRequests[0]
	if req.TourID != "42" || len(req.Visits) != 2 {
		t.Fatalf("end request = %#v", req)
	}
	if req.Visits[0].Name != "earliest" || req.Visits[1].Name != "latest" {
		t.Fatalf("batch order = [%s %s]", req.Visits[0].Name, req.Visits[1].Name)
	}

	var count int64
	if err := db.Model(&model.Visit{}).Where("tour_id = ?", "42").Count(&count).Error; err != nil {
		t.Fatalf("count visits: %v", err)
	}
	if count != 0 {
		t.Fatalf("uploaded visits still present: %d", count)
	}

	// The other tour's visit is untouched.
	visits, err := svc.ListVisits(ctx, "7")
	if err != nil {
		t.Fatalf("ListVisits() error = %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("other tour visits = %#v", visits)
	}
}

func TestEndTourFailureLeavesVisits(t *testing.T) {
	api := &stubTourAPI{endErr: errors.New("server unreachable")}
	svc, _ := setupService(t, api)
	ctx := context.Background()

	addVisit(t, svc, "42", "stays local", "2025-06-15T08:00:00Z")

	if _, err := svc.EndTour(ctx, "42"); err == nil {
		t.Fatalf("EndTour() expected error")
	}

	visits, err := svc.ListVisits(ctx, "42")
	if err != nil {
		t.Fatalf("ListVisits() error = %v", err)
	}
	if len(visits) != 1 || visits[0].Synced {
		t.Fatalf("visits after failed upload = %#v", visits)
	}

	// Retry succeeds once the server is back.
	api.endErr = nil
	result, err := svc.EndTour(ctx, "42")
	if err != nil {
		t.Fatalf("EndTour() retry error = %v", err)
	}
	if len(result.VisitIDs) != 1 {
		t.Fatalf("retry result = %#v", result)
	}
}

func TestEndTourWithNothingToSend(t *testing.T) {
	api := &stubTourAPI{}
	svc, _ := setupService(t, api)

	_, err := svc.EndTour(context.Background(), "42")
	if !errors.Is(err, survey.ErrNothingToSend) {
		t.Fatalf("EndTour() error = %v, want ErrNothingToSend", err)
	}
	if len(api.endRequests) != 0 {
		t.Fatalf("EndTour hit the network with an empty batch")
	}
}

func TestStartTourRefreshesMirror(t *testing.T) {
	api := &stubTourAPI{tours: []ports.ServerTour{
		{ID: 42, TourDate: "2025-06-15", CreatedAt: "2025-06-14T08:00:00Z", UpdatedAt: "2025-06-14T08:00:00Z"},
	}}
	svc, _ := setupService(t, api)
	ctx := context.Background()

	if err := svc.StartTour(ctx, "42"); err != nil {
		t.Fatalf("StartTour() error = %v", err)
	}
	if len(api.startedIDs) != 1 || api.startedIDs[0] != "42" {
		t.Fatalf("started ids = %v", api.startedIDs)
	}
	if api.toursCalls != 1 {
		t.Fatalf("refresh calls after start = %d", api.toursCalls)
	}

	// A refresh failure after a successful start is swallowed.
	api.toursErr = errors.New("offline again")
	if err := svc.StartTour(ctx, "42"); err != nil {
		t.Fatalf("StartTour() with failing refresh error = %v", err)
	}
}
