package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"fieldtour/internal/domain/survey"
	"fieldtour/internal/infrastructure/media"
	"fieldtour/internal/infrastructure/persistence/sqlite/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "visits.sqlite")
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
	if err := db.AutoMigrate(&model.Visit{}, &model.Tour{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func setupVisitRepository(t *testing.T) (*VisitRepository, *gorm.DB, string) {
	t.Helper()
	db := setupDB(t)
	mediaDir := t.TempDir()
	return NewVisitRepository(db, media.NewStore(mediaDir)), db, mediaDir
}

func sampleVisit(tourID, name, createdAt string) survey.Visit {
	return survey.Visit{
		TourID:  tourID,
		Name:    name,
		Status:  "active",
		Created: createdAt,
		Lat:     "33.31",
		Lng:     "44.36",
		Images: []survey.MediaItem{
			{Title: "front", Base64: "aW1nMQ==", Timestamp: 1, Type: survey.MediaTypeRegular},
			{Title: "back", Base64: "aW1nMg==", Timestamp: 2, Type: survey.MediaTypeRegular},
		},
		IDImages: []survey.MediaItem{
			{Title: "id", Base64: "aWQx", Timestamp: 3, Type: survey.MediaTypeID},
		},
	}
}

func TestInsertAndListRoundTrip(t *testing.T) {
	repo, _, _ := setupVisitRepository(t)
	ctx := context.Background()

	visit := sampleVisit("42", "north tower", "2025-06-15T08:00:00Z")
	visit.DeviceType = "microwave"
	visit.SerialNumber = "SN-77"
	visit.ClientSignature = "<svg><path d=\"M0 0\"/></svg>"

	id, err := repo.Insert(ctx, visit)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if id == 0 {
		t.Fatalf("Insert() id = 0")
	}

	visits, err := repo.ListByTour(ctx, "42")
	if err != nil {
		t.Fatalf("ListByTour() error = %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("ListByTour() len = %d", len(visits))
	}

	got := visits[0]
	if got.ID != id || got.Name != "north tower" || got.DeviceType != "microwave" ||
		got.SerialNumber != "SN-77" || got.Lat != "33.31" || got.Created != "2025-06-15T08:00:00Z" {
		t.Fatalf("ListByTour() visit = %#v", got)
	}
	if got.Synced {
		t.Fatalf("new visit reported synced")
	}
	if got.ClientSignature != visit.ClientSignature {
		t.Fatalf("signature = %q", got.ClientSignature)
	}

	if len(got.Images) != 2 || got.Images[0].Title != "front" || got.Images[1].Title != "back" {
		t.Fatalf("images = %#v", got.Images)
	}
	if len(got.IDImages) != 1 || got.IDImages[0].Type != survey.MediaTypeID {
		t.Fatalf("id images = %#v", got.IDImages)
	}
}

func TestListByTourNewestFirst(t *testing.T) {
	repo, _, _ := setupVisitRepository(t)
	ctx := context.Background()

	if _, err := repo.Insert(ctx, sampleVisit("42", "first", "2025-06-15T08:00:00Z")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := repo.Insert(ctx, sampleVisit("42", "second", "2025-06-15T09:00:00Z")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := repo.Insert(ctx, sampleVisit("7", "other tour", "2025-06-15T10:00:00Z")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	visits, err := repo.ListByTour(ctx, "42")
	if err != nil {
		t.Fatalf("ListByTour() error = %v", err)
	}
	if len(visits) != 2 || visits[0].Name != "second" || visits[1].Name != "first" {
		t.Fatalf("ListByTour() order = %#v", visits)
	}

	uploads, err := repo.ListForUpload(ctx, "42")
	if err != nil {
		t.Fatalf("ListForUpload() error = %v", err)
	}
	if len(uploads) != 2 || uploads[0].Name != "first" || uploads[1].Name != "second" {
		t.Fatalf("ListForUpload() order = %#v", uploads)
	}
}

func TestListTolleratesMalformedMedia(t *testing.T) {
	repo, db, _ := setupVisitRepository(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, sampleVisit("42", "broken media", "2025-06-15T08:00:00Z"))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := db.Model(&model.Visit{}).Where("id = ?", id).Update("image", "{corrupt").Error; err != nil {
		t.Fatalf("corrupt media column: %v", err)
	}

	visits, err := repo.ListByTour(ctx, "42")
	if err != nil {
		t.Fatalf("ListByTour() error = %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("ListByTour() len = %d", len(visits))
	}
	if len(visits[0].Images) != 0 {
		t.Fatalf("images = %#v, want empty substitute", visits[0].Images)
	}
	// The other media column still decodes.
	if len(visits[0].IDImages) != 1 {
		t.Fatalf("id images = %#v", visits[0].IDImages)
	}
}

func TestMarkSyncedDeletesRowsAndFiles(t *testing.T) {
	repo, db, mediaDir := setupVisitRepository(t)
	ctx := context.Background()

	fileA := filepath.Join(mediaDir, "image_a.jpg")
	fileB := filepath.Join(mediaDir, "image_b.jpg")
	for _, path := range []string{fileA, fileB} {
		if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
			t.Fatalf("write media fixture: %v", err)
		}
	}

	visit := sampleVisit("42", "file backed", "2025-06-15T08:00:00Z")
	visit.Images = []survey.MediaItem{
		{Title: "a", Base64: fileA, Timestamp: 1, Type: survey.MediaTypeRegular},
		{Title: "b", Base64: fileB, Timestamp: 2, Type: survey.MediaTypeRegular},
	}
	id1, err := repo.Insert(ctx, visit)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	id2, err := repo.Insert(ctx, sampleVisit("42", "embedded", "2025-06-15T09:00:00Z"))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := repo.MarkSynced(ctx, []uint64{id1, id2}); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}

	var count int64
	if err := db.Model(&model.Visit{}).Count(&count).Error; err != nil {
		t.Fatalf("count visits: %v", err)
	}
	if count != 0 {
		t.Fatalf("visits remaining = %d", count)
	}

	for _, path := range []string{fileA, fileB} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Fatalf("media file %q still present", path)
		}
	}
}

func TestMarkSyncedIdempotent(t *testing.T) {
	repo, _, _ := setupVisitRepository(t)
	ctx := context.Background()

	id, err := repo.Insert(ctx, sampleVisit("42", "once", "2025-06-15T08:00:00Z"))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := repo.MarkSynced(ctx, []uint64{id}); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}
	// Same ids again: rows are gone, call is a no-op.
	if err := repo.MarkSynced(ctx, []uint64{id}); err != nil {
		t.Fatalf("MarkSynced() second call error = %v", err)
	}
	// Empty set is a no-op too.
	if err := repo.MarkSynced(ctx, nil); err != nil {
		t.Fatalf("MarkSynced(nil) error = %v", err)
	}
}

func TestMarkSyncedLeavesOtherVisits(t *testing.T) {
	repo, _, _ := setupVisitRepository(t)
	ctx := context.Background()

	id1, err := repo.Insert(ctx, sampleVisit("42", "uploaded", "2025-06-15T08:00:00Z"))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if _, err := repo.Insert(ctx, sampleVisit("42", "created after batch", "2025-06-15T09:00:00Z")); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := repo.MarkSynced(ctx, []uint64{id1}); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}

	visits, err := repo.ListByTour(ctx, "42")
	if err != nil {
		t.Fatalf("ListByTour() error = %v", err)
	}
	if len(visits) != 1 || visits[0].Name != "created after batch" {
		t.Fatalf("ListByTour() = %#v", visits)
	}
}

func TestDeleteVisit(t *testing.T) {
	repo, _, mediaDir := setupVisitRepository(t)
	ctx := context.Background()

	path := filepath.Join(mediaDir, "image_del.jpg")
	if err := os.WriteFile(path, []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write media fixture: %v", err)
	}

	visit := sampleVisit("42", "to delete", "2025-06-15T08:00:00Z")
	visit.Images = []survey.MediaItem{{Title: "a", Base64: path, Timestamp: 1, Type: survey.MediaTypeRegular}}
	id, err := repo.Insert(ctx, visit)
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("media file still present after delete")
	}

	if err := repo.Delete(ctx, id); err == nil {
		t.Fatalf("Delete() expected not-found error on second call")
	}
}
