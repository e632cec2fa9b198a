package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fieldtour/internal/errs"
	"fieldtour/internal/infrastructure/persistence/sqlite/model"
	"fieldtour/internal/ports"
)

// DraftStore keeps one resumable form draft per tour, replacing the old
// per-field key proliferation with a single structured row.
type DraftStore struct {
	db *gorm.DB
}

var _ ports.DraftStore = (*DraftStore)(nil)

func NewDraftStore(db *gorm.DB) *DraftStore {
	return &DraftStore{db: db}
}

// dbFromContext honors a surrounding unit-of-work transaction so a draft
// can be cleared atomically with the visit rows it belonged to.
func (s *DraftStore) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return s.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (s *DraftStore) Save(ctx context.Context, draft ports.Draft) error {
	tourID, err := requireKey(ctx, draft.TourID)
	if err != nil {
		return err
	}

	row := model.VisitDraft{
		TourID:    tourID,
		Step:      draft.Step,
		Payload:   draft.Payload,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	db, err := s.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tour_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"step":       row.Step,
			"payload":    row.Payload,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert visit draft")
	}
	return nil
}

func (s *DraftStore) Load(ctx context.Context, tourID string) (ports.Draft, bool, error) {
	trimmed, err := requireKey(ctx, tourID)
	if err != nil {
		return ports.Draft{}, false, err
	}

	db, err := s.dbFromContext(ctx)
	if err != nil {
		return ports.Draft{}, false, err
	}

	var row model.VisitDraft
	if err := db.Where("tour_id = ?", trimmed).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Draft{}, false, nil
		}
		return ports.Draft{}, false, errs.Wrap(err, "query visit draft")
	}

	return ports.Draft{
		TourID:    row.TourID,
		Step:      row.Step,
		Payload:   row.Payload,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

func (s *DraftStore) Clear(ctx context.Context, tourID string) error {
	trimmed := strings.TrimSpace(tourID)
	if trimmed == "" {
		return nil
	}

	db, err := s.dbFromContext(ctx)
	if err != nil {
		return err
	}

	if err := db.Where("tour_id = ?", trimmed).Delete(&model.VisitDraft{}).Error; err != nil {
		return errs.Wrap(err, "delete visit draft")
	}
	return nil
}
