package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fieldtour/internal/domain/survey"
	"fieldtour/internal/errs"
	"fieldtour/internal/infrastructure/persistence/sqlite/model"
	"fieldtour/internal/ports"
)

type TourRepository struct {
	db *gorm.DB
}

var _ ports.TourRepository = (*TourRepository)(nil)

func NewTourRepository(db *gorm.DB) *TourRepository {
	return &TourRepository{db: db}
}

func (r *TourRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

// ReplaceAll makes the local mirror match the latest server snapshot
// exactly: delete every row, insert the supplied list, one transaction.
func (r *TourRepository) ReplaceAll(ctx context.Context, tours []survey.Tour) error {
	runTx := func(txCtx context.Context) error {
		db, err := r.dbFromContext(txCtx)
		if err != nil {
			return err
		}

		if err := db.Where("1 = 1").Delete(&model.Tour{}).Error; err != nil {
			return errs.Wrap(err, "clear tour mirror")
		}

		if len(tours) == 0 {
			return nil
		}

		rows := make([]model.Tour, 0, len(tours))
		for _, tour := range tours {
			rows = append(rows, model.Tour{
				TourID:    tour.TourID,
				AdminID:   tour.AdminID,
				ZoneID:    tour.ZoneID,
				Note:      optText(tour.Note),
				StartDate: optText(tour.StartDate),
				EndDate:   optText(tour.EndDate),
				TourDate:  tour.TourDate,
				CreatedAt: tour.CreatedAt,
				UpdatedAt: tour.UpdatedAt,
				DeletedAt: optText(tour.DeletedAt),
				Synced:    0,
			})
		}
		if err := db.Create(&rows).Error; err != nil {
			return errs.Wrap(err, "insert tour mirror")
		}
		return nil
	}

	if ports.TxFromContext(ctx) != nil {
		return runTx(ctx)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return runTx(ports.WithTxContext(ctx, tx))
	})
}

func (r *TourRepository) ListAll(ctx context.Context) ([]survey.Tour, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.Tour
	if err := db.Order("created_at desc").Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query tours")
	}

	tours := make([]survey.Tour, 0, len(rows))
	for _, row := range rows {
		tours = append(tours, survey.Tour{
			ID:        row.ID,
			TourID:    row.TourID,
			AdminID:   row.AdminID,
			ZoneID:    row.ZoneID,
			Note:      deref(row.Note),
			TourDate:  row.TourDate,
			StartDate: deref(row.StartDate),
			EndDate:   deref(row.EndDate),
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
			DeletedAt: deref(row.DeletedAt),
		})
	}
	return tours, nil
}
