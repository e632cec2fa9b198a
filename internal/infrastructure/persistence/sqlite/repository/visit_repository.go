package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"fieldtour/internal/bootstrap/logging"
	"fieldtour/internal/domain/survey"
	"fieldtour/internal/errs"
	"fieldtour/internal/infrastructure/persistence/sqlite/model"
	"fieldtour/internal/ports"
)

type VisitRepository struct {
	db    *gorm.DB
	media ports.MediaStore
}

var _ ports.VisitRepository = (*VisitRepository)(nil)

func NewVisitRepository(db *gorm.DB, media ports.MediaStore) *VisitRepository {
	return &VisitRepository{db: db, media: media}
}

func (r *VisitRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
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

func (r *VisitRepository) Insert(ctx context.Context, visit survey.Visit) (uint64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	imagesJSON, err := survey.EncodeMediaList(visit.Images)
	if err != nil {
		return 0, errs.Wrap(err, "encode images")
	}
	idImagesJSON, err := survey.EncodeMediaList(visit.IDImages)
	if err != nil {
		return 0, errs.Wrap(err, "encode id images")
	}

	row := model.Visit{
		TourID:           visit.TourID,
		Name:             visit.Name,
		Lat:              optText(visit.Lat),
		Lng:              optText(visit.Lng),
		Image:            &imagesJSON,
		IDImage:          &idImagesJSON,
		Note:             optText(visit.Note),
		ServiceType:      optText(visit.ServiceType),
		CoverageRange:    optText(visit.CoverageRange),
		DeviceType:       optText(visit.DeviceType),
		DeviceModel:      optText(visit.DeviceModel),
		SerialNumber:     optText(visit.SerialNumber),
		AntennaType:      optText(visit.AntennaType),
		AntennaCount:     optText(visit.AntennaCount),
		AntennaHeight:    optText(visit.AntennaHeight),
		AntennaDiameter:  optText(visit.AntennaDiameter),
		UsedFrequencies:  optText(visit.UsedFrequencies),
		FrequencyLicense: optText(visit.FrequencyLicense),
		Bandwidth:        optText(visit.Bandwidth),
		Polarity:         optText(visit.Polarity),
		ExternalPower:    optText(visit.ExternalPower),
		ClientSignature:  optText(visit.ClientSignature),
		EmployeeSig:      optText(visit.EmployeeSignature),
		SecuritySig:      optText(visit.SecuritySignature),
		CreatedAt:        visit.Created,
		Status:           visit.Status,
		Address:          optText(visit.Address),
		Synced:           0,
		SystemType:       optText(visit.SystemType),
		EntityType:       optText(visit.EntityType),
		IMEI:             optText(visit.IMEI),
		ProviderCompany:  optText(visit.ProviderCompany),
		Number:           optText(visit.Number),
	}

	if err := db.Create(&row).Error; err != nil {
		return 0, errs.Wrap(err, "insert visit")
	}
	return row.ID, nil
}

func (r *VisitRepository) ListByTour(ctx context.Context, tourID string) ([]survey.Visit, error) {
	return r.list(ctx, tourID, false)
}

func (r *VisitRepository) ListForUpload(ctx context.Context, tourID string) ([]survey.Visit, error) {
	return r.list(ctx, tourID, true)
}

func (r *VisitRepository) list(ctx context.Context, tourID string, forUpload bool) ([]survey.Visit, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Visit{}).Where("tour_id = ?", tourID)
	if forUpload {
		// Upload order preserves chronological field-collection order.
		query = query.Where("synced = ?", 0).Order("created_at asc")
	} else {
		query = query.Order("created_at desc")
	}

	var rows []model.Visit
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query visits")
	}

	visits := make([]survey.Visit, 0, len(rows))
	for _, row := range rows {
		visits = append(visits, r.mapVisit(ctx, row))
	}
	return visits, nil
}

// mapVisit decodes one row. A row whose stored media cannot be parsed is
// returned with an empty media list rather than failing the whole listing.
func (r *VisitRepository) mapVisit(ctx context.Context, row model.Visit) survey.Visit {
	images, err := survey.DecodeMediaList(deref(row.Image))
	if err != nil {
		logging.Warn(ctx, "malformed visit media, substituting empty list",
			slog.Uint64("visit_id", row.ID),
			slog.Any("err", errs.Loggable(err)))
		images = []survey.MediaItem{}
	}
	idImages, err := survey.DecodeMediaList(deref(row.IDImage))
	if err != nil {
		logging.Warn(ctx, "malformed visit id media, substituting empty list",
			slog.Uint64("visit_id", row.ID),
			slog.Any("err", errs.Loggable(err)))
		idImages = []survey.MediaItem{}
	}

	return survey.Visit{
		ID:                row.ID,
		TourID:            row.TourID,
		Name:              row.Name,
		Lat:               deref(row.Lat),
		Lng:               deref(row.Lng),
		Note:              deref(row.Note),
		Status:            row.Status,
		Address:           deref(row.Address),
		Synced:            row.Synced == 1,
		Created:           row.CreatedAt,
		Images:            images,
		IDImages:          idImages,
		ServiceType:       deref(row.ServiceType),
		CoverageRange:     deref(row.CoverageRange),
		DeviceType:        deref(row.DeviceType),
		DeviceModel:       deref(row.DeviceModel),
		SerialNumber:      deref(row.SerialNumber),
		AntennaType:       deref(row.AntennaType),
		AntennaCount:      deref(row.AntennaCount),
		AntennaHeight:     deref(row.AntennaHeight),
		AntennaDiameter:   deref(row.AntennaDiameter),
		UsedFrequencies:   deref(row.UsedFrequencies),
		FrequencyLicense:  deref(row.FrequencyLicense),
		Bandwidth:         deref(row.Bandwidth),
		Polarity:          deref(row.Polarity),
		ExternalPower:     deref(row.ExternalPower),
		SystemType:        deref(row.SystemType),
		EntityType:        deref(row.EntityType),
		IMEI:              deref(row.IMEI),
		ProviderCompany:   deref(row.ProviderCompany),
		Number:            deref(row.Number),
		ClientSignature:   deref(row.ClientSignature),
		EmployeeSignature: deref(row.EmployeeSig),
		SecuritySignature: deref(row.SecuritySig),
	}
}

func (r *VisitRepository) MarkSynced(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	var paths []string
	runTx := func(txCtx context.Context) error {
		db, err := r.dbFromContext(txCtx)
		if err != nil {
			return err
		}

		var rows []model.Visit
		if err := db.Select("id", "image", "id_image").Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return errs.Wrap(err, "query visits for cleanup")
		}
		for _, row := range rows {
			paths = append(paths, fileBackedPaths(txCtx, row)...)
		}

		if err := db.Where("id IN ?", ids).Delete(&model.Visit{}).Error; err != nil {
			return errs.Wrap(err, "delete synced visits")
		}
		return nil
	}

	if ports.TxFromContext(ctx) != nil {
		if err := runTx(ctx); err != nil {
			return err
		}
	} else {
		if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return runTx(ports.WithTxContext(ctx, tx))
		}); err != nil {
			return err
		}
	}

	// File cleanup is best-effort and must never undo the committed delete.
	r.media.DeleteFiles(ctx, paths)
	return nil
}

func (r *VisitRepository) Delete(ctx context.Context, id uint64) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	var row model.Visit
	if err := db.Select("id", "image", "id_image").Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ErrVisitNotFound
		}
		return errs.Wrap(err, "query visit")
	}

	if err := db.Where("id = ?", id).Delete(&model.Visit{}).Error; err != nil {
		return errs.Wrap(err, "delete visit")
	}

	r.media.DeleteFiles(ctx, fileBackedPaths(ctx, row))
	return nil
}

// fileBackedPaths extracts filesystem references from a row's media columns.
// Malformed columns contribute nothing; there is no file to reclaim from a
// column we cannot read.
func fileBackedPaths(ctx context.Context, row model.Visit) []string {
	var paths []string
	for _, column := range []*string{row.Image, row.IDImage} {
		items, err := survey.DecodeMediaList(deref(column))
		if err != nil {
			logging.Warn(ctx, "skipping malformed media column during cleanup",
				slog.Uint64("visit_id", row.ID),
				slog.Any("err", errs.Loggable(err)))
			continue
		}
		for _, item := range items {
			if item.FileBacked() {
				paths = append(paths, item.Base64)
			}
		}
	}
	return paths
}

func optText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
