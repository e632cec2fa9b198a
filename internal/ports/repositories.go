package ports

import (
	"context"
	"errors"

	"fieldtour/internal/domain/survey"
)

var ErrVisitNotFound = errors.New("visit not found")

// VisitRepository is durable CRUD over locally collected visits. Rows carry
// a synced marker; a synced visit is deleted, so the terminal state is
// absence from the table.
type VisitRepository interface {
	// Insert stores a new visit with synced=false and returns the local id.
	Insert(ctx context.Context, visit survey.Visit) (uint64, error)
	// ListByTour returns every visit for a tour, newest first by created_at.
	// Rows with malformed media columns come back with an empty media list.
	ListByTour(ctx context.Context, tourID string) ([]survey.Visit, error)
	// ListForUpload returns only unsynced visits for a tour, oldest first by
	// created_at, preserving field-collection order for the upload batch.
	ListForUpload(ctx context.Context, tourID string) ([]survey.Visit, error)
	// MarkSynced deletes the given rows and their file-backed media in one
	// transaction. Empty and already-deleted id sets are no-ops.
	MarkSynced(ctx context.Context, ids []uint64) error
	// Delete removes a single visit and its file-backed media.
	Delete(ctx context.Context, id uint64) error
}

// TourRepository mirrors the server-authoritative tour list. The mirror is
// replaced wholesale on every successful fetch and never synced outward.
type TourRepository interface {
	ReplaceAll(ctx context.Context, tours []survey.Tour) error
	ListAll(ctx context.Context) ([]survey.Tour, error)
}
