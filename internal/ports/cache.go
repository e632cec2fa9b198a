package ports

import (
	"context"
	"time"
)

// Cache defines a generic key-value capability for usecases. Adapters may be
// backed by SQLite or any other store.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Draft is the resumable state of one in-progress visit form, one row per
// tour.
type Draft struct {
	TourID    string
	Step      int
	Payload   string
	UpdatedAt string
}

// DraftStore persists form drafts so a technician can resume after an app
// restart. Save replaces any existing draft for the tour.
type DraftStore interface {
	Save(ctx context.Context, draft Draft) error
	Load(ctx context.Context, tourID string) (Draft, bool, error)
	Clear(ctx context.Context, tourID string) error
}
