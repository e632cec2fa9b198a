package model

// VisitDraft is the resumable state of one in-progress visit form. One row
// per tour, keyed by tour_id, replacing per-field key-value entries.
type VisitDraft struct {
	TourID    string `gorm:"column:tour_id;type:text;primaryKey"`
	Step      int    `gorm:"column:step;not null;default:0"`
	Payload   string `gorm:"column:payload;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (VisitDraft) TableName() string {
	return "visit_drafts"
}
