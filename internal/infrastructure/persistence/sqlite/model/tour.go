package model

// Tour is a local mirror row of a server-side tour. Synced is kept for
// schema fidelity with the device database but is never written to 1; tours
// are read-only from the device's perspective.
type Tour struct {
	ID        uint64  `gorm:"column:id;primaryKey;autoIncrement"`
	TourID    int64   `gorm:"column:tour_id;not null;index"`
	AdminID   int64   `gorm:"column:admin_id;not null"`
	ZoneID    int64   `gorm:"column:zone_id;not null"`
	Note      *string `gorm:"column:note;type:text"`
	StartDate *string `gorm:"column:start_date;type:text"`
	EndDate   *string `gorm:"column:end_date;type:text"`
	TourDate  string  `gorm:"column:tour_date;type:text;not null"`
	CreatedAt string  `gorm:"column:created_at;type:text;not null"`
	UpdatedAt string  `gorm:"column:updated_at;type:text;not null"`
	DeletedAt *string `gorm:"column:deleted_at;type:text"`
	Synced    int     `gorm:"column:synced;not null;default:0"`
}

func (Tour) TableName() string {
	return "tours"
}
