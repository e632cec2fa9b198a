package model

// ProfileKV backs the key-value cache for the bearer token and the
// last-known profile snapshot.
type ProfileKV struct {
	Key       string `gorm:"column:key;type:text;primaryKey"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (ProfileKV) TableName() string {
	return "profile_cache"
}
