package model

import "time"

// LocalKVModel backs the SQLite local store driver.
type LocalKVModel struct {
	Key       string    `gorm:"column:store_key;type:varchar(255);primaryKey"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the LocalKVModel.
func (LocalKVModel) TableName() string {
	return "local_kv"
}
