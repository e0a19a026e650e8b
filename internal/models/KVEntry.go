package models

import (
	"time"
)

// KVEntry is one key-value blob in the kv_entries table.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:191" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName pins the table name shared with the SQLite store.
func (KVEntry) TableName() string {
	return "kv_entries"
}
