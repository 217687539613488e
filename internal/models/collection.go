package models

import "time"

// CollectionDocument stores one whole collection as a JSON body in the SQL backend.
type CollectionDocument struct {
	Name      string    `gorm:"column:collection_name;primaryKey;size:64"`
	Version   uint64    `gorm:"column:collection_version;not null;default:0"`
	Body      JSON      `gorm:"column:collection_body;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default table name.
func (CollectionDocument) TableName() string {
	return "collections"
}
