package models

import (
	"database/sql/driver"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a raw JSON column whose SQL type follows the connected dialect.
type JSON struct {
	datatypes.JSON
}

// NewJSON wraps an encoded document.
func NewJSON(data []byte) JSON {
	return JSON{JSON: datatypes.JSON(data)}
}

// Bytes returns the encoded document.
func (j JSON) Bytes() []byte {
	return []byte(j.JSON)
}

func (j JSON) Value() (driver.Value, error) {
	return j.JSON.Value()
}

func (j *JSON) Scan(value interface{}) error {
	return j.JSON.Scan(value)
}

func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "LONGTEXT"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
