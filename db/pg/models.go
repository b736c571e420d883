package pg

import (
	"time"

	"github.com/google/uuid"
)

type BillModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email      string    `gorm:"size:255;not null;index"`
	Type       string    `gorm:"size:255;not null"`
	Name       string    `gorm:"size:255;not null"`
	Amount     float64   `gorm:"type:numeric(10,2);not null"`
	Date       string    `gorm:"size:10;not null"` // ISO 8601, kept as text for lexical ordering
	Vat        string    `gorm:"size:16"`
	Pct        int       `gorm:"not null"`
	Commentary string    `gorm:"type:text"`
	FileURL    string    `gorm:"size:1024"`
	FileName   string    `gorm:"size:255"`
	Status     string    `gorm:"size:16;not null"`
	// meta data
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for BillModel.
func (BillModel) TableName() string {
	return "bills"
}
