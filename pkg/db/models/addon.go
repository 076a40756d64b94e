package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Addon is a catalog entry dispensed by discrete units.
type Addon struct {
	ID       uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name     string          `gorm:"column:name;not null"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null;default:0"`
	Calories int             `gorm:"column:calories;not null;default:0"`
	Icon     *string         `gorm:"column:icon"`
}

func (a *Addon) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
