package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is a catalog entry dispensed by grams (solids) and carrying
// the recipe constraints enforced at order time.
type Ingredient struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name            string          `gorm:"column:name;not null"`
	Emoji           *string         `gorm:"column:emoji;type:varchar(10)"`
	Image           *string         `gorm:"column:image"`
	MinQtyG         int             `gorm:"column:min_qty_g;not null;default:0"`
	MaxPercentLimit int             `gorm:"column:max_percent_limit;not null;default:100"`
	CaloriesPerG    decimal.Decimal `gorm:"column:calories_per_g;type:numeric(5,2);not null;default:0"`
	PricePerGram    decimal.Decimal `gorm:"column:price_per_gram;type:numeric(10,4);not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (i *Ingredient) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
