package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MachineIngredient is the per-machine stock row for one ingredient, in grams.
type MachineIngredient struct {
	ID                 uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	MachineID          uuid.UUID   `gorm:"column:machine_id;type:uuid;not null;uniqueIndex:idx_machine_ingredient"`
	IngredientID       uuid.UUID   `gorm:"column:ingredient_id;type:uuid;not null;uniqueIndex:idx_machine_ingredient"`
	QtyAvailableG      int         `gorm:"column:qty_available_g;not null;default:0"`
	LowStockThresholdG int         `gorm:"column:low_stock_threshold_g;not null;default:0"`
	Ingredient         *Ingredient `gorm:"foreignKey:IngredientID"`
	CreatedAt          time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MachineIngredient) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
