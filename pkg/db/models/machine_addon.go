package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MachineAddon is the per-machine stock row for one addon, in units.
type MachineAddon struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	MachineID         uuid.UUID `gorm:"column:machine_id;type:uuid;not null;uniqueIndex:idx_machine_addon"`
	AddonID           uuid.UUID `gorm:"column:addon_id;type:uuid;not null;uniqueIndex:idx_machine_addon"`
	QtyAvailable      int       `gorm:"column:qty_available;not null;default:0"`
	LowStockThreshold int       `gorm:"column:low_stock_threshold;not null;default:0"`
	Addon             *Addon    `gorm:"foreignKey:AddonID"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *MachineAddon) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
