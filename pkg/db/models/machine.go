package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
)

// Machine is a deployed vending unit holding cups, bowls and per-item stock.
type Machine struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Location    string              `gorm:"column:location;not null"`
	Status      enums.MachineStatus `gorm:"column:status;type:varchar(20);not null;default:'active'"`
	CupsQty     int                 `gorm:"column:cups_qty;not null;default:0"`
	BowlsQty    int                 `gorm:"column:bowls_qty;not null;default:0"`
	Ingredients []MachineIngredient `gorm:"foreignKey:MachineID;constraint:OnDelete:CASCADE"`
	Addons      []MachineAddon      `gorm:"foreignKey:MachineID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (m *Machine) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
