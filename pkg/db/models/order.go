package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
)

// Order is one fulfillment request placed at a machine. Totals are supplied
// by the ordering client and persisted verbatim.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	MachineID     *uuid.UUID        `gorm:"column:machine_id;type:uuid;constraint:OnDelete:SET NULL"`
	SessionID     *string           `gorm:"column:session_id;type:varchar(255)"`
	Status        enums.OrderStatus `gorm:"column:status;type:varchar(20);not null;default:'processing'"`
	TotalPrice    decimal.Decimal   `gorm:"column:total_price;type:numeric(10,2);not null;default:0"`
	TotalCalories int               `gorm:"column:total_calories;not null;default:0"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Addons        []OrderAddon      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is an immutable ingredient line. grams_used drives both the
// initial deduction and any later restore.
type OrderItem struct {
	ID           uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	OrderID      uuid.UUID   `gorm:"column:order_id;type:uuid;not null"`
	IngredientID *uuid.UUID  `gorm:"column:ingredient_id;type:uuid;constraint:OnDelete:SET NULL"`
	QtyML        int         `gorm:"column:qty_ml;not null;default:0"`
	GramsUsed    int         `gorm:"column:grams_used;not null;default:0"`
	Calories     int         `gorm:"column:calories;not null;default:0"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// OrderAddon is an immutable addon line, counted in units.
type OrderAddon struct {
	ID       uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderID  uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	AddonID  *uuid.UUID `gorm:"column:addon_id;type:uuid;constraint:OnDelete:SET NULL"`
	Qty      int        `gorm:"column:qty;not null;default:1"`
	Calories int        `gorm:"column:calories;not null;default:0"`
	Addon    *Addon     `gorm:"foreignKey:AddonID"`
}

func (a *OrderAddon) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
