package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"

	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/dispatch"
)

// IngredientLineInput is one requested ingredient, measured in grams plus an
// optional millilitre amount used only for the dispensing instruction.
type IngredientLineInput struct {
	IngredientID uuid.UUID `json:"ingredient_id" validate:"required"`
	QtyML        int       `json:"qty_ml" validate:"min=0"`
	GramsUsed    int       `json:"grams_used" validate:"required,gt=0"`
	Calories     int       `json:"calories" validate:"min=0"`
}

// AddonLineInput is one requested addon, counted in units.
type AddonLineInput struct {
	AddonID  uuid.UUID `json:"addon_id" validate:"required"`
	Qty      int       `json:"qty" validate:"required,gt=0"`
	Calories int       `json:"calories" validate:"min=0"`
}

// LiquidInput parameterizes the dispensing instruction; liquids are never
// persisted and never touch stock.
type LiquidInput struct {
	Name string `json:"name" validate:"required"`
	Qty  string `json:"qty"`
}

// CreateOrderInput carries a customer order request. Totals are trusted as
// supplied; pricing is the ordering client's responsibility.
type CreateOrderInput struct {
	MachineID     uuid.UUID             `json:"machine_id" validate:"required"`
	SessionID     *string               `json:"session_id" validate:"omitempty,max=255"`
	Status        enums.OrderStatus     `json:"status" validate:"omitempty,oneof=pending processing"`
	Ingredients   []IngredientLineInput `json:"ingredients" validate:"dive"`
	Addons        []AddonLineInput      `json:"addons" validate:"dive"`
	Liquids       []LiquidInput         `json:"liquids" validate:"dive"`
	TotalPrice    decimal.Decimal       `json:"total_price"`
	TotalCalories int                   `json:"total_calories" validate:"min=0"`
}

// UpdateStatusInput carries a lifecycle transition request.
type UpdateStatusInput struct {
	OrderID uuid.UUID
	Status  enums.OrderStatus
}

// ListFilters describe the inputs supported by the machine orders list.
type ListFilters struct {
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Skip     int
}

// ItemLineView is one persisted ingredient line in API shape.
type ItemLineView struct {
	IngredientID *uuid.UUID `json:"ingredient_id"`
	Name         string     `json:"name,omitempty"`
	QtyML        int        `json:"qty_ml"`
	GramsUsed    int        `json:"grams_used"`
	Calories     int        `json:"calories"`
}

// AddonLineView is one persisted addon line in API shape.
type AddonLineView struct {
	AddonID  *uuid.UUID `json:"addon_id"`
	Name     string     `json:"name,omitempty"`
	Qty      int        `json:"qty"`
	Calories int        `json:"calories"`
}

// OrderView is the API shape of an order aggregate.
type OrderView struct {
	ID            uuid.UUID         `json:"id"`
	MachineID     *uuid.UUID        `json:"machine_id"`
	SessionID     *string           `json:"session_id,omitempty"`
	Status        enums.OrderStatus `json:"status"`
	TotalPrice    decimal.Decimal   `json:"total_price"`
	TotalCalories int               `json:"total_calories"`
	Items         []ItemLineView    `json:"items"`
	Addons        []AddonLineView   `json:"addons"`
	CreatedAt     time.Time         `json:"created_at"`
}

// OrderList wraps a filtered page of orders plus the unfiltered total.
type OrderList struct {
	Orders []OrderView `json:"orders"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Skip   int         `json:"skip"`
}

// StatsFilters narrows the statistics window. Nil fields match everything.
type StatsFilters struct {
	MachineID *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
}

// Stats aggregates order counts, revenue, and calories. Averages cover
// completed orders only.
type Stats struct {
	TotalOrders   int64           `json:"total_orders"`
	Pending       int64           `json:"pending"`
	Processing    int64           `json:"processing"`
	Completed     int64           `json:"completed"`
	Failed        int64           `json:"failed"`
	Cancelled     int64           `json:"cancelled"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	AvgCalories   decimal.Decimal `json:"avg_calories"`
}

func buildOrderView(order *models.Order) *OrderView {
	view := &OrderView{
		ID:            order.ID,
		MachineID:     order.MachineID,
		SessionID:     order.SessionID,
		Status:        order.Status,
		TotalPrice:    order.TotalPrice,
		TotalCalories: order.TotalCalories,
		Items:         make([]ItemLineView, 0, len(order.Items)),
		Addons:        make([]AddonLineView, 0, len(order.Addons)),
		CreatedAt:     order.CreatedAt,
	}
	for _, item := range order.Items {
		line := ItemLineView{
			IngredientID: item.IngredientID,
			QtyML:        item.QtyML,
			GramsUsed:    item.GramsUsed,
			Calories:     item.Calories,
		}
		if item.Ingredient != nil {
			line.Name = item.Ingredient.Name
		}
		view.Items = append(view.Items, line)
	}
	for _, addon := range order.Addons {
		line := AddonLineView{
			AddonID:  addon.AddonID,
			Qty:      addon.Qty,
			Calories: addon.Calories,
		}
		if addon.Addon != nil {
			line.Name = addon.Addon.Name
		}
		view.Addons = append(view.Addons, line)
	}
	return view
}

func toDispatchLiquids(liquids []LiquidInput) []dispatch.Liquid {
	if len(liquids) == 0 {
		return nil
	}
	out := make([]dispatch.Liquid, 0, len(liquids))
	for _, liquid := range liquids {
		out = append(out, dispatch.Liquid{Name: liquid.Name, Qty: liquid.Qty})
	}
	return out
}
