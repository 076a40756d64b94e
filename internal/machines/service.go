package machines

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"

	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/inventory"
)

// ItemType tags which stock table an inventory view row came from.
type ItemType string

const (
	ItemTypeIngredient ItemType = "ingredient"
	ItemTypeAddon      ItemType = "addon"
)

// InventoryItemView is one classified stock row for a machine.
type InventoryItemView struct {
	ItemID    uuid.UUID        `json:"item_id"`
	Type      ItemType         `json:"type"`
	Name      string           `json:"name"`
	Qty       int              `json:"qty_available"`
	Threshold int              `json:"low_stock_threshold"`
	Level     enums.StockLevel `json:"stock_level"`
}

// MachineInventory aggregates a machine's classified stock.
type MachineInventory struct {
	MachineID   uuid.UUID           `json:"machine_id"`
	Location    string              `json:"location"`
	Status      enums.MachineStatus `json:"status"`
	CupsQty     int                 `json:"cups_qty"`
	BowlsQty    int                 `json:"bowls_qty"`
	Ingredients []InventoryItemView `json:"ingredients"`
	Addons      []InventoryItemView `json:"addons"`
}

// LowStockAlert is one restock-needed row, ranked for operator attention.
type LowStockAlert struct {
	MachineID uuid.UUID        `json:"machine_id"`
	Location  string           `json:"location"`
	ItemID    uuid.UUID        `json:"item_id"`
	Type      ItemType         `json:"type"`
	Name      string           `json:"name"`
	Qty       int              `json:"qty_available"`
	Threshold int              `json:"low_stock_threshold"`
	Level     enums.StockLevel `json:"alert_level"`
	UpdatedAt time.Time        `json:"last_updated"`
}

// RestockInput carries a restock / threshold update for one stock row.
type RestockInput struct {
	MachineID uuid.UUID
	ItemID    uuid.UUID
	Qty       int
	Threshold *int
}

// Service exposes machine inventory reads and restock writes.
type Service interface {
	Inventory(ctx context.Context, machineID uuid.UUID) (*MachineInventory, error)
	LowStockAlerts(ctx context.Context) ([]LowStockAlert, error)
	RestockIngredient(ctx context.Context, input RestockInput) (*InventoryItemView, error)
	RestockAddon(ctx context.Context, input RestockInput) (*InventoryItemView, error)
}

type service struct {
	repo Repository
}

// NewService builds a machines service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("machines repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Inventory(ctx context.Context, machineID uuid.UUID) (*MachineInventory, error) {
	machine, err := s.repo.FindMachine(ctx, machineID)
	if err != nil {
		return nil, err
	}

	ingredientRows, err := s.repo.ListMachineIngredients(ctx, machineID)
	if err != nil {
		return nil, err
	}
	addonRows, err := s.repo.ListMachineAddons(ctx, machineID)
	if err != nil {
		return nil, err
	}

	view := &MachineInventory{
		MachineID:   machine.ID,
		Location:    machine.Location,
		Status:      machine.Status,
		CupsQty:     machine.CupsQty,
		BowlsQty:    machine.BowlsQty,
		Ingredients: make([]InventoryItemView, 0, len(ingredientRows)),
		Addons:      make([]InventoryItemView, 0, len(addonRows)),
	}

	for _, row := range ingredientRows {
		name := ""
		if row.Ingredient != nil {
			name = row.Ingredient.Name
		}
		view.Ingredients = append(view.Ingredients, InventoryItemView{
			ItemID:    row.IngredientID,
			Type:      ItemTypeIngredient,
			Name:      name,
			Qty:       row.QtyAvailableG,
			Threshold: row.LowStockThresholdG,
			Level:     inventory.Classify(row.QtyAvailableG, row.LowStockThresholdG),
		})
	}
	for _, row := range addonRows {
		name := ""
		if row.Addon != nil {
			name = row.Addon.Name
		}
		view.Addons = append(view.Addons, InventoryItemView{
			ItemID:    row.AddonID,
			Type:      ItemTypeAddon,
			Name:      name,
			Qty:       row.QtyAvailable,
			Threshold: row.LowStockThreshold,
			Level:     inventory.Classify(row.QtyAvailable, row.LowStockThreshold),
		})
	}

	return view, nil
}

func (s *service) LowStockAlerts(ctx context.Context) ([]LowStockAlert, error) {
	ingredientRows, err := s.repo.LowIngredientRows(ctx)
	if err != nil {
		return nil, err
	}
	addonRows, err := s.repo.LowAddonRows(ctx)
	if err != nil {
		return nil, err
	}

	alerts := make([]LowStockAlert, 0, len(ingredientRows)+len(addonRows))
	for _, row := range ingredientRows {
		alerts = append(alerts, buildAlert(row, ItemTypeIngredient))
	}
	for _, row := range addonRows {
		alerts = append(alerts, buildAlert(row, ItemTypeAddon))
	}

	// Out-of-stock rows outrank low-stock rows; within a level, emptier first.
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Level != alerts[j].Level {
			return levelPriority(alerts[i].Level) < levelPriority(alerts[j].Level)
		}
		return alerts[i].Qty < alerts[j].Qty
	})

	return alerts, nil
}

func (s *service) RestockIngredient(ctx context.Context, input RestockInput) (*InventoryItemView, error) {
	if err := validateRestock(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindMachine(ctx, input.MachineID); err != nil {
		return nil, err
	}

	row, err := s.repo.UpsertIngredientStock(ctx, input.MachineID, input.ItemID, input.Qty, input.Threshold)
	if err != nil {
		return nil, err
	}
	return &InventoryItemView{
		ItemID:    row.IngredientID,
		Type:      ItemTypeIngredient,
		Qty:       row.QtyAvailableG,
		Threshold: row.LowStockThresholdG,
		Level:     inventory.Classify(row.QtyAvailableG, row.LowStockThresholdG),
	}, nil
}

func (s *service) RestockAddon(ctx context.Context, input RestockInput) (*InventoryItemView, error) {
	if err := validateRestock(input); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindMachine(ctx, input.MachineID); err != nil {
		return nil, err
	}

	row, err := s.repo.UpsertAddonStock(ctx, input.MachineID, input.ItemID, input.Qty, input.Threshold)
	if err != nil {
		return nil, err
	}
	return &InventoryItemView{
		ItemID:    row.AddonID,
		Type:      ItemTypeAddon,
		Qty:       row.QtyAvailable,
		Threshold: row.LowStockThreshold,
		Level:     inventory.Classify(row.QtyAvailable, row.LowStockThreshold),
	}, nil
}

func validateRestock(input RestockInput) error {
	if input.MachineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "machine id required")
	}
	if input.ItemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.Qty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "qty must not be negative")
	}
	if input.Threshold != nil && *input.Threshold < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "threshold must not be negative")
	}
	return nil
}

func buildAlert(row LowStockRow, itemType ItemType) LowStockAlert {
	return LowStockAlert{
		MachineID: row.MachineID,
		Location:  row.Location,
		ItemID:    row.ItemID,
		Type:      itemType,
		Name:      row.Name,
		Qty:       row.Qty,
		Threshold: row.Threshold,
		Level:     inventory.Classify(row.Qty, row.Threshold),
		UpdatedAt: row.UpdatedAt,
	}
}

func levelPriority(level enums.StockLevel) int {
	switch level {
	case enums.StockLevelOut:
		return 0
	case enums.StockLevelLow:
		return 1
	default:
		return 2
	}
}
