package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

// Ledger mutates per-machine stock rows. Every mutation runs on the caller's
// transaction handle so order creation and compensation stay atomic.
type Ledger interface {
	IngredientStock(ctx context.Context, tx *gorm.DB, machineID, ingredientID uuid.UUID) (int, error)
	AddonStock(ctx context.Context, tx *gorm.DB, machineID, addonID uuid.UUID) (int, error)
	DeductIngredient(ctx context.Context, tx *gorm.DB, machineID, ingredientID uuid.UUID, grams int) error
	DeductAddon(ctx context.Context, tx *gorm.DB, machineID, addonID uuid.UUID, qty int) error
	RestoreIngredient(ctx context.Context, tx *gorm.DB, machineID, ingredientID uuid.UUID, grams int) error
	RestoreAddon(ctx context.Context, tx *gorm.DB, machineID, addonID uuid.UUID, qty int) error
}

type ledger struct{}

// NewLedger exposes the default stock ledger implementation.
func NewLedger() Ledger {
	return ledger{}
}

func (ledger) IngredientStock(ctx context.Context, tx *gorm.DB, machineID, ingredientID uuid.UUID) (int, error) {
	return stockValue(ctx, tx, `
		SELECT qty_available_g FROM machine_ingredients
		WHERE machine_id = ? AND ingredient_id = ?
	`, machineID, ingredientID)
}

func (ledger) AddonStock(ctx context.Context, tx *gorm.DB, machineID, addonID uuid.UUID) (int, error) {
	return stockValue(ctx, tx, `
		SELECT qty_available FROM machine_addons
		WHERE machine_id = ? AND addon_id = ?
	`, machineID, addonID)
}

func (l ledger) DeductIngredient(ctx context.Context, tx *gorm.DB, machineID, ingredientID uuid.UUID, grams int) error {
	if grams <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock deduction")
	}

	// Guarded single-statement decrement: the WHERE clause rejects the write
	// when stock would go negative, regardless of concurrent deductions.
	res := tx.WithContext(ctx).Exec(`
		UPDATE machine_ingredients
		SET qty_available_g = qty_available_g - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE machine_id = ? AND ingredient_id = ? AND qty_available_g >= ?
	`, grams, machineID, ingredientID, grams)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "deduct ingredient stock")
	}
	if res.RowsAffected == 0 {
		available, err := l.IngredientStock(ctx, tx, machineID, ingredientID)
		if err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient ingredient stock").
			WithDetails(map[string]any{
				"ingredient_id": ingredientID,
				"required":      grams,
				"available":     available,
			})
	}
	return nil
}

func (l ledger) DeductAddon(ctx context.Context, tx *gorm.DB, machineID, addonID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock deduction")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE machine_addons
		SET qty_available = qty_available - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE machine_id = ? AND addon_id = ? AND qty_available >= ?
	`, qty, machineID, addonID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "deduct addon stock")
	}
	if res.RowsAffected == 0 {
		available, err := l.AddonStock(ctx, tx, machineID, addonID)
		if err != nil {
			return err
		}
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient addon stock").
			WithDetails(map[string]any{
				"addon_id":  addonID,
				"required":  qty,
				"available": available,
			})
	}
	return nil
}

func (ledger) RestoreIngredient(ctx context.Context, tx *gorm.DB, machineID, ingredientID uuid.UUID, grams int) error {
	if grams <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock restore")
	}

	// Restore tolerates a missing row: the machine or catalog reference may
	// have been removed since the order was placed.
	res := tx.WithContext(ctx).Exec(`
		UPDATE machine_ingredients
		SET qty_available_g = qty_available_g + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE machine_id = ? AND ingredient_id = ?
	`, grams, machineID, ingredientID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restore ingredient stock")
	}
	return nil
}

func (ledger) RestoreAddon(ctx context.Context, tx *gorm.DB, machineID, addonID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock restore")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE machine_addons
		SET qty_available = qty_available + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE machine_id = ? AND addon_id = ?
	`, qty, machineID, addonID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restore addon stock")
	}
	return nil
}

func stockValue(ctx context.Context, tx *gorm.DB, query string, machineID, itemID uuid.UUID) (int, error) {
	if tx == nil {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock lookup")
	}
	var qty int
	err := tx.WithContext(ctx).Raw(query, machineID, itemID).Scan(&qty).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock row")
	}
	return qty, nil
}

// Classify maps a stock quantity to its level relative to the low threshold.
func Classify(qty, lowThreshold int) enums.StockLevel {
	switch {
	case qty <= 0:
		return enums.StockLevelOut
	case qty <= lowThreshold:
		return enums.StockLevelLow
	default:
		return enums.StockLevelAvailable
	}
}
