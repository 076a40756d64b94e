package machines

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

// Repository defines persistence operations for machines and their stock rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindMachine(ctx context.Context, id uuid.UUID) (*models.Machine, error)
	ListMachineIngredients(ctx context.Context, machineID uuid.UUID) ([]models.MachineIngredient, error)
	ListMachineAddons(ctx context.Context, machineID uuid.UUID) ([]models.MachineAddon, error)
	UpsertIngredientStock(ctx context.Context, machineID, ingredientID uuid.UUID, qty int, threshold *int) (*models.MachineIngredient, error)
	UpsertAddonStock(ctx context.Context, machineID, addonID uuid.UUID, qty int, threshold *int) (*models.MachineAddon, error)
	LowIngredientRows(ctx context.Context) ([]LowStockRow, error)
	LowAddonRows(ctx context.Context) ([]LowStockRow, error)
}

// LowStockRow is one stock entry at or below its threshold, joined with
// machine and catalog names.
type LowStockRow struct {
	MachineID uuid.UUID `gorm:"column:machine_id"`
	Location  string    `gorm:"column:location"`
	ItemID    uuid.UUID `gorm:"column:item_id"`
	Name      string    `gorm:"column:name"`
	Qty       int       `gorm:"column:qty"`
	Threshold int       `gorm:"column:threshold"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a machines repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindMachine(ctx context.Context, id uuid.UUID) (*models.Machine, error) {
	var machine models.Machine
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&machine).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "machine not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load machine")
	}
	return &machine, nil
}

func (r *repository) ListMachineIngredients(ctx context.Context, machineID uuid.UUID) ([]models.MachineIngredient, error) {
	var rows []models.MachineIngredient
	err := r.db.WithContext(ctx).
		Preload("Ingredient").
		Where("machine_id = ?", machineID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list machine ingredients")
	}
	return rows, nil
}

func (r *repository) ListMachineAddons(ctx context.Context, machineID uuid.UUID) ([]models.MachineAddon, error) {
	var rows []models.MachineAddon
	err := r.db.WithContext(ctx).
		Preload("Addon").
		Where("machine_id = ?", machineID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list machine addons")
	}
	return rows, nil
}

func (r *repository) UpsertIngredientStock(ctx context.Context, machineID, ingredientID uuid.UUID, qty int, threshold *int) (*models.MachineIngredient, error) {
	row := models.MachineIngredient{
		MachineID:     machineID,
		IngredientID:  ingredientID,
		QtyAvailableG: qty,
	}
	if threshold != nil {
		row.LowStockThresholdG = *threshold
	}

	assignments := map[string]any{"qty_available_g": qty, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")}
	if threshold != nil {
		assignments["low_stock_threshold_g"] = *threshold
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "machine_id"}, {Name: "ingredient_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(&row).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert ingredient stock")
	}

	// Reload so an update that left the threshold alone still reports
	// the stored value.
	var saved models.MachineIngredient
	err = r.db.WithContext(ctx).
		Where("machine_id = ? AND ingredient_id = ?", machineID, ingredientID).
		First(&saved).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload ingredient stock")
	}
	return &saved, nil
}

func (r *repository) UpsertAddonStock(ctx context.Context, machineID, addonID uuid.UUID, qty int, threshold *int) (*models.MachineAddon, error) {
	row := models.MachineAddon{
		MachineID:    machineID,
		AddonID:      addonID,
		QtyAvailable: qty,
	}
	if threshold != nil {
		row.LowStockThreshold = *threshold
	}

	assignments := map[string]any{"qty_available": qty, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")}
	if threshold != nil {
		assignments["low_stock_threshold"] = *threshold
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "machine_id"}, {Name: "addon_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(&row).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert addon stock")
	}

	var saved models.MachineAddon
	err = r.db.WithContext(ctx).
		Where("machine_id = ? AND addon_id = ?", machineID, addonID).
		First(&saved).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload addon stock")
	}
	return &saved, nil
}

func (r *repository) LowIngredientRows(ctx context.Context) ([]LowStockRow, error) {
	var rows []LowStockRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT mi.machine_id, m.location, mi.ingredient_id AS item_id, i.name,
			mi.qty_available_g AS qty, mi.low_stock_threshold_g AS threshold, mi.updated_at
		FROM machine_ingredients mi
		JOIN machines m ON m.id = mi.machine_id
		JOIN ingredients i ON i.id = mi.ingredient_id
		WHERE mi.qty_available_g <= mi.low_stock_threshold_g
	`).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load low ingredient rows")
	}
	return rows, nil
}

func (r *repository) LowAddonRows(ctx context.Context) ([]LowStockRow, error) {
	var rows []LowStockRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT ma.machine_id, m.location, ma.addon_id AS item_id, a.name,
			ma.qty_available AS qty, ma.low_stock_threshold AS threshold, ma.updated_at
		FROM machine_addons ma
		JOIN machines m ON m.id = ma.machine_id
		JOIN addons a ON a.id = ma.addon_id
		WHERE ma.qty_available <= ma.low_stock_threshold
	`).Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load low addon rows")
	}
	return rows, nil
}
