package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

func TestDeductIngredient(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()
	machineID := uuid.New()
	ingredientID := uuid.New()

	seedIngredientStock(t, db, machineID, ingredientID, 500)

	err := db.Transaction(func(tx *gorm.DB) error {
		return led.DeductIngredient(ctx, tx, machineID, ingredientID, 100)
	})
	if err != nil {
		t.Fatalf("deduct within stock: %v", err)
	}

	qty, err := led.IngredientStock(ctx, db, machineID, ingredientID)
	if err != nil {
		t.Fatalf("load stock: %v", err)
	}
	if qty != 400 {
		t.Fatalf("expected 400g remaining, got %d", qty)
	}
}

func TestDeductIngredientInsufficient(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()
	machineID := uuid.New()
	ingredientID := uuid.New()

	seedIngredientStock(t, db, machineID, ingredientID, 500)

	err := db.Transaction(func(tx *gorm.DB) error {
		return led.DeductIngredient(ctx, tx, machineID, ingredientID, 600)
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["required"] != 600 || details["available"] != 500 {
		t.Fatalf("unexpected shortfall details: %+v", details)
	}

	qty, err := led.IngredientStock(ctx, db, machineID, ingredientID)
	if err != nil {
		t.Fatalf("load stock: %v", err)
	}
	if qty != 500 {
		t.Fatalf("stock should be untouched, got %d", qty)
	}
}

func TestDeductIngredientMissingRowReportsZeroAvailable(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()

	err := led.DeductIngredient(ctx, db, uuid.New(), uuid.New(), 50)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}
	details := typed.Details().(map[string]any)
	if details["available"] != 0 {
		t.Fatalf("expected zero availability, got %+v", details)
	}
}

func TestDeductAddonExactStock(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()
	machineID := uuid.New()
	addonID := uuid.New()

	seedAddonStock(t, db, machineID, addonID, 2)

	if err := led.DeductAddon(ctx, db, machineID, addonID, 2); err != nil {
		t.Fatalf("deduct to zero: %v", err)
	}

	qty, err := led.AddonStock(ctx, db, machineID, addonID)
	if err != nil {
		t.Fatalf("load stock: %v", err)
	}
	if qty != 0 {
		t.Fatalf("expected zero remaining, got %d", qty)
	}

	if err := led.DeductAddon(ctx, db, machineID, addonID, 1); err == nil {
		t.Fatal("expected insufficient stock once depleted")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()
	machineID := uuid.New()
	ingredientID := uuid.New()

	seedIngredientStock(t, db, machineID, ingredientID, 300)

	if err := led.DeductIngredient(ctx, db, machineID, ingredientID, 120); err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if err := led.RestoreIngredient(ctx, db, machineID, ingredientID, 120); err != nil {
		t.Fatalf("restore: %v", err)
	}

	qty, err := led.IngredientStock(ctx, db, machineID, ingredientID)
	if err != nil {
		t.Fatalf("load stock: %v", err)
	}
	if qty != 300 {
		t.Fatalf("expected conservation after restore, got %d", qty)
	}
}

func TestRestoreMissingRowIsNoop(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()
	led := NewLedger()

	if err := led.RestoreIngredient(ctx, db, uuid.New(), uuid.New(), 80); err != nil {
		t.Fatalf("restore against missing row should not fail: %v", err)
	}
	if err := led.RestoreAddon(ctx, db, uuid.New(), uuid.New(), 1); err != nil {
		t.Fatalf("restore addon against missing row should not fail: %v", err)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		qty       int
		threshold int
		want      enums.StockLevel
	}{
		{qty: 0, threshold: 100, want: enums.StockLevelOut},
		{qty: -5, threshold: 100, want: enums.StockLevelOut},
		{qty: 100, threshold: 100, want: enums.StockLevelLow},
		{qty: 50, threshold: 100, want: enums.StockLevelLow},
		{qty: 101, threshold: 100, want: enums.StockLevelAvailable},
		{qty: 10, threshold: 0, want: enums.StockLevelAvailable},
	}
	for _, tt := range tests {
		if got := Classify(tt.qty, tt.threshold); got != tt.want {
			t.Fatalf("Classify(%d, %d) = %s, want %s", tt.qty, tt.threshold, got, tt.want)
		}
	}
}

func seedIngredientStock(t *testing.T, db *gorm.DB, machineID, ingredientID uuid.UUID, grams int) {
	t.Helper()
	row := models.MachineIngredient{
		MachineID:     machineID,
		IngredientID:  ingredientID,
		QtyAvailableG: grams,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed ingredient stock: %v", err)
	}
}

func seedAddonStock(t *testing.T, db *gorm.DB, machineID, addonID uuid.UUID, qty int) {
	t.Helper()
	row := models.MachineAddon{
		MachineID:    machineID,
		AddonID:      addonID,
		QtyAvailable: qty,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed addon stock: %v", err)
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.MachineIngredient{}, &models.MachineAddon{}); err != nil {
		t.Fatalf("migrate stock tables: %v", err)
	}
	return db
}
