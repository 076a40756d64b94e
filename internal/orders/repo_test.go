package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

func newOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Ingredient{},
		&models.Addon{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderAddon{},
	)
	if err != nil {
		t.Fatalf("migrate order tables: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, machineID uuid.UUID, status enums.OrderStatus, price string, createdAt time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		MachineID:  &machineID,
		Status:     status,
		TotalPrice: decimal.RequireFromString(price),
		CreatedAt:  createdAt,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func setOrderCalories(t *testing.T, db *gorm.DB, order *models.Order, calories int) {
	t.Helper()
	if err := db.Model(order).Update("total_calories", calories).Error; err != nil {
		t.Fatalf("set order calories: %v", err)
	}
}

func TestCreateAndFindOrderWithLines(t *testing.T) {
	t.Parallel()

	db := newOrderTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)
	machineID := uuid.New()

	ingredient := models.Ingredient{Name: "Banana", MinQtyG: 10, MaxPercentLimit: 100}
	if err := db.Create(&ingredient).Error; err != nil {
		t.Fatalf("seed ingredient: %v", err)
	}
	addon := models.Addon{Name: "ProteinPowder", Price: decimal.RequireFromString("2.50")}
	if err := db.Create(&addon).Error; err != nil {
		t.Fatalf("seed addon: %v", err)
	}

	session := "smoothie-abc"
	order := &models.Order{
		MachineID:     &machineID,
		SessionID:     &session,
		Status:        enums.OrderStatusProcessing,
		TotalPrice:    decimal.RequireFromString("7.25"),
		TotalCalories: 320,
	}
	if _, err := repo.CreateOrder(ctx, order); err != nil {
		t.Fatalf("create order: %v", err)
	}
	items := []models.OrderItem{{
		OrderID:      order.ID,
		IngredientID: &ingredient.ID,
		QtyML:        150,
		GramsUsed:    150,
		Calories:     130,
	}}
	if err := repo.CreateOrderItems(ctx, items); err != nil {
		t.Fatalf("create items: %v", err)
	}
	addons := []models.OrderAddon{{
		OrderID:  order.ID,
		AddonID:  &addon.ID,
		Qty:      1,
		Calories: 190,
	}}
	if err := repo.CreateOrderAddons(ctx, addons); err != nil {
		t.Fatalf("create addons: %v", err)
	}

	loaded, err := repo.FindOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("find order: %v", err)
	}
	if len(loaded.Items) != 1 || len(loaded.Addons) != 1 {
		t.Fatalf("expected 1 item and 1 addon, got %d/%d", len(loaded.Items), len(loaded.Addons))
	}
	if loaded.Items[0].Ingredient == nil || loaded.Items[0].Ingredient.Name != "Banana" {
		t.Fatalf("ingredient not preloaded: %+v", loaded.Items[0])
	}
	if loaded.Addons[0].Addon == nil || loaded.Addons[0].Addon.Name != "ProteinPowder" {
		t.Fatalf("addon not preloaded: %+v", loaded.Addons[0])
	}
	if !loaded.TotalPrice.Equal(decimal.RequireFromString("7.25")) {
		t.Fatalf("total price mutated: %s", loaded.TotalPrice)
	}
}

func TestFindOrderNotFound(t *testing.T) {
	t.Parallel()

	db := newOrderTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindOrder(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCountInFlightOnlyCountsNonTerminal(t *testing.T) {
	t.Parallel()

	db := newOrderTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)
	machineID := uuid.New()
	now := time.Now().UTC()

	seedOrder(t, db, machineID, enums.OrderStatusPending, "1.00", now)
	seedOrder(t, db, machineID, enums.OrderStatusProcessing, "2.00", now)
	seedOrder(t, db, machineID, enums.OrderStatusCompleted, "3.00", now)
	seedOrder(t, db, machineID, enums.OrderStatusCancelled, "4.00", now)
	seedOrder(t, db, uuid.New(), enums.OrderStatusProcessing, "5.00", now)

	count, err := repo.CountInFlight(ctx, machineID)
	if err != nil {
		t.Fatalf("count in flight: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 in-flight orders, got %d", count)
	}
}

func TestUpdateOrderStatusMissingRow(t *testing.T) {
	t.Parallel()

	db := newOrderTestDB(t)
	repo := NewRepository(db)

	err := repo.UpdateOrderStatus(context.Background(), uuid.New(), enums.OrderStatusCompleted)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListMachineOrdersFiltersAndPaging(t *testing.T) {
	t.Parallel()

	db := newOrderTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)
	machineID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	seedOrder(t, db, machineID, enums.OrderStatusCompleted, "5.00", base)
	seedOrder(t, db, machineID, enums.OrderStatusCompleted, "6.00", base.Add(time.Hour))
	seedOrder(t, db, machineID, enums.OrderStatusFailed, "7.00", base.Add(2*time.Hour))
	seedOrder(t, db, uuid.New(), enums.OrderStatusCompleted, "8.00", base)

	completed := enums.OrderStatusCompleted
	list, err := repo.ListMachineOrders(ctx, machineID, ListFilters{Status: &completed})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if list.Total != 2 || len(list.Orders) != 2 {
		t.Fatalf("expected 2 completed orders, got total=%d len=%d", list.Total, len(list.Orders))
	}
	if list.Orders[0].CreatedAt.Before(list.Orders[1].CreatedAt) {
		t.Fatalf("expected newest first ordering")
	}

	from := base.Add(90 * time.Minute)
	list, err = repo.ListMachineOrders(ctx, machineID, ListFilters{DateFrom: &from})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if list.Total != 1 || list.Orders[0].Status != enums.OrderStatusFailed {
		t.Fatalf("date filter mismatch: %+v", list)
	}

	list, err = repo.ListMachineOrders(ctx, machineID, ListFilters{Limit: 1, Skip: 1})
	if err != nil {
		t.Fatalf("list with paging: %v", err)
	}
	if list.Total != 3 || len(list.Orders) != 1 {
		t.Fatalf("paging mismatch: total=%d len=%d", list.Total, len(list.Orders))
	}
	if list.Limit != 1 || list.Skip != 1 {
		t.Fatalf("paging echo mismatch: %+v", list)
	}
}

func TestStatsAggregatesByStatus(t *testing.T) {
	t.Parallel()

	db := newOrderTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)
	machineID := uuid.New()
	now := time.Now().UTC()

	first := seedOrder(t, db, machineID, enums.OrderStatusCompleted, "10.50", now)
	second := seedOrder(t, db, machineID, enums.OrderStatusCompleted, "4.50", now)
	seedOrder(t, db, machineID, enums.OrderStatusFailed, "9.99", now)
	seedOrder(t, db, machineID, enums.OrderStatusPending, "1.00", now)
	setOrderCalories(t, db, first, 300)
	setOrderCalories(t, db, second, 200)

	stats, err := repo.Stats(ctx, StatsFilters{})
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if stats.TotalOrders != 4 {
		t.Fatalf("expected 4 orders, got %d", stats.TotalOrders)
	}
	if stats.Completed != 2 || stats.Failed != 1 || stats.Pending != 1 {
		t.Fatalf("status counts mismatch: %+v", stats)
	}
	if !stats.TotalRevenue.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("expected revenue 15, got %s", stats.TotalRevenue)
	}
	if !stats.AvgOrderValue.Equal(decimal.RequireFromString("7.5")) {
		t.Fatalf("expected avg 7.5, got %s", stats.AvgOrderValue)
	}
	if !stats.AvgCalories.Equal(decimal.RequireFromString("250")) {
		t.Fatalf("expected avg calories 250, got %s", stats.AvgCalories)
	}
}

func TestStatsAppliesFilters(t *testing.T) {
	t.Parallel()

	db := newOrderTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)
	machineID := uuid.New()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	mine := seedOrder(t, db, machineID, enums.OrderStatusCompleted, "6.00", base)
	setOrderCalories(t, db, mine, 400)
	seedOrder(t, db, machineID, enums.OrderStatusCompleted, "9.00", base.Add(48*time.Hour))
	seedOrder(t, db, uuid.New(), enums.OrderStatusCompleted, "20.00", base)

	stats, err := repo.Stats(ctx, StatsFilters{MachineID: &machineID})
	if err != nil {
		t.Fatalf("stats by machine: %v", err)
	}
	if stats.TotalOrders != 2 || !stats.TotalRevenue.Equal(decimal.RequireFromString("15")) {
		t.Fatalf("machine filter mismatch: %+v", stats)
	}

	until := base.Add(time.Hour)
	stats, err = repo.Stats(ctx, StatsFilters{MachineID: &machineID, DateTo: &until})
	if err != nil {
		t.Fatalf("stats by machine and date: %v", err)
	}
	if stats.TotalOrders != 1 || !stats.TotalRevenue.Equal(decimal.RequireFromString("6")) {
		t.Fatalf("date filter mismatch: %+v", stats)
	}
	if !stats.AvgCalories.Equal(decimal.RequireFromString("400")) {
		t.Fatalf("expected avg calories 400, got %s", stats.AvgCalories)
	}

	from := base.Add(24 * time.Hour)
	stats, err = repo.Stats(ctx, StatsFilters{DateFrom: &from})
	if err != nil {
		t.Fatalf("stats by date_from: %v", err)
	}
	if stats.TotalOrders != 1 || !stats.TotalRevenue.Equal(decimal.RequireFromString("9")) {
		t.Fatalf("date_from filter mismatch: %+v", stats)
	}
}

func TestStatsEmptyTable(t *testing.T) {
	t.Parallel()

	db := newOrderTestDB(t)
	repo := NewRepository(db)

	stats, err := repo.Stats(context.Background(), StatsFilters{})
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if stats.TotalOrders != 0 || !stats.TotalRevenue.IsZero() || !stats.AvgOrderValue.IsZero() || !stats.AvgCalories.IsZero() {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}
