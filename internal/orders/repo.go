package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

const defaultListLimit = 20

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreateOrderAddons(ctx context.Context, addons []models.OrderAddon) error {
	if len(addons) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&addons).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Ingredient").
		Preload("Addons.Addon").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return &order, nil
}

func (r *repository) CountInFlight(ctx context.Context, machineID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("machine_id = ? AND status IN ?", machineID, []enums.OrderStatus{
			enums.OrderStatusPending,
			enums.OrderStatusProcessing,
		}).
		Count(&count).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count in-flight orders")
	}
	return count, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "update order status")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (r *repository) ListMachineOrders(ctx context.Context, machineID uuid.UUID, filters ListFilters) (*OrderList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("machine_id = ?", machineID)

	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count machine orders")
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	skip := filters.Skip
	if skip < 0 {
		skip = 0
	}

	var rows []models.Order
	err := query.
		Preload("Items.Ingredient").
		Preload("Addons.Addon").
		Order("created_at DESC").
		Limit(limit).
		Offset(skip).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list machine orders")
	}

	list := &OrderList{
		Orders: make([]OrderView, 0, len(rows)),
		Total:  total,
		Limit:  limit,
		Skip:   skip,
	}
	for i := range rows {
		list.Orders = append(list.Orders, *buildOrderView(&rows[i]))
	}
	return list, nil
}

type statsRow struct {
	TotalOrders       int64           `gorm:"column:total_orders"`
	Pending           int64           `gorm:"column:pending"`
	Processing        int64           `gorm:"column:processing"`
	Completed         int64           `gorm:"column:completed"`
	Failed            int64           `gorm:"column:failed"`
	Cancelled         int64           `gorm:"column:cancelled"`
	TotalRevenue      decimal.Decimal `gorm:"column:total_revenue"`
	CompletedCalories int64           `gorm:"column:completed_calories"`
}

func (r *repository) Stats(ctx context.Context, filters StatsFilters) (*Stats, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Select(`
		COUNT(*) AS total_orders,
		COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0) AS processing,
		COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) AS failed,
		COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled,
		COALESCE(SUM(CASE WHEN status = 'completed' THEN total_price ELSE 0 END), 0) AS total_revenue,
		COALESCE(SUM(CASE WHEN status = 'completed' THEN total_calories ELSE 0 END), 0) AS completed_calories`)
	if filters.MachineID != nil {
		query = query.Where("machine_id = ?", *filters.MachineID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var row statsRow
	if err := query.Scan(&row).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order stats")
	}

	stats := &Stats{
		TotalOrders:  row.TotalOrders,
		Pending:      row.Pending,
		Processing:   row.Processing,
		Completed:    row.Completed,
		Failed:       row.Failed,
		Cancelled:    row.Cancelled,
		TotalRevenue: row.TotalRevenue,
	}
	if row.Completed > 0 {
		completed := decimal.NewFromInt(row.Completed)
		stats.AvgOrderValue = row.TotalRevenue.Div(completed).Round(2)
		stats.AvgCalories = decimal.NewFromInt(row.CompletedCalories).Div(completed).Round(2)
	}
	return stats, nil
}
