package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	CreateOrderAddons(ctx context.Context, addons []models.OrderAddon) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	CountInFlight(ctx context.Context, machineID uuid.UUID) (int64, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	ListMachineOrders(ctx context.Context, machineID uuid.UUID, filters ListFilters) (*OrderList, error)
	Stats(ctx context.Context, filters StatsFilters) (*Stats, error)
}
