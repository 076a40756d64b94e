package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/logger"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/metrics"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/redis"

	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/catalog"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/dispatch"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/inventory"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/machines"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// machineLocker serializes order admission per machine. The lock is held
// across admission check, deduction and insert so two concurrent requests
// for the same machine can't both pass the in-flight check.
type machineLocker interface {
	AcquireMachineLock(ctx context.Context, machineID string, ttl time.Duration) (*redis.MachineLock, error)
}

// instructionPublisher hands the rendered dispensing instruction to the
// actuator channel. One attempt, failures logged only.
type instructionPublisher interface {
	Publish(ctx context.Context, instruction string) error
}

// Service defines the order operations exposed to the API layer.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderView, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
	ListMachineOrders(ctx context.Context, machineID uuid.UUID, filters ListFilters) (*OrderList, error)
	Stats(ctx context.Context, filters StatsFilters) (*Stats, error)
	Summary(ctx context.Context, orderID uuid.UUID) (string, error)
}

type service struct {
	repo      Repository
	machines  machines.Repository
	catalog   catalog.Repository
	ledger    inventory.Ledger
	tx        txRunner
	locker    machineLocker
	publisher instructionPublisher
	logg      *logger.Logger
	metrics   *metrics.OrderMetrics
	lockTTL   time.Duration
}

const defaultLockTTL = 10 * time.Second

// NewService builds an orders service with the required dependencies.
// publisher and orderMetrics may be nil; both degrade to no-ops.
func NewService(
	repo Repository,
	machineRepo machines.Repository,
	catalogRepo catalog.Repository,
	ledger inventory.Ledger,
	tx txRunner,
	locker machineLocker,
	publisher instructionPublisher,
	logg *logger.Logger,
	orderMetrics *metrics.OrderMetrics,
	lockTTL time.Duration,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if machineRepo == nil {
		return nil, fmt.Errorf("machines repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if locker == nil {
		return nil, fmt.Errorf("machine locker required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if lockTTL <= 0 {
		lockTTL = defaultLockTTL
	}
	return &service{
		repo:      repo,
		machines:  machineRepo,
		catalog:   catalogRepo,
		ledger:    ledger,
		tx:        tx,
		locker:    locker,
		publisher: publisher,
		logg:      logg,
		metrics:   orderMetrics,
		lockTTL:   lockTTL,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderView, error) {
	if err := validateCreateInput(input); err != nil {
		s.incRejected(err)
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = enums.OrderStatusProcessing
	}

	lock, err := s.locker.AcquireMachineLock(ctx, input.MachineID.String(), s.lockTTL)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			busy := pkgerrors.New(pkgerrors.CodeMachineUnavailable, "machine is busy admitting another order")
			s.incRejected(busy)
			return nil, busy
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire machine lock")
	}
	defer func() { _ = lock.Release(ctx) }()

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.validateAdmission(ctx, tx, input.MachineID); err != nil {
			return err
		}

		ingredients, _, err := s.resolveCatalog(ctx, tx, input)
		if err != nil {
			return err
		}
		if err := validateRecipe(input.Ingredients, ingredients); err != nil {
			return err
		}

		for _, line := range input.Ingredients {
			if err := s.ledger.DeductIngredient(ctx, tx, input.MachineID, line.IngredientID, line.GramsUsed); err != nil {
				return err
			}
		}
		for _, line := range input.Addons {
			if err := s.ledger.DeductAddon(ctx, tx, input.MachineID, line.AddonID, line.Qty); err != nil {
				return err
			}
		}

		machineID := input.MachineID
		order := &models.Order{
			MachineID:     &machineID,
			SessionID:     input.SessionID,
			Status:        status,
			TotalPrice:    input.TotalPrice,
			TotalCalories: input.TotalCalories,
		}

		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return classifyPersistError(err, "create order")
		}

		items := make([]models.OrderItem, 0, len(input.Ingredients))
		for _, line := range input.Ingredients {
			ingredientID := line.IngredientID
			items = append(items, models.OrderItem{
				OrderID:      order.ID,
				IngredientID: &ingredientID,
				QtyML:        line.QtyML,
				GramsUsed:    line.GramsUsed,
				Calories:     line.Calories,
			})
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return classifyPersistError(err, "create order items")
		}

		addonLines := make([]models.OrderAddon, 0, len(input.Addons))
		for _, line := range input.Addons {
			addonID := line.AddonID
			addonLines = append(addonLines, models.OrderAddon{
				OrderID:  order.ID,
				AddonID:  &addonID,
				Qty:      line.Qty,
				Calories: line.Calories,
			})
		}
		if err := repo.CreateOrderAddons(ctx, addonLines); err != nil {
			return classifyPersistError(err, "create order addons")
		}

		created = order
		return nil
	})
	if err != nil {
		s.incRejected(err)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncCreated(input.MachineID.String())
	}

	// Reload with catalog names for rendering; the order is already
	// committed, so a read failure here only degrades the response.
	full, err := s.repo.FindOrder(ctx, created.ID)
	if err != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, created.ID.String()), "reload created order", err)
		return buildOrderView(created), nil
	}

	s.publishDispatch(ctx, full, input.Liquids)
	return buildOrderView(full), nil
}

func (s *service) UpdateStatus(ctx context.Context, input UpdateStatusInput) (*OrderView, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": input.Status})
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			return err
		}

		if err := applyTransition(ctx, order.Status, input.Status); err != nil {
			return err
		}
		if err := repo.UpdateOrderStatus(ctx, order.ID, input.Status); err != nil {
			return err
		}

		// Compensation restores exactly what the immutable lines deducted,
		// in the same transaction as the status flip. A nil machine ref
		// means the machine is gone and there is nothing to restore into.
		if requiresCompensation(input.Status) && order.MachineID != nil {
			machineID := *order.MachineID
			for _, item := range order.Items {
				if item.IngredientID == nil {
					continue
				}
				if err := s.ledger.RestoreIngredient(ctx, tx, machineID, *item.IngredientID, item.GramsUsed); err != nil {
					return err
				}
			}
			for _, addon := range order.Addons {
				if addon.AddonID == nil {
					continue
				}
				if err := s.ledger.RestoreAddon(ctx, tx, machineID, *addon.AddonID, addon.Qty); err != nil {
					return err
				}
			}
		}

		order.Status = input.Status
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncTransition(input.Status.String())
	}
	return buildOrderView(updated), nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return buildOrderView(order), nil
}

func (s *service) ListMachineOrders(ctx context.Context, machineID uuid.UUID, filters ListFilters) (*OrderList, error) {
	if machineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "machine id required")
	}
	if _, err := s.machines.FindMachine(ctx, machineID); err != nil {
		return nil, err
	}
	return s.repo.ListMachineOrders(ctx, machineID, filters)
}

func (s *service) Stats(ctx context.Context, filters StatsFilters) (*Stats, error) {
	return s.repo.Stats(ctx, filters)
}

func (s *service) Summary(ctx context.Context, orderID uuid.UUID) (string, error) {
	if orderID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return "", err
	}
	return dispatch.Render(order, nil), nil
}

func (s *service) publishDispatch(ctx context.Context, order *models.Order, liquids []LiquidInput) {
	if s.publisher == nil {
		return
	}
	instruction := dispatch.Render(order, toDispatchLiquids(liquids))
	if err := s.publisher.Publish(ctx, instruction); err != nil {
		if s.metrics != nil {
			s.metrics.IncDispatch("error")
		}
		s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "publish dispatch instruction", err)
		return
	}
	if s.metrics != nil {
		s.metrics.IncDispatch("ok")
	}
}

func (s *service) incRejected(err error) {
	if s.metrics == nil {
		return
	}
	code := pkgerrors.CodeInternal
	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
	}
	s.metrics.IncRejected(string(code))
}

func validateCreateInput(input CreateOrderInput) error {
	if input.MachineID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "machine id required")
	}
	if len(input.Ingredients) == 0 && len(input.Addons) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if input.Status != "" && input.Status != enums.OrderStatusPending && input.Status != enums.OrderStatusProcessing {
		return pkgerrors.New(pkgerrors.CodeValidation, "initial status must be pending or processing")
	}
	for _, line := range input.Ingredients {
		if line.IngredientID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "ingredient id required")
		}
		if line.GramsUsed <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "grams_used must be positive")
		}
		if line.QtyML < 0 || line.Calories < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "ingredient line amounts must not be negative")
		}
	}
	for _, line := range input.Addons {
		if line.AddonID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "addon id required")
		}
		if line.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "addon qty must be positive")
		}
		if line.Calories < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "addon calories must not be negative")
		}
	}
	if input.TotalPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "total_price must not be negative")
	}
	if input.TotalCalories < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "total_calories must not be negative")
	}
	return nil
}

func classifyPersistError(err error, context string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, context)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, context)
}
