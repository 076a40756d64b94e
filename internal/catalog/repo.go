package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

// Repository defines read access to the ingredient/addon catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	FindAddon(ctx context.Context, id uuid.UUID) (*models.Addon, error)
	ListIngredients(ctx context.Context) ([]models.Ingredient, error)
	ListAddons(ctx context.Context) ([]models.Addon, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&ingredient).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredient")
	}
	return &ingredient, nil
}

func (r *repository) FindAddon(ctx context.Context, id uuid.UUID) (*models.Addon, error) {
	var addon models.Addon
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&addon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "addon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addon")
	}
	return &addon, nil
}

func (r *repository) ListIngredients(ctx context.Context) ([]models.Ingredient, error) {
	var ingredients []models.Ingredient
	err := r.db.WithContext(ctx).Order("name ASC").Find(&ingredients).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingredients")
	}
	return ingredients, nil
}

func (r *repository) ListAddons(ctx context.Context) ([]models.Addon, error) {
	var addons []models.Addon
	err := r.db.WithContext(ctx).Order("name ASC").Find(&addons).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addons")
	}
	return addons, nil
}
