package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
)

// IngredientView is the API shape of a catalog ingredient.
type IngredientView struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Emoji           *string         `json:"emoji,omitempty"`
	Image           *string         `json:"image,omitempty"`
	MinQtyG         int             `json:"min_qty_g"`
	MaxPercentLimit int             `json:"max_percent_limit"`
	CaloriesPerG    decimal.Decimal `json:"calories_per_g"`
	PricePerGram    decimal.Decimal `json:"price_per_gram"`
}

// AddonView is the API shape of a catalog addon.
type AddonView struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Calories int             `json:"calories"`
	Icon     *string         `json:"icon,omitempty"`
}

func BuildIngredientView(ingredient *models.Ingredient) IngredientView {
	return IngredientView{
		ID:              ingredient.ID,
		Name:            ingredient.Name,
		Emoji:           ingredient.Emoji,
		Image:           ingredient.Image,
		MinQtyG:         ingredient.MinQtyG,
		MaxPercentLimit: ingredient.MaxPercentLimit,
		CaloriesPerG:    ingredient.CaloriesPerG,
		PricePerGram:    ingredient.PricePerGram,
	}
}

func BuildAddonView(addon *models.Addon) AddonView {
	return AddonView{
		ID:       addon.ID,
		Name:     addon.Name,
		Price:    addon.Price,
		Calories: addon.Calories,
		Icon:     addon.Icon,
	}
}
