package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db/models"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

// validateAdmission enforces the at-most-one-in-flight-order-per-machine
// policy: the machine must exist, be active, and have no order currently in
// pending or processing.
func (s *service) validateAdmission(ctx context.Context, tx *gorm.DB, machineID uuid.UUID) error {
	machine, err := s.machines.WithTx(tx).FindMachine(ctx, machineID)
	if err != nil {
		return err
	}
	if machine.Status != enums.MachineStatusActive {
		return pkgerrors.New(pkgerrors.CodeMachineUnavailable, "machine is not accepting orders").
			WithDetails(map[string]any{"machine_id": machineID, "status": machine.Status})
	}

	inFlight, err := s.repo.WithTx(tx).CountInFlight(ctx, machineID)
	if err != nil {
		return err
	}
	if inFlight > 0 {
		return pkgerrors.New(pkgerrors.CodeMachineUnavailable, "machine already has an order in flight").
			WithDetails(map[string]any{"machine_id": machineID, "in_flight": inFlight})
	}
	return nil
}

// resolveCatalog loads every referenced ingredient and addon, failing with
// NotFound on the first dangling reference.
func (s *service) resolveCatalog(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (map[uuid.UUID]*models.Ingredient, map[uuid.UUID]*models.Addon, error) {
	catalog := s.catalog.WithTx(tx)

	ingredients := make(map[uuid.UUID]*models.Ingredient, len(input.Ingredients))
	for _, line := range input.Ingredients {
		if _, ok := ingredients[line.IngredientID]; ok {
			continue
		}
		ingredient, err := catalog.FindIngredient(ctx, line.IngredientID)
		if err != nil {
			return nil, nil, err
		}
		ingredients[line.IngredientID] = ingredient
	}

	addons := make(map[uuid.UUID]*models.Addon, len(input.Addons))
	for _, line := range input.Addons {
		if _, ok := addons[line.AddonID]; ok {
			continue
		}
		addon, err := catalog.FindAddon(ctx, line.AddonID)
		if err != nil {
			return nil, nil, err
		}
		addons[line.AddonID] = addon
	}

	return ingredients, addons, nil
}

// validateRecipe applies the per-ingredient constraints against the request,
// never against inventory: minimum grams per use and maximum share of the
// basket's total grams.
func validateRecipe(lines []IngredientLineInput, ingredients map[uuid.UUID]*models.Ingredient) error {
	totalGrams := 0
	for _, line := range lines {
		totalGrams += line.GramsUsed
	}

	for _, line := range lines {
		ingredient := ingredients[line.IngredientID]
		if ingredient == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "ingredient not found")
		}
		if line.GramsUsed < ingredient.MinQtyG {
			return pkgerrors.New(pkgerrors.CodeValidation, "ingredient below minimum grams").
				WithDetails(map[string]any{
					"ingredient_id": line.IngredientID,
					"grams_used":    line.GramsUsed,
					"min_qty_g":     ingredient.MinQtyG,
				})
		}
		if totalGrams > 0 {
			percent := float64(line.GramsUsed) / float64(totalGrams) * 100
			if percent > float64(ingredient.MaxPercentLimit) {
				return pkgerrors.New(pkgerrors.CodeValidation, "ingredient exceeds basket percent limit").
					WithDetails(map[string]any{
						"ingredient_id":     line.IngredientID,
						"percent":           percent,
						"max_percent_limit": ingredient.MaxPercentLimit,
					})
			}
		}
	}
	return nil
}
