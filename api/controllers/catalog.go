package controllers

import (
	"net/http"

	"github.com/tabish-uharvest/uharvest-vendingm-service/api/responses"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/catalog"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/logger"
)

// ListIngredients returns the ingredient catalog sorted by name.
func ListIngredients(repo catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		ingredients, err := repo.ListIngredients(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]catalog.IngredientView, 0, len(ingredients))
		for i := range ingredients {
			views = append(views, catalog.BuildIngredientView(&ingredients[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// GetIngredient returns one catalog ingredient by id.
func GetIngredient(repo catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		id, err := pathUUID(r, "ingredientId", "ingredient id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ingredient, err := repo.FindIngredient(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog.BuildIngredientView(ingredient))
	}
}

// ListAddons returns the addon catalog sorted by name.
func ListAddons(repo catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		addons, err := repo.ListAddons(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]catalog.AddonView, 0, len(addons))
		for i := range addons {
			views = append(views, catalog.BuildAddonView(&addons[i]))
		}
		responses.WriteSuccess(w, views)
	}
}

// GetAddon returns one catalog addon by id.
func GetAddon(repo catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		id, err := pathUUID(r, "addonId", "addon id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		addon, err := repo.FindAddon(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog.BuildAddonView(addon))
	}
}
