package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tabish-uharvest/uharvest-vendingm-service/api/responses"
	"github.com/tabish-uharvest/uharvest-vendingm-service/api/validators"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/machines"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/logger"
)

// MachineInventory returns a machine's classified stock rows.
func MachineInventory(svc machines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "machines service unavailable"))
			return
		}

		machineID, err := pathUUID(r, "machineId", "machine id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Inventory(r.Context(), machineID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// LowStockAlerts returns restock-needed rows across all machines, the most
// urgent first.
func LowStockAlerts(svc machines.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "machines service unavailable"))
			return
		}

		alerts, err := svc.LowStockAlerts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"alerts": alerts,
			"count":  len(alerts),
		})
	}
}

type restockRequest struct {
	Qty       int  `json:"qty" validate:"min=0"`
	Threshold *int `json:"threshold,omitempty"`
}

// RestockIngredient sets a machine's ingredient stock level, creating the
// stock row on first use.
func RestockIngredient(svc machines.Service, logg *logger.Logger) http.HandlerFunc {
	return restockHandler(svc, logg, "ingredientId", "ingredient id", func(r *http.Request, svc machines.Service, input machines.RestockInput) (*machines.InventoryItemView, error) {
		return svc.RestockIngredient(r.Context(), input)
	})
}

// RestockAddon sets a machine's addon stock level.
func RestockAddon(svc machines.Service, logg *logger.Logger) http.HandlerFunc {
	return restockHandler(svc, logg, "addonId", "addon id", func(r *http.Request, svc machines.Service, input machines.RestockInput) (*machines.InventoryItemView, error) {
		return svc.RestockAddon(r.Context(), input)
	})
}

func restockHandler(
	svc machines.Service,
	logg *logger.Logger,
	itemParam, itemLabel string,
	apply func(*http.Request, machines.Service, machines.RestockInput) (*machines.InventoryItemView, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "machines service unavailable"))
			return
		}

		machineID, err := pathUUID(r, "machineId", "machine id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := pathUUID(r, itemParam, itemLabel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload restockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithMachineID(ctx, machineID.String())
		}

		view, err := apply(r, svc, machines.RestockInput{
			MachineID: machineID,
			ItemID:    itemID,
			Qty:       payload.Qty,
			Threshold: payload.Threshold,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func pathUUID(r *http.Request, param, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return parsed, nil
}
