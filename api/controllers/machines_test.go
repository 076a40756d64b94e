package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/machines"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/enums"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
)

type stubMachinesService struct {
	inventory      func(ctx context.Context, machineID uuid.UUID) (*machines.MachineInventory, error)
	alerts         func(ctx context.Context) ([]machines.LowStockAlert, error)
	restockItem    func(ctx context.Context, input machines.RestockInput) (*machines.InventoryItemView, error)
	restockAddonFn func(ctx context.Context, input machines.RestockInput) (*machines.InventoryItemView, error)
}

func (s *stubMachinesService) Inventory(ctx context.Context, machineID uuid.UUID) (*machines.MachineInventory, error) {
	if s.inventory != nil {
		return s.inventory(ctx, machineID)
	}
	return &machines.MachineInventory{}, nil
}

func (s *stubMachinesService) LowStockAlerts(ctx context.Context) ([]machines.LowStockAlert, error) {
	if s.alerts != nil {
		return s.alerts(ctx)
	}
	return nil, nil
}

func (s *stubMachinesService) RestockIngredient(ctx context.Context, input machines.RestockInput) (*machines.InventoryItemView, error) {
	if s.restockItem != nil {
		return s.restockItem(ctx, input)
	}
	return &machines.InventoryItemView{}, nil
}

func (s *stubMachinesService) RestockAddon(ctx context.Context, input machines.RestockInput) (*machines.InventoryItemView, error) {
	if s.restockAddonFn != nil {
		return s.restockAddonFn(ctx, input)
	}
	return &machines.InventoryItemView{}, nil
}

func withRouteParams(req *http.Request, params map[string]string) *http.Request {
	ctx := chi.NewRouteContext()
	for key, value := range params {
		ctx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
}

func TestMachineInventorySuccess(t *testing.T) {
	machineID := uuid.New()
	svc := &stubMachinesService{
		inventory: func(ctx context.Context, incoming uuid.UUID) (*machines.MachineInventory, error) {
			if incoming != machineID {
				t.Fatalf("unexpected machine id %s", incoming)
			}
			return &machines.MachineInventory{
				MachineID: machineID,
				Location:  "Terminal 2",
				Status:    enums.MachineStatusActive,
				CupsQty:   100,
				Ingredients: []machines.InventoryItemView{
					{Name: "Banana", Qty: 400, Threshold: 100, Level: enums.StockLevelAvailable},
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/machines/"+machineID.String()+"/inventory", nil)
	req = withRouteParams(req, map[string]string{"machineId": machineID.String()})

	resp := httptest.NewRecorder()
	MachineInventory(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data machines.MachineInventory `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Location != "Terminal 2" {
		t.Fatalf("unexpected location %q", envelope.Data.Location)
	}
	if len(envelope.Data.Ingredients) != 1 || envelope.Data.Ingredients[0].Level != enums.StockLevelAvailable {
		t.Fatalf("unexpected ingredients %+v", envelope.Data.Ingredients)
	}
}

func TestMachineInventoryRejectsBadID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/machines/nope/inventory", nil)
	req = withRouteParams(req, map[string]string{"machineId": "nope"})

	resp := httptest.NewRecorder()
	MachineInventory(&stubMachinesService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMachineInventoryUnknownMachine(t *testing.T) {
	machineID := uuid.New()
	svc := &stubMachinesService{
		inventory: func(ctx context.Context, incoming uuid.UUID) (*machines.MachineInventory, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "machine not found")
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/machines/"+machineID.String()+"/inventory", nil)
	req = withRouteParams(req, map[string]string{"machineId": machineID.String()})

	resp := httptest.NewRecorder()
	MachineInventory(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestLowStockAlertsReportsCount(t *testing.T) {
	svc := &stubMachinesService{
		alerts: func(ctx context.Context) ([]machines.LowStockAlert, error) {
			return []machines.LowStockAlert{
				{Name: "Protein Powder", Level: enums.StockLevelOut},
				{Name: "Kale", Level: enums.StockLevelLow},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/alerts", nil)
	resp := httptest.NewRecorder()
	LowStockAlerts(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			Alerts []machines.LowStockAlert `json:"alerts"`
			Count  int                      `json:"count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Count != 2 || len(envelope.Data.Alerts) != 2 {
		t.Fatalf("unexpected alerts payload %+v", envelope.Data)
	}
	if envelope.Data.Alerts[0].Name != "Protein Powder" {
		t.Fatalf("alert order not preserved")
	}
}

func TestRestockIngredientForwardsInput(t *testing.T) {
	machineID := uuid.New()
	ingredientID := uuid.New()
	called := false
	svc := &stubMachinesService{
		restockItem: func(ctx context.Context, input machines.RestockInput) (*machines.InventoryItemView, error) {
			if input.MachineID != machineID || input.ItemID != ingredientID {
				t.Fatalf("unexpected input ids %+v", input)
			}
			if input.Qty != 500 {
				t.Fatalf("unexpected qty %d", input.Qty)
			}
			if input.Threshold == nil || *input.Threshold != 100 {
				t.Fatalf("threshold not forwarded")
			}
			called = true
			return &machines.InventoryItemView{ItemID: ingredientID, Qty: 500, Threshold: 100, Level: enums.StockLevelAvailable}, nil
		},
	}

	target := "/api/v1/machines/" + machineID.String() + "/ingredients/" + ingredientID.String() + "/stock"
	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(`{"qty": 500, "threshold": 100}`))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParams(req, map[string]string{
		"machineId":    machineID.String(),
		"ingredientId": ingredientID.String(),
	})

	resp := httptest.NewRecorder()
	RestockIngredient(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatalf("service not invoked")
	}

	var envelope struct {
		Data machines.InventoryItemView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Qty != 500 {
		t.Fatalf("unexpected qty %d", envelope.Data.Qty)
	}
}

func TestRestockIngredientOmittedThresholdStaysNil(t *testing.T) {
	machineID := uuid.New()
	ingredientID := uuid.New()
	svc := &stubMachinesService{
		restockItem: func(ctx context.Context, input machines.RestockInput) (*machines.InventoryItemView, error) {
			if input.Threshold != nil {
				t.Fatalf("expected nil threshold, got %d", *input.Threshold)
			}
			return &machines.InventoryItemView{ItemID: ingredientID}, nil
		},
	}

	target := "/api/v1/machines/" + machineID.String() + "/ingredients/" + ingredientID.String() + "/stock"
	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(`{"qty": 50}`))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParams(req, map[string]string{
		"machineId":    machineID.String(),
		"ingredientId": ingredientID.String(),
	})

	resp := httptest.NewRecorder()
	RestockIngredient(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestRestockAddonRejectsNegativeQty(t *testing.T) {
	machineID := uuid.New()
	addonID := uuid.New()
	called := false
	svc := &stubMachinesService{
		restockAddonFn: func(ctx context.Context, input machines.RestockInput) (*machines.InventoryItemView, error) {
			called = true
			return nil, nil
		},
	}

	target := "/api/v1/machines/" + machineID.String() + "/addons/" + addonID.String() + "/stock"
	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(`{"qty": -5}`))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParams(req, map[string]string{
		"machineId": machineID.String(),
		"addonId":   addonID.String(),
	})

	resp := httptest.NewRecorder()
	RestockAddon(svc, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if called {
		t.Fatalf("service invoked despite invalid payload")
	}
}

func TestRestockAddonBadItemID(t *testing.T) {
	machineID := uuid.New()
	target := "/api/v1/machines/" + machineID.String() + "/addons/nope/stock"
	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(`{"qty": 5}`))
	req.Header.Set("Content-Type", "application/json")
	req = withRouteParams(req, map[string]string{
		"machineId": machineID.String(),
		"addonId":   "nope",
	})

	resp := httptest.NewRecorder()
	RestockAddon(&stubMachinesService{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
