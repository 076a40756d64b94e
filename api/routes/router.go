package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tabish-uharvest/uharvest-vendingm-service/api/controllers"
	ordercontrollers "github.com/tabish-uharvest/uharvest-vendingm-service/api/controllers/orders"
	"github.com/tabish-uharvest/uharvest-vendingm-service/api/middleware"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/catalog"
	machinesvc "github.com/tabish-uharvest/uharvest-vendingm-service/internal/machines"
	"github.com/tabish-uharvest/uharvest-vendingm-service/internal/orders"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/config"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/db"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/logger"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/pubsub"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cacheP redis.Pinger,
	brokerP pubsub.Pinger,
	ordersSvc orders.Service,
	machinesSvc machinesvc.Service,
	catalogRepo catalog.Repository,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.DependencyPingers(dbP, cacheP, brokerP)))
	})

	if registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(ordersSvc, logg))
			r.Get("/stats", ordercontrollers.Stats(ordersSvc, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
			r.Put("/{orderId}/status", ordercontrollers.UpdateStatus(ordersSvc, logg))
			r.Get("/{orderId}/summary", ordercontrollers.Summary(ordersSvc, logg))
		})

		r.Route("/machines/{machineId}", func(r chi.Router) {
			r.Get("/orders", ordercontrollers.ListByMachine(ordersSvc, logg))
			r.Get("/inventory", controllers.MachineInventory(machinesSvc, logg))
			r.Put("/ingredients/{ingredientId}/stock", controllers.RestockIngredient(machinesSvc, logg))
			r.Put("/addons/{addonId}/stock", controllers.RestockAddon(machinesSvc, logg))
		})

		r.Get("/inventory/alerts", controllers.LowStockAlerts(machinesSvc, logg))

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", controllers.ListIngredients(catalogRepo, logg))
			r.Get("/{ingredientId}", controllers.GetIngredient(catalogRepo, logg))
		})
		r.Route("/addons", func(r chi.Router) {
			r.Get("/", controllers.ListAddons(catalogRepo, logg))
			r.Get("/{addonId}", controllers.GetAddon(catalogRepo, logg))
		})
	})

	return r
}
