package controllers

import (
	"context"
	"net/http"

	"github.com/tabish-uharvest/uharvest-vendingm-service/api/responses"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/config"
	pkgerrors "github.com/tabish-uharvest/uharvest-vendingm-service/pkg/errors"
	"github.com/tabish-uharvest/uharvest-vendingm-service/pkg/logger"
)

const envHeader = "X-UHarvest-Env"

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the datastore and cache so load balancers stop routing
// to an instance that lost a dependency.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		status := map[string]string{"status": "ready"}
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				status[name] = "down"
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" unreachable").WithDetails(status))
				return
			}
			status[name] = "up"
		}

		responses.WriteSuccess(w, status)
	}
}

// DependencyPingers adapts the wired clients for HealthReady.
func DependencyPingers(db pinger, cache pinger, broker pinger) map[string]pinger {
	deps := map[string]pinger{}
	if db != nil {
		deps["database"] = db
	}
	if cache != nil {
		deps["redis"] = cache
	}
	if broker != nil {
		deps["pubsub"] = broker
	}
	return deps
}
