package controllers

import (
	"net/http"

	"github.com/Fyboxly-Group/Fluxori-V2-sub011/api/responses"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/config"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/db"
	pkgerrors "github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/errors"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/logger"
	"github.com/Fyboxly-Group/Fluxori-V2-sub011/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Fluxori-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when the database and redis respond.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Fluxori-Env", cfg.App.Env)

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
		}
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
