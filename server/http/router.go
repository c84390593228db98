package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"pricewatch-service/internal/auth"
	"pricewatch-service/internal/config"
	"pricewatch-service/internal/middleware"
	priceHnd "pricewatch-service/internal/pricing/handler"
	"pricewatch-service/internal/pricing/service"
	"pricewatch-service/internal/pricing/session"
	"pricewatch-service/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger, sess *session.Session, authMgr *auth.Manager) *chi.Mux {
	r := chi.NewRouter()

	// order matters: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	forecaster := service.NewForecaster(cfg.ForecastSeed)

	// health-check
	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", auth.Login(authMgr, logger))
		r.Get("/session", auth.SessionCheck(authMgr))
		r.Post("/logout", auth.Logout(authMgr))

		// read-only dashboard surface
		r.Get("/records", priceHnd.Records(sess))
		r.Get("/stats", priceHnd.Stats(sess))
		r.Get("/pivot", priceHnd.Pivot(sess))
		r.Put("/filter", priceHnd.UpdateFilter(sess))
		r.Get("/forecast", priceHnd.Forecast(sess, forecaster))
		r.Get("/alerts", priceHnd.ListAlerts(sess))
		r.Get("/alerts/triggered", priceHnd.TriggeredAlerts(sess))
		r.Get("/favorites", priceHnd.ListFavorites(sess))
		r.Post("/favorites", priceHnd.AddFavorite(sess))
		r.Delete("/favorites/{facility}", priceHnd.RemoveFavorite(sess))
		r.Get("/preferences", priceHnd.GetPreferences(sess))
		r.Put("/preferences", priceHnd.PutPreferences(sess))

		// capability-gated mutations
		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePermission(authMgr, "upload"))
			r.Post("/upload", priceHnd.Upload(cfg, logger, sess))
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePermission(authMgr, "alerts"))
			r.Post("/alerts", priceHnd.CreateAlert(sess))
			r.Delete("/alerts/{id}", priceHnd.DeleteAlert(sess))
			r.Post("/alerts/{id}/toggle", priceHnd.ToggleAlert(sess))
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePermission(authMgr, "export"))
			r.Get("/export/csv", priceHnd.ExportCSV(logger, sess))
			r.Get("/export/chart-name", priceHnd.ChartName())
		})
	})

	return r
}
