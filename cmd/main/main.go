package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pricewatch-service/internal/auth"
	"pricewatch-service/internal/config"
	"pricewatch-service/internal/pricing/session"
	"pricewatch-service/internal/pricing/store"
	serverhttp "pricewatch-service/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	sess := session.New(st, logger)
	restoreState(sess, st, logger)

	authMgr := auth.NewManager()
	r := serverhttp.NewRouter(cfg, logger, sess, authMgr)

	watchCtx, stopWatch := context.WithCancel(context.Background())
	go sess.RunAlertWatcher(watchCtx, cfg.AlertInterval, logger)

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	stopWatch()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}

// restoreState seeds the session with whatever survived the last run.
func restoreState(sess *session.Session, st *store.Store, logger zerolog.Logger) {
	if alerts, err := st.LoadAlerts(); err != nil {
		logger.Warn().Err(err).Msg("restore alerts")
	} else if len(alerts) > 0 {
		sess.SeedAlerts(alerts)
		logger.Info().Int("alerts", len(alerts)).Msg("alerts restored")
	}
	if favorites, err := st.LoadFavorites(); err != nil {
		logger.Warn().Err(err).Msg("restore favorites")
	} else if len(favorites) > 0 {
		sess.SeedFavorites(favorites)
	}
	if v, ok, err := st.LoadPreference("darkMode"); err != nil {
		logger.Warn().Err(err).Msg("restore preferences")
	} else if ok {
		sess.SetDarkMode(v == "1")
	}
}
