package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tijara.org/internal/auth"
	"tijara.org/internal/config"
	"tijara.org/internal/httpapi"
	"tijara.org/internal/notify"
	"tijara.org/internal/obs"
	"tijara.org/internal/store/pg"
)

var version = "0.3.1"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("TIJARA_COMMIT"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var store *pg.Store
	if cfg.DatabaseURL != "" {
		store, err = pg.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
	}
	if store == nil {
		log.Fatal("missing database DSN: set TIJARA_PG_DSN")
	}

	svc, err := auth.NewService(store,
		auth.NewHasher(cfg.BcryptCost),
		auth.NewTokens(cfg.AuthSecret, cfg.SessionTTL),
		auth.WithNotifier(notify.LogNotifier{}),
		auth.WithInviteLinkBase(cfg.InviteLinkBase),
	)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	svc.StartReaper(reaperCtx, cfg.ReapInterval)

	api := httpapi.New(httpapi.ReadyProbe{DB: store.DB()}, version, svc, httpapi.Options{
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies,
		RateBurst:     cfg.RateBurst,
		RatePerSec:    cfg.RatePerSec,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting tijara-api %s on %s", version, srv.Addr)

	// graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stopReaper()
	_ = srv.Shutdown(ctx)
	_ = store.Close()
	log.Println("Stopped")
}
