// Package httpapi exposes the identity core over HTTP/JSON.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"tijara.org/internal/auth"
	"tijara.org/internal/obs"
)

// ReadyProbe reports backing-store readiness, typically a database ping.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string
	svc        *auth.Service

	sessionTTL    time.Duration
	secureCookies bool
	rateBurst     int
	ratePerSec    int
}

// Options tunes transport concerns that do not belong to the domain service.
type Options struct {
	SessionTTL    time.Duration
	SecureCookies bool
	RateBurst     int
	RatePerSec    int
}

// New wires the route table.
func New(rp ReadyProbe, version string, svc *auth.Service, opts Options) *API {
	a := &API{
		mux:           http.NewServeMux(),
		readyProbe:    rp,
		version:       version,
		svc:           svc,
		sessionTTL:    opts.SessionTTL,
		secureCookies: opts.SecureCookies,
		rateBurst:     opts.RateBurst,
		ratePerSec:    opts.RatePerSec,
	}
	if a.sessionTTL <= 0 {
		a.sessionTTL = auth.DefaultSessionTTL
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 20
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 10
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/register", a.handleRegister)
	a.mux.HandleFunc("/login", a.handleLogin)
	a.mux.HandleFunc("/logout", a.handleLogout)
	a.mux.HandleFunc("/profile", a.handleProfile)
	a.mux.HandleFunc("/invite", a.handleInvite)
	a.mux.HandleFunc("/accept-invite", a.handleAcceptInvite)
	a.mux.HandleFunc("/decline-invite", a.handleDeclineInvite)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "route not found")
	})

	return a
}

// Handler assembles the middleware chain around the route table.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "tijara-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "tijara-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
