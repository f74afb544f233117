// Package api exposes piclaimd's minimal HTTP surface (spec.md §6): wallet
// enrollment/removal, registry snapshots, a cached ledger passthrough, the
// log ring, and a health check. Routing and response-writing conventions
// are carried over from the teacher's api/api.go (httprouter, an Error
// envelope, WriteJSON/WriteError/WriteSuccess helpers) even though
// spec.md §1 scopes "the HTTP/REST surface itself" out of the core —
// ambient interface plumbing is still built the way the teacher builds
// it, the way every ambient concern in this repository is.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/threefoldtech/piclaim/build"
	"github.com/threefoldtech/piclaim/clock"
	"github.com/threefoldtech/piclaim/config"
	"github.com/threefoldtech/piclaim/supervisor"
)

// Error is a type that is encoded as JSON and returned in an API response
// in the event of an error. Only the Message field is required.
type Error struct {
	Message string `json:"message"`
}

// Error implements the error interface for the Error type.
func (err Error) Error() string {
	return err.Message
}

// DefaultBalancesCacheTTL is the passthrough cache window for
// GET /claimable-balances/{address} (spec.md §6: "may be cached
// server-side with 3-minute TTL").
const DefaultBalancesCacheTTL = 3 * time.Minute

// API encapsulates the supervisor and implements http.Handler.
type API struct {
	supervisor *supervisor.Supervisor
	cfg        config.Config
	clk        clock.Clock

	balancesCache *balancesCache

	router http.Handler
}

// New builds an API surface over sup, applying cfg's CORS allow-list.
func New(sup *supervisor.Supervisor, cfg config.Config, clk clock.Clock) *API {
	a := &API{
		supervisor:    sup,
		cfg:           cfg,
		clk:           clk,
		balancesCache: newBalancesCache(clk, DefaultBalancesCacheTTL),
	}

	router := httprouter.New()
	router.NotFound = http.HandlerFunc(UnrecognizedCallHandler)

	router.POST("/monitor-wallet", a.monitorWalletHandler)
	router.GET("/wallets", a.walletsHandler)
	router.DELETE("/stop-monitoring/:walletId", a.stopMonitoringHandler)

	router.GET("/claimable-balances/:address", a.claimableBalancesHandler)
	router.GET("/monitored-balances", a.monitoredBalancesHandler)
	router.GET("/monitored-balances/:walletId", a.monitoredBalancesHandler)
	router.GET("/sequence/:address", a.sequenceHandler)

	router.GET("/logs", a.logsHandler)
	router.DELETE("/logs", a.clearLogsHandler)

	router.GET("/health", a.healthHandler)
	router.GET("/daemon/version", a.versionHandler)

	a.router = corsMiddleware(router, cfg.CORSAllowedOrigins)
	return a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// UnrecognizedCallHandler handles calls to unknown routes (404).
func UnrecognizedCallHandler(w http.ResponseWriter, req *http.Request) {
	WriteError(w, Error{"404 - unrecognized route"}, http.StatusNotFound)
}

// WriteError writes err to the API caller.
func WriteError(w http.ResponseWriter, err Error, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(err) // ignore error, as it probably means the status code does not allow a body
}

// WriteJSON writes obj to the ResponseWriter, setting Content-Type.
func WriteJSON(w http.ResponseWriter, obj interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if json.NewEncoder(w).Encode(obj) != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// WriteJSONStatus writes obj to the ResponseWriter with the given status
// code.
func WriteJSONStatus(w http.ResponseWriter, obj interface{}, code int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if json.NewEncoder(w).Encode(obj) != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// WriteSuccess writes a 204 No Content response, for actions that succeed
// with no data to return.
func WriteSuccess(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) versionHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	WriteJSON(w, struct {
		Version string `json:"version"`
	}{Version: build.Version})
}
