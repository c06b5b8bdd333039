package main

import (
	"net/http"
	"sync"

	"go.uber.org/zap"
)

// APIHandler defines the API handler.
type APIHandler struct {
	logger     *zap.Logger
	config     *Config
	stats      *Statistics
	mode       *Maintenance
	clock      Clocker
	idsHandler UIDHandler
	service    StorefrontServiceProvider
	closing    chan struct{}
	closeOnce  sync.Once
}

// NewAPIHandler provides a new instance of APIHandler.
func NewAPIHandler(logger *zap.Logger, config *Config, stats *Statistics, clock Clocker, idsHandler UIDHandler, ss StorefrontServiceProvider) *APIHandler {
	m := &Maintenance{}
	m.enabled.Store(false)
	stats.status = make(map[int]uint64)
	stats.mu = &sync.RWMutex{}
	return &APIHandler{
		logger:     logger,
		config:     config,
		stats:      stats,
		mode:       m,
		clock:      clock,
		idsHandler: idsHandler,
		service:    ss,
		closing:    make(chan struct{}),
	}
}

// CloseStreams ends the open event streams. It is registered as a server
// shutdown hook since streams never become idle on their own.
func (api *APIHandler) CloseStreams() {
	api.closeOnce.Do(func() {
		close(api.closing)
	})
}

// NotFound is the handler used by the router for unknown routes.
func (api *APIHandler) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.sendError(w, r, http.StatusNotFound, "endpoint does not exist", EmptyData, nil)
	})
}

// currentSession returns the session attached to the request by the SessionMiddleware.
func (api *APIHandler) currentSession(r *http.Request) *Session {
	return api.service.Session(GetValueFromContext(r.Context(), ContextSessionID))
}

// sessionCookieName returns the configured session cookie name.
func (api *APIHandler) sessionCookieName() string {
	if api.config == nil || api.config.Session.CookieName == "" {
		return DefaultSessionCookieName
	}
	return api.config.Session.CookieName
}
