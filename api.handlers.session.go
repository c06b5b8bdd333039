package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

const defaultEventsKeepAlive = 15 * time.Second

// SessionView describes the session of the caller.
type SessionView struct {
	ID       string `json:"id"`
	Badges   Badges `json:"badges"`
	DarkMode bool   `json:"darkMode"`
}

// ThemeView is the theme preference of the session.
type ThemeView struct {
	DarkMode bool `json:"darkMode"`
}

// GetSession serves the session id with the navbar badges.
//
//	@Summary	Get the session
//	@Tags		session
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=SessionView}
//	@Router		/v1/session [get]
func (api *APIHandler) GetSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s := api.currentSession(r)
	dark, err := s.Theme.DarkMode(r.Context())
	if err != nil {
		api.sendServiceError(w, r, "failed to get the session", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Session fetched successfully.", nil, SessionView{ID: s.ID, Badges: s.Badges(), DarkMode: dark})
}

// GetTheme serves the dark mode preference.
//
//	@Summary	Get the theme
//	@Tags		session
//	@Produce	json
//	@Success	200	{object}	APIResponse{data=ThemeView}
//	@Router		/v1/theme [get]
func (api *APIHandler) GetTheme(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	dark, err := api.currentSession(r).Theme.DarkMode(r.Context())
	if err != nil {
		api.sendServiceError(w, r, "failed to get the theme", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Theme fetched successfully.", nil, ThemeView{DarkMode: dark})
}

// UpdateTheme sets the dark mode preference. Without a darkMode
// value in the body the preference is toggled.
//
//	@Summary	Set the theme
//	@Tags		session
//	@Accept		json
//	@Produce	json
//	@Param		body	body		ThemeRequest	false	"dark mode preference"
//	@Success	200		{object}	APIResponse{data=ThemeView}
//	@Failure	400		{object}	APIError
//	@Router		/v1/theme [put]
func (api *APIHandler) UpdateTheme(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req ThemeRequest
	if err := DecodeJSONBody(r, &req, true); err != nil {
		api.sendServiceError(w, r, "failed to update the theme", err)
		return
	}
	theme := api.currentSession(r).Theme
	var dark bool
	var err error
	if req.DarkMode == nil {
		dark, err = theme.Toggle(r.Context())
	} else {
		dark = *req.DarkMode
		err = theme.SetDarkMode(r.Context(), dark)
	}
	if err != nil {
		api.sendServiceError(w, r, "failed to update the theme", err)
		return
	}
	api.sendResponse(w, r, http.StatusOK, "Theme updated successfully.", nil, ThemeView{DarkMode: dark})
}

// StreamEvents subscribes the connection to the session bus and forwards each
// signal as a server-sent event named after its topic. Signals of a topic are
// coalesced while the client is slow since listeners always re-read the state.
//
//	@Summary	Stream the session signals
//	@Tags		session
//	@Produce	text/event-stream
//	@Success	200
//	@Router		/v1/events [get]
func (api *APIHandler) StreamEvents(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx := r.Context()
	requestID := GetValueFromContext(ctx, ContextRequestID)
	logger := api.GetLoggerFromContext(ctx)
	s := api.currentSession(r)

	rc := http.NewResponseController(w)
	// the stream lives longer than the server write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug("http: failed to clear the write deadline", zap.String("request.id", requestID), zap.Error(err))
	}

	topics := []string{TopicCartChanged, TopicFavoritesChanged}
	signals := make(map[string]chan struct{}, len(topics))
	for _, topic := range topics {
		ch := make(chan struct{}, 1)
		signals[topic] = ch
		unsubscribe := s.Bus.Subscribe(topic, func() {
			select {
			case ch <- struct{}{}:
			default:
			}
		})
		defer unsubscribe()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := writeEvent(w, rc, "ready", s.ID); err != nil {
		logger.Error("events: failed to open stream", zap.String("request.id", requestID), zap.Error(err))
		return
	}
	logger.Info("events: stream opened", zap.String("request.id", requestID))

	keepAlive := defaultEventsKeepAlive
	if api.config != nil && api.config.Server.EventsKeepAlive > 0 {
		keepAlive = api.config.Server.EventsKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	var err error
	for {
		select {
		case <-ctx.Done():
			logger.Info("events: stream closed", zap.String("request.id", requestID), zap.String("reason", ctx.Err().Error()))
			return
		case <-api.closing:
			_ = writeEvent(w, rc, "shutdown", "server is stopping")
			logger.Info("events: stream closed", zap.String("request.id", requestID), zap.String("reason", "server shutdown"))
			return
		case <-signals[TopicCartChanged]:
			err = writeEvent(w, rc, TopicCartChanged, TopicCartChanged)
		case <-signals[TopicFavoritesChanged]:
			err = writeEvent(w, rc, TopicFavoritesChanged, TopicFavoritesChanged)
		case <-ticker.C:
			_, err = fmt.Fprint(w, ": keep-alive\n\n")
			if err == nil {
				err = rc.Flush()
			}
		}
		if err != nil {
			logger.Info("events: stream write failed", zap.String("request.id", requestID), zap.Error(err))
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, rc *http.ResponseController, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	return rc.Flush()
}
