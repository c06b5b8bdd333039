package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMiddlewaresAPI(ids UIDHandler) *APIHandler {
	clock := NewMockClocker()
	return NewAPIHandler(zap.NewNop(), &Config{}, &Statistics{started: clock.Now()}, clock, ids, nil)
}

// TestMiddlewaresStacks ensures we get both public and ops middlewares
// stacks with exact number of elements in those stacks.
func TestMiddlewaresStacks(t *testing.T) {
	api := newTestMiddlewaresAPI(NewMockUIDHandler("abc", true))
	pub, ops := api.MiddlewaresStacks()
	assert.Equal(t, 8, len(*pub))
	assert.Equal(t, 5, len(*ops))
}

// TestChain ensures each middleware in the stack is called as well the handler.
func TestChain(t *testing.T) {
	var ca, cb, cc, ch bool
	queue := make(chan int, 4)

	middlewareA := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 1
			ca = true
			next(w, r, ps)
		}
	}
	middlewareB := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 2
			cb = true
			next(w, r, ps)
		}
	}
	middlewareC := func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			queue <- 3
			cc = true
			next(w, r, ps)
		}
	}
	middlewares := Middlewares{
		middlewareA,
		middlewareB,
		middlewareC,
	}

	handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		queue <- 4
		ch = true
	}

	chained := (&middlewares).Chain(handler)
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	chained(w, req, nil)

	t.Run("check calling", func(t *testing.T) {
		assert.Equal(t, true, ca)
		assert.Equal(t, true, cb)
		assert.Equal(t, true, cc)
		assert.Equal(t, true, ch)
	})

	t.Run("check ordering", func(t *testing.T) {
		assert.Equal(t, 1, <-queue)
		assert.Equal(t, 2, <-queue)
		assert.Equal(t, 3, <-queue)
		assert.Equal(t, 4, <-queue)
	})
}

func TestChain_Empty(t *testing.T) {
	var called bool
	chained := (&Middlewares{}).Chain(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		called = true
	})
	chained(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), nil)
	assert.True(t, called)
}

// TestRequestsCounterMiddleware ensures the request counter increment.
func TestRequestsCounterMiddleware(t *testing.T) {
	api := newTestMiddlewaresAPI(NewMockUIDHandler("abc", true))
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	var number uint64
	handler := func(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		number = GetRequestNumberFromContext(req.Context())
	}
	wrapped := api.RequestsCounterMiddleware(handler)
	wrapped(w, req, nil)
	wrapped(w, req, nil)
	assert.Equal(t, uint64(2), number)
	assert.Equal(t, uint64(2), api.stats.called)
}

func TestRequestIDMiddleware(t *testing.T) {
	api := newTestMiddlewaresAPI(NewMockUIDHandler("abc", true))
	req := httptest.NewRequest("GET", "/v1/books", nil)
	w := httptest.NewRecorder()
	var requestID string
	api.RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		requestID = GetValueFromContext(r.Context(), ContextRequestID)
	})(w, req, nil)
	assert.Equal(t, "r:abc", requestID)
	assert.Equal(t, "r:abc", w.Header().Get("X-Request-ID"))
}

func TestStatsMiddleware(t *testing.T) {
	api := newTestMiddlewaresAPI(NewMockUIDHandler("abc", true))
	wrapped := api.StatsMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusTeapot)
	})
	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), nil)
	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil), nil)
	assert.Equal(t, uint64(2), api.stats.status[http.StatusTeapot])
}

func TestCORSMiddleware(t *testing.T) {
	w := httptest.NewRecorder()
	CORSMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {})(w, httptest.NewRequest("GET", "/", nil), nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), SessionIDHeader)
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), SessionIDHeader)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	api := newTestMiddlewaresAPI(NewMockUIDHandler("abc", true))
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/books", nil)
	req = req.WithContext(context.WithValue(req.Context(), ContextRequestID, "r:abc"))
	require.NotPanics(t, func() {
		api.PanicRecoveryMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			panic("boom")
		})(w, req, nil)
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"requestid":"r:abc","status":500,"message":"failed to process the request.","data":{}}`, w.Body.String())
}

func TestMaintenanceModeMiddleware(t *testing.T) {
	api := newTestMiddlewaresAPI(NewMockUIDHandler("abc", true))
	var called bool
	wrapped := api.MaintenanceModeMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		called = true
	})

	w := httptest.NewRecorder()
	wrapped(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)

	called = false
	api.mode.set(true, "upgrading the catalog", api.clock.Now())
	w = httptest.NewRecorder()
	wrapped(w, httptest.NewRequest("GET", "/v1/books", nil), nil)
	assert.False(t, called)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "upgrading the catalog")
}

func TestSessionMiddleware(t *testing.T) {
	ids := NewIDsHandler()
	known := ids.Generate(SessionIDPrefix)

	testCases := []struct {
		name    string
		header  string
		cookie  string
		keepsID bool
	}{
		{"no session", "", "", false},
		{"valid header", known, "", true},
		{"valid cookie", "", known, true},
		{"malformed header", "s:not-a-uuid", "", false},
		{"wrong prefix", strings.Replace(known, "s:", "o:", 1), "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := newTestMiddlewaresAPI(ids)
			req := httptest.NewRequest("GET", "/v1/cart", nil)
			if tc.header != "" {
				req.Header.Set(SessionIDHeader, tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: DefaultSessionCookieName, Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			var sessionID string
			api.SessionMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
				sessionID = GetValueFromContext(r.Context(), ContextSessionID)
			})(w, req, nil)

			require.True(t, ids.IsValid(SessionIDPrefix, sessionID))
			if tc.keepsID {
				assert.Equal(t, known, sessionID)
			} else {
				assert.NotEqual(t, known, sessionID)
			}
			assert.Equal(t, sessionID, w.Header().Get(SessionIDHeader))
			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, DefaultSessionCookieName, cookies[0].Name)
			assert.Equal(t, sessionID, cookies[0].Value)
			assert.True(t, cookies[0].HttpOnly)
		})
	}
}

func TestSessionMiddleware_CustomCookieName(t *testing.T) {
	api := newTestMiddlewaresAPI(NewMockUIDHandler("abc", false))
	api.config.Session.CookieName = "shop"
	w := httptest.NewRecorder()
	api.SessionMiddleware(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {})(w, httptest.NewRequest("GET", "/v1/cart", nil), nil)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "shop", cookies[0].Name)
	assert.Equal(t, "s:abc", cookies[0].Value)
}
