package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRoutesAPI(t *testing.T, config *Config) *APIHandler {
	t.Helper()
	archive := newTestOrderArchive()
	// routes are tested without the session middleware, so requests share the empty session id.
	require.NoError(t, archive.Add(context.Background(), Order{ID: "o:abc"}))
	ss := newTestStorefrontService(t, NewMemoryQueue(4), archive)
	return NewAPIHandler(zap.NewNop(), config, &Statistics{started: NewMockClocker().Now()}, NewMockClocker(), NewMockUIDHandler("abc", true), ss)
}

func canceledRequest(method, target string) *http.Request {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return httptest.NewRequest(method, target, nil).WithContext(ctx)
}

// TestSetupBookRoutes ensures all expected catalog endpoints are implemented.
func TestSetupBookRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{
			"fetch all books endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/books", nil),
			true,
		},
		{
			"fetch all books endpoint with slash",
			httptest.NewRequest(http.MethodGet, "/v1/books/", nil),
			true,
		},
		{
			"fetch single book endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/books/2", nil),
			true,
		},
		{
			"fetch categories endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/categories", nil),
			true,
		},
		{
			"fetch suggestions endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/suggestions?q=orwell", nil),
			true,
		},
		{
			"fetch collection endpoint",
			httptest.NewRequest(http.MethodGet, "/v1/collections/trending", nil),
			true,
		},
		{
			"create book endpoint",
			httptest.NewRequest(http.MethodPost, "/v1/books", nil),
			false,
		},
		{
			"invalid api endpoint",
			httptest.NewRequest(http.MethodGet, "/v1", nil),
			false,
		},
		{
			"invalid books endpoint",
			httptest.NewRequest(http.MethodGet, "/books", nil),
			false,
		},
	}

	api := newTestRoutesAPI(t, &Config{})
	router := httprouter.New()
	router.HandleMethodNotAllowed = false
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api.SetupBookRoutes(router, m)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupStorefrontRoutes ensures all expected session scoped endpoints are implemented.
func TestSetupStorefrontRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{"fetch cart endpoint", httptest.NewRequest(http.MethodGet, "/v1/cart", nil), true},
		{"clear cart endpoint", httptest.NewRequest(http.MethodDelete, "/v1/cart", nil), true},
		{"add cart item endpoint", httptest.NewRequest(http.MethodPost, "/v1/cart/items", strings.NewReader(`{"book_id":1}`)), true},
		{"update cart item endpoint", httptest.NewRequest(http.MethodPut, "/v1/cart/items/1", strings.NewReader(`{"quantity":2}`)), true},
		{"remove cart item endpoint", httptest.NewRequest(http.MethodDelete, "/v1/cart/items/1", nil), true},
		{"fetch favorites endpoint", httptest.NewRequest(http.MethodGet, "/v1/favorites", nil), true},
		{"toggle favorite endpoint", httptest.NewRequest(http.MethodPost, "/v1/favorites/3", nil), true},
		{"remove favorite endpoint", httptest.NewRequest(http.MethodDelete, "/v1/favorites/3", nil), true},
		{"fetch theme endpoint", httptest.NewRequest(http.MethodGet, "/v1/theme", nil), true},
		{"update theme endpoint", httptest.NewRequest(http.MethodPut, "/v1/theme", nil), true},
		{"fetch checkout endpoint", httptest.NewRequest(http.MethodGet, "/v1/checkout", nil), true},
		{"checkout next endpoint", httptest.NewRequest(http.MethodPost, "/v1/checkout/next", nil), true},
		{"checkout back endpoint", httptest.NewRequest(http.MethodPost, "/v1/checkout/back", nil), true},
		{"checkout confirm endpoint", httptest.NewRequest(http.MethodPost, "/v1/checkout/confirm", nil), true},
		{"checkout reset endpoint", httptest.NewRequest(http.MethodPost, "/v1/checkout/reset", nil), true},
		{"fetch order endpoint", httptest.NewRequest(http.MethodGet, "/v1/orders/o:abc", nil), true},
		{"fetch newsletter endpoint", httptest.NewRequest(http.MethodGet, "/v1/newsletter", nil), true},
		{"subscribe newsletter endpoint", httptest.NewRequest(http.MethodPost, "/v1/newsletter", strings.NewReader(`{"email":"reader@readscape.io"}`)), true},
		{"fetch session endpoint", httptest.NewRequest(http.MethodGet, "/v1/session", nil), true},
		{"events endpoint", canceledRequest(http.MethodGet, EventsPath), true},
		{"wishlist endpoint", httptest.NewRequest(http.MethodGet, "/v1/wishlist", nil), false},
		{"checkout unknown step endpoint", httptest.NewRequest(http.MethodPost, "/v1/checkout/skip", nil), false},
	}

	api := newTestRoutesAPI(t, &Config{})
	router := httprouter.New()
	router.HandleMethodNotAllowed = false
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api.SetupStorefrontRoutes(router, m)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupOpsRoutes ensures all expected operations endpoints are implemented.
func TestSetupOpsRoutes(t *testing.T) {
	testCases := []struct {
		name        string
		request     *http.Request
		implemented bool
	}{
		{
			"fetch configs endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/configs", nil),
			true,
		},
		{
			"fetch stats endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/stats", nil),
			true,
		},
		{
			"maintenance mode endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/maintenance", nil),
			true,
		},
		{
			"expvar endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/debug/vars", nil),
			true,
		},
		{
			"invalid ops endpoint",
			httptest.NewRequest(http.MethodGet, "/ops", nil),
			false,
		},
		{
			"unknown ops endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/unknown", nil),
			false,
		},
		{
			"disabled profiler endpoint",
			httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil),
			false,
		},
	}

	api := newTestRoutesAPI(t, &Config{ProfilerEndpointsEnable: false})
	router := httprouter.New()
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api.SetupOpsRoutes(router, m)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupRoutes ensures all expected endpoints are implemented.
func TestSetupRoutes(t *testing.T) {
	testCases := []struct {
		name               string
		OpsEndpointsEnable bool
		request            *http.Request
		implemented        bool
	}{
		{
			"ops disable:fetch configs endpoint",
			false,
			httptest.NewRequest(http.MethodGet, "/ops/configs", nil),
			false,
		},
		{
			"ops enable:fetch configs endpoint",
			true,
			httptest.NewRequest(http.MethodGet, "/ops/configs", nil),
			true,
		},
		{
			"ops enable:disabled profiler endpoint",
			true,
			httptest.NewRequest(http.MethodGet, "/ops/debug/pprof/", nil),
			false,
		},
		{
			"ops disable:status endpoint",
			false,
			httptest.NewRequest(http.MethodGet, "/status", nil),
			true,
		},
		{
			"ops disable:fetch books endpoint",
			false,
			httptest.NewRequest(http.MethodGet, "/v1/books", nil),
			true,
		},
		{
			"ops enable:fetch cart endpoint",
			true,
			httptest.NewRequest(http.MethodGet, "/v1/cart", nil),
			true,
		},
		{
			"swagger docs endpoint",
			false,
			httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil),
			true,
		},
		{
			"invalid ops endpoint",
			false,
			httptest.NewRequest(http.MethodGet, "/ops/", nil),
			false,
		},
		{
			"invalid book endpoint",
			false,
			httptest.NewRequest(http.MethodGet, "/books/", nil),
			false,
		},
	}

	config := &Config{OpsEndpointsEnable: false, ProfilerEndpointsEnable: false}
	api := newTestRoutesAPI(t, config)
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := httprouter.New()
			config.OpsEndpointsEnable = tc.OpsEndpointsEnable
			api.SetupRoutes(router, m)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, tc.request)
			if tc.implemented {
				assert.NotEqual(t, 404, w.Code)
			} else {
				assert.Equal(t, 404, w.Code)
			}
		})
	}
}

// TestSetupRoutes_NotFound ensures exact status code and json response body when a user requests an inexistant route.
func TestSetupRoutes_NotFound(t *testing.T) {
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api := newTestRoutesAPI(t, &Config{})
	router := httprouter.New()
	api.SetupRoutes(router, m)
	r := httptest.NewRequest(http.MethodGet, "/x/books/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	res := w.Result()
	defer res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "application/json; charset=UTF-8", res.Header.Get("Content-Type"))
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	expected := `{"requestid":"", "status":404, "message":"endpoint does not exist", "data":{}}`
	assert.JSONEq(t, expected, string(data))
}

// TestSetupRoutes_Options ensures preflight requests are answered with cors headers.
func TestSetupRoutes_Options(t *testing.T) {
	m := &MiddlewareMap{public: (&Middlewares{}).Chain, ops: (&Middlewares{}).Chain}
	api := newTestRoutesAPI(t, &Config{})
	router := api.SetupRoutes(httprouter.New(), m)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/v1/cart/items", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// TestRouterWithTimeout ensures long running paths escape the request timeout.
func TestRouterWithTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(200 * time.Millisecond):
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := RouterWithTimeout(slow, 20*time.Millisecond, EventsPath)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/cart", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "Processing taking too long")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, EventsPath, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	close(release)
}
