package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
)

var ErrInvalidRequestBody = errors.New("invalid request body")

type ContextKey string

const (
	RequestIDPrefix      string     = "r"
	SessionIDHeader      string     = "X-Session-ID"
	ContextRequestID     ContextKey = "request.id"
	ContextRequestNumber ContextKey = "request.number"
	ContextSessionID     ContextKey = "session.id"
	ConnContextKey       ContextKey = "http-conn"
)

// Max accepted size of a json request body: 64KB.
const maxRequestBodySize = 1 << 16

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val, ok := ctx.Value(ContextRequestNumber).(uint64); ok {
		return val
	}
	return 0
}

// CartItemRequest is the body of an add to cart request.
type CartItemRequest struct {
	BookID int `json:"book_id"`
}

// QuantityRequest is the body of a cart quantity update request.
type QuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// ThemeRequest is the body of a theme update request.
type ThemeRequest struct {
	DarkMode *bool `json:"darkMode"`
}

type NewsletterRequest struct {
	Email string `json:"email"`
}

// DecodeJSONBody is a helper function to read the json content of a request into v.
// An empty body is accepted only when allowEmpty is set.
func DecodeJSONBody(r *http.Request, v interface{}, allowEmpty bool) error {
	if r.Body == nil {
		if allowEmpty {
			return nil
		}
		return ErrInvalidRequestBody
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodySize)).Decode(v)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequestBody, err)
	}
	return nil
}

// ParseBookID converts the book id path parameter.
func ParseBookID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid book id %q", raw)
	}
	return id, nil
}

// ParseBrowseQuery builds the catalog query from url parameters. Missing
// paging values fall back to the catalog defaults, out of range ones are
// rejected.
func ParseBrowseQuery(r *http.Request) (BrowseQuery, error) {
	q := r.URL.Query()
	bq := BrowseQuery{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Sort:     q.Get("sort"),
	}
	if !IsValidSortOrder(bq.Sort) {
		return bq, fmt.Errorf("unknown sort order %q", bq.Sort)
	}
	var err error
	if bq.Page, err = parsePositiveParam(q.Get("page"), math.MaxInt); err != nil {
		return bq, fmt.Errorf("invalid page: %w", err)
	}
	if bq.PerPage, err = parsePositiveParam(q.Get("per_page"), MaxPageSize); err != nil {
		return bq, fmt.Errorf("invalid per_page: %w", err)
	}
	return bq, nil
}

// parsePositiveParam parses an optional query parameter. An empty value
// gives 0 so the caller applies its default.
func parsePositiveParam(value string, upper int) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("not a number in range")
	}
	if n < 1 || n > upper {
		return 0, fmt.Errorf("must be between 1 and %d", upper)
	}
	return n, nil
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	splitIps := strings.Split(ips, ",")
	for _, ip := range splitIps {
		ip = strings.TrimSpace(ip)
		netIP = net.ParseIP(ip)
		if netIP != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	netIP = net.ParseIP(ip)
	if netIP != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// SaveConnInContext is the hook used by the server under ConnContext.
// It sets the underlying connection into the request context for later
// use by the deadline methods of *StatusRecorder.
func SaveConnInContext(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, ConnContextKey, c)
}

// GetConnFromContext returns the connection saved into the context
// or nil when the request was not served by a real connection.
func GetConnFromContext(ctx context.Context) net.Conn {
	if c, ok := ctx.Value(ConnContextKey).(net.Conn); ok {
		return c
	}
	return nil
}
