package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	// AbortedHeader marks a response already answered by the timeout handler.
	AbortedHeader = "X-RSAP-ABORTED"
	// StatusClientClosedRequest is the nginx code recorded for requests the client gave up on.
	StatusClientClosedRequest = 499
)

var ErrResponseAborted = errors.New("response aborted: request timed out or cancelled")

// EmptyData is the data of envelopes without payload.
var EmptyData = struct{}{}

// StatusRecorder keeps the status code sent for a request so the stats
// middleware can count responses per status. The connection deadlines are
// exposed to http.ResponseController for event streams and large pages.
type StatusRecorder struct {
	http.ResponseWriter
	conn    net.Conn
	status  int
	written bool
}

// NewStatusRecorder wraps w. The status defaults to 200 until a handler sets one.
func NewStatusRecorder(w http.ResponseWriter, conn net.Conn) *StatusRecorder {
	return &StatusRecorder{ResponseWriter: w, conn: conn, status: http.StatusOK}
}

func (sr *StatusRecorder) aborted() bool {
	return sr.Header().Get(AbortedHeader) != ""
}

// WriteHeader forwards the first status. On an aborted response the status
// is only recorded.
func (sr *StatusRecorder) WriteHeader(status int) {
	switch {
	case sr.aborted():
		sr.status, sr.written = status, true
	case !sr.written:
		sr.status, sr.written = status, true
		sr.ResponseWriter.WriteHeader(status)
	}
}

func (sr *StatusRecorder) Write(b []byte) (int, error) {
	if sr.aborted() {
		return 0, ErrResponseAborted
	}
	if !sr.written {
		sr.WriteHeader(sr.status)
	}
	return sr.ResponseWriter.Write(b)
}

// Status returns the recorded status code.
func (sr *StatusRecorder) Status() int {
	return sr.status
}

func (sr *StatusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

func (sr *StatusRecorder) SetWriteDeadline(t time.Time) error {
	if sr.conn == nil {
		return http.ErrNotSupported
	}
	return sr.conn.SetWriteDeadline(t)
}

func (sr *StatusRecorder) SetReadDeadline(t time.Time) error {
	if sr.conn == nil {
		return http.ErrNotSupported
	}
	return sr.conn.SetReadDeadline(t)
}

// APIError is the envelope of failed requests.
type APIError struct {
	RequestID string      `json:"requestid"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
}

// APIResponse is the envelope of successful requests. Total is only set
// by list endpoints.
type APIResponse struct {
	RequestID string      `json:"requestid"`
	Status    int         `json:"status"`
	Message   string      `json:"message"`
	Total     *int        `json:"total,omitempty"`
	Data      interface{} `json:"data"`
}

// StatusResponse is the payload of the status endpoint.
type StatusResponse struct {
	RequestID string `json:"requestid"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

var serviceErrors = []struct {
	target  error
	status  int
	message string
}{
	{ErrInvalidRequestBody, http.StatusBadRequest, "invalid request body"},
	{ErrBookNotFound, http.StatusNotFound, "book does not exist"},
	{ErrOrderNotFound, http.StatusNotFound, "order does not exist"},
	{ErrEmptyCart, http.StatusConflict, "cart is empty"},
	{ErrInvalidTransition, http.StatusConflict, "checkout step does not allow this action"},
}

// ErrorStatus describes err as sent to clients: a validation error names
// its field, known storefront errors get their own status and anything
// else is an internal failure described by fallback.
func ErrorStatus(err error, fallback string) (int, string, interface{}) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, "invalid " + verr.Field, verr
	}
	for _, se := range serviceErrors {
		if errors.Is(err, se.target) {
			return se.status, se.message, EmptyData
		}
	}
	return http.StatusInternalServerError, fallback, EmptyData
}

// WriteJSON encodes v with the given status. When the request context is
// already done the timeout handler has answered, so nothing is written and
// the status is recorded as 504 on timeout or 499 on client cancellation.
func WriteJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) error {
	if err := ctx.Err(); err != nil {
		w.Header().Set(AbortedHeader, "1")
		if errors.Is(err, context.DeadlineExceeded) {
			w.WriteHeader(http.StatusGatewayTimeout)
		} else {
			w.WriteHeader(StatusClientClosedRequest)
		}
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (api *APIHandler) sendResponse(w http.ResponseWriter, r *http.Request, status int, message string, total *int, data interface{}) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	resp := &APIResponse{RequestID: requestID, Status: status, Message: message, Total: total, Data: data}
	if err := WriteJSON(r.Context(), w, status, resp); err != nil {
		api.GetLoggerFromContext(r.Context()).Error("failed to send response", zap.String("request.id", requestID), zap.Error(err))
	}
}

// sendError logs cause at error level for server failures, info otherwise.
func (api *APIHandler) sendError(w http.ResponseWriter, r *http.Request, status int, message string, data interface{}, cause error) {
	requestID := GetValueFromContext(r.Context(), ContextRequestID)
	logger := api.GetLoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.String("request.id", requestID), zap.Error(cause))
	} else {
		logger.Info(message, zap.String("request.id", requestID), zap.Error(cause))
	}
	errResp := &APIError{RequestID: requestID, Status: status, Message: message, Data: data}
	if err := WriteJSON(r.Context(), w, status, errResp); err != nil {
		logger.Error("failed to send error response", zap.String("request.id", requestID), zap.Error(err))
	}
}

func (api *APIHandler) sendServiceError(w http.ResponseWriter, r *http.Request, fallback string, err error) {
	status, message, data := ErrorStatus(err, fallback)
	api.sendError(w, r, status, message, data, err)
}
