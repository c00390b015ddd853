package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/buyside/internal/core"
	"github.com/JonMunkholm/buyside/internal/logging"
	"github.com/JonMunkholm/buyside/internal/web/templates"
)

// ErrorResponse is the JSON body of a failed API call. Code is stable;
// Message and Action are meant for people.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err in full and answers with its user message, as JSON
// for API clients and as an error page for browsers.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"code", msg.Code,
		"error", err,
	)

	if !wantsJSON(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
		return
	}

	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// errorStatuses is checked in order; the first match wins.
var errorStatuses = []struct {
	errs   []error
	status int
}{
	{[]error{core.ErrEmptyTerm, core.ErrEmptyTag}, http.StatusBadRequest},
	{[]error{core.ErrTagLimit}, http.StatusConflict},
	{[]error{core.ErrSummaryNotConfigured, core.ErrTooManySummaries}, http.StatusServiceUnavailable},
	{[]error{context.DeadlineExceeded}, http.StatusGatewayTimeout},
	{[]error{core.ErrSummaryFailed}, http.StatusBadGateway},
	{[]error{core.ErrSourceNotFound, core.ErrUnsupportedSource, core.ErrDatabaseNotConfigured, core.ErrSheetNotFound},
		http.StatusUnprocessableEntity},
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	for _, e := range errorStatuses {
		for _, target := range e.errs {
			if errors.Is(err, target) {
				return e.status
			}
		}
	}
	return http.StatusInternalServerError
}

// wantsJSON reports whether the caller is an API client.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	for _, h := range []string{"Accept", "Content-Type"} {
		if strings.Contains(r.Header.Get(h), "application/json") {
			return true
		}
	}
	return false
}
