package web

// errors.go turns run errors into responses.
//
// Every error goes through core.MapError, which yields the user message and
// a code. The code decides the HTTP status; the technical error is only
// logged. API routes answer with JSON, pages with an HTML error view.

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/featureprep/internal/core"
	"github.com/JonMunkholm/featureprep/internal/logging"
	"github.com/JonMunkholm/featureprep/internal/web/templates"
	"github.com/a-h/templ"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusForCode maps a user message code to an HTTP status.
func statusForCode(code string) int {
	switch {
	case strings.HasPrefix(code, "SCH"), strings.HasPrefix(code, "DAT"):
		return http.StatusUnprocessableEntity
	}

	switch code {
	case "SRC001":
		return http.StatusNotFound
	case "SRC002", "SRC004":
		return http.StatusBadRequest
	case "SRC003":
		return http.StatusRequestEntityTooLarge
	case "RUN001":
		return http.StatusServiceUnavailable
	case "RUN002":
		return http.StatusRequestTimeout
	case "RUN003":
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err with the request context and writes the mapped
// user message in the format the client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	userErr := core.NewUserError(err)
	msg := userErr.User
	status := statusForCode(msg.Code)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", userErr.Technical.Error(),
		"code", msg.Code,
	}
	// Unclassified errors are bugs or infrastructure failures.
	if !core.IsUserFacing(err) || status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}

	switch {
	case isHTMX(r):
		renderError(w, r, status, templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
	case wantsJSON(r):
		respondErrorJSON(w, msg, status)
	default:
		renderError(w, r, status, templates.ErrorPage(msg.Message, msg.Action, msg.Code))
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func renderError(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error view", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
