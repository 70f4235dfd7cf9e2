package eventlog

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/peekguard/pkg/contextkeys"
	"github.com/platinummonkey/peekguard/pkg/httputil"
	"github.com/platinummonkey/peekguard/pkg/observability"
)

// Handlers serves the event log write and read paths. Identity always comes
// from the request context set by the session middleware, never from the body.
type Handlers struct {
	recorder *Recorder
}

// NewHandlers creates event log handlers
func NewHandlers(recorder *Recorder) *Handlers {
	return &Handlers{recorder: recorder}
}

// LogRequest is the body of POST /api/log
type LogRequest struct {
	Event   string  `json:"event"`
	Details Details `json:"details,omitempty"`
}

// LogsResponse is the body of GET /api/logs
type LogsResponse struct {
	Logs []Event `json:"logs"`
}

// RegisterPublicRoutes registers routes open to anonymous clients
func (h *Handlers) RegisterPublicRoutes(router *mux.Router) {
	router.HandleFunc("/api/log", h.logEvent).Methods(http.MethodPost)
}

// RegisterRoutes registers the read routes. router must enforce a session.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/logs", h.listLogs).Methods(http.MethodGet)
	router.HandleFunc("/api/logs/export", h.exportLogs).Methods(http.MethodGet)
}

// logEvent handles POST /api/log
func (h *Handlers) logEvent(w http.ResponseWriter, r *http.Request) {
	var req LogRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if err := ValidateKind(Kind(req.Event)); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	identity := contextkeys.GetIdentity(r.Context())
	h.recorder.Record(r.Context(), identity, Kind(req.Event), req.Details)

	httputil.WriteOK(w)
}

// listLogs handles GET /api/logs
func (h *Handlers) listLogs(w http.ResponseWriter, r *http.Request) {
	identity := contextkeys.GetIdentity(r.Context())
	if identity == "" {
		httputil.WriteUnauthorized(w, "unauthenticated")
		return
	}

	events, err := h.recorder.List(r.Context(), identity)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("Failed to list security events")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "failed to load security logs")
		return
	}

	if events == nil {
		events = []Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, LogsResponse{Logs: events})
}

// exportLogs handles GET /api/logs/export
func (h *Handlers) exportLogs(w http.ResponseWriter, r *http.Request) {
	identity := contextkeys.GetIdentity(r.Context())
	if identity == "" {
		httputil.WriteUnauthorized(w, "unauthenticated")
		return
	}

	format, err := ParseExportFormat(httputil.ParseQueryString(r, "format", ""))
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	events, err := h.recorder.List(r.Context(), identity)
	if err != nil {
		observability.FromContext(r.Context()).WithError(err).Error("Failed to list security events")
		httputil.WriteErrorMessage(w, http.StatusInternalServerError, "failed to load security logs")
		return
	}

	data, err := Export(events, format)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.SetAttachment(w, fmt.Sprintf("security-events-%s.%s", identity, format), format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
