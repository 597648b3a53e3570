// Package httpapi provides the HTTP surface for the command pipeline.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/felixgeelhaar/dictado/pkg/application"
	"github.com/felixgeelhaar/dictado/pkg/domain/command"
	"github.com/felixgeelhaar/dictado/pkg/domain/planning"
)

// maxBodyBytes bounds a command request body.
const maxBodyBytes = 64 << 10

// Handler serves commands and store listings.
type Handler struct {
	commands *application.CommandService
	store    planning.Store
	logger   *slog.Logger
}

// NewHandler creates a Handler. logger falls back to slog.Default.
func NewHandler(commands *application.CommandService, store planning.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{commands: commands, store: store, logger: logger}
}

// CommandRequest is the body of POST /v1/commands.
type CommandRequest struct {
	Text      string `json:"text"`
	Intent    string `json:"intent,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

// RegisterRoutes registers the API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/commands", h.ProcessCommand)
		r.Get("/projects", h.ListProjects)
		r.Get("/tasks", h.ListTasks)
	})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ProcessCommand runs one transcript through the pipeline. Interpretation
// failures are still 200 responses carrying a failed CommandResult; only
// malformed requests are rejected.
func (h *Handler) ProcessCommand(w http.ResponseWriter, r *http.Request) {
	var body CommandRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(body.Text) == "" && body.Intent == "" {
		Error(w, http.StatusBadRequest, "text is required")
		return
	}

	req := application.Request{Text: body.Text, ProjectIDHint: body.ProjectID}
	if body.Intent != "" {
		intent, err := command.ParseIntent(body.Intent)
		if err != nil {
			Error(w, http.StatusBadRequest, "unknown intent")
			return
		}
		req.IntentHint = intent
	}

	result := h.commands.ProcessTranscript(r.Context(), req)
	h.logger.Info("command processed",
		"intent", result.Intent,
		"success", result.Success,
		"error_kind", result.ErrorKind,
	)
	JSON(w, http.StatusOK, result)
}

// ListProjects returns every project.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.FindProjects(r.Context())
	if err != nil {
		h.logger.Error("Failed to list projects", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	if projects == nil {
		projects = []planning.Project{}
	}
	JSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// ListTasks returns tasks filtered by the status, project_id and q query
// parameters.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := planning.TaskFilter{ProjectID: q.Get("project_id"), Text: q.Get("q")}
	if s := q.Get("status"); s != "" {
		status, ok := planning.LookupTaskStatus(s)
		if !ok {
			Error(w, http.StatusBadRequest, "unknown status")
			return
		}
		filter.Status = status
	}

	tasks, err := h.store.FindTasks(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list tasks", "error", err)
		Error(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []planning.Task{}
	}
	JSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
