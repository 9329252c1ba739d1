package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/retention/pkg/domain/model"
	"github.com/secmon-lab/retention/pkg/usecase"
	"github.com/secmon-lab/retention/pkg/utils/apperr"
)

// maxBodySize bounds JSON request bodies
const maxBodySize = 1 << 20

// UseCases bundles the use cases served over HTTP
type UseCases struct {
	Dashboard *usecase.DashboardUseCase
	Connector *usecase.ConnectorUseCase
	Sync      *usecase.SyncUseCase
}

// Server represents the HTTP server
type Server struct {
	*http.Server
	router chi.Router
}

// NewServer creates a new HTTP server. metricsHandler is mounted on /metrics
// when not nil.
func NewServer(ctx context.Context, addr string, uc UseCases, metricsHandler http.Handler) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	router.Use(CORS)

	dashboard := &dashboardHandler{uc: uc.Dashboard}
	connector := &connectorHandler{connector: uc.Connector, sync: uc.Sync}

	router.Get("/health", handleHealth)
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", dashboard.getDashboard)
		r.Get("/departments", dashboard.getDepartments)
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", dashboard.listEmployees)
			r.Get("/high-risk", dashboard.listHighRisk)
			r.Get("/{employeeID}", dashboard.getEmployee)
		})

		r.Route("/connector", func(r chi.Router) {
			r.Get("/", connector.getState)
			r.Post("/connect", connector.connect)
			r.Post("/disconnect", connector.disconnect)
			r.Post("/reconnect", connector.reconnect)
			r.Get("/permissions", connector.getPermissions)
			r.Get("/channels", connector.listChannels)
			r.Post("/channels/refresh", connector.refreshChannels)
			r.Post("/channels/{channelID}/toggle", connector.toggleChannel)
			r.Put("/settings", connector.updateSettings)
			r.Get("/config", connector.getSavedConfig)
			r.Post("/save", connector.save)
			r.Post("/reset", connector.reset)
			r.Get("/sync", connector.getSync)
			r.Post("/sync", connector.runSync)
		})
	})

	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router: router,
	}
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "retention",
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode response", "error", err)
	}
}

// statusCode maps an error to the HTTP status of its kind
func statusCode(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case goerr.HasTag(err, model.ErrTagValidation), errors.As(err, &maxBytesErr):
		return http.StatusBadRequest
	case goerr.HasTag(err, model.ErrTagInvalidTransition):
		return http.StatusConflict
	case goerr.HasTag(err, model.ErrTagAuthFailure), goerr.HasTag(err, model.ErrTagReconnectFailure):
		return http.StatusBadGateway
	case errors.Is(err, model.ErrEmployeeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes it as {"error": message}
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	apperr.Handle(r.Context(), err)

	status := statusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = http.StatusText(status)
	}
	writeJSON(w, r, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return goerr.Wrap(err, "request body too large", goerr.T(model.ErrTagValidation))
		}
		return goerr.Wrap(err, "invalid request body", goerr.T(model.ErrTagValidation))
	}
	return nil
}
