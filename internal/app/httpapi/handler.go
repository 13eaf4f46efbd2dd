// Package httpapi exposes the app lifecycle service over REST.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cmdhema/picasso/internal/app/metrics"
	"github.com/cmdhema/picasso/internal/app/services/apps"
	"github.com/cmdhema/picasso/internal/fnclient"
	"github.com/cmdhema/picasso/pkg/logger"
)

// Handler routes REST requests to the app lifecycle service.
type Handler struct {
	apps   *apps.Service
	log    *logger.Logger
	router *mux.Router
}

// New builds the REST handler with all routes registered.
func New(appService *apps.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &Handler{apps: appService, log: log}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1/{project_id}").Subrouter()
	v1.HandleFunc("/apps", h.listApps).Methods(http.MethodGet)
	v1.HandleFunc("/apps", h.createApp).Methods(http.MethodPost)
	v1.HandleFunc("/apps/{app}", h.getApp).Methods(http.MethodGet)
	v1.HandleFunc("/apps/{app}", h.updateApp).Methods(http.MethodPut)
	v1.HandleFunc("/apps/{app}", h.deleteApp).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	h.router = r
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) listApps(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["project_id"]

	views, err := h.apps.List(r.Context(), projectID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully listed applications",
		"apps":    views,
	})
}

type createAppRequest struct {
	App struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	} `json:"app"`
}

func (h *Handler) createApp(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["project_id"]

	var req createAppRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.App.Name) == "" {
		writeError(w, http.StatusBadRequest, "App name is required")
		return
	}

	view, err := h.apps.Create(r.Context(), projectID, req.App.Name, req.App.Description)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "App successfully created",
		"app":     view,
	})
}

func (h *Handler) getApp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	view, err := h.apps.Get(r.Context(), vars["project_id"], vars["app"])
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Successfully loaded app",
		"app":     view,
	})
}

type updateAppRequest struct {
	App map[string]any `json:"app"`
}

func (h *Handler) updateApp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req updateAppRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	view, err := h.apps.Update(r.Context(), vars["project_id"], vars["app"], req.App)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "App successfully updated",
		"app":     view,
	})
}

func (h *Handler) deleteApp(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.apps.Delete(r.Context(), vars["project_id"], vars["app"]); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "App successfully deleted",
	})
}

// writeServiceError maps service failures to HTTP responses. Lifecycle
// sentinels carry fixed statuses; anything else surfaces the platform's own
// status and reason.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apps.ErrAppExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, apps.ErrAppNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, apps.ErrAppHasRoutes):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, fnclient.StatusOf(err), fnclient.ReasonOf(err))
	}
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"message": message},
	})
}
