package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"spinwheel/internal/names"
	"spinwheel/internal/wheel"
)

const maxBodyBytes = 64 << 10

// APIHandler serves the JSON interface for external renderers.
type APIHandler struct {
	names   *names.Repository
	wheels  *wheel.Store
	origins []string
	logger  *slog.Logger
}

func NewAPIHandler(repo *names.Repository, wheels *wheel.Store, origins []string, logger *slog.Logger) *APIHandler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &APIHandler{names: repo, wheels: wheels, origins: origins, logger: logger}
}

func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           60 * 15,
		}))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Get("/healthz", h.healthz)

		r.Get("/names", h.getNames)
		r.Put("/names", h.replaceNames)
		r.Post("/names", h.addName)
		r.Delete("/names/{index}", h.removeName)
		r.Put("/winner", h.setWinner)
		r.Delete("/winner", h.clearWinner)

		r.Post("/wheels", h.createWheel)
		r.Get("/wheels/{id}", h.getWheel)
		r.Post("/wheels/{id}/spin", h.spin)
		r.Delete("/wheels/{id}", h.deleteWheel)
	})
}

func (h *APIHandler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "wheels": h.wheels.Len()})
}

func (h *APIHandler) getNames(w http.ResponseWriter, r *http.Request) {
	list, winner, err := h.names.Load(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, NamesResponse{Names: list, Winner: winner})
}

func (h *APIHandler) replaceNames(w http.ResponseWriter, r *http.Request) {
	var req NamesRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.names.Replace(r.Context(), req.Names); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.namesChanged(w, r)
}

func (h *APIHandler) addName(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if !h.decode(w, r, &req) {
		return
	}
	if _, err := h.names.Add(r.Context(), req.Name); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.namesChanged(w, r)
}

func (h *APIHandler) removeName(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "index must be an integer"})
		return
	}
	if _, err := h.names.Remove(r.Context(), index); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.namesChanged(w, r)
}

func (h *APIHandler) setWinner(w http.ResponseWriter, r *http.Request) {
	var req WinnerRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.names.SetWinner(r.Context(), req.Winner); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.namesChanged(w, r)
}

func (h *APIHandler) clearWinner(w http.ResponseWriter, r *http.Request) {
	if err := h.names.ClearWinner(r.Context()); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.namesChanged(w, r)
}

// namesChanged pushes the edit to open wheels and replies with the new list.
func (h *APIHandler) namesChanged(w http.ResponseWriter, r *http.Request) {
	if err := h.wheels.Reload(r.Context()); err != nil {
		h.logger.Warn("reload wheels", "request_id", requestID(r), "error", err)
	}
	h.getNames(w, r)
}

func (h *APIHandler) createWheel(w http.ResponseWriter, r *http.Request) {
	instance, err := h.wheels.CreateWheel(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Location", "/api/wheels/"+instance.ID)
	writeJSON(w, http.StatusCreated, toWheelResponse(instance.Snapshot(time.Now().UTC())))
}

func (h *APIHandler) getWheel(w http.ResponseWriter, r *http.Request) {
	instance, ok := h.wheels.GetWheel(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, h.logger, wheel.ErrWheelNotFound)
		return
	}
	writeJSON(w, http.StatusOK, toWheelResponse(instance.Snapshot(time.Now().UTC())))
}

func (h *APIHandler) spin(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.wheels.Spin(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, toSpinResponse(outcome))
}

func (h *APIHandler) deleteWheel(w http.ResponseWriter, r *http.Request) {
	if !h.wheels.RemoveWheel(chi.URLParam(r, "id")) {
		writeError(w, r, h.logger, wheel.ErrWheelNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}
