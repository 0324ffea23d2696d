package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"spinwheel/internal/raster"
	"spinwheel/internal/viewmodel"
	"spinwheel/internal/wheel"
	"spinwheel/views/components"
	"spinwheel/views/pages"
)

type WheelHandler struct {
	store   *wheel.Store
	baseURL string
	logger  *slog.Logger
}

func NewWheelHandler(store *wheel.Store, baseURL string, logger *slog.Logger) *WheelHandler {
	return &WheelHandler{store: store, baseURL: baseURL, logger: logger}
}

func (h *WheelHandler) RegisterRoutes(r chi.Router) {
	r.Route("/wheel/{id}", func(r chi.Router) {
		// Streams outlive any request timeout.
		r.Get("/stream", h.stream)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))
			r.Get("/", h.wheelPage)
			r.Post("/spin", h.spin)
			r.Get("/snapshot.png", h.snapshotPNG)
			r.Post("/close", h.closeWheel)
		})
	})
}

func (h *WheelHandler) wheelPage(w http.ResponseWriter, r *http.Request) {
	wheelID := chi.URLParam(r, "id")
	instance, ok := h.store.GetWheel(wheelID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	snapshot := instance.Snapshot(time.Now().UTC())
	render(w, r, pages.WheelPage(viewmodel.WheelPage{
		Title:    "Spin Wheel",
		WheelID:  wheelID,
		ShareURL: h.shareURL(r, wheelID),
		Figure:   buildFigure(snapshot),
		Status:   buildStatus(snapshot),
	}))
}

func (h *WheelHandler) spin(w http.ResponseWriter, r *http.Request) {
	wheelID := chi.URLParam(r, "id")
	outcome, err := h.store.Spin(r.Context(), wheelID)
	if wantsJSON(r) {
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, http.StatusAccepted, toSpinResponse(outcome))
		return
	}
	switch {
	case errors.Is(err, wheel.ErrWheelNotFound):
		http.NotFound(w, r)
		return
	case err != nil && statusFor(err) == http.StatusInternalServerError:
		h.logger.Error("spin", "request_id", requestID(r), "wheel", wheelID, "error", err)
		http.Error(w, "spin failed", http.StatusInternalServerError)
		return
	}
	// Rejected spins are no-ops; the page shows the current state.
	http.Redirect(w, r, "/wheel/"+wheelID, http.StatusSeeOther)
}

func (h *WheelHandler) snapshotPNG(w http.ResponseWriter, r *http.Request) {
	wheelID := chi.URLParam(r, "id")
	instance, ok := h.store.GetWheel(wheelID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	size, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		size = raster.DefaultSize
	}
	var buf bytes.Buffer
	if err := raster.WheelPNG(&buf, instance.Snapshot(time.Now().UTC()), size); err != nil {
		h.logger.Error("render snapshot", "request_id", requestID(r), "wheel", wheelID, "error", err)
		http.Error(w, "failed to render", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (h *WheelHandler) closeWheel(w http.ResponseWriter, r *http.Request) {
	wheelID := chi.URLParam(r, "id")
	h.store.RemoveWheel(wheelID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *WheelHandler) stream(w http.ResponseWriter, r *http.Request) {
	wheelID := chi.URLParam(r, "id")
	instance, ok := h.store.GetWheel(wheelID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	hub := h.store.Broadcaster(wheelID)
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	sendSnapshot := func() {
		snapshot := instance.Snapshot(time.Now().UTC())
		writeSSE(w, "figure", renderToString(r, components.WheelFigure(buildFigure(snapshot))))
		writeSSE(w, "status", renderToString(r, components.WheelStatus(buildStatus(snapshot))))
		flusher.Flush()
	}

	sendSnapshot()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub:
			if !ok {
				return
			}
			switch event {
			case wheel.EventSpin, wheel.EventSettled, wheel.EventNames:
				sendSnapshot()
			}
		case <-keepAlive.C:
			_, _ = w.Write([]byte(": keepalive\n\n"))
			flusher.Flush()
		}
	}
}

func (h *WheelHandler) shareURL(r *http.Request, wheelID string) string {
	baseURL := strings.TrimSpace(h.baseURL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(os.Getenv("BASE_URL"))
	}
	if baseURL != "" {
		return strings.TrimRight(baseURL, "/") + "/wheel/" + wheelID
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/wheel/" + wheelID
}
