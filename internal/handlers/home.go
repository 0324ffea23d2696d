package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"

	"spinwheel/internal/names"
	"spinwheel/internal/viewmodel"
	"spinwheel/internal/wheel"
	"spinwheel/views/pages"
)

// Flash codes carried in the query string after a redirect.
var flashMessages = map[string]string{
	"empty":      "Names cannot be blank.",
	"long":       "That name is too long.",
	"missing":    "That name is no longer on the list.",
	"empty-list": "Add at least one name before opening the wheel.",
	"storage":    "Could not save your changes. Try again.",
}

type HomeHandler struct {
	names   *names.Repository
	wheels  *wheel.Store
	palette []string
	logger  *slog.Logger
}

func NewHomeHandler(repo *names.Repository, wheels *wheel.Store, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		names:   repo,
		wheels:  wheels,
		palette: wheels.Settings().Palette,
		logger:  logger,
	}
}

func (h *HomeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Post("/names", h.addName)
	r.Post("/names/{index}/delete", h.removeName)
	r.Post("/winner", h.setWinner)
	r.Post("/wheels", h.createWheel)
}

func (h *HomeHandler) home(w http.ResponseWriter, r *http.Request) {
	list, winner, err := h.names.Load(r.Context())
	if err != nil {
		h.logger.Error("load names", "request_id", requestID(r), "error", err)
		http.Error(w, "failed to load names", http.StatusInternalServerError)
		return
	}
	segments := wheel.Layout(list, h.palette)
	entries := make([]viewmodel.NameEntry, len(list))
	for i, name := range list {
		entries[i] = viewmodel.NameEntry{Index: i, Name: name, Color: segments[i].Color}
	}
	render(w, r, pages.HomePage(viewmodel.HomePage{
		Title:        "Spin Wheel",
		Names:        entries,
		Winner:       winner,
		WinnerListed: slices.Contains(list, winner),
		Error:        flashMessages[r.URL.Query().Get("error")],
		MaxLength:    names.MaxNameLength,
	}))
}

func (h *HomeHandler) addName(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if _, err := h.names.Add(r.Context(), r.FormValue("name")); err != nil {
		h.redirectHome(w, r, h.flashFor(r, err))
		return
	}
	h.reloadWheels(r)
	h.redirectHome(w, r, "")
}

func (h *HomeHandler) removeName(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}
	if _, err := h.names.Remove(r.Context(), index); err != nil {
		h.redirectHome(w, r, h.flashFor(r, err))
		return
	}
	h.reloadWheels(r)
	h.redirectHome(w, r, "")
}

func (h *HomeHandler) setWinner(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	var err error
	if r.FormValue("clear") != "" {
		err = h.names.ClearWinner(r.Context())
	} else {
		err = h.names.SetWinner(r.Context(), r.FormValue("winner"))
	}
	if err != nil {
		h.redirectHome(w, r, h.flashFor(r, err))
		return
	}
	h.reloadWheels(r)
	h.redirectHome(w, r, "")
}

func (h *HomeHandler) createWheel(w http.ResponseWriter, r *http.Request) {
	list, err := h.names.Names(r.Context())
	if err != nil {
		h.redirectHome(w, r, h.flashFor(r, err))
		return
	}
	if len(list) == 0 {
		h.redirectHome(w, r, "empty-list")
		return
	}
	instance, err := h.wheels.CreateWheel(r.Context())
	if err != nil {
		h.redirectHome(w, r, h.flashFor(r, err))
		return
	}
	http.Redirect(w, r, "/wheel/"+instance.ID, http.StatusSeeOther)
}

// reloadWheels pushes edits to open wheel views. A failure only delays them
// until the next spin, which reloads on its own.
func (h *HomeHandler) reloadWheels(r *http.Request) {
	if err := h.wheels.Reload(r.Context()); err != nil {
		h.logger.Warn("reload wheels", "request_id", requestID(r), "error", err)
	}
}

func (h *HomeHandler) flashFor(r *http.Request, err error) string {
	switch {
	case errors.Is(err, names.ErrEmptyName):
		return "empty"
	case errors.Is(err, names.ErrNameTooLong):
		return "long"
	case errors.Is(err, names.ErrIndexOutOfRange):
		return "missing"
	default:
		h.logger.Error("edit names", "request_id", requestID(r), "error", err)
		return "storage"
	}
}

func (h *HomeHandler) redirectHome(w http.ResponseWriter, r *http.Request, flash string) {
	target := "/"
	if flash != "" {
		target += "?error=" + url.QueryEscape(flash)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
