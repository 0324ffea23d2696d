package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"spinwheel/internal/names"
	"spinwheel/internal/wheel"
)

// statusFor maps domain errors onto HTTP statuses. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, wheel.ErrWheelNotFound), errors.Is(err, names.ErrIndexOutOfRange):
		return http.StatusNotFound
	case errors.Is(err, wheel.ErrNoNames), errors.Is(err, wheel.ErrSpinInFlight):
		return http.StatusConflict
	case errors.Is(err, names.ErrEmptyName), errors.Is(err, names.ErrNameTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("internal error",
			"request_id", requestID(r),
			"path", r.URL.Path,
			"error", err,
		)
		writeJSON(w, status, ErrorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
