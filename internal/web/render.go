package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/placeoffers/internal/auth"
	"github.com/vbonduro/placeoffers/internal/domain"
	"github.com/vbonduro/placeoffers/internal/offers"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json response failed", "error", err)
	}
}

// writeError maps page and service errors onto HTTP statuses. fields are
// the form errors reported with a rejected submission.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fields map[string]string) {
	switch {
	case errors.Is(err, offers.ErrFormRejected):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Fields: fields})
	case errors.Is(err, domain.ErrInvalidPlace), errors.Is(err, domain.ErrUnsupportedImage):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrPlaceNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: domain.ErrPlaceNotFound.Error()})
	case errors.Is(err, auth.ErrNoUser):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: auth.ErrNoUser.Error()})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, logger *slog.Logger) {
	if err := c.Close(); err != nil {
		logger.Error("failed to close resource", "label", label, "error", err)
	}
}
