package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/vbonduro/placeoffers/internal/offers"
)

type alert struct {
	Header  string `json:"header"`
	Message string `json:"message"`
}

type alertResponse struct {
	Alerts   []alert `json:"alerts"`
	Redirect string  `json:"redirect,omitempty"`
}

// pageHost is the navigator and presenter of a page for the lifetime of
// one request. It only records what the page asked for; respond turns that
// into an HTTP response.
type pageHost struct {
	logger *slog.Logger
	target string
	alerts []alert
}

func newPageHost(logger *slog.Logger) *pageHost {
	return &pageHost{logger: logger}
}

func (h *pageHost) Navigate(_ context.Context, path string) {
	h.target = path
}

// NavigateBack is a plain redirect over HTTP.
func (h *pageHost) NavigateBack(_ context.Context, path string) {
	h.target = path
}

func (h *pageHost) ShowProgress(_ context.Context, message string) offers.Indicator {
	h.logger.Debug("progress shown", "message", message)
	return &progress{logger: h.logger, message: message, start: time.Now()}
}

func (h *pageHost) Alert(_ context.Context, header, message string) error {
	h.alerts = append(h.alerts, alert{Header: header, Message: message})
	return nil
}

// respond writes any pending alert or redirect and reports whether it did.
func (h *pageHost) respond(w http.ResponseWriter, r *http.Request) bool {
	switch {
	case len(h.alerts) > 0:
		if h.target != "" && isHTMX(r) {
			w.Header().Set("HX-Redirect", h.target)
		}
		writeJSON(w, http.StatusOK, alertResponse{Alerts: h.alerts, Redirect: h.target})
		return true
	case h.target != "":
		redirect(w, r, h.target)
		return true
	}
	return false
}

type progress struct {
	logger  *slog.Logger
	message string
	start   time.Time
}

func (p *progress) Dismiss() {
	p.logger.Debug("progress dismissed", "message", p.message, "duration_ms", time.Since(p.start).Milliseconds())
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// redirect sends htmx clients an HX-Redirect and everyone else a 303.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
