package web

import (
	"errors"
	"net/http"

	"github.com/vbonduro/placeoffers/internal/domain"
	"github.com/vbonduro/placeoffers/internal/imagedata"
	"github.com/vbonduro/placeoffers/internal/offers"
)

var editFieldNames = []string{"title", "description", "price", "dateFrom", "dateTo"}

type listResponse struct {
	Offers []*domain.Place `json:"offers"`
}

type formResponse[T any] struct {
	Place  *domain.Place     `json:"place,omitempty"`
	Fields T                 `json:"fields"`
	Errors map[string]string `json:"errors"`
}

func (s *Server) handleListOffers(w http.ResponseWriter, r *http.Request) {
	host := newPageHost(s.logger)
	page := offers.NewListPage(s.places, s.users, host, s.logger)
	page.Activate(r.Context())
	defer page.Deactivate()

	if err := page.Enter(r.Context()); err != nil {
		s.writeError(w, r, err, nil)
		return
	}

	list := page.Offers()
	if list == nil {
		list = []*domain.Place{}
	}
	writeJSON(w, http.StatusOK, listResponse{Offers: list})
}

func (s *Server) handleEditFromList(w http.ResponseWriter, r *http.Request) {
	host := newPageHost(s.logger)
	page := offers.NewListPage(s.places, s.users, host, s.logger)
	page.Edit(r.Context(), r.PathValue("id"), nil)
	host.respond(w, r)
}

func (s *Server) handleNewOfferForm(w http.ResponseWriter, r *http.Request) {
	host := newPageHost(s.logger)
	page := offers.NewNewOfferPage(s.places, host, host, s.logger)
	fs := page.Form()
	writeJSON(w, http.StatusOK, formResponse[offers.NewOfferFields]{Fields: fs.Values(), Errors: fs.Errors()})
}

func (s *Server) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	if err := parseInput(r); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to parse form"})
		return
	}

	host := newPageHost(s.logger)
	page := offers.NewNewOfferPage(s.places, host, host, s.logger)
	if !s.applyPickers(w, r, page.LocationPicked, page.ImagePicked) {
		return
	}
	applyFields(page.Form(), r, s.logger, editFieldNames...)

	if err := page.CreateOffer(r.Context()); err != nil {
		fields := page.Form().Errors()
		if page.Form().Values().Image == nil {
			fields["image"] = "required"
		}
		s.writeError(w, r, err, fields)
		return
	}
	host.respond(w, r)
}

func (s *Server) handleEditWithoutID(w http.ResponseWriter, r *http.Request) {
	host := newPageHost(s.logger)
	page := offers.NewEditOfferPage(s.places, host, host, s.logger)
	if err := page.Activate(r.Context(), nil); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	host.respond(w, r)
}

func (s *Server) handleEditOfferForm(w http.ResponseWriter, r *http.Request) {
	page, _, ok := s.activateEdit(w, r)
	if !ok {
		return
	}
	fs := page.Form()
	writeJSON(w, http.StatusOK, formResponse[offers.EditOfferFields]{
		Place:  page.Place(),
		Fields: fs.Values(),
		Errors: fs.Errors(),
	})
}

func (s *Server) handleUpdateOffer(w http.ResponseWriter, r *http.Request) {
	if err := parseInput(r); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to parse form"})
		return
	}

	page, host, ok := s.activateEdit(w, r)
	if !ok {
		return
	}
	if !s.applyPickers(w, r, page.LocationPicked, page.ImagePicked) {
		return
	}
	applyFields(page.Form(), r, s.logger, editFieldNames...)

	if err := page.UpdateOffer(r.Context()); err != nil {
		s.writeError(w, r, err, page.Form().Errors())
		return
	}
	host.respond(w, r)
}

func (s *Server) handleDeleteOffer(w http.ResponseWriter, r *http.Request) {
	host := newPageHost(s.logger)
	page := offers.NewEditOfferPage(s.places, host, host, s.logger)
	if err := page.DeleteOffer(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err, nil)
		return
	}
	host.respond(w, r)
}

// activateEdit loads the edit page for the {id} in the path. When the load
// ended in an alert or a redirect the response has been written and ok is
// false.
func (s *Server) activateEdit(w http.ResponseWriter, r *http.Request) (*offers.EditOfferPage, *pageHost, bool) {
	host := newPageHost(s.logger)
	page := offers.NewEditOfferPage(s.places, host, host, s.logger)

	err := page.Activate(r.Context(), map[string]string{offers.PlaceIDParam: r.PathValue("id")})
	if err != nil {
		s.writeError(w, r, err, nil)
		return nil, nil, false
	}
	if host.respond(w, r) {
		return nil, nil, false
	}
	return page, host, true
}

// applyPickers hands the submitted location and image to the page. It
// writes a 400 and returns false for input that cannot be read at all.
func (s *Server) applyPickers(
	w http.ResponseWriter,
	r *http.Request,
	locationPicked func(*domain.Location),
	imagePicked func(imagedata.Payload),
) bool {
	loc, err := locationInput(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	}
	if loc != nil {
		locationPicked(loc)
	}

	payload, ok, err := imageInput(r, s.logger)
	switch {
	case errors.Is(err, domain.ErrUnsupportedImage):
		s.writeError(w, r, err, nil)
		return false
	case errors.Is(err, errImageTooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
		return false
	case err != nil:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return false
	case ok:
		imagePicked(payload)
	}
	return true
}
