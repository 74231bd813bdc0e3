package server

import (
	"helpmatch/internal/identity"
	"helpmatch/pkg/types"
	"net/http"
	"strings"
)

func (s *Service) handleMyRequests(w http.ResponseWriter, r *http.Request) {
	var filter types.MyRequestsFilter
	if err := decodeQuery(r, &filter); err != nil {
		s.writeError(w, err)
		return
	}

	page, err := s.queries.MyRequests(r.Context(), identity.ActorFromContext(r.Context()), &filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writePage(s, w, page)
}

func (s *Service) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var in types.RequestInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}

	req, err := s.requests.Create(r.Context(), identity.ActorFromContext(r.Context()), &in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusCreated, req, "request created")
}

func (s *Service) handleGetHelpSeekerRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	detail, err := s.requests.GetForHelpSeeker(r.Context(), identity.ActorFromContext(r.Context()), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, detail, "")
}

func (s *Service) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var in types.RequestInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}

	req, err := s.requests.Update(r.Context(), identity.ActorFromContext(r.Context()), id, &in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, req, "request updated")
}

func (s *Service) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.requests.Delete(r.Context(), identity.ActorFromContext(r.Context()), id); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, nil, "request deleted")
}

func (s *Service) handleCompleteRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	req, err := s.requests.Complete(r.Context(), identity.ActorFromContext(r.Context()), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, req, "request completed")
}

func (s *Service) handleAcceptApplication(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	volunteerID := strings.TrimSpace(r.PathValue("volunteerID"))

	app, err := s.applications.Accept(r.Context(), identity.ActorFromContext(r.Context()), id, volunteerID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, app, "application accepted")
}

func (s *Service) handleRateVolunteer(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var in ratingInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, err)
		return
	}

	app, err := s.ratings.RateVolunteer(r.Context(), identity.ActorFromContext(r.Context()), id, in.Rating)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, app, "volunteer rated")
}
