package server

import (
	"helpmatch/internal/identity"
	"helpmatch/pkg/types"
	"net/http"
	"strings"
)

func (s *Service) handleDiscoverRequests(w http.ResponseWriter, r *http.Request) {
	var filter types.DiscoverFilter
	if err := decodeQuery(r, &filter); err != nil {
		s.writeError(w, err)
		return
	}
	filter.CategoryIDs = splitList(filter.CategoryIDs)

	page, err := s.queries.DiscoverRequests(r.Context(), identity.ActorFromContext(r.Context()), &filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writePage(s, w, page)
}

// splitList accepts both repeated parameters and comma separated values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (s *Service) handleGetVolunteerRequest(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	view, err := s.requests.GetForVolunteer(r.Context(), identity.ActorFromContext(r.Context()), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, view, "")
}

func (s *Service) handleApply(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	app, err := s.applications.Apply(r.Context(), identity.ActorFromContext(r.Context()), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusCreated, app, "application submitted")
}

func (s *Service) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, err := requestIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.applications.Withdraw(r.Context(), identity.ActorFromContext(r.Context()), id); err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, nil, "application withdrawn")
}

func (s *Service) handleRateSeeker(w http.ResponseWriter, r *http.Request) {
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

	app, err := s.ratings.RateSeeker(r.Context(), identity.ActorFromContext(r.Context()), id, in.Rating)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, app, "help seeker rated")
}
