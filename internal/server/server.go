package server

import (
	"context"
	"fmt"
	"helpmatch/internal/identity"
	"helpmatch/internal/matching"
	"helpmatch/internal/metrics"
	"helpmatch/pkg/types"
	"net/http"
	"time"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// Authenticator verifies a bearer token.
type Authenticator interface {
	Verify(ctx context.Context, rawToken string) (*identity.Actor, error)
}

// IdentityRecorder keeps the users table in step with verified identities.
type IdentityRecorder interface {
	UpsertIdentity(ctx context.Context, userID, email, givenName, familyName string, isVolunteer bool) error
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	auth  Authenticator
	users IdentityRecorder

	requests     *matching.RequestService
	applications *matching.ApplicationService
	ratings      *matching.RatingService
	queries      *matching.QueryService

	handler http.Handler
	server  *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	auth Authenticator,
	users IdentityRecorder,
	requests *matching.RequestService,
	applications *matching.ApplicationService,
	ratings *matching.RatingService,
	queries *matching.QueryService,
) *Service {
	mux := flow.New()

	s := &Service{
		logger: logger,
		config: config,

		auth:  auth,
		users: users,

		requests:     requests,
		applications: applications,
		ratings:      ratings,
		queries:      queries,

		handler: mux,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(metrics.InstrumentHandler)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", metrics.Handler(), http.MethodGet)
	r.HandleFunc("/categories", s.handleCategories, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/help-seeker/requests", s.handleMyRequests, http.MethodGet)
		r.HandleFunc("/help-seeker/requests", s.handleCreateRequest, http.MethodPost)
		r.HandleFunc("/help-seeker/requests/:id", s.handleGetHelpSeekerRequest, http.MethodGet)
		r.HandleFunc("/help-seeker/requests/:id", s.handleUpdateRequest, http.MethodPut)
		r.HandleFunc("/help-seeker/requests/:id", s.handleDeleteRequest, http.MethodDelete)
		r.HandleFunc("/help-seeker/requests/:id/complete", s.handleCompleteRequest, http.MethodPatch)
		r.HandleFunc("/help-seeker/requests/:id/applications/:volunteerID/accept", s.handleAcceptApplication, http.MethodPatch)
		r.HandleFunc("/help-seeker/requests/:id/rate-volunteer", s.handleRateVolunteer, http.MethodPost)

		r.HandleFunc("/volunteer/requests", s.handleDiscoverRequests, http.MethodGet)
		r.HandleFunc("/volunteer/requests/:id", s.handleGetVolunteerRequest, http.MethodGet)
		r.HandleFunc("/volunteer/requests/:id/application", s.handleApply, http.MethodPost)
		r.HandleFunc("/volunteer/requests/:id/application", s.handleWithdraw, http.MethodDelete)
		r.HandleFunc("/volunteer/requests/:id/rate-seeker", s.handleRateSeeker, http.MethodPost)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.queries.Categories(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeData(w, http.StatusOK, categories, "")
}
