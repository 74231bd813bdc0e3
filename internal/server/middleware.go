package server

import (
	"helpmatch/internal/identity"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

// RequireAuth verifies the bearer token, records the caller's identity and
// adds the actor to the request context.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		actor, err := s.auth.Verify(ctx, bearerToken(r))
		if err != nil {
			s.logger.WithError(err).Debug("rejected bearer token")
			s.writeError(w, err)
			return
		}

		err = s.users.UpsertIdentity(ctx, actor.ID, actor.Email, actor.GivenName, actor.FamilyName, actor.IsVolunteer())
		if err != nil {
			s.logger.WithError(err).WithField("user_id", actor.ID).Error("failed to record user identity")
			s.writeError(w, err)
			return
		}

		s.logger.WithFields(logrus.Fields{
			"user_id": actor.ID,
			"role":    actor.Role,
		}).Debug("authenticated user")

		next.ServeHTTP(w, r.WithContext(identity.WithActor(ctx, actor)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
