package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/acmecorp/talent_agency/internal/agency/domain/models"
	"github.com/acmecorp/talent_agency/pkg/logger"
)

type contextKey string

const userContextKey contextKey = "user"

func userFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userContextKey).(models.User)

	return u, ok
}

// authMiddleware resolves the Authorization header before any handler runs.
// The header carries the raw token, without a scheme prefix. No header means
// the request stays anonymous; a header that cannot be resolved to an
// existing user rejects the request, protected route or not.
func authMiddleware(authService AuthService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("Authorization")
			if token == "" {
				next.ServeHTTP(w, r)

				return
			}

			u, err := authService.FindUserByToken(r.Context(), token)
			if err != nil {
				w.Header().Add("Content-Type", "application/json")
				handleError(w, fmt.Errorf("authorization token malformed: %w", err), http.StatusUnauthorized)

				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, u)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func loggingMiddleware(logg logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rr := httptest.NewRecorder()

			defer func() {
				latency := time.Since(start).String()

				logg.Infof("METHOD %s URI %s %s	STATUS %d Latency %s Client IP %s User Agent %s",
					r.Method,
					r.Proto,
					r.URL.RequestURI(),
					rr.Code,
					latency,
					r.RemoteAddr,
					r.UserAgent(),
				)
			}()

			next.ServeHTTP(rr, r)

			for k, v := range rr.Header() {
				w.Header()[k] = v
			}

			w.WriteHeader(rr.Code)

			if rr.Code >= 400 && rr.Body.Len() != 0 {
				logg.Errorf("error: %s", rr.Body)
			}

			_, err := rr.Body.WriteTo(w)
			if err != nil {
				logg.Errorf("middleware write error: %s", err.Error())
			}
		})
	}
}
