package rest

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/postbox/internal/common"
	"github.com/dmitrijs2005/postbox/internal/server/auth"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const userNameKey ctxKey = "userName"

const (
	detailNoCredentials = "Authentication credentials were not provided."
	detailBadToken      = "Given token not valid for any token type"
)

// currentUser returns the username placed in ctx by authenticate.
func currentUser(ctx context.Context) string {
	name, _ := ctx.Value(userNameKey).(string)
	return name
}

// authenticate requires a valid "Authorization: Bearer <access>" header and
// stores the token's username in the request context.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			writeUnauthorized(w, detailNoCredentials)
			return
		}

		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			writeUnauthorized(w, detailBadToken)
			return
		}

		userName, err := auth.GetUserNameFromToken(strings.TrimSpace(token), s.jwtSecret)
		if err != nil {
			s.logger.Debug(r.Context(), "rejected bearer token", "error", err)
			writeUnauthorized(w, detailBadToken)
			return
		}

		ctx := context.WithValue(r.Context(), userNameKey, userName)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *HTTPServer) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": detail})
}
