package apiapp

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authsvc "github.com/Nkpro29/chuckle-match-ai/internal/services/auth"
	httperrors "github.com/Nkpro29/chuckle-match-ai/internal/transport/http/errors"
)

func ApplyMiddlewares(r chiRouter, log *zap.Logger, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(timeout))
	r.Use(requestLogger(log))
}

// IdentityMiddleware trusts the X-User-ID header set by the gateway in front
// of the service and puts it into the request context.
func IdentityMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(authsvc.UserIDHeader)
			if raw == "" {
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "missing " + authsvc.UserIDHeader + " header",
				})
				return
			}

			userID, ok := authsvc.ParseUserID(raw)
			if !ok {
				if log != nil {
					log.Debug("identity middleware rejected header", zap.String("value", raw))
				}
				httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{
					Code:    "VALIDATION_ERROR",
					Message: "invalid " + authsvc.UserIDHeader + " header",
				})
				return
			}

			ctx := authsvc.WithIdentity(r.Context(), authsvc.Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if log != nil {
				log.Info("http_request",
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
