package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	matchingsvc "github.com/Nkpro29/chuckle-match-ai/internal/services/matching"
	"github.com/Nkpro29/chuckle-match-ai/internal/transport/http/handlers"
)

type Dependencies struct {
	MatchingService *matchingsvc.Service
	Store           handlers.Pinger
	Logger          *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	healthHandler := handlers.NewHealthHandler(deps.Store)
	candidateHandler := handlers.NewCandidateHandler(deps.MatchingService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchingService)
	notificationsHandler := handlers.NewNotificationsHandler(deps.MatchingService)

	r.Get("/healthz", healthHandler.Get)
	r.Get("/readyz", healthHandler.Ready)

	r.Route("/v1", func(r chi.Router) {
		r.Use(IdentityMiddleware(deps.Logger))

		r.Get("/candidates", candidateHandler.List)
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", matchesHandler.List)
			r.Post("/like", matchesHandler.Like)
			r.Post("/pass", matchesHandler.Pass)
		})
		r.Get("/notifications", notificationsHandler.List)
	})
}
