package ratinghttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Mount registers the rating routes under /api/rating.
func Mount(r chi.Router, h *Handlers, limiter *IPRateLimiter) {
	r.Route("/api/rating", func(r chi.Router) {
		r.Use(middleware.GetHead)
		if limiter != nil {
			r.Use(RateLimitMiddleware(limiter))
		}

		r.Get("/leaderboard", h.HandleLeaderboard)
		r.Get("/leaderboard/chart.png", h.HandleLeaderboardChart)
		r.Get("/leaderboard/export.xlsx", h.HandleLeaderboardExport)
		r.Get("/runners/{userID}", h.HandleRunner)
		r.Get("/tiers", h.HandleTiers)
		r.Get("/seasons", h.HandleSeasons)
	})
}
