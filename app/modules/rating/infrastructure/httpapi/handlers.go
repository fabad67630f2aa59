// Package ratinghttp serves read-only views of the leaderboard over HTTP.
package ratinghttp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	ratingservice "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/application"
	ratingdomain "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/domain"
	ratingevents "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/events"
	ratinghandlers "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/handlers"
	ratingdb "github.com/Black-And-White-Club/runrank-bot/app/modules/rating/infrastructure/repositories"
	"github.com/Black-And-White-Club/runrank-bot/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultLeaderboardLimit = 50
	maxLeaderboardLimit     = 500
	chartLimit              = 20
	defaultSeasonLimit      = 12
)

// Handlers serves the rating HTTP API.
type Handlers struct {
	service ratingservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewHandlers creates the HTTP handlers.
func NewHandlers(service ratingservice.Service, logger *slog.Logger, tracer trace.Tracer) *Handlers {
	return &Handlers{service: service, logger: logger, tracer: tracer}
}

type errorResponse struct {
	Error string `json:"error"`
}

type seasonResponse struct {
	ID        string                                 `json:"id"`
	EndedAt   string                                 `json:"ended_at"`
	Standings []ratingevents.SeasonStandingPayloadV1 `json:"standings"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// queryLimit reads ?limit=, falling back to def and capping at maxLeaderboardLimit.
func queryLimit(r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return min(n, maxLeaderboardLimit), true
}

// leaderboard loads the first limit rows, writing the error response itself on failure.
func (h *Handlers) leaderboard(w http.ResponseWriter, r *http.Request, limit int) ([]ratingservice.LeaderboardEntry, bool) {
	ctx := r.Context()
	result, err := h.service.GetLeaderboard(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Leaderboard request failed", attr.Error(err))
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return nil, false
	}
	if result.IsFailure() {
		h.logger.ErrorContext(ctx, "Leaderboard could not be built", attr.Error(*result.Failure))
		writeError(w, http.StatusInternalServerError, "leaderboard unavailable")
		return nil, false
	}
	return *result.Success, true
}

// HandleLeaderboard serves GET /leaderboard.
func (h *Handlers) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.HandleLeaderboard")
	defer span.End()
	r = r.WithContext(ctx)

	limit, ok := queryLimit(r, defaultLeaderboardLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	entries, ok := h.leaderboard(w, r, limit)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ratingevents.LeaderboardRetrievedPayloadV1{
		Entries: ratinghandlers.LeaderboardPayload(entries),
	})
}

// HandleRunner serves GET /runners/{userID}.
func (h *Handlers) HandleRunner(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.HandleRunner")
	defer span.End()

	userID := ratingdomain.RunnerID(chi.URLParam(r, "userID"))
	result, err := h.service.GetProfile(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Profile request failed", attr.RunnerID(userID), attr.Error(err))
		writeError(w, http.StatusInternalServerError, "profile unavailable")
		return
	}
	if result.IsFailure() {
		writeError(w, http.StatusNotFound, (*result.Failure).Error())
		return
	}
	writeJSON(w, http.StatusOK, ratinghandlers.RunnerPayload(*result.Success))
}

// HandleTiers serves GET /tiers.
func (h *Handlers) HandleTiers(w http.ResponseWriter, r *http.Request) {
	tiers := h.service.ListTiers()
	out := make([]ratingevents.TierPayloadV1, len(tiers))
	for i, t := range tiers {
		out[i] = ratingevents.NewTierPayload(t)
	}
	writeJSON(w, http.StatusOK, ratingevents.TiersRetrievedPayloadV1{Tiers: out})
}

// HandleSeasons serves GET /seasons, most recent first.
func (h *Handlers) HandleSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.HandleSeasons")
	defer span.End()

	limit, ok := queryLimit(r, defaultSeasonLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	seasons, err := h.service.ListSeasons(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "Season request failed", attr.Error(err))
		writeError(w, http.StatusInternalServerError, "seasons unavailable")
		return
	}

	out := make([]seasonResponse, len(seasons))
	for i, s := range seasons {
		standings := make([]ratingevents.SeasonStandingPayloadV1, len(s.Standings))
		for j, st := range s.Standings {
			standings[j] = ratingevents.SeasonStandingPayloadV1{
				Position:     st.Position,
				UserID:       st.UserID,
				DisplayName:  st.DisplayName,
				RatingPoints: st.RatingPoints,
				Tier:         st.Tier,
			}
		}
		out[i] = seasonResponse{
			ID:        s.ID.String(),
			EndedAt:   s.EndedAt.Format(time.RFC3339),
			Standings: standings,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleLeaderboardChart serves GET /leaderboard/chart.png.
func (h *Handlers) HandleLeaderboardChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.HandleLeaderboardChart")
	defer span.End()
	r = r.WithContext(ctx)

	entries, ok := h.leaderboard(w, r, chartLimit)
	if !ok {
		return
	}

	png, err := RenderLeaderboardChart(entries, DefaultPalette)
	if err != nil {
		h.logger.ErrorContext(ctx, "Chart render failed", attr.Error(err))
		writeError(w, http.StatusInternalServerError, "chart unavailable")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleLeaderboardExport serves GET /leaderboard/export.xlsx.
func (h *Handlers) HandleLeaderboardExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "RatingHTTP.HandleLeaderboardExport")
	defer span.End()
	r = r.WithContext(ctx)

	entries, ok := h.leaderboard(w, r, 0)
	if !ok {
		return
	}

	seasons, err := h.service.ListSeasons(ctx, 1)
	if err != nil {
		h.logger.ErrorContext(ctx, "Season lookup for export failed", attr.Error(err))
		writeError(w, http.StatusInternalServerError, "export unavailable")
		return
	}
	var last *ratingdb.Season
	if len(seasons) > 0 {
		last = seasons[0]
	}

	buf, err := BuildStandingsWorkbook(entries, last)
	if err != nil {
		h.logger.ErrorContext(ctx, "Workbook build failed", attr.Error(err))
		writeError(w, http.StatusInternalServerError, "export unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="leaderboard.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
