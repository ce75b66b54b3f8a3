package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tunebird/tunebird-backend/internal/db"
	"github.com/tunebird/tunebird-backend/internal/recommend"
	"github.com/tunebird/tunebird-backend/internal/taste"
)

// Recommender is the recommendation engine surface consumed by the HTTP
// layer.
type Recommender interface {
	SimilarSongs(ctx context.Context, seedID int64) ([]recommend.SimilarSong, error)
	ForUser(ctx context.Context, userID int64, limit int) ([]int64, error)
	ColdStart(ctx context.Context, limit int) ([]recommend.Item, error)
}

// TasteProfiler computes taste clusters for a user.
type TasteProfiler interface {
	Profile(ctx context.Context, userID int64) (*taste.ProfileResult, error)
}

// Handlers contains HTTP handlers for the recommendation API.
type Handlers struct {
	recommender Recommender
	profiler    TasteProfiler
	logger      zerolog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(recommender Recommender, profiler TasteProfiler, logger zerolog.Logger) *Handlers {
	return &Handlers{
		recommender: recommender,
		profiler:    profiler,
		logger:      logger,
	}
}

// errorResponse is the JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}

// SimilarSongs handles GET /api/songs/{songID}/similar.
func (h *Handlers) SimilarSongs(w http.ResponseWriter, r *http.Request) {
	songID, err := strconv.ParseInt(chi.URLParam(r, "songID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid song id")
		return
	}

	results, err := h.recommender.SimilarSongs(r.Context(), songID)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	if results == nil {
		results = []recommend.SimilarSong{}
	}
	respondJSON(w, http.StatusOK, results)
}

// Recommendations handles GET /api/users/{userID}/recommendations.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ids, err := h.recommender.ForUser(r.Context(), userID, parseLimit(r))
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	respondJSON(w, http.StatusOK, map[string][]int64{"songIds": ids})
}

// ColdStart handles GET /api/recommendations/cold-start.
func (h *Handlers) ColdStart(w http.ResponseWriter, r *http.Request) {
	items, err := h.recommender.ColdStart(r.Context(), parseLimit(r))
	if err != nil {
		h.respondEngineError(w, err)
		return
	}
	if items == nil {
		items = []recommend.Item{}
	}
	respondJSON(w, http.StatusOK, items)
}

// tasteClusterResponse is one taste cluster in the profile response.
type tasteClusterResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	TopGenres []string `json:"topGenres"`
	SongIDs   []int64  `json:"songIds"`
	Size      int      `json:"size"`
}

// tasteProfileResponse is the taste profile response body.
type tasteProfileResponse struct {
	Clusters     []tasteClusterResponse `json:"clusters"`
	OutlierCount int                    `json:"outlierCount"`
	TotalTracks  int                    `json:"totalTracks"`
}

// TasteProfile handles GET /api/users/{userID}/taste.
func (h *Handlers) TasteProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	result, err := h.profiler.Profile(r.Context(), userID)
	if err != nil {
		h.respondEngineError(w, err)
		return
	}

	resp := tasteProfileResponse{
		Clusters:     make([]tasteClusterResponse, 0, len(result.Clusters)),
		OutlierCount: result.OutlierCount,
		TotalTracks:  result.TotalTracks,
	}
	for _, c := range result.Clusters {
		resp.Clusters = append(resp.Clusters, tasteClusterResponse{
			ID:        c.ID.String(),
			Name:      c.Name,
			TopGenres: c.TopGenres,
			SongIDs:   c.SongIDs,
			Size:      c.Size,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// respondEngineError maps engine errors to HTTP statuses: missing
// identifiers are client errors, a missing seed song is a 404, anything
// else is a 500.
func (h *Handlers) respondEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recommend.ErrMissingUserID),
		errors.Is(err, recommend.ErrMissingSongID),
		errors.Is(err, taste.ErrMissingUserID):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, db.ErrNotFound):
		respondError(w, http.StatusNotFound, "song not found")
	default:
		h.logger.Error().Err(err).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseLimit reads the optional limit query parameter. Absent or malformed
// values come back as 0; the engines apply their own clamping.
func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorResponse{Error: msg})
}
