package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tunebird/tunebird-backend/internal/db"
	"github.com/tunebird/tunebird-backend/internal/recommend"
	"github.com/tunebird/tunebird-backend/internal/taste"
)

// fakeRecommender implements Recommender with canned results.
type fakeRecommender struct {
	similar     []recommend.SimilarSong
	similarErr  error
	forUser     []int64
	forUserErr  error
	coldStart   []recommend.Item
	coldErr     error
	gotUserID   int64
	gotLimit    int
}

func (f *fakeRecommender) SimilarSongs(_ context.Context, seedID int64) ([]recommend.SimilarSong, error) {
	return f.similar, f.similarErr
}

func (f *fakeRecommender) ForUser(_ context.Context, userID int64, limit int) ([]int64, error) {
	f.gotUserID = userID
	f.gotLimit = limit
	return f.forUser, f.forUserErr
}

func (f *fakeRecommender) ColdStart(_ context.Context, limit int) ([]recommend.Item, error) {
	f.gotLimit = limit
	return f.coldStart, f.coldErr
}

type fakeProfiler struct {
	result *taste.ProfileResult
	err    error
}

func (f *fakeProfiler) Profile(_ context.Context, _ int64) (*taste.ProfileResult, error) {
	return f.result, f.err
}

func newTestRouter(rec Recommender, prof TasteProfiler) http.Handler {
	handlers := NewHandlers(rec, prof, zerolog.Nop())
	router := chi.NewRouter()
	router.Get("/api/songs/{songID}/similar", handlers.SimilarSongs)
	router.Get("/api/users/{userID}/recommendations", handlers.Recommendations)
	router.Get("/api/users/{userID}/taste", handlers.TasteProfile)
	router.Get("/api/recommendations/cold-start", handlers.ColdStart)
	return router
}

func doRequest(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSimilarSongsHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		similar    []recommend.SimilarSong
		similarErr error
		wantStatus int
	}{
		{
			name:       "ok",
			path:       "/api/songs/5/similar",
			similar:    []recommend.SimilarSong{{SongID: 2, Title: "B", Score: 0.9}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown seed",
			path:       "/api/songs/999/similar",
			similarErr: db.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non-numeric id",
			path:       "/api/songs/abc/similar",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "engine failure",
			path:       "/api/songs/5/similar",
			similarErr: errors.New("db down"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeRecommender{similar: tt.similar, similarErr: tt.similarErr}, &fakeProfiler{})
			rec := doRequest(t, router, tt.path)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestSimilarSongsHandlerEmptyList(t *testing.T) {
	router := newTestRouter(&fakeRecommender{}, &fakeProfiler{})
	rec := doRequest(t, router, "/api/songs/5/similar")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body []recommend.SimilarSong
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body == nil {
		t.Error("expected empty JSON array, got null")
	}
}

func TestRecommendationsHandler(t *testing.T) {
	fake := &fakeRecommender{forUser: []int64{3, 1, 2}}
	router := newTestRouter(fake, &fakeProfiler{})

	rec := doRequest(t, router, "/api/users/7/recommendations?limit=3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if fake.gotUserID != 7 || fake.gotLimit != 3 {
		t.Errorf("engine called with user=%d limit=%d, want user=7 limit=3", fake.gotUserID, fake.gotLimit)
	}

	var body map[string][]int64
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got := body["songIds"]; len(got) != 3 || got[0] != 3 {
		t.Errorf("songIds = %v, want [3 1 2]", got)
	}
}

func TestRecommendationsHandlerMissingUser(t *testing.T) {
	fake := &fakeRecommender{forUserErr: recommend.ErrMissingUserID}
	router := newTestRouter(fake, &fakeProfiler{})

	rec := doRequest(t, router, "/api/users/0/recommendations")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRecommendationsHandlerMalformedLimit(t *testing.T) {
	fake := &fakeRecommender{forUser: []int64{1}}
	router := newTestRouter(fake, &fakeProfiler{})

	rec := doRequest(t, router, "/api/users/7/recommendations?limit=lots")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	// Malformed limits defer to the engine's default.
	if fake.gotLimit != 0 {
		t.Errorf("limit = %d, want 0", fake.gotLimit)
	}
}

func TestColdStartHandler(t *testing.T) {
	fake := &fakeRecommender{coldStart: []recommend.Item{{SongID: 1, Title: "A", Reason: recommend.SourcePopular}}}
	router := newTestRouter(fake, &fakeProfiler{})

	rec := doRequest(t, router, "/api/recommendations/cold-start?limit=5")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body []recommend.Item
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body) != 1 || body[0].Reason != recommend.SourcePopular {
		t.Errorf("body = %+v, want one popular item", body)
	}
}

func TestColdStartHandlerEmptyCatalog(t *testing.T) {
	router := newTestRouter(&fakeRecommender{}, &fakeProfiler{})

	rec := doRequest(t, router, "/api/recommendations/cold-start")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body []recommend.Item
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body == nil {
		t.Error("expected empty JSON array, got null")
	}
}

func TestTasteProfileHandler(t *testing.T) {
	prof := &fakeProfiler{result: &taste.ProfileResult{TotalTracks: 4, OutlierCount: 1}}
	router := newTestRouter(&fakeRecommender{}, prof)

	rec := doRequest(t, router, "/api/users/7/taste")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body tasteProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.TotalTracks != 4 || body.OutlierCount != 1 {
		t.Errorf("body = %+v, want totalTracks=4 outlierCount=1", body)
	}
}
