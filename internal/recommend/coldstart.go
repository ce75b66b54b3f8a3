package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tunebird/tunebird-backend/internal/db"
)

// Cold-start candidate sources, reported back to clients as the reason a
// song was recommended.
const (
	SourcePopular = "popular"
	SourceFresh   = "fresh"
	SourceExplore = "explore"
)

// Cold-start blending parameters.
const (
	// poolFactor sizes each candidate pool relative to the requested limit.
	poolFactor = 3

	// playCountNorm is the play count at which the popularity component of
	// the blend score saturates at 1.
	playCountNorm = 1_000_000

	// playWeight and sourceWeight blend normalized popularity with the
	// candidate's source-pool weight.
	playWeight      = 0.6
	sourceWeightMix = 0.4

	// perArtistCap is the maximum number of selections per artist.
	perArtistCap = 2
)

// sourceWeights ranks the candidate pools: popular songs are the safest
// recommendation for an unknown listener, exploration the riskiest.
var sourceWeights = map[string]float64{
	SourcePopular: 0.65,
	SourceFresh:   0.5,
	SourceExplore: 0.35,
}

// Item is one enriched cold-start recommendation.
type Item struct {
	SongID      int64      `json:"songId"`
	Title       string     `json:"title"`
	ArtistID    *int64     `json:"artistId"`
	ArtistName  *string    `json:"artistName"`
	CoverURL    *string    `json:"coverUrl"`
	PlayCount   int64      `json:"playCount"`
	ReleaseDate *time.Time `json:"releaseDate"`
	Reason      string     `json:"reason"`
}

// pooledSong is a pool row tagged with its source.
type pooledSong struct {
	song   db.PoolSong
	source string
	score  float64
}

// ColdStart recommends songs for a request with no user context. Three
// candidate pools (popular, fresh, explore) are fetched concurrently,
// blended by score, deduplicated, and greedily selected under a per-artist
// cap. An empty catalog yields an empty list, never an error.
func (e *Engine) ColdStart(ctx context.Context, limit int) ([]Item, error) {
	limit = clampLimit(limit)
	poolLimit := limit * poolFactor

	type poolResult struct {
		songs []db.PoolSong
		err   error
	}

	fetch := []struct {
		source string
		query  func(context.Context, int) ([]db.PoolSong, error)
	}{
		{SourcePopular, e.catalog.PopularPool},
		{SourceFresh, e.catalog.FreshPool},
		{SourceExplore, e.catalog.ExplorePool},
	}

	results := make([]poolResult, len(fetch))
	var wg sync.WaitGroup
	for i := range fetch {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			songs, err := fetch[i].query(ctx, poolLimit)
			results[i] = poolResult{songs: songs, err: err}
		}(i)
	}
	wg.Wait()

	var union []pooledSong
	for i, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("loading %s pool: %w", fetch[i].source, res.err)
		}
		for _, s := range res.songs {
			union = append(union, pooledSong{
				song:   s,
				source: fetch[i].source,
				score:  blendScore(s.PlayCount, fetch[i].source),
			})
		}
	}

	// Stable sort keeps natural pool order on score ties, so a song that
	// appears in several pools is attributed to whichever copy sorts first.
	sort.SliceStable(union, func(i, j int) bool {
		return union[i].score > union[j].score
	})

	items := make([]Item, 0, limit)
	seen := make(map[int64]struct{}, limit)
	artistCount := make(map[int64]int)
	for _, ps := range union {
		if len(items) == limit {
			break
		}
		if _, ok := seen[ps.song.SongID]; ok {
			continue
		}
		if ps.song.ArtistID != nil && artistCount[*ps.song.ArtistID] >= perArtistCap {
			continue
		}

		seen[ps.song.SongID] = struct{}{}
		if ps.song.ArtistID != nil {
			artistCount[*ps.song.ArtistID]++
		}
		items = append(items, Item{
			SongID:      ps.song.SongID,
			Title:       ps.song.Title,
			ArtistID:    ps.song.ArtistID,
			ArtistName:  ps.song.ArtistName,
			CoverURL:    ps.song.CoverURL,
			PlayCount:   ps.song.PlayCount,
			ReleaseDate: ps.song.ReleaseDate,
			Reason:      ps.source,
		})
	}

	return items, nil
}

// blendScore combines normalized global popularity with the source pool's
// weight.
func blendScore(playCount int64, source string) float64 {
	pop := float64(playCount) / playCountNorm
	if pop > 1 {
		pop = 1
	}
	return playWeight*pop + sourceWeightMix*sourceWeights[source]
}
