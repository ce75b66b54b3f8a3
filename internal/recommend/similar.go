package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/tunebird/tunebird-backend/internal/db"
	"github.com/tunebird/tunebird-backend/internal/similarity"
)

// Similarity ranking parameters.
const (
	// maxSimilar is the size of the returned similar-song list.
	maxSimilar = 15

	// stageTopN is how many candidates each embedding stage keeps.
	stageTopN = 150

	// audioWeight and metaWeight blend the two embedding similarities.
	audioWeight = 0.6
	metaWeight  = 0.4

	// sameArtistBonus and sameAlbumBonus reward catalog affinity with the
	// seed song. A same-artist candidate outranks an unrelated candidate
	// with equal embedding similarity by a full 0.3.
	sameArtistBonus = 0.3
	sameAlbumBonus  = 0.05
)

// SimilarSong is one ranked similarity result.
type SimilarSong struct {
	SongID int64   `json:"songId"`
	Title  string  `json:"title"`
	Score  float64 `json:"score"`
}

// scoredCandidate accumulates per-stage similarities for one candidate.
type scoredCandidate struct {
	candidate db.Candidate
	audioSim  float64
	metaSim   float64
}

// stageMatch is one candidate's similarity against a single seed vector.
type stageMatch struct {
	candidate db.Candidate
	sim       float64
}

// SimilarSongs ranks the catalog against a seed song and returns the top
// matches. The seed must be an eligible song; a missing or ineligible seed
// returns db.ErrNotFound. Missing embedding vectors degrade the ranking
// (candidates then order by artist/album affinity alone) but never fail it.
func (e *Engine) SimilarSongs(ctx context.Context, seedID int64) ([]SimilarSong, error) {
	if seedID <= 0 {
		return nil, ErrMissingSongID
	}

	seed, err := e.catalog.Song(ctx, seedID)
	if err != nil {
		return nil, err
	}

	emb, err := e.catalog.SongEmbeddings(ctx, seedID)
	if err != nil {
		return nil, fmt.Errorf("loading seed embeddings: %w", err)
	}

	candidates, err := e.catalog.CandidateEmbeddings(ctx, seedID)
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	merged := make(map[int64]*scoredCandidate)

	if emb.Audio != nil {
		for _, m := range stageTop(candidates, emb.Audio, func(c db.Candidate) []float64 { return c.Audio }) {
			merged[m.candidate.ID] = &scoredCandidate{candidate: m.candidate, audioSim: m.sim}
		}
	}

	if emb.Metadata != nil {
		for _, m := range stageTop(candidates, emb.Metadata, func(c db.Candidate) []float64 { return c.Metadata }) {
			if existing, ok := merged[m.candidate.ID]; ok {
				existing.metaSim = m.sim
				continue
			}
			merged[m.candidate.ID] = &scoredCandidate{candidate: m.candidate, metaSim: m.sim}
		}
	}

	// With no seed vectors at all the stages contribute nothing; every
	// candidate still competes on artist/album affinity.
	if emb.Audio == nil && emb.Metadata == nil {
		for _, c := range candidates {
			merged[c.ID] = &scoredCandidate{candidate: c}
		}
	}

	results := make([]SimilarSong, 0, len(merged))
	for _, sc := range merged {
		score := audioWeight*sc.audioSim + metaWeight*sc.metaSim
		if sameID(seed.ArtistID, sc.candidate.ArtistID) {
			score += sameArtistBonus
		}
		if sameID(seed.AlbumID, sc.candidate.AlbumID) {
			score += sameAlbumBonus
		}
		results = append(results, SimilarSong{
			SongID: sc.candidate.ID,
			Title:  sc.candidate.Title,
			Score:  score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].SongID < results[j].SongID
	})

	if len(results) > maxSimilar {
		results = results[:maxSimilar]
	}

	for i := range results {
		results[i].Score = math.Round(results[i].Score*1e6) / 1e6
	}

	return results, nil
}

// stageTop scores every candidate against one seed vector and keeps the
// stageTopN most similar.
func stageTop(candidates []db.Candidate, seedVec []float64, vec func(db.Candidate) []float64) []stageMatch {
	scored := make([]stageMatch, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, stageMatch{
			candidate: c,
			sim:       similarity.Cosine(seedVec, vec(c)),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].sim != scored[j].sim {
			return scored[i].sim > scored[j].sim
		}
		return scored[i].candidate.ID < scored[j].candidate.ID
	})

	if len(scored) > stageTopN {
		scored = scored[:stageTopN]
	}
	return scored
}

// sameID reports whether two nullable ids are both present and equal.
func sameID(a, b *int64) bool {
	return a != nil && b != nil && *a == *b
}
