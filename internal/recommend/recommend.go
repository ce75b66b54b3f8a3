// Package recommend implements the song similarity, personalized and
// cold-start recommendation engines over the catalog query gateway.
package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tunebird/tunebird-backend/internal/db"
)

// Common errors. A missing seed song surfaces as db.ErrNotFound from the
// catalog gateway and passes through unchanged.
var (
	// ErrMissingUserID is returned when a user identifier is absent.
	ErrMissingUserID = errors.New("missing user id")

	// ErrMissingSongID is returned when a song identifier is absent.
	ErrMissingSongID = errors.New("missing song id")
)

// Limits applied to requested result sizes.
const (
	// DefaultLimit is used when no limit (or an invalid one) is requested.
	DefaultLimit = 20

	// MaxLimit caps the requested result size.
	MaxLimit = 100
)

// CacheTTL is how long a user's computed recommendation list stays valid.
const CacheTTL = 5 * time.Minute

// historyMaxRows bounds how much listening history feeds the preference
// profile.
const historyMaxRows = 100

// Catalog is the read-only catalog query gateway consumed by the engines.
// Eligibility filtering (approved, not deleted, released) is the gateway's
// responsibility; every method returns eligible songs only.
type Catalog interface {
	Song(ctx context.Context, id int64) (*db.Song, error)
	SongEmbeddings(ctx context.Context, songID int64) (*db.Embeddings, error)
	CandidateEmbeddings(ctx context.Context, excludeSongID int64) ([]db.Candidate, error)
	HistoryProfile(ctx context.Context, userID int64, maxRows int) ([]db.HistoryRow, error)
	SongsMatchingPreference(ctx context.Context, artists []int64, genres []string, albums []int64, exclude []int64, limit int) ([]int64, error)
	PopularSongIDs(ctx context.Context, limit int, exclude []int64) ([]int64, error)
	PopularPool(ctx context.Context, limit int) ([]db.PoolSong, error)
	FreshPool(ctx context.Context, limit int) ([]db.PoolSong, error)
	ExplorePool(ctx context.Context, limit int) ([]db.PoolSong, error)
}

// Suggester produces model-backed song suggestions for a user. Implemented
// by modelsvc.Client; optional.
type Suggester interface {
	Suggest(ctx context.Context, userID int64, history []int64, limit int) ([]int64, error)
}

// Engine computes song similarity, personalized and cold-start
// recommendations.
type Engine struct {
	catalog   Catalog
	suggester Suggester // nil when no model service is configured
	cache     *Cache
	cacheTTL  time.Duration
	logger    zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSuggester sets the model-backed suggestion source.
func WithSuggester(s Suggester) Option {
	return func(e *Engine) {
		e.suggester = s
	}
}

// WithCache replaces the default recommendation cache.
func WithCache(c *Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithCacheTTL sets how long cached recommendation lists stay valid.
func WithCacheTTL(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.cacheTTL = d
		}
	}
}

// NewEngine creates a recommendation engine over the given catalog gateway.
func NewEngine(catalog Catalog, logger zerolog.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog:  catalog,
		cache:    NewCache(),
		cacheTTL: CacheTTL,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// clampLimit normalizes a requested result size: non-positive values fall
// back to DefaultLimit, oversized values are capped at MaxLimit.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
