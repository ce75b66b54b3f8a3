package taste

import (
	"context"
	"errors"
	"fmt"

	"github.com/tunebird/tunebird-backend/internal/db"
)

// ErrMissingUserID is returned when a user identifier is absent.
var ErrMissingUserID = errors.New("missing user id")

// historyMaxRows bounds how much listening history feeds the clustering.
const historyMaxRows = 100

// HistorySource loads a user's listening history with embedding vectors.
// Implemented by db.Catalog.
type HistorySource interface {
	HistoryTracksWithVectors(ctx context.Context, userID int64, maxRows int) ([]db.HistoryTrack, error)
}

// Service computes taste profiles from listening history.
type Service struct {
	source HistorySource
	cfg    Config
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the clustering parameters.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// NewService creates a taste profile service.
func NewService(source HistorySource, opts ...Option) *Service {
	s := &Service{
		source: source,
		cfg:    DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProfileResult is the outcome of taste profiling for one user.
type ProfileResult struct {
	Clusters     []Cluster
	OutlierCount int
	TotalTracks  int
}

// Profile clusters a user's listening history into taste groups. A user
// with no history gets an empty result, not an error.
func (s *Service) Profile(ctx context.Context, userID int64) (*ProfileResult, error) {
	if userID <= 0 {
		return nil, ErrMissingUserID
	}

	tracks, err := s.source.HistoryTracksWithVectors(ctx, userID, historyMaxRows)
	if err != nil {
		return nil, fmt.Errorf("loading history tracks: %w", err)
	}

	clusterTracks := make([]Track, len(tracks))
	for i, t := range tracks {
		clusterTracks[i] = Track{
			SongID: t.SongID,
			Title:  t.Title,
			Genres: t.Genres,
			Vector: t.Vector,
		}
	}

	clusters, outliers := BuildClusters(clusterTracks, s.cfg)
	return &ProfileResult{
		Clusters:     clusters,
		OutlierCount: len(outliers),
		TotalTracks:  len(tracks),
	}, nil
}
