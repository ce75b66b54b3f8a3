// Package taste groups a user's listening history into taste clusters using
// k-means over stored audio-embedding vectors.
package taste

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// Config holds taste clustering parameters.
type Config struct {
	NumClusters    int // Number of clusters to create (default: 3)
	MinClusterSize int // Minimum tracks per cluster (smaller clusters become outliers)
}

// DefaultConfig returns the recommended default configuration.
func DefaultConfig() Config {
	return Config{
		NumClusters:    3,
		MinClusterSize: 2,
	}
}

// Track is a history song with its audio embedding vector and genre labels.
type Track struct {
	SongID int64
	Title  string
	Genres []string
	Vector []float64 // nil when no audio embedding is stored
}

// Cluster is one detected taste group.
type Cluster struct {
	ID        uuid.UUID
	Name      string   // Derived from the dominant genres of member tracks
	TopGenres []string // Up to three genres, most common first
	SongIDs   []int64
	Size      int
	Centroid  []float64
}

// trackObservation wraps a Track to implement clusters.Observation.
type trackObservation struct {
	track  *Track
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// BuildClusters groups tracks by audio-embedding proximity. Returns the
// detected clusters and the tracks that did not fit any cluster. Tracks
// without a vector, and all tracks when fewer remain than the cluster
// count, are outliers. Vectors must share one dimensionality; tracks with a
// deviant dimension are treated as vectorless.
func BuildClusters(tracks []Track, cfg Config) ([]Cluster, []Track) {
	if len(tracks) == 0 {
		return nil, nil
	}

	if cfg.NumClusters <= 0 {
		cfg.NumClusters = DefaultConfig().NumClusters
	}

	dim := dominantDimension(tracks)

	var validTracks []*Track
	var outliers []Track
	for i := range tracks {
		t := &tracks[i]
		if len(t.Vector) == dim && dim > 0 {
			validTracks = append(validTracks, t)
		} else {
			outliers = append(outliers, *t)
		}
	}

	if len(validTracks) < cfg.NumClusters {
		for _, t := range validTracks {
			outliers = append(outliers, *t)
		}
		return nil, outliers
	}

	var obs clusters.Observations
	for _, t := range validTracks {
		obs = append(obs, trackObservation{
			track:  t,
			coords: clusters.Coordinates(t.Vector),
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumClusters)
	if err != nil {
		// Degrade to no clusters rather than failing the request.
		for _, t := range validTracks {
			outliers = append(outliers, *t)
		}
		return nil, outliers
	}

	var out []Cluster
	for _, cluster := range result {
		var members []*Track
		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				members = append(members, to.track)
			}
		}

		if len(members) < cfg.MinClusterSize {
			for _, t := range members {
				outliers = append(outliers, *t)
			}
			continue
		}

		sort.Slice(members, func(i, j int) bool {
			return members[i].SongID < members[j].SongID
		})

		songIDs := make([]int64, len(members))
		for i, t := range members {
			songIDs[i] = t.SongID
		}

		topGenres := dominantGenres(members)
		out = append(out, Cluster{
			ID:        uuid.New(),
			Name:      clusterName(topGenres),
			TopGenres: topGenres,
			SongIDs:   songIDs,
			Size:      len(members),
			Centroid:  []float64(cluster.Center),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Size > out[j].Size
	})

	return out, outliers
}

// dominantDimension returns the most common vector length among tracks that
// have one.
func dominantDimension(tracks []Track) int {
	counts := make(map[int]int)
	for _, t := range tracks {
		if len(t.Vector) > 0 {
			counts[len(t.Vector)]++
		}
	}
	best, bestCount := 0, 0
	for dim, n := range counts {
		if n > bestCount || (n == bestCount && dim > best) {
			best, bestCount = dim, n
		}
	}
	return best
}

// dominantGenres returns up to three genres most common among the member
// tracks, ties broken alphabetically.
func dominantGenres(members []*Track) []string {
	counts := make(map[string]int)
	for _, t := range members {
		for _, g := range t.Genres {
			if g != "" {
				counts[g]++
			}
		}
	}

	genres := make([]string, 0, len(counts))
	for g := range counts {
		genres = append(genres, g)
	}
	sort.Slice(genres, func(i, j int) bool {
		if counts[genres[i]] != counts[genres[j]] {
			return counts[genres[i]] > counts[genres[j]]
		}
		return genres[i] < genres[j]
	})

	if len(genres) > 3 {
		genres = genres[:3]
	}
	return genres
}

// clusterName builds a display name from the dominant genres.
func clusterName(topGenres []string) string {
	if len(topGenres) == 0 {
		return "Mixed"
	}
	return strings.Join(topGenres, " / ")
}
