package recommend

import (
	"sort"

	"github.com/tunebird/tunebird-backend/internal/db"
)

// topPreferences is how many favored artists, genres and albums make up a
// user's preference profile.
const topPreferences = 5

// preferenceProfile is a user's favored artists, genres and albums ranked
// by summed listening weight.
type preferenceProfile struct {
	Artists []int64
	Genres  []string
	Albums  []int64
}

// buildProfile derives a preference profile from listening history rows.
// Each entity is weighted by the total play count of the user's history
// songs it appears on; the top five per category are kept. Ties break on
// the entity itself so repeated calls rank identically.
func buildProfile(history []db.HistoryRow) preferenceProfile {
	artistWeights := make(map[int64]int64)
	genreWeights := make(map[string]int64)
	albumWeights := make(map[int64]int64)

	for _, row := range history {
		if row.ArtistID != nil {
			artistWeights[*row.ArtistID] += row.Weight
		}
		if row.AlbumID != nil {
			albumWeights[*row.AlbumID] += row.Weight
		}
		for _, genre := range row.Genres {
			if genre != "" {
				genreWeights[genre] += row.Weight
			}
		}
	}

	return preferenceProfile{
		Artists: topIDs(artistWeights),
		Genres:  topStrings(genreWeights),
		Albums:  topIDs(albumWeights),
	}
}

func topIDs(weights map[int64]int64) []int64 {
	ids := make([]int64, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if weights[ids[i]] != weights[ids[j]] {
			return weights[ids[i]] > weights[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > topPreferences {
		ids = ids[:topPreferences]
	}
	return ids
}

func topStrings(weights map[string]int64) []string {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if weights[names[i]] != weights[names[j]] {
			return weights[names[i]] > weights[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > topPreferences {
		names = names[:topPreferences]
	}
	return names
}
