package db

import "time"

// Song represents a catalog song eligible for recommendation.
type Song struct {
	ID          int64
	Title       string
	ArtistID    *int64  // nullable
	ArtistName  *string // nullable, joined from artists
	AlbumID     *int64  // nullable
	CoverURL    *string // nullable
	PlayCount   int64
	ReleaseDate *time.Time // nullable
}

// Embeddings holds the stored embedding vectors for one song.
// Either vector may be nil when the song has no embedding of that type or
// the stored value could not be parsed.
type Embeddings struct {
	Audio    []float64
	Metadata []float64
}

// Candidate is a catalog song with its optional embedding vectors, used as
// a similarity-ranking candidate against a seed song.
type Candidate struct {
	ID       int64
	Title    string
	ArtistID *int64 // nullable
	AlbumID  *int64 // nullable
	Audio    []float64
	Metadata []float64
}

// HistoryRow is one aggregated (user, song) listening interaction joined
// with the song's artist, album and genres.
type HistoryRow struct {
	SongID   int64
	ArtistID *int64 // nullable
	AlbumID  *int64 // nullable
	Genres   []string
	Weight   int64 // summed play count for this user and song
}

// PoolSong is a candidate row from one of the cold-start pools.
type PoolSong struct {
	SongID      int64
	Title       string
	ArtistID    *int64  // nullable
	ArtistName  *string // nullable
	CoverURL    *string // nullable
	PlayCount   int64
	ReleaseDate *time.Time // nullable
}

// HistoryTrack is a listening-history song with its audio embedding vector
// and genres, used for taste clustering.
type HistoryTrack struct {
	SongID int64
	Title  string
	Genres []string
	Vector []float64 // nil when no audio embedding is stored
}
