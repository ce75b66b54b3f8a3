package db

import (
	"context"
	"fmt"
)

// HistoryProfile retrieves up to maxRows of the user's most-played eligible
// songs, each joined with its artist, album and genre names. Rows feed the
// user's preference profile and are never returned to clients directly.
func (c *Catalog) HistoryProfile(ctx context.Context, userID int64, maxRows int) ([]HistoryRow, error) {
	// One history row per (user, song), but the genre join multiplies it by
	// the song's genre count, so MAX recovers the play count where SUM would
	// inflate it.
	query := `
		SELECT s.id, s.artist_id, s.album_id,
			COALESCE(array_agg(DISTINCT g.name) FILTER (WHERE g.name IS NOT NULL), '{}'),
			MAX(h.play_count) AS weight
		FROM listening_history h
		JOIN songs s ON s.id = h.song_id
		LEFT JOIN song_genres sg ON sg.song_id = s.id
		LEFT JOIN genres g ON g.id = sg.genre_id
		WHERE h.user_id = $1 AND ` + eligibleWhere + `
		GROUP BY s.id, s.artist_id, s.album_id
		ORDER BY weight DESC, s.id
		LIMIT $2`

	rows, err := c.pool.Query(ctx, query, userID, maxRows)
	if err != nil {
		return nil, fmt.Errorf("querying listening history: %w", err)
	}
	defer rows.Close()

	var history []HistoryRow
	for rows.Next() {
		var row HistoryRow
		if err := rows.Scan(
			&row.SongID,
			&row.ArtistID,
			&row.AlbumID,
			&row.Genres,
			&row.Weight,
		); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		history = append(history, row)
	}
	return history, rows.Err()
}

// HistoryTracksWithVectors retrieves up to maxRows of the user's most-played
// eligible songs together with their audio embedding vectors and genres, for
// taste clustering. Songs without a stored audio embedding come back with a
// nil vector.
func (c *Catalog) HistoryTracksWithVectors(ctx context.Context, userID int64, maxRows int) ([]HistoryTrack, error) {
	query := `
		SELECT s.id, s.title,
			COALESCE(array_agg(DISTINCT g.name) FILTER (WHERE g.name IS NOT NULL), '{}'),
			MAX(e.vector) AS vector,
			MAX(h.play_count) AS weight
		FROM listening_history h
		JOIN songs s ON s.id = h.song_id
		LEFT JOIN song_embeddings e ON e.song_id = s.id AND e.type = $3
		LEFT JOIN song_genres sg ON sg.song_id = s.id
		LEFT JOIN genres g ON g.id = sg.genre_id
		WHERE h.user_id = $1 AND ` + eligibleWhere + `
		GROUP BY s.id, s.title
		ORDER BY weight DESC, s.id
		LIMIT $2`

	rows, err := c.pool.Query(ctx, query, userID, maxRows, embeddingTypeAudio)
	if err != nil {
		return nil, fmt.Errorf("querying history vectors: %w", err)
	}
	defer rows.Close()

	var tracks []HistoryTrack
	for rows.Next() {
		var track HistoryTrack
		var raw *string
		var weight int64
		if err := rows.Scan(
			&track.SongID,
			&track.Title,
			&track.Genres,
			&raw,
			&weight,
		); err != nil {
			return nil, fmt.Errorf("scanning history track: %w", err)
		}
		track.Vector = parseVector(raw)
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}
