package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// eligibleWhere is the shared eligibility predicate applied to every catalog
// query. A song is eligible when it is approved, not soft-deleted, and has a
// release date in the past.
const eligibleWhere = `s.status = 'approved' AND s.is_deleted = FALSE
		AND s.release_date IS NOT NULL AND s.release_date <= NOW()`

// Catalog is the read-only query gateway over the music catalog.
type Catalog struct {
	pool *pgxpool.Pool
}

// Song retrieves an eligible song by ID, joined with its artist name.
// Returns ErrNotFound if the song is absent, soft-deleted or unapproved.
func (c *Catalog) Song(ctx context.Context, id int64) (*Song, error) {
	query := `
		SELECT s.id, s.title, s.artist_id, a.name, s.album_id, s.cover_url,
			s.play_count, s.release_date
		FROM songs s
		LEFT JOIN artists a ON a.id = s.artist_id
		WHERE s.id = $1 AND ` + eligibleWhere

	var song Song
	err := c.pool.QueryRow(ctx, query, id).Scan(
		&song.ID,
		&song.Title,
		&song.ArtistID,
		&song.ArtistName,
		&song.AlbumID,
		&song.CoverURL,
		&song.PlayCount,
		&song.ReleaseDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying song: %w", err)
	}
	return &song, nil
}

// PopularSongIDs returns the globally most-played eligible song IDs,
// excluding any IDs in exclude.
func (c *Catalog) PopularSongIDs(ctx context.Context, limit int, exclude []int64) ([]int64, error) {
	if exclude == nil {
		exclude = []int64{}
	}
	query := `
		SELECT s.id
		FROM songs s
		WHERE NOT (s.id = ANY($1)) AND ` + eligibleWhere + `
		ORDER BY s.play_count DESC, s.id
		LIMIT $2`

	rows, err := c.pool.Query(ctx, query, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("querying popular songs: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning song id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SongsMatchingPreference returns eligible song IDs matching any of the
// given artists, genres or albums, excluding IDs in exclude. Results are
// ordered by a weighted match score (artist matches count double), ties
// broken by global play count.
func (c *Catalog) SongsMatchingPreference(ctx context.Context, artists []int64, genres []string, albums []int64, exclude []int64, limit int) ([]int64, error) {
	if artists == nil {
		artists = []int64{}
	}
	if genres == nil {
		genres = []string{}
	}
	if albums == nil {
		albums = []int64{}
	}
	if exclude == nil {
		exclude = []int64{}
	}

	query := `
		SELECT s.id
		FROM songs s
		WHERE NOT (s.id = ANY($4)) AND ` + eligibleWhere + `
			AND (s.artist_id = ANY($1)
				OR s.album_id = ANY($3)
				OR EXISTS (
					SELECT 1 FROM song_genres sg
					JOIN genres g ON g.id = sg.genre_id
					WHERE sg.song_id = s.id AND g.name = ANY($2)
				))
		ORDER BY (
			CASE WHEN s.artist_id = ANY($1) THEN 2 ELSE 0 END
			+ CASE WHEN EXISTS (
				SELECT 1 FROM song_genres sg
				JOIN genres g ON g.id = sg.genre_id
				WHERE sg.song_id = s.id AND g.name = ANY($2)
			) THEN 1 ELSE 0 END
			+ CASE WHEN s.album_id = ANY($3) THEN 1 ELSE 0 END
		) DESC, s.play_count DESC, s.id
		LIMIT $5`

	rows, err := c.pool.Query(ctx, query, artists, genres, albums, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("querying preference matches: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning song id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// poolQuery runs one cold-start pool query with the given ORDER BY clause.
func (c *Catalog) poolQuery(ctx context.Context, orderBy string, limit int) ([]PoolSong, error) {
	query := `
		SELECT s.id, s.title, s.artist_id, a.name, s.cover_url, s.play_count,
			s.release_date
		FROM songs s
		LEFT JOIN artists a ON a.id = s.artist_id
		WHERE ` + eligibleWhere + `
		ORDER BY ` + orderBy + `
		LIMIT $1`

	rows, err := c.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying pool: %w", err)
	}
	defer rows.Close()

	var songs []PoolSong
	for rows.Next() {
		var s PoolSong
		if err := rows.Scan(
			&s.SongID,
			&s.Title,
			&s.ArtistID,
			&s.ArtistName,
			&s.CoverURL,
			&s.PlayCount,
			&s.ReleaseDate,
		); err != nil {
			return nil, fmt.Errorf("scanning pool song: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

// PopularPool returns the most-played eligible songs, newest first on ties.
func (c *Catalog) PopularPool(ctx context.Context, limit int) ([]PoolSong, error) {
	return c.poolQuery(ctx, "s.play_count DESC, s.release_date DESC", limit)
}

// FreshPool returns the most recently released eligible songs, most played
// first on ties.
func (c *Catalog) FreshPool(ctx context.Context, limit int) ([]PoolSong, error) {
	return c.poolQuery(ctx, "s.release_date DESC, s.play_count DESC", limit)
}

// ExplorePool returns a uniformly random sample of eligible songs.
func (c *Catalog) ExplorePool(ctx context.Context, limit int) ([]PoolSong, error) {
	return c.poolQuery(ctx, "random()", limit)
}
