package db

import (
	"context"
	"encoding/json"
	"fmt"
)

// Embedding type discriminators as stored in song_embeddings.type.
const (
	embeddingTypeAudio    = "audio"
	embeddingTypeMetadata = "metadata"
)

// parseVector decodes a JSON-serialized embedding vector. Malformed or
// non-array values are treated as an absent vector, never an error.
func parseVector(raw *string) []float64 {
	if raw == nil {
		return nil
	}
	var vec []float64
	if err := json.Unmarshal([]byte(*raw), &vec); err != nil {
		return nil
	}
	return vec
}

// SongEmbeddings retrieves the audio and metadata embedding vectors for one
// song. Either vector may be nil. A song with no stored embeddings at all
// yields an Embeddings value with both vectors nil, not an error.
func (c *Catalog) SongEmbeddings(ctx context.Context, songID int64) (*Embeddings, error) {
	query := `
		SELECT e.type, e.vector
		FROM song_embeddings e
		WHERE e.song_id = $1 AND e.type IN ($2, $3)`

	rows, err := c.pool.Query(ctx, query, songID, embeddingTypeAudio, embeddingTypeMetadata)
	if err != nil {
		return nil, fmt.Errorf("querying song embeddings: %w", err)
	}
	defer rows.Close()

	var emb Embeddings
	for rows.Next() {
		var kind string
		var raw *string
		if err := rows.Scan(&kind, &raw); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		switch kind {
		case embeddingTypeAudio:
			emb.Audio = parseVector(raw)
		case embeddingTypeMetadata:
			emb.Metadata = parseVector(raw)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &emb, nil
}

// CandidateEmbeddings retrieves every eligible song other than excludeSongID
// together with its optional audio and metadata vectors.
func (c *Catalog) CandidateEmbeddings(ctx context.Context, excludeSongID int64) ([]Candidate, error) {
	query := `
		SELECT s.id, s.title, s.artist_id, s.album_id, ea.vector, em.vector
		FROM songs s
		LEFT JOIN song_embeddings ea ON ea.song_id = s.id AND ea.type = $2
		LEFT JOIN song_embeddings em ON em.song_id = s.id AND em.type = $3
		WHERE s.id <> $1 AND ` + eligibleWhere + `
		ORDER BY s.id`

	rows, err := c.pool.Query(ctx, query, excludeSongID, embeddingTypeAudio, embeddingTypeMetadata)
	if err != nil {
		return nil, fmt.Errorf("querying candidate embeddings: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		var cand Candidate
		var rawAudio, rawMeta *string
		if err := rows.Scan(
			&cand.ID,
			&cand.Title,
			&cand.ArtistID,
			&cand.AlbumID,
			&rawAudio,
			&rawMeta,
		); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}
		cand.Audio = parseVector(rawAudio)
		cand.Metadata = parseVector(rawMeta)
		candidates = append(candidates, cand)
	}
	return candidates, rows.Err()
}
