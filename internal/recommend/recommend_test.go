package recommend

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tunebird/tunebird-backend/internal/db"
)

// fakeCatalog implements Catalog in memory and counts queries per method.
// The pool queries run concurrently, so shared state is mutex-guarded.
type fakeCatalog struct {
	mu sync.Mutex

	songs      map[int64]*db.Song
	embeddings map[int64]*db.Embeddings
	candidates []db.Candidate
	history    map[int64][]db.HistoryRow

	// prefMatches is returned from SongsMatchingPreference after exclude
	// filtering and truncation.
	prefMatches []int64

	// popular is the global popularity order; PopularSongIDs applies
	// exclude filtering and truncation over it.
	popular []int64

	popularPool []db.PoolSong
	freshPool   []db.PoolSong
	explorePool []db.PoolSong

	// lastPoolLimit captures the limit passed to the most recent pool query.
	lastPoolLimit int

	calls map[string]int

	// lastPrefArtists etc. capture the most recent preference query.
	lastPrefArtists []int64
	lastPrefGenres  []string
	lastPrefAlbums  []int64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		songs:      make(map[int64]*db.Song),
		embeddings: make(map[int64]*db.Embeddings),
		history:    make(map[int64][]db.HistoryRow),
		calls:      make(map[string]int),
	}
}

func (f *fakeCatalog) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

func (f *fakeCatalog) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeCatalog) Song(_ context.Context, id int64) (*db.Song, error) {
	f.record("Song")
	song, ok := f.songs[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return song, nil
}

func (f *fakeCatalog) SongEmbeddings(_ context.Context, songID int64) (*db.Embeddings, error) {
	f.record("SongEmbeddings")
	if emb, ok := f.embeddings[songID]; ok {
		return emb, nil
	}
	return &db.Embeddings{}, nil
}

func (f *fakeCatalog) CandidateEmbeddings(_ context.Context, excludeSongID int64) ([]db.Candidate, error) {
	f.record("CandidateEmbeddings")
	var out []db.Candidate
	for _, c := range f.candidates {
		if c.ID != excludeSongID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalog) HistoryProfile(_ context.Context, userID int64, maxRows int) ([]db.HistoryRow, error) {
	f.record("HistoryProfile")
	rows := f.history[userID]
	if len(rows) > maxRows {
		rows = rows[:maxRows]
	}
	return rows, nil
}

func (f *fakeCatalog) SongsMatchingPreference(_ context.Context, artists []int64, genres []string, albums []int64, exclude []int64, limit int) ([]int64, error) {
	f.record("SongsMatchingPreference")
	f.lastPrefArtists = artists
	f.lastPrefGenres = genres
	f.lastPrefAlbums = albums
	return filterIDs(f.prefMatches, exclude, limit), nil
}

func (f *fakeCatalog) PopularSongIDs(_ context.Context, limit int, exclude []int64) ([]int64, error) {
	f.record("PopularSongIDs")
	return filterIDs(f.popular, exclude, limit), nil
}

func (f *fakeCatalog) pool(method string, songs []db.PoolSong, limit int) []db.PoolSong {
	f.mu.Lock()
	f.calls[method]++
	f.lastPoolLimit = limit
	f.mu.Unlock()
	return truncatePool(songs, limit)
}

func (f *fakeCatalog) PopularPool(_ context.Context, limit int) ([]db.PoolSong, error) {
	return f.pool("PopularPool", f.popularPool, limit), nil
}

func (f *fakeCatalog) FreshPool(_ context.Context, limit int) ([]db.PoolSong, error) {
	return f.pool("FreshPool", f.freshPool, limit), nil
}

func (f *fakeCatalog) ExplorePool(_ context.Context, limit int) ([]db.PoolSong, error) {
	return f.pool("ExplorePool", f.explorePool, limit), nil
}

func filterIDs(ids, exclude []int64, limit int) []int64 {
	excluded := make(map[int64]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	var out []int64
	for _, id := range ids {
		if _, ok := excluded[id]; ok {
			continue
		}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out
}

func truncatePool(pool []db.PoolSong, limit int) []db.PoolSong {
	if len(pool) > limit {
		return pool[:limit]
	}
	return pool
}

// fakeSuggester implements Suggester with canned output.
type fakeSuggester struct {
	ids   []int64
	err   error
	calls int
}

func (f *fakeSuggester) Suggest(_ context.Context, _ int64, _ []int64, _ int) ([]int64, error) {
	f.calls++
	return f.ids, f.err
}

func newTestEngine(catalog Catalog, opts ...Option) *Engine {
	return NewEngine(catalog, zerolog.Nop(), opts...)
}

func int64Ptr(v int64) *int64 { return &v }
