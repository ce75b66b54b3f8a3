package recommend

import (
	"context"
	"fmt"

	"github.com/tunebird/tunebird-backend/internal/db"
)

// ForUser computes up to limit personalized song recommendations for a
// user, as bare song ids. Model-service suggestions come first when a
// suggester is configured; any shortfall is filled from the user's
// preference profile and then global popularity. Results are cached per
// user for CacheTTL.
//
// Suggester failures are absorbed: the engine logs them and proceeds with
// the heuristic fallback. Preference-matched songs always precede
// popularity backfill in the result.
func (e *Engine) ForUser(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if userID <= 0 {
		return nil, ErrMissingUserID
	}
	limit = clampLimit(limit)

	if ids, ok := e.cache.Get(userID, limit); ok {
		return ids, nil
	}

	history, err := e.catalog.HistoryProfile(ctx, userID, historyMaxRows)
	if err != nil {
		return nil, fmt.Errorf("loading listening history: %w", err)
	}

	primary := e.modelSuggestions(ctx, userID, history, limit)

	final := primary
	if len(final) < limit {
		fallback, err := e.fallbackSuggestions(ctx, history, final, limit-len(final))
		if err != nil {
			return nil, err
		}
		final = mergeIDs(final, fallback, limit)
	}

	// Brand-new catalog or pathological exclusions: plain popularity.
	if len(final) == 0 {
		final, err = e.catalog.PopularSongIDs(ctx, limit, nil)
		if err != nil {
			return nil, fmt.Errorf("loading popular songs: %w", err)
		}
	}

	e.cache.Put(userID, final, e.cacheTTL)
	return final, nil
}

// modelSuggestions queries the configured suggester and sanitizes its
// output. Returns nil when no suggester is configured or the call fails in
// any way.
func (e *Engine) modelSuggestions(ctx context.Context, userID int64, history []db.HistoryRow, limit int) []int64 {
	if e.suggester == nil {
		return nil
	}

	historyIDs := make([]int64, len(history))
	for i, row := range history {
		historyIDs[i] = row.SongID
	}

	ids, err := e.suggester.Suggest(ctx, userID, historyIDs, limit)
	if err != nil {
		e.logger.Warn().Err(err).Int64("user_id", userID).
			Msg("model service unavailable, using fallback recommendations")
		return nil
	}

	return sanitizeIDs(ids, limit)
}

// fallbackSuggestions builds up to want heuristic suggestions, excluding
// already-selected ids. Users with history get preference-profile matches
// first; global popularity fills whatever remains.
func (e *Engine) fallbackSuggestions(ctx context.Context, history []db.HistoryRow, selected []int64, want int) ([]int64, error) {
	if len(history) == 0 {
		ids, err := e.catalog.PopularSongIDs(ctx, want, selected)
		if err != nil {
			return nil, fmt.Errorf("loading popular songs: %w", err)
		}
		return ids, nil
	}

	profile := buildProfile(history)
	matches, err := e.catalog.SongsMatchingPreference(ctx, profile.Artists, profile.Genres, profile.Albums, selected, want)
	if err != nil {
		return nil, fmt.Errorf("loading preference matches: %w", err)
	}

	if len(matches) < want {
		exclude := append(append([]int64{}, selected...), matches...)
		backfill, err := e.catalog.PopularSongIDs(ctx, want-len(matches), exclude)
		if err != nil {
			return nil, fmt.Errorf("loading popular backfill: %w", err)
		}
		matches = append(matches, backfill...)
	}

	return matches, nil
}

// sanitizeIDs deduplicates model-returned ids, drops non-positive values,
// and truncates to limit, preserving first-seen order.
func sanitizeIDs(ids []int64, limit int) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	var out []int64
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out
}

// mergeIDs appends extra onto base, skipping duplicates and truncating to
// limit, preserving first-seen order.
func mergeIDs(base, extra []int64, limit int) []int64 {
	seen := make(map[int64]struct{}, len(base)+len(extra))
	out := make([]int64, 0, limit)
	for _, id := range base {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == limit {
			return out
		}
	}
	for _, id := range extra {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
		if len(out) == limit {
			break
		}
	}
	return out
}
