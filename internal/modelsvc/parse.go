package modelsvc

import (
	"encoding/json"
	"strconv"
)

// suggestionPaths are the response keys tried, in order, when extracting the
// suggested song-id list. Model service deployments have shipped several
// response shapes; the first key holding an array wins.
var suggestionPaths = [][]string{
	{"song_ids"},
	{"songs"},
	{"data", "song_ids"},
	{"data"},
}

// extractSongIDs pulls a song-id list out of a model service response body.
// It tries each known extraction path in order and returns the ids from the
// first array found. Returns nil when the body is not JSON, no path holds an
// array, or the array contains no usable ids.
func extractSongIDs(body []byte) []int64 {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}

	for _, path := range suggestionPaths {
		node := doc
		ok := true
		for _, key := range path {
			obj, isObj := node.(map[string]any)
			if !isObj {
				ok = false
				break
			}
			node, isObj = obj[key]
			if !isObj {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		arr, isArr := node.([]any)
		if !isArr {
			continue
		}

		ids := coerceIDs(arr)
		if len(ids) > 0 {
			return ids
		}
	}
	return nil
}

// coerceIDs converts raw JSON array elements to song ids. Numbers and
// numeric strings are accepted; anything else is skipped.
func coerceIDs(arr []any) []int64 {
	var ids []int64
	for _, el := range arr {
		switch v := el.(type) {
		case float64:
			ids = append(ids, int64(v))
		case string:
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
	}
	return ids
}
