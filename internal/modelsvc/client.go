package modelsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "tunebird-backend/1.0"

// requestTimeout bounds a single suggestion call so a hung model service
// cannot stall a recommendation request indefinitely.
const requestTimeout = 5 * time.Second

// Client is an embedding model service client. Failures from the model
// service are returned as errors; callers are expected to absorb them and
// fall back to heuristic recommendations (single attempt, no retry).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new model service client from the provided configuration.
func NewClient(cfg *Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Suggest asks the model service for up to limit song suggestions for a user,
// given the user's historical song ids. Returns nil with no error when the
// service responds successfully but its body holds no usable id list.
func (c *Client) Suggest(ctx context.Context, userID int64, history []int64, limit int) ([]int64, error) {
	if history == nil {
		history = []int64{}
	}

	payload, err := json.Marshal(suggestRequest{
		UserID:  userID,
		History: history,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding suggestion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommend", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("model service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return extractSongIDs(body), nil
}
