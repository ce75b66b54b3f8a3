package modelsvc

// suggestRequest is the JSON body sent to POST {base}/recommend.
type suggestRequest struct {
	UserID  int64   `json:"user_id"`
	History []int64 `json:"history"`
	Limit   int     `json:"limit"`
}
