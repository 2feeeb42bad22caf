package chat

// Result is the immutable outcome of one chat turn.
type Result struct {
	Answer    string   `json:"answer"`
	Language  string   `json:"language"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"session_id"`
}
