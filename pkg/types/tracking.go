package types

// FilterApplied is published after every evaluation of a session's filters.
type FilterApplied struct {
	SessionId string `json:"session_id"`
	Query     string `json:"query"`
	Visible   int    `json:"visible"`
	Total     int    `json:"total"`
	Time      int64  `json:"ts"`
}

type Tracking interface {
	TrackFilterApplied(event FilterApplied)
	Close() error
}
