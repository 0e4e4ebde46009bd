package models

// Session represents one independent conversation thread. The ID is the
// creation time in unix milliseconds, which keeps ids unique and monotonic.
type Session struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Message is a single entry in a session's transcript.
type Message struct {
	Text   string `json:"text"`
	IsUser bool   `json:"isUser"`
}
