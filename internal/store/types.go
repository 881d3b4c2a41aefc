package store

// Conversation is a cached conversation list row.
type Conversation struct {
	ID                  string
	ParticipantID       string
	ParticipantName     string
	ParticipantAvatar   string
	ParticipantOnline   bool
	ParticipantLastSeen int64
	LastMessageText     string
	LastMessageAt       int64
	LastMessageFromMe   bool
	UnreadCount         int
}

// Message is a cached message row.
type Message struct {
	RowID          int64
	ID             string
	ConversationID string
	SenderID       string
	SenderName     string
	Body           string
	FromMe         bool
	Status         string
	Timestamp      int64
}

// SearchResult holds a message with a search snippet.
type SearchResult struct {
	Message Message
	Snippet string
}
