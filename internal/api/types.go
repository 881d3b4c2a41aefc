package api

import "time"

// User is the authenticated identity returned by the auth endpoints.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Onboarded bool   `json:"onboardingCompleted"`
	Token     string `json:"token"`
}

// Profile is a user's full profile.
type Profile struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Bio          string   `json:"bio"`
	Location     string   `json:"location"`
	Occupation   string   `json:"occupation"`
	Education    string   `json:"education"`
	Interests    []string `json:"interests"`
	ProfileImage string   `json:"profileImage"`
	CoverImage   string   `json:"coverImage"`
}

// ProfilePatch is a partial profile update; nil fields are untouched.
type ProfilePatch struct {
	Name       *string   `json:"name,omitempty"`
	Bio        *string   `json:"bio,omitempty"`
	Location   *string   `json:"location,omitempty"`
	Occupation *string   `json:"occupation,omitempty"`
	Education  *string   `json:"education,omitempty"`
	Interests  *[]string `json:"interests,omitempty"`
}

// OnboardingPayload is the aggregated result of the onboarding flow.
type OnboardingPayload struct {
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Location   string   `json:"location"`
	Occupation string   `json:"occupation"`
	Bio        string   `json:"bio"`
	Interests  []string `json:"interests"`
	PhotoPath  string   `json:"photoPath"`
}

// Match is a candidate connection shown on the dashboard.
type Match struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Avatar            string `json:"avatar"`
	Title             string `json:"title"`
	MutualConnections int    `json:"mutualConnections"`
	IsConnected       bool   `json:"isConnected"`
}

// Event is a community event shown on the dashboard.
type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Date          time.Time `json:"date"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	Tags          []string  `json:"tags"`
	AttendeeCount int       `json:"attendeeCount"`
	IsRegistered  bool      `json:"isRegistered"`
}

// Participant describes the other side of a conversation.
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	IsOnline bool      `json:"isOnline"`
	LastSeen time.Time `json:"lastSeen"`
}

// LastMessage is the list-preview summary of a conversation.
type LastMessage struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	FromMe    bool      `json:"fromMe"`
}

// Conversation is the list shape: participant plus preview, without
// full message bodies.
type Conversation struct {
	ID          string       `json:"id"`
	Participant Participant  `json:"participant"`
	LastMessage *LastMessage `json:"lastMessage"`
	UnreadCount int          `json:"unreadCount"`
}

// Message is the wire shape of a single conversation message.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	Status         string    `json:"status"`
}
