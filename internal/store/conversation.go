package store

import (
	"database/sql"
	"time"
)

// UpsertConversation inserts or updates a cached conversation.
func (db *DB) UpsertConversation(c *Conversation) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO conversations (id, participant_id, participant_name, participant_avatar,
			participant_online, participant_last_seen, last_message_text, last_message_at,
			last_message_from_me, unread_count, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			participant_id = excluded.participant_id,
			participant_name = excluded.participant_name,
			participant_avatar = excluded.participant_avatar,
			participant_online = excluded.participant_online,
			participant_last_seen = excluded.participant_last_seen,
			last_message_text = excluded.last_message_text,
			last_message_at = excluded.last_message_at,
			last_message_from_me = excluded.last_message_from_me,
			unread_count = excluded.unread_count,
			updated_at = excluded.updated_at`,
		c.ID, c.ParticipantID, c.ParticipantName, c.ParticipantAvatar,
		c.ParticipantOnline, c.ParticipantLastSeen, c.LastMessageText, c.LastMessageAt,
		c.LastMessageFromMe, c.UnreadCount, now)
	return err
}

// ListConversations returns cached conversations sorted by last message
// timestamp descending.
func (db *DB) ListConversations() ([]Conversation, error) {
	rows, err := db.Query(`
		SELECT id, participant_id, participant_name, participant_avatar,
			participant_online, participant_last_seen, last_message_text,
			last_message_at, last_message_from_me, unread_count
		FROM conversations
		ORDER BY last_message_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []Conversation
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.ParticipantID, &c.ParticipantName, &c.ParticipantAvatar,
			&c.ParticipantOnline, &c.ParticipantLastSeen, &c.LastMessageText,
			&c.LastMessageAt, &c.LastMessageFromMe, &c.UnreadCount); err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// GetConversation returns a single cached conversation, or nil.
func (db *DB) GetConversation(id string) (*Conversation, error) {
	var c Conversation
	err := db.QueryRow(`
		SELECT id, participant_id, participant_name, participant_avatar,
			participant_online, participant_last_seen, last_message_text,
			last_message_at, last_message_from_me, unread_count
		FROM conversations WHERE id = ?`, id).
		Scan(&c.ID, &c.ParticipantID, &c.ParticipantName, &c.ParticipantAvatar,
			&c.ParticipantOnline, &c.ParticipantLastSeen, &c.LastMessageText,
			&c.LastMessageAt, &c.LastMessageFromMe, &c.UnreadCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SetUnreadCount records the unread counter for a conversation.
func (db *DB) SetUnreadCount(id string, count int) error {
	_, err := db.Exec(`UPDATE conversations SET unread_count = ?, updated_at = ? WHERE id = ?`,
		count, time.Now().UnixMilli(), id)
	return err
}

// Clear wipes all cached state. Called on sign-out.
func (db *DB) Clear() error {
	if _, err := db.Exec(`DELETE FROM messages`); err != nil {
		return err
	}
	_, err := db.Exec(`DELETE FROM conversations`)
	return err
}
