package store

import "time"

// UpsertMessage inserts or updates a message (idempotent on
// conversation_id + id).
func (db *DB) UpsertMessage(m *Message) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO messages (id, conversation_id, sender_id, sender_name, body, from_me, status, timestamp, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(conversation_id, id) DO UPDATE SET
			sender_name = excluded.sender_name,
			body = excluded.body,
			status = excluded.status`,
		m.ID, m.ConversationID, m.SenderID, m.SenderName, m.Body, m.FromMe, m.Status, m.Timestamp, now)
	return err
}

// ReplaceMessages swaps the cached sequence for a conversation with a
// freshly fetched one.
func (db *DB) ReplaceMessages(conversationID string, msgs []Message) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, conversationID); err != nil {
		return err
	}
	now := time.Now().UnixMilli()
	for _, m := range msgs {
		if _, err := tx.Exec(`
			INSERT INTO messages (id, conversation_id, sender_id, sender_name, body, from_me, status, timestamp, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, conversationID, m.SenderID, m.SenderName, m.Body, m.FromMe, m.Status, m.Timestamp, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListMessages returns the cached messages of a conversation in
// chronological order.
func (db *DB) ListMessages(conversationID string) ([]Message, error) {
	rows, err := db.Query(`
		SELECT rowid, id, conversation_id, sender_id, sender_name, body, from_me, status, timestamp
		FROM messages
		WHERE conversation_id = ?
		ORDER BY timestamp ASC, rowid ASC`, conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.RowID, &m.ID, &m.ConversationID, &m.SenderID, &m.SenderName,
			&m.Body, &m.FromMe, &m.Status, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// SetMessageStatus records a status change for a cached message.
func (db *DB) SetMessageStatus(conversationID, id, status string) error {
	_, err := db.Exec(`UPDATE messages SET status = ? WHERE conversation_id = ? AND id = ?`,
		status, conversationID, id)
	return err
}

// RenameMessage adopts the server-assigned id for an optimistic
// message after the send is acknowledged.
func (db *DB) RenameMessage(conversationID, oldID, newID string) error {
	_, err := db.Exec(`UPDATE messages SET id = ? WHERE conversation_id = ? AND id = ?`,
		newID, conversationID, oldID)
	return err
}
