package database

import (
	"database/sql"
	"fmt"
	"log"

	"weekly-digest-bot/internal/types"
)

// nullInt64 maps the zero value to SQL NULL
func nullInt64(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// nullString maps the empty string to SQL NULL
func nullString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

// SaveMessage stores a captured message and returns its row id
func SaveMessage(m types.ChatMessage) (int64, error) {
	query := `
	INSERT OR REPLACE INTO chat_messages
	(message_id, topic_id, thread_id, parent_message_id, classification_id, message_text, created_at, processed)
	VALUES (?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP), ?);`

	res, err := DB.Exec(query,
		nullInt64(m.MessageID),
		nullInt64(m.TopicID),
		nullInt64(m.ThreadID),
		nullInt64(m.ParentMessageID),
		nullString(m.Classification),
		m.Text,
		nullString(m.CreatedAt),
		m.Processed,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted row id: %w", err)
	}
	return id, nil
}

// UpdateMessageText replaces the text of a stored message by row id
func UpdateMessageText(rowID int64, newText string) (bool, error) {
	res, err := DB.Exec(`UPDATE chat_messages SET message_text = ? WHERE id = ?;`, newText, rowID)
	if err != nil {
		return false, fmt.Errorf("failed to update message text: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// UpdateTelegramMessageID stores the telegram message id of a published post
func UpdateTelegramMessageID(rowID, telegramMessageID int64) (bool, error) {
	res, err := DB.Exec(`UPDATE chat_messages SET message_id = ? WHERE id = ?;`, telegramMessageID, rowID)
	if err != nil {
		return false, fmt.Errorf("failed to update message_id: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

func scanMessages(rows *sql.Rows) ([]types.ChatMessage, error) {
	var messages []types.ChatMessage
	for rows.Next() {
		var m types.ChatMessage
		var messageID, topicID, threadID, parentID sql.NullInt64
		var classification sql.NullString
		if err := rows.Scan(&m.ID, &messageID, &topicID, &threadID, &parentID, &classification, &m.Text, &m.CreatedAt, &m.Processed); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		m.MessageID = messageID.Int64
		m.TopicID = topicID.Int64
		m.ThreadID = threadID.Int64
		m.ParentMessageID = parentID.Int64
		m.Classification = classification.String
		messages = append(messages, m)
	}
	return messages, nil
}

const messageColumns = `id, message_id, topic_id, thread_id, parent_message_id, classification_id, message_text, created_at, processed`

// GetMessageByRowID fetches a single message by row id, nil when absent
func GetMessageByRowID(rowID int64) (*types.ChatMessage, error) {
	rows, err := DB.Query(`SELECT `+messageColumns+` FROM chat_messages WHERE id = ?;`, rowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query message %d: %w", rowID, err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return &messages[0], nil
}

// GetMessagesForPeriod fetches messages captured within the last N days
func GetMessagesForPeriod(days int) ([]types.ChatMessage, error) {
	query := `
	SELECT ` + messageColumns + ` FROM chat_messages
	WHERE created_at >= datetime('now', ?)
	ORDER BY created_at DESC;`

	rows, err := DB.Query(query, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// GetMessagesByThread fetches all messages attached to a thread
func GetMessagesByThread(threadID int64) ([]types.ChatMessage, error) {
	query := `
	SELECT ` + messageColumns + ` FROM chat_messages
	WHERE thread_id = ?
	ORDER BY created_at ASC;`

	rows, err := DB.Query(query, threadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query thread messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// GetUnprocessedMessages fetches messages awaiting classification
func GetUnprocessedMessages() ([]types.ChatMessage, error) {
	query := `
	SELECT ` + messageColumns + ` FROM chat_messages
	WHERE processed = FALSE
	ORDER BY created_at ASC;`

	rows, err := DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// CleanupOldMessages deletes messages older than the retention window
func CleanupOldMessages(days int) (int64, error) {
	res, err := DB.Exec(`DELETE FROM chat_messages WHERE created_at < datetime('now', ?);`, fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up old messages: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if deleted > 0 {
		log.Printf("Deleted %d old messages", deleted)
	}
	return deleted, nil
}

// GetMessagesPerDay counts captured messages per day over the last N days
func GetMessagesPerDay(days int) ([]types.DayCount, error) {
	query := `
	SELECT date(created_at) AS day, COUNT(*) AS cnt
	FROM chat_messages
	WHERE created_at >= datetime('now', ?)
	GROUP BY day
	ORDER BY day ASC;`

	rows, err := DB.Query(query, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, fmt.Errorf("failed to query messages per day: %w", err)
	}
	defer rows.Close()

	var counts []types.DayCount
	for rows.Next() {
		var dc types.DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts = append(counts, dc)
	}
	return counts, nil
}
