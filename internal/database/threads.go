package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"weekly-digest-bot/internal/types"
)

// CreateThread creates a discussion thread and returns its id
func CreateThread(title, classification string) (int64, error) {
	res, err := DB.Exec(`INSERT INTO message_threads (title, classification_id) VALUES (?, ?);`, title, classification)
	if err != nil {
		return 0, fmt.Errorf("failed to create thread: %w", err)
	}

	threadID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted thread id: %w", err)
	}

	log.Printf("Thread created: ID %d, classification: %s", threadID, classification)
	return threadID, nil
}

// GetThreadByID fetches a thread by id, nil when absent
func GetThreadByID(threadID int64) (*types.Thread, error) {
	query := `SELECT thread_id, title, classification_id, created_at, is_active FROM message_threads WHERE thread_id = ?;`

	var t types.Thread
	var title, classification sql.NullString
	err := DB.QueryRow(query, threadID).Scan(&t.ThreadID, &title, &classification, &t.CreatedAt, &t.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get thread %d: %w", threadID, err)
	}
	t.Title = title.String
	t.Classification = classification.String
	return &t, nil
}

// GetActiveThreadsWithMessages fetches active threads joined with their
// message texts from the last N days. Message texts are concatenated by
// the query and split back here, mirroring their insertion order.
func GetActiveThreadsWithMessages(days int) ([]types.ThreadWithMessages, error) {
	query := `
	SELECT
		mt.thread_id,
		mt.title,
		mt.classification_id,
		mt.created_at,
		COUNT(cm.id) AS message_count,
		GROUP_CONCAT(cm.message_text, ' ||| ') AS messages
	FROM message_threads mt
	LEFT JOIN chat_messages cm ON mt.thread_id = cm.thread_id
		AND cm.created_at >= datetime('now', ?)
	WHERE mt.is_active = TRUE
	GROUP BY mt.thread_id
	ORDER BY mt.created_at DESC;`

	rows, err := DB.Query(query, fmt.Sprintf("-%d days", days))
	if err != nil {
		return nil, fmt.Errorf("failed to query threads with messages: %w", err)
	}
	defer rows.Close()

	var threads []types.ThreadWithMessages
	for rows.Next() {
		var t types.ThreadWithMessages
		var title, classification, concatenated sql.NullString
		if err := rows.Scan(&t.ThreadID, &title, &classification, &t.CreatedAt, &t.MessageCount, &concatenated); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		t.Title = title.String
		t.Classification = classification.String
		if concatenated.Valid && concatenated.String != "" {
			t.Messages = strings.Split(concatenated.String, " ||| ")
		}
		threads = append(threads, t)
	}
	return threads, nil
}

// GetThreadByParentMessage resolves the thread a replied-to message belongs to
func GetThreadByParentMessage(parentMessageID int64) (*types.Thread, error) {
	query := `
	SELECT thread_id, classification_id
	FROM chat_messages
	WHERE message_id = ? AND thread_id IS NOT NULL;`

	var t types.Thread
	var classification sql.NullString
	err := DB.QueryRow(query, parentMessageID).Scan(&t.ThreadID, &classification)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get thread by parent %d: %w", parentMessageID, err)
	}
	t.Classification = classification.String
	return &t, nil
}

// UpdateMessageThread attaches a message to a thread and marks it processed.
// threadID 0 clears the thread, an empty classification leaves it untouched.
func UpdateMessageThread(messageID, threadID int64, classification string) (bool, error) {
	var res sql.Result
	var err error
	if classification != "" {
		res, err = DB.Exec(`
		UPDATE chat_messages
		SET thread_id = ?, classification_id = ?, processed = TRUE
		WHERE message_id = ?;`, nullInt64(threadID), classification, messageID)
	} else {
		res, err = DB.Exec(`
		UPDATE chat_messages
		SET thread_id = ?, processed = TRUE
		WHERE message_id = ?;`, nullInt64(threadID), messageID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to update message thread: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}
