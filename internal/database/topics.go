package database

import (
	"database/sql"
	"fmt"
	"log"

	"weekly-digest-bot/internal/types"
)

// AddSourceTopic registers a forum topic for message capture
func AddSourceTopic(topicID int64, topicName string) error {
	query := `INSERT OR REPLACE INTO source_topics (topic_id, topic_name) VALUES (?, ?);`

	_, err := DB.Exec(query, topicID, topicName)
	if err != nil {
		return fmt.Errorf("failed to add source topic: %w", err)
	}

	log.Printf("Source topic added: ID %d, name: %s", topicID, topicName)
	return nil
}

// RemoveSourceTopic unregisters a forum topic
func RemoveSourceTopic(topicID int64) (bool, error) {
	res, err := DB.Exec(`DELETE FROM source_topics WHERE topic_id = ?;`, topicID)
	if err != nil {
		return false, fmt.Errorf("failed to remove source topic: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// GetSourceTopics fetches all registered source topics
func GetSourceTopics() ([]types.SourceTopic, error) {
	query := `SELECT topic_id, topic_name, created_at FROM source_topics ORDER BY topic_id;`

	rows, err := DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query source topics: %w", err)
	}
	defer rows.Close()

	var topics []types.SourceTopic
	for rows.Next() {
		var t types.SourceTopic
		var name sql.NullString
		if err := rows.Scan(&t.TopicID, &name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		t.TopicName = name.String
		topics = append(topics, t)
	}

	return topics, nil
}

// IsSourceTopic reports whether a topic is registered for capture
func IsSourceTopic(topicID int64) (bool, error) {
	var one int
	err := DB.QueryRow(`SELECT 1 FROM source_topics WHERE topic_id = ?;`, topicID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("failed to check source topic %d: %w", topicID, err)
	}
	return true, nil
}

// GetSourceTopicName returns the stored name of a source topic, empty when unknown
func GetSourceTopicName(topicID int64) (string, error) {
	var name sql.NullString
	err := DB.QueryRow(`SELECT topic_name FROM source_topics WHERE topic_id = ?;`, topicID).Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to get source topic %d: %w", topicID, err)
	}
	return name.String, nil
}

// SetSystemTopic sets the target topic for a topic type (conductor or announcements)
func SetSystemTopic(topicType string, topicID int64, topicName string) error {
	query := `
	INSERT OR REPLACE INTO system_topics (topic_type, topic_id, topic_name, updated_at)
	VALUES (?, ?, ?, CURRENT_TIMESTAMP);`

	_, err := DB.Exec(query, topicType, topicID, topicName)
	if err != nil {
		return fmt.Errorf("failed to set system topic: %w", err)
	}

	log.Printf("System topic set: %s -> ID %d", topicType, topicID)
	return nil
}

// GetSystemTopic fetches the system topic of the given type, nil when unset
func GetSystemTopic(topicType string) (*types.SystemTopic, error) {
	query := `SELECT topic_type, topic_id, topic_name FROM system_topics WHERE topic_type = ?;`

	var t types.SystemTopic
	var name sql.NullString
	err := DB.QueryRow(query, topicType).Scan(&t.TopicType, &t.TopicID, &name)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to get system topic %s: %w", topicType, err)
	}
	t.TopicName = name.String
	return &t, nil
}
