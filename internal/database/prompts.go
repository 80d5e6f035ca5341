package database

import (
	"database/sql"
	"fmt"
	"log"
)

// GetPrompt fetches the stored prompt of the given type, empty when unset
func GetPrompt(promptType string) (string, error) {
	var text string
	err := DB.QueryRow(`SELECT text FROM prompts WHERE type = ? ORDER BY rowid LIMIT 1;`, promptType).Scan(&text)
	if err == sql.ErrNoRows {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("failed to get prompt %q: %w", promptType, err)
	}
	return text, nil
}

// UpdatePrompt creates or replaces the prompt of the given type
func UpdatePrompt(promptType, promptText string) error {
	var one int
	err := DB.QueryRow(`SELECT 1 FROM prompts WHERE type = ? LIMIT 1;`, promptType).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		if _, err := DB.Exec(`INSERT INTO prompts (type, text) VALUES (?, ?);`, promptType, promptText); err != nil {
			return fmt.Errorf("failed to insert prompt %q: %w", promptType, err)
		}
		log.Printf("Prompt %q created", promptType)
	case err != nil:
		return fmt.Errorf("failed to check prompt %q: %w", promptType, err)
	default:
		if _, err := DB.Exec(`UPDATE prompts SET text = ? WHERE type = ?;`, promptText, promptType); err != nil {
			return fmt.Errorf("failed to update prompt %q: %w", promptType, err)
		}
		log.Printf("Prompt %q updated", promptType)
	}
	return nil
}
