package database

import (
	"fmt"
)

// GetAllModels fetches the configured AI model pool, keyed by short name
func GetAllModels() (map[string]string, error) {
	rows, err := DB.Query(`SELECT name, model_path FROM ai_models;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ai models: %w", err)
	}
	defer rows.Close()

	models := make(map[string]string)
	for rows.Next() {
		var name, path string
		if err := rows.Scan(&name, &path); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		models[name] = path
	}
	return models, nil
}

// AddModel registers an AI model; returns false when the name is taken
func AddModel(name, modelPath string) (bool, error) {
	_, err := DB.Exec(`INSERT INTO ai_models (name, model_path) VALUES (?, ?);`, name, modelPath)
	if err != nil {
		// UNIQUE violation means the model already exists
		var one int
		if scanErr := DB.QueryRow(`SELECT 1 FROM ai_models WHERE name = ?;`, name).Scan(&one); scanErr == nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to add ai model: %w", err)
	}
	return true, nil
}

// RemoveModel deletes an AI model; returns false when it was not found
func RemoveModel(name string) (bool, error) {
	res, err := DB.Exec(`DELETE FROM ai_models WHERE name = ?;`, name)
	if err != nil {
		return false, fmt.Errorf("failed to remove ai model: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}
