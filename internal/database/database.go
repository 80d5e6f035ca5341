package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	var err error
	DB, err = sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	createSourceTopics := `
	CREATE TABLE IF NOT EXISTS source_topics (
		topic_id INTEGER PRIMARY KEY UNIQUE NOT NULL,
		topic_name TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err = DB.Exec(createSourceTopics); err != nil {
		return fmt.Errorf("failed to create source_topics table: %w", err)
	}

	createSystemTopics := `
	CREATE TABLE IF NOT EXISTS system_topics (
		topic_type TEXT PRIMARY KEY UNIQUE NOT NULL,
		topic_id INTEGER NOT NULL,
		topic_name TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err = DB.Exec(createSystemTopics); err != nil {
		return fmt.Errorf("failed to create system_topics table: %w", err)
	}

	createMessages := `
	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message_id INTEGER,
		topic_id INTEGER,
		thread_id INTEGER,
		parent_message_id INTEGER,
		classification_id TEXT,
		message_text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		processed BOOLEAN DEFAULT FALSE,
		UNIQUE(message_id)
	);`
	if _, err = DB.Exec(createMessages); err != nil {
		return fmt.Errorf("failed to create chat_messages table: %w", err)
	}

	createThreads := `
	CREATE TABLE IF NOT EXISTS message_threads (
		thread_id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT,
		classification_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		is_active BOOLEAN DEFAULT TRUE
	);`
	if _, err = DB.Exec(createThreads); err != nil {
		return fmt.Errorf("failed to create message_threads table: %w", err)
	}

	createModels := `
	CREATE TABLE IF NOT EXISTS ai_models (
		name TEXT UNIQUE NOT NULL,
		model_path TEXT NOT NULL
	);`
	if _, err = DB.Exec(createModels); err != nil {
		return fmt.Errorf("failed to create ai_models table: %w", err)
	}

	createPrompts := `
	CREATE TABLE IF NOT EXISTS prompts (
		type TEXT,
		text TEXT
	);`
	if _, err = DB.Exec(createPrompts); err != nil {
		return fmt.Errorf("failed to create prompts table: %w", err)
	}

	createMetricsTable := `
	CREATE TABLE IF NOT EXISTS metrics (
		metric_name TEXT NOT NULL,
		label_key TEXT DEFAULT NULL,
		label_value TEXT DEFAULT NULL,
		metric_value REAL NOT NULL,
		PRIMARY KEY (metric_name, label_key, label_value)
	);`
	if _, err = DB.Exec(createMetricsTable); err != nil {
		return fmt.Errorf("failed to create metrics table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_messages_thread_id ON chat_messages(thread_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_classification ON chat_messages(classification_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON chat_messages(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_processed ON chat_messages(processed);`,
	}
	for _, idx := range indexes {
		if _, err = DB.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("Database initialized successfully.")
	return nil
}

func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
