package postgres

import "fmt"

// schemaStatements returns the bootstrap DDL for the given (already
// sanitized) namespace identifier. Statements run one at a time so a failure
// points at the statement that caused it.
func schemaStatements(ns string) []string {
	return []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, ns),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.chats (
			id VARCHAR(36) PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'
		)`, ns),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.messages (
			id BIGINT,
			chat_id VARCHAR(36) REFERENCES %s.chats(id) ON DELETE CASCADE,
			role VARCHAR(50) NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			PRIMARY KEY (chat_id, id)
		)`, ns, ns),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_messages_chat_id ON %s.messages(chat_id)`, ns),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON %s.messages(created_at)`, ns),
	}
}
