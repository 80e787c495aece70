// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// dbType is "sqlite" or "postgres"; the DDL differs only in the
// serial primary key spelling.
func CreateSchema(db *sql.DB, dbType string) error {
	schema, err := schemaFor(dbType)
	if err != nil {
		return err
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func schemaFor(dbType string) (string, error) {
	switch dbType {
	case TypeSQLite:
		return fmt.Sprintf(schema, "INTEGER PRIMARY KEY AUTOINCREMENT"), nil
	case TypePostgres:
		return fmt.Sprintf(schema, "BIGSERIAL PRIMARY KEY"), nil
	default:
		return "", fmt.Errorf("unknown database type %q", dbType)
	}
}

// %[1]s is the serial primary key clause for the active driver.
const schema = `
-- User accounts (identity surface; the traversal core only consumes the ID)
CREATE TABLE IF NOT EXISTS user_account (
    id TEXT PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    token TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_user_account_token ON user_account(token);

-- Polls
CREATE TABLE IF NOT EXISTS poll (
    id %[1]s,
    name TEXT NOT NULL,
    description TEXT,
    visibility BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_poll_visibility ON poll(visibility);

-- Questions; question order within a poll is ascending id
CREATE TABLE IF NOT EXISTS question (
    id %[1]s,
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    text TEXT NOT NULL,
    choice_type TEXT NOT NULL DEFAULT 'single' CHECK (choice_type IN ('single', 'multiple')),
    is_default BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_question_poll_id ON question(poll_id);

-- Choices
CREATE TABLE IF NOT EXISTS choice (
    id %[1]s,
    question_id BIGINT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    text TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_choice_question_id ON choice(question_id);

-- Conditions; unique per (question, choice) pair
CREATE TABLE IF NOT EXISTS condition (
    id %[1]s,
    question_id BIGINT NOT NULL REFERENCES question(id) ON DELETE CASCADE,
    choice_id BIGINT NOT NULL REFERENCES choice(id) ON DELETE CASCADE,
    condition_type TEXT NOT NULL CHECK (condition_type IN ('show', 'hide')),
    UNIQUE (question_id, choice_id)
);

CREATE INDEX IF NOT EXISTS idx_condition_question_id ON condition(question_id);

-- Poll results; one per (poll, user), backs the atomic get-or-create
CREATE TABLE IF NOT EXISTS poll_result (
    id %[1]s,
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    user_id TEXT NOT NULL REFERENCES user_account(id) ON DELETE CASCADE,
    ip_hash TEXT,
    created_at TIMESTAMP NOT NULL,
    UNIQUE (poll_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_poll_result_user ON poll_result(user_id);

-- Answers; append-only
CREATE TABLE IF NOT EXISTS answer (
    id %[1]s,
    poll_result_id BIGINT NOT NULL REFERENCES poll_result(id) ON DELETE CASCADE,
    choice_id BIGINT NOT NULL REFERENCES choice(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_answer_poll_result_id ON answer(poll_result_id);
`
