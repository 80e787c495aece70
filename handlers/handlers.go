// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielhkuo/branchline/db"
	"github.com/danielhkuo/branchline/models"
)

var (
	ErrNoSession = errors.New("no valid session token")
)

// currentUser resolves the X-Session-Token header to a user account ID.
// The rest of the traversal code only ever sees the opaque ID.
func currentUser(conn *sql.DB, r *http.Request) (string, error) {
	token := r.Header.Get("X-Session-Token")
	if token == "" {
		return "", ErrNoSession
	}

	var userID string
	err := conn.QueryRow(`
		SELECT id FROM user_account WHERE token = $1
	`, token).Scan(&userID)

	if err == sql.ErrNoRows {
		return "", ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve session token: %w", err)
	}
	return userID, nil
}

// pathID parses an integer path value like /polls/{id}
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// insertID runs an INSERT and returns the generated serial ID.
// Postgres needs RETURNING; sqlite reports it through the driver result.
func insertID(conn *sql.DB, dbType, query string, args ...interface{}) (int64, error) {
	if dbType == db.TypePostgres {
		var id int64
		err := conn.QueryRow(query+" RETURNING id", args...).Scan(&id)
		return id, err
	}

	res, err := conn.Exec(query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// loadPoll fetches a poll by ID. With visibleOnly set, hidden polls are
// reported as absent, matching what voters are allowed to know.
func loadPoll(conn *sql.DB, pollID int64, visibleOnly bool) (*models.Poll, error) {
	query := `
		SELECT id, name, COALESCE(description, ''), visibility, created_at
		FROM poll
		WHERE id = $1
	`
	if visibleOnly {
		query += ` AND visibility = TRUE`
	}

	var poll models.Poll
	err := conn.QueryRow(query, pollID).Scan(
		&poll.ID, &poll.Name, &poll.Description, &poll.Visibility, &poll.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

// loadQuestions fetches a poll's questions with ID greater than after,
// in traversal order. Pass after = 0 for the full ordered set.
func loadQuestions(conn *sql.DB, pollID, after int64) ([]models.Question, error) {
	rows, err := conn.Query(`
		SELECT id, poll_id, text, choice_type, is_default
		FROM question
		WHERE poll_id = $1 AND id > $2
		ORDER BY id
	`, pollID, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.PollID, &q.Text, &q.ChoiceType, &q.Default); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// loadChoices fetches a question's choices in ID order
func loadChoices(conn *sql.DB, questionID int64) ([]models.Choice, error) {
	rows, err := conn.Query(`
		SELECT id, question_id, text
		FROM choice
		WHERE question_id = $1
		ORDER BY id
	`, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	choices := []models.Choice{}
	for rows.Next() {
		var c models.Choice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.Text); err != nil {
			return nil, err
		}
		choices = append(choices, c)
	}
	return choices, rows.Err()
}

// loadConditions fetches every condition attached to a poll's questions
func loadConditions(conn *sql.DB, pollID int64) ([]models.Condition, error) {
	rows, err := conn.Query(`
		SELECT c.id, c.question_id, c.choice_id, c.condition_type
		FROM condition c
		JOIN question q ON c.question_id = q.id
		WHERE q.poll_id = $1
		ORDER BY c.id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conditions []models.Condition
	for rows.Next() {
		var c models.Condition
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.ChoiceID, &c.ConditionType); err != nil {
			return nil, err
		}
		conditions = append(conditions, c)
	}
	return conditions, rows.Err()
}

// loadQuestion fetches one question by ID
func loadQuestion(conn *sql.DB, questionID int64) (*models.Question, error) {
	var q models.Question
	err := conn.QueryRow(`
		SELECT id, poll_id, text, choice_type, is_default
		FROM question
		WHERE id = $1
	`, questionID).Scan(&q.ID, &q.PollID, &q.Text, &q.ChoiceType, &q.Default)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// answeredChoiceIDs returns the set of choice IDs recorded on a result
func answeredChoiceIDs(conn *sql.DB, resultID int64) (map[int64]bool, error) {
	rows, err := conn.Query(`
		SELECT choice_id FROM answer WHERE poll_result_id = $1
	`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	answered := make(map[int64]bool)
	for rows.Next() {
		var choiceID int64
		if err := rows.Scan(&choiceID); err != nil {
			return nil, err
		}
		answered[choiceID] = true
	}
	return answered, rows.Err()
}
