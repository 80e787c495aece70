// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package testutil provides shared helpers for handler and integration
// tests: an in-memory database with the full schema and seed functions
// for every entity.
package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/branchline/auth"
	"github.com/danielhkuo/branchline/cliparse"
	"github.com/danielhkuo/branchline/db"
)

// SetupTestDB creates a fresh in-memory database with the full schema.
// Uses the embedded sqlite driver so tests need no external services.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn, db.TypeSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3319,
		DatabaseURL:   ":memory:",
		DatabaseType:  db.TypeSQLite,
		AuthorKeySalt: "test-author-salt",
	}
}

// CreateTestUser inserts a user account and returns its ID and session token
func CreateTestUser(t *testing.T, conn *sql.DB, username string) (userID, token string) {
	t.Helper()

	userID = uuid.NewString()
	token, err := auth.GenerateSessionToken()
	if err != nil {
		t.Fatalf("Failed to generate session token: %v", err)
	}

	_, err = conn.Exec(`
		INSERT INTO user_account (id, username, token, created_at)
		VALUES ($1, $2, $3, $4)
	`, userID, username, token, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID, token
}

// CreateTestPoll inserts a poll and returns its ID
func CreateTestPoll(t *testing.T, conn *sql.DB, name string, visible bool) int64 {
	t.Helper()

	res, err := conn.Exec(`
		INSERT INTO poll (name, description, visibility, created_at)
		VALUES ($1, 'A test poll', $2, $3)
	`, name, visible, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read poll id: %v", err)
	}
	return id
}

// AddTestQuestion inserts a question and returns its ID. Questions are
// ordered by insertion, matching the ascending-ID traversal order.
func AddTestQuestion(t *testing.T, conn *sql.DB, pollID int64, text, choiceType string, isDefault bool) int64 {
	t.Helper()

	res, err := conn.Exec(`
		INSERT INTO question (poll_id, text, choice_type, is_default)
		VALUES ($1, $2, $3, $4)
	`, pollID, text, choiceType, isDefault)
	if err != nil {
		t.Fatalf("Failed to create test question: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read question id: %v", err)
	}
	return id
}

// AddTestChoice inserts a choice and returns its ID
func AddTestChoice(t *testing.T, conn *sql.DB, questionID int64, text string) int64 {
	t.Helper()

	res, err := conn.Exec(`
		INSERT INTO choice (question_id, text)
		VALUES ($1, $2)
	`, questionID, text)
	if err != nil {
		t.Fatalf("Failed to create test choice: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read choice id: %v", err)
	}
	return id
}

// AddTestCondition inserts a show/hide condition for (question, choice)
func AddTestCondition(t *testing.T, conn *sql.DB, questionID, choiceID int64, conditionType string) int64 {
	t.Helper()

	res, err := conn.Exec(`
		INSERT INTO condition (question_id, choice_id, condition_type)
		VALUES ($1, $2, $3)
	`, questionID, choiceID, conditionType)
	if err != nil {
		t.Fatalf("Failed to create test condition: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read condition id: %v", err)
	}
	return id
}

// CreateTestResult inserts a poll result for (poll, user) and returns its ID
func CreateTestResult(t *testing.T, conn *sql.DB, pollID int64, userID string) int64 {
	t.Helper()

	res, err := conn.Exec(`
		INSERT INTO poll_result (poll_id, user_id, created_at)
		VALUES ($1, $2, $3)
	`, pollID, userID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test poll result: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read poll result id: %v", err)
	}
	return id
}

// AddTestAnswer records an answer on a poll result
func AddTestAnswer(t *testing.T, conn *sql.DB, resultID, choiceID int64) int64 {
	t.Helper()

	res, err := conn.Exec(`
		INSERT INTO answer (poll_result_id, choice_id, created_at)
		VALUES ($1, $2, $3)
	`, resultID, choiceID, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test answer: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read answer id: %v", err)
	}
	return id
}

// MakeRequest creates an HTTP test request with a JSON body
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// MakeFormRequest creates an HTTP test request with form-encoded fields,
// the way the vote POST arrives from a question form
func MakeFormRequest(method, path string, form url.Values, headers map[string]string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertRedirect checks for a 303 redirect to the expected location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusSeeOther {
		t.Errorf("Expected status 303, got %d. Body: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %s, got %s", location, got)
	}
}
