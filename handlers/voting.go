// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/branchline/auth"
	"github.com/danielhkuo/branchline/cliparse"
	"github.com/danielhkuo/branchline/engine"
	"github.com/danielhkuo/branchline/middleware"
	"github.com/danielhkuo/branchline/models"
)

type VotingHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{db: db, cfg: cfg}
}

// GetVote handles GET /polls/{id}/vote?question={qid}&invalid={0|1}
//
// Three cases, in order:
//   - no question cursor: the traversal starts at the entry question
//   - cursor plus invalid flag: the same question is re-asked, the
//     resolver is not consulted
//   - cursor only: the resolver picks the next question from the user's
//     answers so far; exhaustion redirects to the result page
func (h *VotingHandler) GetVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathID(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := currentUser(h.db, r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid X-Session-Token required")
		return
	}

	// Hidden polls do not exist as far as voters can tell
	if _, err := loadPoll(h.db, pollID, true); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	} else if err != nil {
		slog.Error("failed to query poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	prevParam := r.URL.Query().Get("question")
	invalid := r.URL.Query().Get("invalid") != ""

	if prevParam == "" {
		// First question of the traversal
		questions, err := loadQuestions(h.db, pollID, 0)
		if err != nil {
			slog.Error("failed to query questions", "error", err, "poll_id", pollID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		entry := engine.EntryQuestion(questions)
		if entry == nil {
			middleware.ErrorResponse(w, http.StatusNotFound, "Poll has no entry question")
			return
		}
		slog.Debug("show first question", "poll_id", pollID, "question_id", entry.ID)
		h.renderQuestion(w, entry, "")
		return
	}

	prevID, err := strconv.ParseInt(prevParam, 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid question parameter")
		return
	}

	if invalid {
		// Previous submission was bad; repeat the question as-is
		question, err := loadQuestion(h.db, prevID)
		if err == sql.ErrNoRows || (err == nil && question.PollID != pollID) {
			middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
			return
		}
		if err != nil {
			slog.Error("failed to query question", "error", err, "question_id", prevID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		slog.Debug("re-ask question", "poll_id", pollID, "question_id", prevID)
		h.renderQuestion(w, question, "Invalid selection. Please vote again")
		return
	}

	candidates, err := loadQuestions(h.db, pollID, prevID)
	if err != nil {
		slog.Error("failed to query questions", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if len(candidates) == 0 {
		slog.Debug("traversal finished, no more questions", "poll_id", pollID)
		middleware.SeeOther(w, r, fmt.Sprintf("/polls/%d/result", pollID))
		return
	}

	var resultID int64
	err = h.db.QueryRow(`
		SELECT id FROM poll_result WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(&resultID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll result not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll result", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	answered, err := answeredChoiceIDs(h.db, resultID)
	if err != nil {
		slog.Error("failed to query answers", "error", err, "result_id", resultID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	conditions, err := loadConditions(h.db, pollID)
	if err != nil {
		slog.Error("failed to query conditions", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	next := engine.NextQuestion(candidates, conditions, answered)
	if next == nil {
		slog.Debug("traversal finished, no question to show", "poll_id", pollID)
		middleware.SeeOther(w, r, fmt.Sprintf("/polls/%d/result", pollID))
		return
	}

	h.renderQuestion(w, next, "")
}

// renderQuestion writes the {question, choices} payload the
// presentation layer turns into a form
func (h *VotingHandler) renderQuestion(w http.ResponseWriter, question *models.Question, message string) {
	choices, err := loadChoices(h.db, question.ID)
	if err != nil {
		slog.Error("failed to query choices", "error", err, "question_id", question.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.QuestionView{
		Question: *question,
		Choices:  choices,
		Message:  message,
	})
}

// PostVote handles POST /polls/{id}/vote
//
// The payload names the active question and carries the selection in
// checkbox_*/radio fields. A missing question field is a client error;
// an empty or non-member selection redirects back with invalid=1; an
// accepted submission redirects to the GET with the cursor advanced.
func (h *VotingHandler) PostVote(w http.ResponseWriter, r *http.Request) {
	pollID, err := pathID(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	userID, err := currentUser(h.db, r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid X-Session-Token required")
		return
	}

	if _, err := loadPoll(h.db, pollID, true); err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	} else if err != nil {
		slog.Error("failed to query poll", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := r.ParseForm(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	questionParam := r.PostForm.Get("question")
	if questionParam == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No question was provided")
		return
	}
	questionID, err := strconv.ParseInt(questionParam, 10, 64)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid question field")
		return
	}

	question, err := loadQuestion(h.db, questionID)
	if err == sql.ErrNoRows || (err == nil && question.PollID != pollID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	redirectURL := fmt.Sprintf("/polls/%d/vote?question=%d", pollID, questionID)

	choiceIDs, ok := selectedChoiceIDs(r.PostForm)
	if !ok || len(choiceIDs) == 0 {
		slog.Debug("no choices were selected", "poll_id", pollID, "question_id", questionID)
		middleware.SeeOther(w, r, redirectURL+"&invalid=1")
		return
	}

	// All-or-nothing: every submitted choice must belong to the question
	valid, err := choicesBelong(h.db, questionID, choiceIDs)
	if err != nil {
		slog.Error("failed to verify choices", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !valid {
		slog.Error("not all choices belong to the current question",
			"poll_id", pollID, "question_id", questionID)
		middleware.SeeOther(w, r, redirectURL+"&invalid=1")
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.AuthorKeySalt)
	if err := h.acceptAnswers(pollID, userID, ipHash, question, choiceIDs); err != nil {
		slog.Error("failed to record answers", "error", err, "poll_id", pollID, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record answers")
		return
	}

	middleware.SeeOther(w, r, redirectURL)
}

// selectedChoiceIDs extracts choice IDs from the form's selection
// fields: checkbox_* for multi-select, radio for single-select.
// ok is false when a selection field holds a non-numeric value.
func selectedChoiceIDs(form map[string][]string) ([]int64, bool) {
	var ids []int64
	for key, values := range form {
		if !strings.HasPrefix(key, "checkbox_") && key != "radio" {
			continue
		}
		for _, value := range values {
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, false
			}
			ids = append(ids, id)
		}
	}
	return ids, true
}

// choicesBelong reports whether every submitted choice ID resolves to a
// choice of the given question
func choicesBelong(conn *sql.DB, questionID int64, choiceIDs []int64) (bool, error) {
	choices, err := loadChoices(conn, questionID)
	if err != nil {
		return false, err
	}

	members := make(map[int64]bool, len(choices))
	for _, c := range choices {
		members[c.ID] = true
	}
	for _, id := range choiceIDs {
		if !members[id] {
			return false, nil
		}
	}
	return true, nil
}

// acceptAnswers records the submission: get-or-create the poll result,
// then persist each choice independently. A choice violating the
// single-answer rule is skipped and logged; the rest still land,
// preserving the user's progress.
func (h *VotingHandler) acceptAnswers(pollID int64, userID, ipHash string, question *models.Question, choiceIDs []int64) error {
	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Atomic get-or-create on the (poll, user) unique pair
	_, err = tx.Exec(`
		INSERT INTO poll_result (poll_id, user_id, ip_hash, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (poll_id, user_id) DO NOTHING
	`, pollID, userID, ipHash, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create poll result: %w", err)
	}

	var resultID int64
	err = tx.QueryRow(`
		SELECT id FROM poll_result WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(&resultID)
	if err != nil {
		return fmt.Errorf("failed to load poll result: %w", err)
	}

	for _, choiceID := range choiceIDs {
		if question.ChoiceType == models.ChoiceTypeSingle {
			var exists bool
			err = tx.QueryRow(`
				SELECT EXISTS(
					SELECT 1 FROM answer a
					JOIN choice c ON a.choice_id = c.id
					WHERE a.poll_result_id = $1 AND c.question_id = $2
				)
			`, resultID, question.ID).Scan(&exists)
			if err != nil {
				return fmt.Errorf("failed to check existing answer: %w", err)
			}
			if exists {
				// Single-choice questions keep their first answer
				slog.Error("bad answer: question already answered",
					"result_id", resultID,
					"question_id", question.ID,
					"choice_id", choiceID,
				)
				continue
			}
		}

		_, err = tx.Exec(`
			INSERT INTO answer (poll_result_id, choice_id, created_at)
			VALUES ($1, $2, $3)
		`, resultID, choiceID, time.Now())
		if err != nil {
			return fmt.Errorf("failed to insert answer: %w", err)
		}

		slog.Info("answer recorded",
			"result_id", resultID,
			"question_id", question.ID,
			"choice_id", choiceID,
		)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
