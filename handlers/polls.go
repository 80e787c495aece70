// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/branchline/auth"
	"github.com/danielhkuo/branchline/cliparse"
	"github.com/danielhkuo/branchline/engine"
	"github.com/danielhkuo/branchline/middleware"
	"github.com/danielhkuo/branchline/models"
)

type PollHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config) *PollHandler {
	return &PollHandler{db: db, cfg: cfg}
}

// ListPolls handles GET /polls?done=0|1
// done=1 lists polls the user has a result for; otherwise the visible
// polls the user has not started yet.
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUser(h.db, r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Valid X-Session-Token required")
		return
	}

	// Missing or "0" means not-done; anything else means done
	doneParam := r.URL.Query().Get("done")
	done := doneParam != "" && doneParam != "0"

	var rows *sql.Rows
	if done {
		rows, err = h.db.Query(`
			SELECT p.id, p.name, COALESCE(p.description, ''), p.created_at
			FROM poll p
			JOIN poll_result pr ON pr.poll_id = p.id
			WHERE pr.user_id = $1
			ORDER BY p.id
		`, userID)
	} else {
		rows, err = h.db.Query(`
			SELECT p.id, p.name, COALESCE(p.description, ''), p.created_at
			FROM poll p
			WHERE p.visibility = TRUE
			  AND p.id NOT IN (SELECT poll_id FROM poll_result WHERE user_id = $1)
			ORDER BY p.id
		`, userID)
	}
	if err != nil {
		slog.Error("failed to query polls", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	polls := []models.PollListItem{}
	for rows.Next() {
		var item models.PollListItem
		var createdAt time.Time
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &createdAt); err != nil {
			slog.Error("failed to scan poll", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		item.Created = humanize.Time(createdAt)
		polls = append(polls, item)
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollListResponse{
		Done:  done,
		Polls: polls,
	})
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	pollID, err := insertID(h.db, h.cfg.DatabaseType, `
		INSERT INTO poll (name, description, visibility, created_at)
		VALUES ($1, $2, FALSE, $3)
	`, req.Name, req.Description, time.Now())

	if err != nil {
		slog.Error("failed to insert poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create poll")
		return
	}

	// The author key is derived, not stored
	authorKey := auth.GenerateAuthorKey(pollID, h.cfg.AuthorKeySalt)

	slog.Info("poll created", "poll_id", pollID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID:    pollID,
		AuthorKey: authorKey,
	})
}

// requireAuthor validates the author key header and loads the poll.
// Writes the response itself on failure and returns nil.
func (h *PollHandler) requireAuthor(w http.ResponseWriter, r *http.Request) *models.Poll {
	pollID, err := pathID(r, "id")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return nil
	}

	authorKey := r.Header.Get("X-Author-Key")
	if err := auth.ValidateAuthorKey(pollID, authorKey, h.cfg.AuthorKeySalt); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid author key")
		return nil
	}

	poll, err := loadPoll(h.db, pollID, false)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return nil
	}
	if err != nil {
		slog.Error("failed to query poll", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil
	}
	return poll
}

// AddQuestion handles POST /polls/{id}/questions
func (h *PollHandler) AddQuestion(w http.ResponseWriter, r *http.Request) {
	poll := h.requireAuthor(w, r)
	if poll == nil {
		return
	}

	if poll.Visibility {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot edit a visible poll")
		return
	}

	var req models.AddQuestionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.ChoiceType == "" {
		req.ChoiceType = models.ChoiceTypeSingle
	}
	if req.ChoiceType != models.ChoiceTypeSingle && req.ChoiceType != models.ChoiceTypeMultiple {
		middleware.ErrorResponse(w, http.StatusBadRequest, "choice_type must be single or multiple")
		return
	}

	questionID, err := insertID(h.db, h.cfg.DatabaseType, `
		INSERT INTO question (poll_id, text, choice_type, is_default)
		VALUES ($1, $2, $3, $4)
	`, poll.ID, req.Text, req.ChoiceType, req.Default)

	if err != nil {
		slog.Error("failed to insert question", "error", err, "poll_id", poll.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create question")
		return
	}

	slog.Info("question added", "poll_id", poll.ID, "question_id", questionID, "default", req.Default)

	middleware.JSONResponse(w, http.StatusCreated, models.AddQuestionResponse{
		QuestionID: questionID,
	})
}

// AddChoice handles POST /polls/{id}/questions/{qid}/choices
func (h *PollHandler) AddChoice(w http.ResponseWriter, r *http.Request) {
	poll := h.requireAuthor(w, r)
	if poll == nil {
		return
	}

	if poll.Visibility {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot edit a visible poll")
		return
	}

	questionID, err := pathID(r, "qid")
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	question, err := loadQuestion(h.db, questionID)
	if err == sql.ErrNoRows || (err == nil && question.PollID != poll.ID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.AddChoiceRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	choiceID, err := insertID(h.db, h.cfg.DatabaseType, `
		INSERT INTO choice (question_id, text)
		VALUES ($1, $2)
	`, questionID, req.Text)

	if err != nil {
		slog.Error("failed to insert choice", "error", err, "question_id", questionID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create choice")
		return
	}

	slog.Info("choice added", "poll_id", poll.ID, "question_id", questionID, "choice_id", choiceID)

	middleware.JSONResponse(w, http.StatusCreated, models.AddChoiceResponse{
		ChoiceID: choiceID,
	})
}

// AddCondition handles POST /polls/{id}/conditions
// Conditions only look backward: the triggering choice must belong to an
// earlier question of the same poll.
func (h *PollHandler) AddCondition(w http.ResponseWriter, r *http.Request) {
	poll := h.requireAuthor(w, r)
	if poll == nil {
		return
	}

	if poll.Visibility {
		middleware.ErrorResponse(w, http.StatusConflict, "Cannot edit a visible poll")
		return
	}

	var req models.AddConditionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ConditionType != models.ConditionShow && req.ConditionType != models.ConditionHide {
		middleware.ErrorResponse(w, http.StatusBadRequest, "condition_type must be show or hide")
		return
	}

	question, err := loadQuestion(h.db, req.QuestionID)
	if err == sql.ErrNoRows || (err == nil && question.PollID != poll.ID) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Question not found")
		return
	}
	if err != nil {
		slog.Error("failed to query question", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	// Resolve the triggering choice and its owning question
	var choiceQuestionID, choicePollID int64
	err = h.db.QueryRow(`
		SELECT q.id, q.poll_id
		FROM choice c
		JOIN question q ON c.question_id = q.id
		WHERE c.id = $1
	`, req.ChoiceID).Scan(&choiceQuestionID, &choicePollID)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Choice not found")
		return
	}
	if err != nil {
		slog.Error("failed to query choice", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if choicePollID != poll.ID {
		middleware.ErrorResponse(w, http.StatusBadRequest, "choice belongs to a different poll")
		return
	}
	if choiceQuestionID >= question.ID {
		middleware.ErrorResponse(w, http.StatusBadRequest, "choice must belong to an earlier question")
		return
	}

	conditionID, err := insertID(h.db, h.cfg.DatabaseType, `
		INSERT INTO condition (question_id, choice_id, condition_type)
		VALUES ($1, $2, $3)
	`, req.QuestionID, req.ChoiceID, req.ConditionType)

	if err != nil {
		// One rule per (question, choice) pair
		if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
			strings.Contains(err.Error(), "duplicate key value") {
			middleware.ErrorResponse(w, http.StatusConflict, "Condition already exists for this question and choice")
			return
		}
		slog.Error("failed to insert condition", "error", err, "poll_id", poll.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create condition")
		return
	}

	slog.Info("condition added",
		"poll_id", poll.ID,
		"condition_id", conditionID,
		"question_id", req.QuestionID,
		"choice_id", req.ChoiceID,
		"type", req.ConditionType,
	)

	middleware.JSONResponse(w, http.StatusCreated, models.AddConditionResponse{
		ConditionID: conditionID,
	})
}

// readiness loads what the validator needs and runs it
func (h *PollHandler) readiness(pollID int64) ([]string, error) {
	questions, err := loadQuestions(h.db, pollID, 0)
	if err != nil {
		return nil, err
	}

	choiceCounts := make(map[int64]int)
	rows, err := h.db.Query(`
		SELECT c.question_id, COUNT(c.id)
		FROM choice c
		JOIN question q ON c.question_id = q.id
		WHERE q.poll_id = $1
		GROUP BY c.question_id
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var questionID int64
		var count int
		if err := rows.Scan(&questionID, &count); err != nil {
			return nil, err
		}
		choiceCounts[questionID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return engine.ValidateForVisibility(questions, choiceCounts), nil
}

// PublishPoll handles POST /polls/{id}/publish
// Runs readiness validation on every attempt; the poll only becomes
// visible when no violation remains.
func (h *PollHandler) PublishPoll(w http.ResponseWriter, r *http.Request) {
	poll := h.requireAuthor(w, r)
	if poll == nil {
		return
	}

	violations, err := h.readiness(poll.ID)
	if err != nil {
		slog.Error("failed to run readiness validation", "error", err, "poll_id", poll.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if len(violations) > 0 {
		slog.Info("publish refused", "poll_id", poll.ID, "violations", len(violations))
		middleware.JSONResponse(w, http.StatusUnprocessableEntity, models.ReadinessResponse{
			Ready:      false,
			Violations: violations,
		})
		return
	}

	_, err = h.db.Exec(`
		UPDATE poll SET visibility = TRUE WHERE id = $1
	`, poll.ID)
	if err != nil {
		slog.Error("failed to publish poll", "error", err, "poll_id", poll.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to publish poll")
		return
	}

	slog.Info("poll published", "poll_id", poll.ID)

	middleware.JSONResponse(w, http.StatusOK, models.PublishPollResponse{
		PollID:  poll.ID,
		Visible: true,
	})
}

// GetPollAdmin handles GET /polls/{id}/admin
// Returns the author's full view: questions, choices, conditions, and
// the current readiness verdict.
func (h *PollHandler) GetPollAdmin(w http.ResponseWriter, r *http.Request) {
	poll := h.requireAuthor(w, r)
	if poll == nil {
		return
	}

	questions, err := loadQuestions(h.db, poll.ID, 0)
	if err != nil {
		slog.Error("failed to query questions", "error", err, "poll_id", poll.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	withChoices := []models.QuestionWithChoices{}
	for _, q := range questions {
		choices, err := loadChoices(h.db, q.ID)
		if err != nil {
			slog.Error("failed to query choices", "error", err, "question_id", q.ID)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}
		withChoices = append(withChoices, models.QuestionWithChoices{
			Question: q,
			Choices:  choices,
		})
	}

	conditions, err := loadConditions(h.db, poll.ID)
	if err != nil {
		slog.Error("failed to query conditions", "error", err, "poll_id", poll.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if conditions == nil {
		conditions = []models.Condition{}
	}

	violations, err := h.readiness(poll.ID)
	if err != nil {
		slog.Error("failed to run readiness validation", "error", err, "poll_id", poll.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollAdminView{
		Poll:       *poll,
		Questions:  withChoices,
		Conditions: conditions,
		Readiness: models.ReadinessResponse{
			Ready:      len(violations) == 0,
			Violations: violations,
		},
	})
}
