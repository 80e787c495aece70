// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/branchline/cliparse"
	"github.com/danielhkuo/branchline/middleware"
	"github.com/danielhkuo/branchline/models"
)

type ResultsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config) *ResultsHandler {
	return &ResultsHandler{db: db, cfg: cfg}
}

// GetResult handles GET /polls/{id}/result
// Returns the user's answered questions with their selected choice IDs,
// in question order.
func (h *ResultsHandler) GetResult(w http.ResponseWriter, r *http.Request) {
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

	var resultID int64
	var pollName string
	var startedAt time.Time
	err = h.db.QueryRow(`
		SELECT pr.id, p.name, pr.created_at
		FROM poll_result pr
		JOIN poll p ON pr.poll_id = p.id
		WHERE pr.poll_id = $1 AND pr.user_id = $2
	`, pollID, userID).Scan(&resultID, &pollName, &startedAt)

	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll result not found")
		return
	}
	if err != nil {
		slog.Error("failed to query poll result", "error", err, "poll_id", pollID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	rows, err := h.db.Query(`
		SELECT q.id, q.text, a.choice_id
		FROM answer a
		JOIN choice c ON a.choice_id = c.id
		JOIN question q ON c.question_id = q.id
		WHERE a.poll_result_id = $1
		ORDER BY q.id, a.choice_id
	`, resultID)
	if err != nil {
		slog.Error("failed to query answers", "error", err, "result_id", resultID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer rows.Close()

	// Rows arrive grouped by question; fold them into one entry each
	questions := []models.AnsweredQuestion{}
	for rows.Next() {
		var questionID, choiceID int64
		var text string
		if err := rows.Scan(&questionID, &text, &choiceID); err != nil {
			slog.Error("failed to scan answer", "error", err)
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
			return
		}

		if n := len(questions); n > 0 && questions[n-1].QuestionID == questionID {
			questions[n-1].ChoiceIDs = append(questions[n-1].ChoiceIDs, choiceID)
			continue
		}
		questions = append(questions, models.AnsweredQuestion{
			QuestionID: questionID,
			Text:       text,
			ChoiceIDs:  []int64{choiceID},
		})
	}
	if err := rows.Err(); err != nil {
		slog.Error("failed to read answers", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PollResultResponse{
		PollName:  pollName,
		Questions: questions,
		Started:   humanize.Time(startedAt),
	})
}
