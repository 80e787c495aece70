// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"log/slog"

	"github.com/danielhkuo/branchline/models"
)

// NextQuestion walks the candidate questions in order and returns the
// first one that should be shown, or nil when the traversal is done.
//
// Candidates must be the poll's questions after the cursor, ascending by
// ID. conditions is the poll's full condition set; answered is the set of
// choice IDs the user has already submitted in this traversal.
//
// Per candidate, conditions matching (candidate, answered choice) decide:
//
//   - no matches: the question's own default flag decides
//   - any matching "hide": hidden, regardless of how many say "show"
//   - otherwise (all matches say "show"): shown
//
// Pure function: identical inputs always yield the identical decision.
func NextQuestion(candidates []models.Question, conditions []models.Condition, answered map[int64]bool) *models.Question {
	for i := range candidates {
		q := &candidates[i]

		matched := matchConditions(conditions, q.ID, answered)
		if len(matched) == 0 {
			// No condition applies, fall back to the question's default
			if q.Default {
				slog.Debug("show question, default behavior", "question_id", q.ID)
				return q
			}
			slog.Debug("hide question, default behavior", "question_id", q.ID)
			continue
		}

		if anyHide(matched) {
			slog.Debug("hide question by condition", "question_id", q.ID, "conditions", len(matched))
			continue
		}
		slog.Debug("show question by condition", "question_id", q.ID, "conditions", len(matched))
		return q
	}
	return nil
}

// EntryQuestion returns the question shown first in a traversal: the
// lowest-ordered question flagged as default. Readiness validation
// guarantees visible polls have at least one; if authoring produced
// several, the lowest ID deterministically wins. Returns nil if none.
func EntryQuestion(questions []models.Question) *models.Question {
	var entry *models.Question
	for i := range questions {
		q := &questions[i]
		if !q.Default {
			continue
		}
		if entry == nil || q.ID < entry.ID {
			entry = q
		}
	}
	return entry
}

// matchConditions returns the conditions attached to questionID whose
// triggering choice the user has answered.
func matchConditions(conditions []models.Condition, questionID int64, answered map[int64]bool) []models.Condition {
	var matched []models.Condition
	for _, c := range conditions {
		if c.QuestionID == questionID && answered[c.ChoiceID] {
			matched = append(matched, c)
		}
	}
	return matched
}

// anyHide reports whether at least one condition says "hide". Hide wins
// over any number of "show" conditions.
func anyHide(conditions []models.Condition) bool {
	for _, c := range conditions {
		if c.ConditionType == models.ConditionHide {
			return true
		}
	}
	return false
}
