// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"fmt"

	"github.com/danielhkuo/branchline/models"
)

// ValidateForVisibility checks that a poll is well-formed enough to be
// shown to voters. All rules are evaluated; every violation is reported,
// none short-circuits:
//
//   - the poll has at least one question
//   - at least one question is flagged default (the entry point); more
//     than one is allowed, the resolver picks the lowest-ordered
//   - every question has at least two choices
//
// choiceCounts maps question ID to its number of choices. An empty
// return means the poll may become visible.
func ValidateForVisibility(questions []models.Question, choiceCounts map[int64]int) []string {
	var violations []string

	if len(questions) == 0 {
		violations = append(violations, "poll has no questions")
	}

	hasEntry := false
	for _, q := range questions {
		if q.Default {
			hasEntry = true
			break
		}
	}
	if !hasEntry {
		violations = append(violations, "poll has no first question: no question is flagged default")
	}

	for _, q := range questions {
		if choiceCounts[q.ID] < 2 {
			violations = append(violations, fmt.Sprintf("invalid question %d: fewer than 2 choices", q.ID))
		}
	}

	return violations
}
