// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine holds the pure decision logic of the survey traversal:
which question to show next, and whether a poll is well-formed enough to
be made visible.

# Next-Question Resolution

A poll's questions are ordered by ascending ID. Conditions attach to a
(question, choice) pair and mean "if the user picked this choice earlier,
show (or hide) this question". NextQuestion walks the questions after the
cursor and applies, per question:

 1. no condition matches the user's answers: the question's own default
    flag decides
 2. one or more conditions match: any "hide" hides the question
    (hide-dominance); it is shown only if every match says "show"

The first question decided as shown is returned; if the walk exhausts the
candidates the traversal is complete and NextQuestion returns nil.

# Readiness

ValidateForVisibility accumulates every reason a poll cannot yet be shown
to voters: no questions, no default entry question, questions with fewer
than two choices. Callers must refuse to flip visibility while any
violation remains, and must re-run the check on every visibility attempt.

Both entry points are side-effect free and deterministic; they operate on
already-loaded slices and never touch the database.
*/
package engine
