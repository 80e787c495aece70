// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the HTTP request handlers.

# Handler Groups

  - UserHandler: account registration and token introspection
  - PollHandler: poll listing plus the authoring surface (questions,
    choices, conditions, publish)
  - VotingHandler: the traversal - question rendering and answer
    submission
  - ResultsHandler: the per-user result page

All handlers take *sql.DB and cliparse.Config via constructor injection
and issue their SQL inline.

# Traversal Flow

One traversal step is one GET/POST pair:

	GET  /polls/{id}/vote                     -> entry question
	POST /polls/{id}/vote                     -> record answers, 303
	GET  /polls/{id}/vote?question={qid}      -> next question, or 303
	                                             to /polls/{id}/result
	GET  /polls/{id}/vote?question={qid}&invalid=1 -> re-ask

The branching decision itself lives in the engine package; handlers only
load state and act on the verdict.

# Authentication

Voter endpoints read X-Session-Token (resolved to a user account);
authoring endpoints read X-Author-Key (stateless HMAC per poll).

# Error Handling

Expected branching outcomes (hide, show, done, re-ask) are normal
control flow, never errors. Malformed input and missing entities are
client errors (400/404). Domain violations inside a submission - a
second answer to a single-choice question - are skipped and logged with
result, question, and choice IDs while the request still completes.
*/
package handlers
