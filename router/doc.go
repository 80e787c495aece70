// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP route table using Go 1.22+ method
patterns on the standard ServeMux.

# Routes

Identity:

	POST /users/register
	GET  /users/me

Authoring (X-Author-Key):

	POST /polls
	GET  /polls/{id}/admin
	POST /polls/{id}/questions
	POST /polls/{id}/questions/{qid}/choices
	POST /polls/{id}/conditions
	POST /polls/{id}/publish

Traversal and results (X-Session-Token):

	GET  /polls?done=0|1
	GET  /polls/{id}/vote?question={qid}&invalid={0|1}
	POST /polls/{id}/vote
	GET  /polls/{id}/result

Every route is wrapped in middleware.WithLogging; CORS is applied to the
whole mux in main.
*/
package router
