// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/branchline/cliparse"
	"github.com/danielhkuo/branchline/handlers"
	"github.com/danielhkuo/branchline/middleware"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, cfg)
	pollHandler := handlers.NewPollHandler(db, cfg)
	votingHandler := handlers.NewVotingHandler(db, cfg)
	resultsHandler := handlers.NewResultsHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Identity
	mux.HandleFunc("POST /users/register", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("GET /users/me", middleware.WithLogging(userHandler.GetMe))

	// Poll listing (voters)
	mux.HandleFunc("GET /polls", middleware.WithLogging(pollHandler.ListPolls))

	// Poll authoring (author key operations)
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{id}/admin", middleware.WithLogging(pollHandler.GetPollAdmin))
	mux.HandleFunc("POST /polls/{id}/questions", middleware.WithLogging(pollHandler.AddQuestion))
	mux.HandleFunc("POST /polls/{id}/questions/{qid}/choices", middleware.WithLogging(pollHandler.AddChoice))
	mux.HandleFunc("POST /polls/{id}/conditions", middleware.WithLogging(pollHandler.AddCondition))
	mux.HandleFunc("POST /polls/{id}/publish", middleware.WithLogging(pollHandler.PublishPoll))

	// Traversal
	mux.HandleFunc("GET /polls/{id}/vote", middleware.WithLogging(votingHandler.GetVote))
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(votingHandler.PostVote))

	// Result page
	mux.HandleFunc("GET /polls/{id}/result", middleware.WithLogging(resultsHandler.GetResult))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("branchline API v1"))
	})

	return mux
}
