// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Branchline API server.

Branchline is a conditional-branching survey service: a poll is an
ordered question list, and show/hide conditions attached to earlier
answers decide which question each user sees next.

# Starting the Server

With the embedded sqlite database only a secret is needed:

	AUTHOR_KEY_SALT=secret go run main.go

Or against PostgreSQL:

	go run main.go -t postgres -d "postgres://..." -author-salt secret

# Configuration

Settings (flags override environment):

  - AUTHOR_KEY_SALT (-author-salt): secret for author key HMAC, required
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - DATABASE_URL (-d): connection string; defaults to branchline.db for
    sqlite
  - PORT (-p): server port (default: 3319)

A .env file in the working directory is loaded if present.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - engine: pure branching logic (next-question resolution, readiness)
  - handlers: HTTP request handlers (polls, voting, results, users)
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: domain and request/response types
  - auth: author keys and session tokens
  - db: connection and schema creation
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
