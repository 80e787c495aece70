// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Opening a Connection

Open selects the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "sqlite" (modernc.org/sqlite, cgo-free) and
"postgres" (lib/pq).

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, cfg.DatabaseType); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and
indexes. The DDL is shared between drivers except for the serial primary
key clause.

# Tables

  - user_account: Identity surface (username, opaque session token)
  - poll: Poll metadata and visibility flag
  - question: Ordered prompts per poll (order = ascending id)
  - choice: Selectable options per question
  - condition: Show/hide rules keyed by (question, choice)
  - poll_result: One traversal per (poll, user)
  - answer: Recorded choice selections, append-only

# Constraints

The store-level guarantees the traversal core relies on:

  - poll_result (poll_id, user_id) unique: concurrent first submissions
    by the same user cannot create duplicate results
  - condition (question_id, choice_id) unique: one rule per pair
  - answer single-choice uniqueness is enforced in code, since it depends
    on the owning question's choice_type
*/
package db
