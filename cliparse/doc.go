// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables. CLI flags win over the environment.

# Settings

  - PORT (-p): server port, default 3319
  - DATABASE_URL (-d): connection string or sqlite file path
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - AUTHOR_KEY_SALT (-author-salt): secret for poll author key HMAC,
    required

With the sqlite default and no DATABASE_URL the server falls back to a
local branchline.db file, so only the salt is needed to run.
*/
package cliparse
