// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides key generation and validation.

# Author Keys

Poll authors authenticate with an HMAC key derived from the poll ID and a
server salt. The key is returned once at poll creation and verified
statelessly on every authoring request:

	key := auth.GenerateAuthorKey(pollID, cfg.AuthorKeySalt)
	err := auth.ValidateAuthorKey(pollID, presentedKey, cfg.AuthorKeySalt)

# Session Tokens

Voters are identified by an opaque random token minted at registration:

	token, err := auth.GenerateSessionToken()

192 bits of entropy, URL-safe base64 without padding. The token is the
only credential; the traversal core never sees anything but the resolved
user ID.

# IP Hashing

HashIP produces a salted one-way hash of a client IP, stored on poll
results for abuse tracing without keeping raw addresses.
*/
package auth
