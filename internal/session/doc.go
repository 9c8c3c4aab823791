// Package session keeps per-visitor state for the web layer: the bookmark
// currently being viewed, the list Query, and the store version last rendered.
//
// State lives server side in a Manager (TTL + LRU, 20 minutes by default).
// The browser only holds a Signer-issued HS256 JWT whose sub claim is the
// session id. Tokens carry issuer "bookmarkd" and audience "bookmarkd-session"
// and must be HS256; anything else, or a tampered, expired or unknown token,
// simply starts a new session.
package session
