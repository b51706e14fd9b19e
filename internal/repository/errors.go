// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound indicates that a referenced document does not
// exist, while ErrAlreadyInWatchlist signals that a watchlist insert
// was rejected because the movie is already a member.
package repository

import "errors"

// ErrNotFound is returned when a document referenced by id or name does
// not exist. Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when registration collides with an existing
// account. Handlers should translate this into an HTTP 400 response with
// a user-facing message.
var ErrEmailExists = errors.New("email already exists")

// ErrGenreExists is returned when a genre create or rename collides with
// the unique name constraint.
var ErrGenreExists = errors.New("genre already exists")

// ErrAlreadyInWatchlist is returned when a watchlist add is rejected by
// the set-membership guard. This is a deliberate reject, not an
// idempotent success; handlers map it to HTTP 400.
var ErrAlreadyInWatchlist = errors.New("movie already in watchlist")
