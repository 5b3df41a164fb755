package services

import "errors"

// Domain errors surfaced to controllers, which map them onto HTTP responses.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden means the caller is authenticated but not allowed to
	// perform this mutation.
	ErrForbidden = errors.New("operation not allowed for this user")
	// ErrSelfVote means a user tried to vote on their own content.
	ErrSelfVote = errors.New("cannot vote on your own content")
	// ErrInvalidDirection means the vote direction is neither up nor down.
	ErrInvalidDirection = errors.New("invalid vote direction")
	// ErrCommentTooLong means a comment exceeds the length limit.
	ErrCommentTooLong = errors.New("comment exceeds maximum length")
)
