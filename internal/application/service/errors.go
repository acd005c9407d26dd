package service

import "errors"

var (
	// ErrCommentRequired is returned when a reject is requested without a
	// non-empty comment
	ErrCommentRequired = errors.New("a comment is required when rejecting a submission")

	// ErrMissingField is returned when a create/clone request lacks a
	// required field
	ErrMissingField = errors.New("required field is missing")

	// ErrNotCloneable is returned when a clone is requested for a
	// submission that is not rejected
	ErrNotCloneable = errors.New("only rejected submissions can be cloned")
)
