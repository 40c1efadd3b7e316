package repositories

import "errors"

// Sentinel errors returned by repositories so handlers can map them to the
// right HTTP status without string matching.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)
