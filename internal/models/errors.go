package models

import "errors"

// Errors returned by route and collection operations. Every operation that
// returns one of these leaves the route and collection untouched.
var (
	ErrInvalidState    = errors.New("operation not valid in current route state")
	ErrIndexOutOfRange = errors.New("waypoint index out of range")
	ErrEmptyInput      = errors.New("name must not be empty")
	ErrNotFound        = errors.New("route not found")
	ErrInvalidCoord    = errors.New("coordinate out of range")
)
