package planner

import "errors"

var (
	// ErrMalformedRule is returned when a rule has no name, or lacks a valid
	// precondition or effect.
	ErrMalformedRule = errors.New("planner: malformed rule")

	// ErrMalformedCondition is returned for a condition that is neither a
	// pattern nor a predicate (e.g. the zero value used as a goal).
	ErrMalformedCondition = errors.New("planner: malformed condition")

	// ErrInvalidValue is returned for fact values that are not a number,
	// string, bool or nil.
	ErrInvalidValue = errors.New("planner: invalid fact value")

	// ErrInvalidBound is returned for a negative pass bound.
	ErrInvalidBound = errors.New("planner: invalid pass bound")

	// ErrProcedure wraps an error returned by a procedural effect. It aborts
	// the search.
	ErrProcedure = errors.New("planner: procedure failed")
)
