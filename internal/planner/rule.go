package planner

import (
	"fmt"
)

type conditionKind uint8

const (
	conditionInvalid conditionKind = iota
	conditionPattern
	conditionPredicate
)

// Condition is a test a state must satisfy: either a declarative pattern of
// facts, or an arbitrary predicate. Rule preconditions and goals are both
// Conditions. The zero value is malformed.
type Condition struct {
	kind      conditionKind
	pattern   Facts
	predicate func(*State) bool
}

// Pattern returns a condition that holds when every key of facts has an
// equal value in the candidate state.
func Pattern(facts Facts) Condition {
	return Condition{kind: conditionPattern, pattern: facts}
}

// Predicate returns a condition that holds when fn returns true.
func Predicate(fn func(*State) bool) Condition {
	return Condition{kind: conditionPredicate, predicate: fn}
}

// Holds evaluates c against s.
func (c Condition) Holds(s *State) bool {
	switch c.kind {
	case conditionPattern:
		return Matches(c.pattern, s)
	case conditionPredicate:
		return c.predicate(s)
	default:
		return false
	}
}

// PatternFacts returns the pattern of a declarative condition.
func (c Condition) PatternFacts() (Facts, bool) {
	return c.pattern, c.kind == conditionPattern
}

// IsPredicate reports whether c is a predicate.
func (c Condition) IsPredicate() bool {
	return c.kind == conditionPredicate
}

// Validate checks that c is a well-formed pattern or predicate, and
// normalizes pattern values in place.
func (c *Condition) Validate() error {
	switch c.kind {
	case conditionPattern:
		n, err := c.pattern.Normalized()
		if err != nil {
			return err
		}
		c.pattern = n
		return nil
	case conditionPredicate:
		if c.predicate == nil {
			return fmt.Errorf("%w: nil predicate", ErrMalformedCondition)
		}
		return nil
	default:
		return ErrMalformedCondition
	}
}

type effectKind uint8

const (
	effectInvalid effectKind = iota
	effectPatch
	effectProcedure
)

// Effect describes how a rule changes the new state: either a declarative
// patch of facts, or a procedure. The zero value is malformed.
type Effect struct {
	kind      effectKind
	patch     Facts
	procedure func(*State) error
}

// Patch returns an effect that copies facts into the new state. The engine
// then records the rule name and adds the rule cost to the balance.
func Patch(facts Facts) Effect {
	return Effect{kind: effectPatch, patch: facts}
}

// Procedure returns an effect that calls fn with the new state. fn owns all
// of the bookkeeping: it must set facts, balance, age and rule name itself
// (see State.Charge). A non-nil error aborts the search.
func Procedure(fn func(*State) error) Effect {
	return Effect{kind: effectProcedure, procedure: fn}
}

// PatchFacts returns the facts of a declarative effect.
func (e Effect) PatchFacts() (Facts, bool) {
	return e.patch, e.kind == effectPatch
}

// Validate checks that e is a well-formed patch or procedure, and
// normalizes patch values in place.
func (e *Effect) Validate() error {
	switch e.kind {
	case effectPatch:
		n, err := e.patch.Normalized()
		if err != nil {
			return err
		}
		e.patch = n
		return nil
	case effectProcedure:
		if e.procedure == nil {
			return fmt.Errorf("%w: nil procedure", ErrMalformedRule)
		}
		return nil
	default:
		return fmt.Errorf("%w: missing effect", ErrMalformedRule)
	}
}

// apply runs the effect against child, which must be unsealed.
func (e Effect) apply(child *State, name string, cost float64) error {
	switch e.kind {
	case effectProcedure:
		if err := e.procedure(child); err != nil {
			return fmt.Errorf("%w: rule %q: %w", ErrProcedure, name, err)
		}
	case effectPatch:
		for k, v := range e.patch {
			child.local[k] = v
		}
		child.rule = name
		child.balance += cost
		child.age++
	}
	return nil
}

// Rule is a named, costed state transformer gated by a precondition.
type Rule struct {
	Name         string
	Cost         float64
	Precondition Condition
	Effect       Effect
}

// Validate checks that the rule is well-formed. It fails fast on rules
// that would otherwise never match or never produce a usable state.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: empty name", ErrMalformedRule)
	}
	if err := r.Precondition.Validate(); err != nil {
		return fmt.Errorf("%w: rule %q precondition: %w", ErrMalformedRule, r.Name, err)
	}
	if err := r.Effect.Validate(); err != nil {
		return fmt.Errorf("rule %q effect: %w", r.Name, err)
	}
	return nil
}

// tryExpand derives a child of s by applying r, or returns nil if the
// precondition does not hold. The child is open and not yet visited.
func (r *Rule) tryExpand(s *State) (*State, error) {
	if !r.Precondition.Holds(s) {
		return nil, nil
	}
	child := s.derive()
	if err := r.Effect.apply(child, r.Name, r.Cost); err != nil {
		return nil, err
	}
	child.parent = s.index
	child.open = true
	return child, nil
}

// Apply applies r to s outside of a search. If the precondition holds, the
// child is appended to the space of s and returned; otherwise the result is
// nil. The rule is validated first.
func (r Rule) Apply(s *State) (*State, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if !s.Sealed() {
		return nil, fmt.Errorf("planner: apply %q: source state is not part of a space", r.Name)
	}
	child, err := r.tryExpand(s)
	if err != nil || child == nil {
		return nil, err
	}
	s.space.push(child)
	return child, nil
}
