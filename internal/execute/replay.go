// Package execute runs plans. Replay re-applies a solved plan step by step
// as a behavior tree; Reactive drives a live World toward a goal with PA-BT,
// choosing rules by their declared effects instead of searching ahead.
package execute

import (
	"errors"
	"fmt"

	bt "github.com/joeycumines/go-behaviortree"
	"github.com/joeycumines/one-shot-planner/internal/planner"
)

var (
	// ErrUnknownRule is returned when a plan names a rule that is not in the
	// rule set.
	ErrUnknownRule = errors.New("execute: unknown rule")

	// ErrStepRejected is returned when a plan step's precondition does not
	// hold at the point it is replayed.
	ErrStepRejected = errors.New("execute: step rejected")

	// ErrNotDeclarative is returned by Reactive for predicates, procedures
	// or a predicate goal.
	ErrNotDeclarative = errors.New("execute: rule set is not declarative")

	// ErrGoalNotReached is returned by Reactive when ticking stops before
	// the goal holds.
	ErrGoalNotReached = errors.New("execute: goal not reached")
)

// Replay rebuilds the path a plan describes. Each step becomes a behavior
// tree node applying one rule to the current state, and the steps run as a
// single sequence. It returns the final state and whether goal holds there.
func Replay(rules []planner.Rule, initial []planner.Facts, plan []string, goal planner.Condition) (*planner.State, bool, error) {
	if err := goal.Validate(); err != nil {
		return nil, false, err
	}
	byName := make(map[string]planner.Rule, len(rules))
	for _, r := range rules {
		if _, ok := byName[r.Name]; !ok {
			byName[r.Name] = r
		}
	}

	current, err := planner.Root(initial...)
	if err != nil {
		return nil, false, err
	}

	steps := make([]bt.Node, 0, len(plan))
	for i, name := range plan {
		rule, ok := byName[name]
		if !ok {
			return nil, false, fmt.Errorf("%w: step %d: %q", ErrUnknownRule, i+1, name)
		}
		steps = append(steps, bt.New(func([]bt.Node) (bt.Status, error) {
			next, err := rule.Apply(current)
			if err != nil {
				return bt.Failure, fmt.Errorf("step %d: %w", i+1, err)
			}
			if next == nil {
				return bt.Failure, fmt.Errorf("%w: step %d: %q", ErrStepRejected, i+1, name)
			}
			current = next
			return bt.Success, nil
		}))
	}

	status, err := bt.New(bt.Sequence, steps...).Tick()
	if err != nil {
		return current, false, err
	}
	if status != bt.Success {
		return current, false, fmt.Errorf("execute: replay ended with status %s", status)
	}
	return current, goal.Holds(current), nil
}
