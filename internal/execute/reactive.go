package execute

import (
	"fmt"
	"log/slog"

	bt "github.com/joeycumines/go-behaviortree"
	pabtpkg "github.com/joeycumines/go-pabt"
	"github.com/joeycumines/one-shot-planner/internal/planner"
)

var (
	_ pabtpkg.IState    = (*reactiveState)(nil)
	_ pabtpkg.IAction   = (*reactiveAction)(nil)
	_ pabtpkg.Condition = (*factCondition)(nil)
	_ pabtpkg.Effect    = (*factEffect)(nil)
)

// Reactive drives world toward goal with PA-BT. Rules are picked by their
// patches: when a condition fails, every rule whose patch sets the failing
// key to a matching value becomes a candidate, and its precondition is
// expanded in turn. Costs are ignored.
//
// Only declarative rule sets are supported: pattern preconditions, patch
// effects and a pattern goal. The returned names are the rules applied, in
// order. The tree is ticked at most maxTicks times.
func Reactive(rules []planner.Rule, world *World, goal planner.Condition, maxTicks int) ([]string, error) {
	if err := goal.Validate(); err != nil {
		return nil, err
	}
	goalFacts, ok := goal.PatternFacts()
	if !ok {
		return nil, fmt.Errorf("%w: goal is a predicate", ErrNotDeclarative)
	}

	state := &reactiveState{world: world}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		pre, ok := r.Precondition.PatternFacts()
		if !ok {
			return nil, fmt.Errorf("%w: rule %q has a predicate precondition", ErrNotDeclarative, r.Name)
		}
		patch, ok := r.Effect.PatchFacts()
		if !ok {
			return nil, fmt.Errorf("%w: rule %q has a procedure effect", ErrNotDeclarative, r.Name)
		}
		state.actions = append(state.actions, &reactiveAction{
			name:       r.Name,
			state:      state,
			pre:        pre,
			patch:      patch,
			conditions: []pabtpkg.IConditions{conditions(pre)},
			effects:    effects(patch),
		})
	}

	if world.Matches(goalFacts) {
		return nil, nil
	}

	plan, err := pabtpkg.INew(state, []pabtpkg.IConditions{conditions(goalFacts)})
	if err != nil {
		return nil, fmt.Errorf("execute: failed to build reactive plan: %w", err)
	}
	node := plan.Node()
	for tick := 1; tick <= maxTicks; tick++ {
		status, err := node.Tick()
		if err != nil {
			return state.applied, err
		}
		slog.Debug("reactive tick", "tick", tick, "status", status, "applied", len(state.applied))
		switch status {
		case bt.Success:
			return state.applied, nil
		case bt.Failure:
			return state.applied, fmt.Errorf("%w: plan failed after %d ticks", ErrGoalNotReached, tick)
		}
	}
	return state.applied, fmt.Errorf("%w: %d ticks", ErrGoalNotReached, maxTicks)
}

type reactiveState struct {
	world   *World
	actions []*reactiveAction
	applied []string
}

func (s *reactiveState) Variable(key any) (any, error) {
	k, ok := key.(string)
	if !ok {
		return nil, fmt.Errorf("unsupported key type: %T", key)
	}
	return s.world.Get(k), nil
}

func (s *reactiveState) Actions(failed pabtpkg.Condition) ([]pabtpkg.IAction, error) {
	var out []pabtpkg.IAction
	for _, a := range s.actions {
		for _, e := range a.effects {
			if e.Key() == failed.Key() && failed.Match(e.Value()) {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

type reactiveAction struct {
	name       string
	state      *reactiveState
	pre        planner.Facts
	patch      planner.Facts
	conditions []pabtpkg.IConditions
	effects    pabtpkg.Effects
}

func (a *reactiveAction) Conditions() []pabtpkg.IConditions { return a.conditions }

func (a *reactiveAction) Effects() pabtpkg.Effects { return a.effects }

func (a *reactiveAction) Node() bt.Node {
	return bt.New(func([]bt.Node) (bt.Status, error) {
		if !a.state.world.Matches(a.pre) {
			return bt.Failure, nil
		}
		a.state.world.apply(a.patch)
		a.state.applied = append(a.state.applied, a.name)
		return bt.Success, nil
	})
}

type factCondition struct {
	key   string
	value any
}

func (c *factCondition) Key() any { return c.key }

func (c *factCondition) Match(value any) bool { return planner.Equal(value, c.value) }

type factEffect struct {
	key   string
	value any
}

func (e *factEffect) Key() any { return e.key }

func (e *factEffect) Value() any { return e.value }

func conditions(pattern planner.Facts) pabtpkg.IConditions {
	out := make(pabtpkg.IConditions, 0, len(pattern))
	for _, k := range pattern.Keys() {
		out = append(out, &factCondition{key: k, value: pattern[k]})
	}
	return out
}

func effects(patch planner.Facts) pabtpkg.Effects {
	out := make(pabtpkg.Effects, 0, len(patch))
	for _, k := range patch.Keys() {
		out = append(out, &factEffect{key: k, value: patch[k]})
	}
	return out
}
