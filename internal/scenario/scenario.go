// Package scenario provides planning problems: built-in scenarios written in
// Go, and scenarios loaded from YAML files whose procedural parts are
// expr-lang expressions.
package scenario

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/joeycumines/one-shot-planner/internal/planner"
)

var (
	// ErrUnknownScenario is returned by Lookup for an unregistered name.
	ErrUnknownScenario = errors.New("scenario: unknown scenario")

	// ErrScenario is returned for a scenario definition that cannot be used.
	ErrScenario = errors.New("scenario: invalid definition")
)

// DefaultMaxPasses is used when a scenario does not set a pass bound.
const DefaultMaxPasses = 20

// Scenario is a complete planning problem.
type Scenario struct {
	Name        string
	Description string
	Initial     []planner.Facts
	Rules       []planner.Rule
	Goal        planner.Condition
	// MaxPasses is the suggested pass bound; 0 means DefaultMaxPasses.
	MaxPasses int
}

// Bound returns the pass bound for the scenario.
func (s *Scenario) Bound() int {
	if s.MaxPasses > 0 {
		return s.MaxPasses
	}
	return DefaultMaxPasses
}

// Planner builds a planner over the scenario's rules.
func (s *Scenario) Planner(opts ...planner.Option) (*planner.Planner, error) {
	p, err := planner.New(s.Rules, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	return p, nil
}

// Solve runs the scenario with the given pass bound (Bound() if maxPasses is
// negative).
func (s *Scenario) Solve(maxPasses int, opts ...planner.Option) (*planner.State, error) {
	p, err := s.Planner(opts...)
	if err != nil {
		return nil, err
	}
	if maxPasses < 0 {
		maxPasses = s.Bound()
	}
	return p.Solve(s.Initial, s.Goal, maxPasses)
}

// registry holds the built-in scenario constructors.
var registry = struct {
	mu    sync.RWMutex
	byKey map[string]func() *Scenario
}{byKey: make(map[string]func() *Scenario)}

// Register adds a scenario constructor under name, replacing any previous
// registration. Constructors are called on every Lookup so callers never
// share rule closures.
func Register(name string, fn func() *Scenario) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.byKey[name] = fn
}

// Lookup returns a fresh instance of the named scenario.
func Lookup(name string) (*Scenario, error) {
	registry.mu.RLock()
	fn, ok := registry.byKey[name]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return fn(), nil
}

// Names returns the registered scenario names in sorted order.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.byKey))
	for name := range registry.byKey {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("door", Door)
	Register("door-predicate", DoorPredicate)
	Register("river-crossing", RiverCrossing)
}
