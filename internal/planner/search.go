package planner

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/joeycumines/one-shot-planner/internal/sink"
)

// Planner holds a validated, ordered rule set. It keeps no search state and
// can be reused for any number of searches.
type Planner struct {
	rules  []Rule
	logger *slog.Logger
	trace  sink.Sink
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTrace sets a sink that receives one line per accepted state,
// indented by the state's age.
func WithTrace(s sink.Sink) Option {
	return func(p *Planner) {
		if s != nil {
			p.trace = s
		}
	}
}

// New validates rules and returns a Planner that tries them in the given
// order.
func New(rules []Rule, opts ...Option) (*Planner, error) {
	p := &Planner{
		rules:  make([]Rule, len(rules)),
		logger: slog.Default(),
		trace:  sink.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	for i, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if rule.Cost < 0 {
			// dominance compares balances, so negative costs can let a
			// costlier-looking path win; not special-cased
			p.logger.Warn("rule has negative cost", "rule", rule.Name, "cost", rule.Cost)
		}
		p.rules[i] = rule
	}
	return p, nil
}

// Rules returns the validated rules in order.
func (p *Planner) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// Stats counts the work done by a search.
type Stats struct {
	Passes    int `json:"passes"`
	Expanded  int `json:"expanded"`
	Generated int `json:"generated"`
	Dominated int `json:"dominated"`
	Visited   int `json:"visited"`
}

// Search is one planning run. It owns its visited set and must be used from
// a single goroutine.
type Search struct {
	planner *Planner
	goal    Condition
	space   *Space
	stats   Stats
	logger  *slog.Logger
}

// Start builds the root state from initial and prepares a search for goal.
// Nothing is expanded until Pass or Run is called.
func (p *Planner) Start(initial []Facts, goal Condition) (*Search, error) {
	if err := goal.Validate(); err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}
	root, err := Root(initial...)
	if err != nil {
		return nil, fmt.Errorf("initial facts: %w", err)
	}
	root.open = true
	s := &Search{
		planner: p,
		goal:    goal,
		space:   root.space,
		logger:  p.logger.With("run", uuid.NewString()),
	}
	s.stats.Visited = 1
	s.logger.Debug("search started", "rules", len(p.rules), "facts", len(root.local))
	return s, nil
}

// Pass runs one level-synchronous expansion. Only the states visited before
// the pass began are expanded; states added during the pass are compared
// against for dominance but expanded next time. It returns the first
// accepted child that satisfies the goal, or nil.
func (s *Search) Pass() (*State, error) {
	s.stats.Passes++
	n := s.space.Len()
	for i := 0; i < n; i++ {
		src := s.space.At(i)
		if !src.open {
			continue
		}
		src.open = false
		s.stats.Expanded++
		solution, err := s.expand(src)
		if err != nil || solution != nil {
			return solution, err
		}
	}
	s.logger.Debug("pass complete",
		"pass", s.stats.Passes,
		"visited", s.space.Len(),
		"dominated", s.stats.Dominated)
	return nil, nil
}

// expand tries every rule on src in order. A dominated child ends the
// expansion of src for this pass.
func (s *Search) expand(src *State) (*State, error) {
	for i := range s.planner.rules {
		rule := &s.planner.rules[i]
		child, err := rule.tryExpand(src)
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}
		s.stats.Generated++
		if by := s.dominator(child); by != nil {
			s.stats.Dominated++
			s.logger.Debug("child dominated",
				"source", src.index,
				"rule", rule.Name,
				"by", by.index)
			return nil, nil
		}
		src.open = true
		s.space.push(child)
		s.stats.Visited++
		s.planner.trace.Line(traceLine(child), child.age, 1)
		if s.goal.Holds(child) {
			return child, nil
		}
	}
	return nil, nil
}

// dominator returns the first visited state whose facts all hold in child
// at no higher balance.
func (s *Search) dominator(child *State) *State {
	for _, visited := range s.space.states {
		if visited.balance <= child.balance && visited.Subsumes(child) {
			return visited
		}
	}
	return nil
}

// Run performs up to maxPasses passes and returns the first solution, or nil
// if the bound is exhausted.
func (s *Search) Run(maxPasses int) (*State, error) {
	if maxPasses < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBound, maxPasses)
	}
	for i := 0; i < maxPasses; i++ {
		solution, err := s.Pass()
		if err != nil {
			s.logger.Error("search aborted", "pass", s.stats.Passes, "error", err)
			return nil, err
		}
		if solution != nil {
			s.logger.Info("solution found",
				"pass", s.stats.Passes,
				"visited", s.space.Len(),
				"balance", solution.balance,
				"age", solution.age)
			return solution, nil
		}
	}
	s.logger.Info("no solution within bound", "passes", maxPasses, "visited", s.space.Len())
	return nil, nil
}

// Visited returns the visited states in insertion order. The root is first.
func (s *Search) Visited() []*State {
	return append([]*State(nil), s.space.states...)
}

// Len returns the number of visited states.
func (s *Search) Len() int {
	return s.space.Len()
}

// Stats returns the counters accumulated so far.
func (s *Search) Stats() Stats {
	return s.stats
}

// Solve merges initial into a root state and searches for goal for at most
// maxPasses passes. A nil state with a nil error means no solution was found
// within the bound; that is a normal outcome.
func (p *Planner) Solve(initial []Facts, goal Condition, maxPasses int) (*State, error) {
	if maxPasses < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBound, maxPasses)
	}
	s, err := p.Start(initial, goal)
	if err != nil {
		return nil, err
	}
	return s.Run(maxPasses)
}

func traceLine(s *State) string {
	return s.rule + " balance=" + strconv.FormatFloat(s.balance, 'g', -1, 64)
}
