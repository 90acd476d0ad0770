package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/joeycumines/one-shot-planner/internal/planner"
	"gopkg.in/yaml.v3"
)

// fileScenario is the YAML shape of a scenario.
//
//	name: door
//	maxPasses: 10
//	initial:
//	  - {agent.hasKey: 0, guard.hasKey: 1}
//	rules:
//	  - name: "[ask for key]"
//	    cost: 1
//	    pre: {guard.hasKey: 1}                    # mapping: pattern
//	    post: {agent.hasKey: 1, guard.hasKey: 0}  # mapping: patch
//	  - name: "[unlock door]"
//	    cost: 1
//	    pre: 'facts["agent.hasKey"] > 0'          # string: expr predicate
//	    post: '{"door.isLocked": 0}'              # string: expr returning a patch
//	goal: {door.isLocked: 0}
type fileScenario struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	MaxPasses   int              `yaml:"maxPasses"`
	Initial     []map[string]any `yaml:"initial"`
	Rules       []fileRule       `yaml:"rules"`
	Goal        yaml.Node        `yaml:"goal"`
}

type fileRule struct {
	Name string    `yaml:"name"`
	Cost float64   `yaml:"cost"`
	Pre  yaml.Node `yaml:"pre"`
	Post yaml.Node `yaml:"post"`
}

// Extensions lists the file extensions recognized as scenario files.
var Extensions = []string{".yaml", ".yml"}

// Load reads a scenario from a YAML file. A scenario without a name is named
// after the file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	s, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes a YAML scenario. Expressions are compiled up front, so a
// scenario that parses is ready to run.
func Parse(r io.Reader) (*Scenario, error) {
	var fs fileScenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrScenario)
		}
		return nil, fmt.Errorf("%w: %w", ErrScenario, err)
	}

	s := &Scenario{
		Name:        fs.Name,
		Description: fs.Description,
		MaxPasses:   fs.MaxPasses,
	}
	if fs.MaxPasses < 0 {
		return nil, fmt.Errorf("%w: maxPasses must not be negative", ErrScenario)
	}
	for i, fragment := range fs.Initial {
		facts, err := planner.Facts(fragment).Normalized()
		if err != nil {
			return nil, fmt.Errorf("%w: initial[%d]: %w", ErrScenario, i, err)
		}
		s.Initial = append(s.Initial, facts)
	}
	for i, fr := range fs.Rules {
		rule, err := fr.rule()
		if err != nil {
			return nil, fmt.Errorf("%w: rules[%d]: %w", ErrScenario, i, err)
		}
		s.Rules = append(s.Rules, rule)
	}
	goal, err := condition(&fs.Goal)
	if err != nil {
		return nil, fmt.Errorf("%w: goal: %w", ErrScenario, err)
	}
	s.Goal = goal
	return s, nil
}

func (fr *fileRule) rule() (planner.Rule, error) {
	if fr.Name == "" {
		return planner.Rule{}, errors.New("missing name")
	}
	pre, err := condition(&fr.Pre)
	if err != nil {
		return planner.Rule{}, fmt.Errorf("%s pre: %w", fr.Name, err)
	}
	post, err := effect(&fr.Post, fr.Name, fr.Cost)
	if err != nil {
		return planner.Rule{}, fmt.Errorf("%s post: %w", fr.Name, err)
	}
	rule := planner.Rule{Name: fr.Name, Cost: fr.Cost, Precondition: pre, Effect: post}
	if err := rule.Validate(); err != nil {
		return planner.Rule{}, err
	}
	return rule, nil
}

// condition maps a YAML mapping to a pattern and a YAML string to an expr
// predicate.
func condition(node *yaml.Node) (planner.Condition, error) {
	switch node.Kind {
	case yaml.MappingNode:
		var facts planner.Facts
		if err := node.Decode(&facts); err != nil {
			return planner.Condition{}, err
		}
		if facts == nil {
			facts = planner.Facts{}
		}
		return planner.Pattern(facts), nil
	case yaml.ScalarNode:
		program, err := expr.Compile(node.Value, expr.Env(envPrototype()), expr.AsBool())
		if err != nil {
			return planner.Condition{}, fmt.Errorf("compile %q: %w", node.Value, err)
		}
		return planner.Predicate(exprPredicate(node.Value, program)), nil
	case 0:
		return planner.Condition{}, errors.New("missing")
	default:
		return planner.Condition{}, fmt.Errorf("line %d: expected a mapping or an expression", node.Line)
	}
}

// effect maps a YAML mapping to a patch and a YAML string to an expr
// procedure. The expression must evaluate to a map of facts; the procedure
// applies it and charges the rule.
func effect(node *yaml.Node, name string, cost float64) (planner.Effect, error) {
	switch node.Kind {
	case yaml.MappingNode:
		var facts planner.Facts
		if err := node.Decode(&facts); err != nil {
			return planner.Effect{}, err
		}
		if facts == nil {
			facts = planner.Facts{}
		}
		return planner.Patch(facts), nil
	case yaml.ScalarNode:
		program, err := expr.Compile(node.Value, expr.Env(envPrototype()))
		if err != nil {
			return planner.Effect{}, fmt.Errorf("compile %q: %w", node.Value, err)
		}
		return planner.Procedure(exprProcedure(program, name, cost)), nil
	case 0:
		return planner.Effect{}, errors.New("missing")
	default:
		return planner.Effect{}, fmt.Errorf("line %d: expected a mapping or an expression", node.Line)
	}
}

// envPrototype declares the variables visible to scenario expressions.
func envPrototype() map[string]any {
	return map[string]any{
		"facts":   map[string]any{},
		"balance": 0.0,
		"age":     0,
	}
}

func exprEnv(s *planner.State) map[string]any {
	return map[string]any{
		"facts":   map[string]any(s.Facts()),
		"balance": s.Balance(),
		"age":     s.Age(),
	}
}

func exprPredicate(source string, program *vm.Program) func(*planner.State) bool {
	return func(s *planner.State) bool {
		out, err := expr.Run(program, exprEnv(s))
		if err != nil {
			slog.Debug("scenario predicate failed", "source", source, "error", err)
			return false
		}
		b, _ := out.(bool)
		return b
	}
}

func exprProcedure(program *vm.Program, name string, cost float64) func(*planner.State) error {
	return func(s *planner.State) error {
		out, err := expr.Run(program, exprEnv(s))
		if err != nil {
			return err
		}
		patch, ok := out.(map[string]any)
		if !ok {
			return fmt.Errorf("expression returned %T, want a map of facts", out)
		}
		facts, err := planner.Facts(patch).Normalized()
		if err != nil {
			return err
		}
		for _, k := range facts.Keys() {
			s.Set(k, facts[k])
		}
		s.Charge(name, cost)
		return nil
	}
}

// LoadDir loads every scenario file directly inside dir, sorted by file
// name. A missing directory yields no scenarios.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isScenarioFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func isScenarioFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Resolve finds a scenario by reference: an existing file path, a built-in
// name, or a file named ref (with a known extension) inside dir.
func Resolve(ref, dir string) (*Scenario, error) {
	if isScenarioFile(ref) {
		if _, err := os.Stat(ref); err == nil {
			return Load(ref)
		}
	}
	if s, err := Lookup(ref); err == nil {
		return s, nil
	}
	if dir != "" {
		for _, ext := range Extensions {
			path := filepath.Join(dir, ref+ext)
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownScenario, ref)
}
