package command

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/joeycumines/one-shot-planner/internal/config"
	"github.com/joeycumines/one-shot-planner/internal/execute"
	"github.com/joeycumines/one-shot-planner/internal/planner"
	"github.com/joeycumines/one-shot-planner/internal/scenario"
	"github.com/joeycumines/one-shot-planner/internal/sink"
)

// ErrNoSolution is returned by solve when the pass bound is exhausted.
var ErrNoSolution = errors.New("no solution within the pass bound")

// SolveCommand searches a scenario for a plan.
type SolveCommand struct {
	*BaseCommand
	config    *config.Config
	maxPasses int
	format    string
	verify    bool
	trace     bool
	log       logFlags
}

// NewSolveCommand creates a new solve command.
func NewSolveCommand(cfg *config.Config) *SolveCommand {
	return &SolveCommand{
		BaseCommand: NewBaseCommand(
			"solve",
			"Search a scenario for the first plan that reaches its goal",
			"solve [options] <scenario|file.yaml>",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the solve command.
func (c *SolveCommand) SetupFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.maxPasses, "max-passes", -1, "Pass bound (default: the scenario's own, then solve.max-passes)")
	fs.StringVar(&c.format, "format", "", "Output format: text or json (default: solve.format)")
	fs.BoolVar(&c.verify, "verify", false, "Replay the plan through a behavior tree and check the goal")
	fs.BoolVar(&c.trace, "trace", false, "Print every accepted state as it is visited (text format)")
	c.log.setup(fs)
}

// solveReport is the json output of solve.
type solveReport struct {
	Scenario  string         `json:"scenario"`
	MaxPasses int            `json:"maxPasses"`
	Solved    bool           `json:"solved"`
	Plan      []string       `json:"plan"`
	Solution  *planner.State `json:"solution,omitempty"`
	Stats     planner.Stats  `json:"stats"`
	Verified  *bool          `json:"verified,omitempty"`
}

// Execute runs the search and reports the solution.
func (c *SolveCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if err := checkArgs(args, 1, stderr); err != nil {
		return err
	}
	logger, closer, err := resolveLogConfig(c.log, c.config, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	schema := config.DefaultSchema()
	format := c.format
	if format == "" {
		format = schema.Resolve(c.config, "solve.format")
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s", format)
	}
	verify := c.verify || schema.ResolveBool(c.config, "solve.verify")

	s, err := resolveScenario(args[0], c.config)
	if err != nil {
		return err
	}
	bound := passBound(c.maxPasses, s, c.config)
	logger = logger.With("scenario", s.Name)

	out := sink.NewWriter(stdout)
	opts := []planner.Option{planner.WithLogger(logger)}
	if c.trace && format == "text" {
		opts = append(opts, planner.WithTrace(out))
	}
	p, err := s.Planner(opts...)
	if err != nil {
		return err
	}
	search, err := p.Start(s.Initial, s.Goal)
	if err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if format == "text" {
		out.Line("-----------"+title(s)+"---------", 0, 2)
	}
	solution, err := search.Run(bound)
	if err != nil {
		return err
	}

	report := solveReport{
		Scenario:  s.Name,
		MaxPasses: bound,
		Solved:    solution != nil,
		Plan:      planner.Plan(solution),
		Solution:  solution,
		Stats:     search.Stats(),
	}
	if report.Plan == nil {
		report.Plan = []string{}
	}
	var verifyErr error
	if verify && solution != nil {
		ok, err := replay(s, report.Plan, logger)
		report.Verified = &ok
		verifyErr = err
	}

	if format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		writeSolveText(out, report, verifyErr)
		if err := out.Close(); err != nil {
			return err
		}
	}

	if verifyErr != nil {
		return verifyErr
	}
	if solution == nil {
		return fmt.Errorf("%s: %w (%d)", s.Name, ErrNoSolution, bound)
	}
	return nil
}

func writeSolveText(out sink.Sink, report solveReport, verifyErr error) {
	if report.Solution == nil {
		out.Line(fmt.Sprintf("No solution within %d passes (%d states visited)", report.MaxPasses, report.Stats.Visited), 0, 1)
		return
	}
	solution, _ := json.Marshal(report.Solution)
	out.Line(string(solution), 0, 1)
	transitions, _ := json.Marshal(report.Plan)
	out.Line("Transitions: "+string(transitions), 0, 1)
	switch {
	case verifyErr != nil:
		out.Line("Verification failed: "+verifyErr.Error(), 0, 1)
	case report.Verified != nil:
		out.Line("Verified: plan replays to the goal", 0, 1)
	}
}

// replay re-applies plan through execute.Replay.
func replay(s *scenario.Scenario, plan []string, logger *slog.Logger) (bool, error) {
	final, reached, err := execute.Replay(s.Rules, s.Initial, plan, s.Goal)
	if err != nil {
		return false, fmt.Errorf("verify: %w", err)
	}
	if !reached {
		return false, fmt.Errorf("verify: %w", execute.ErrGoalNotReached)
	}
	logger.Debug("plan verified", "steps", len(plan), "balance", final.Balance())
	return true, nil
}

func title(s *scenario.Scenario) string {
	if s.Description != "" {
		return s.Description
	}
	return s.Name
}

// resolveScenario finds a built-in or file scenario, also searching
// scenario.dir.
func resolveScenario(ref string, cfg *config.Config) (*scenario.Scenario, error) {
	return scenario.Resolve(ref, config.DefaultSchema().Resolve(cfg, "scenario.dir"))
}

// passBound picks the first of: an explicit flag, the scenario's own
// bound, the configured solve.max-passes.
func passBound(flagValue int, s *scenario.Scenario, cfg *config.Config) int {
	if flagValue >= 0 {
		return flagValue
	}
	if s.MaxPasses > 0 {
		return s.MaxPasses
	}
	if n := config.DefaultSchema().ResolveInt(cfg, "solve.max-passes"); n >= 0 {
		return n
	}
	return scenario.DefaultMaxPasses
}
