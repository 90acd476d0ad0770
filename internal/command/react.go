package command

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/joeycumines/one-shot-planner/internal/config"
	"github.com/joeycumines/one-shot-planner/internal/execute"
)

const defaultMaxTicks = 100

// ReactCommand drives a declarative scenario with a reactive behavior tree
// instead of searching it.
type ReactCommand struct {
	*BaseCommand
	config   *config.Config
	maxTicks int
	log      logFlags
}

// NewReactCommand creates a new react command.
func NewReactCommand(cfg *config.Config) *ReactCommand {
	return &ReactCommand{
		BaseCommand: NewBaseCommand(
			"react",
			"Reach a scenario goal by ticking a reactive behavior tree",
			"react [options] <scenario|file.yaml>",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the react command.
func (c *ReactCommand) SetupFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.maxTicks, "max-ticks", -1, "Tick bound (default: [react] max-ticks)")
	c.log.setup(fs)
}

// Execute ticks the tree and prints the applied rules and the final facts.
func (c *ReactCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if err := checkArgs(args, 1, stderr); err != nil {
		return err
	}
	logger, closer, err := resolveLogConfig(c.log, c.config, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	maxTicks := c.maxTicks
	if maxTicks < 0 {
		maxTicks, err = strconv.Atoi(config.DefaultSchema().ResolveCommand(c.config, "react", "max-ticks"))
		if err != nil || maxTicks < 0 {
			maxTicks = defaultMaxTicks
		}
	}

	s, err := resolveScenario(args[0], c.config)
	if err != nil {
		return err
	}
	world, err := execute.NewWorld(s.Initial...)
	if err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	logger = logger.With("scenario", s.Name)

	applied, err := execute.Reactive(s.Rules, world, s.Goal, maxTicks)
	if err != nil {
		logger.Warn("reactive run failed", "error", err, "applied", len(applied))
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	logger.Info("goal reached", "applied", len(applied))

	if applied == nil {
		applied = []string{}
	}
	transitions, err := json.Marshal(applied)
	if err != nil {
		return err
	}
	facts, err := json.Marshal(world.Snapshot())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "Applied: %s\n", transitions)
	_, _ = fmt.Fprintf(stdout, "Facts: %s\n", facts)
	return nil
}
