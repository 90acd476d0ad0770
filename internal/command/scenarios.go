package command

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/joeycumines/one-shot-planner/internal/config"
	"github.com/joeycumines/one-shot-planner/internal/scenario"
)

// ScenariosCommand lists the built-in scenarios and the scenario files in
// the scenario directory.
type ScenariosCommand struct {
	*BaseCommand
	config *config.Config
	dir    string
}

// NewScenariosCommand creates a new scenarios command.
func NewScenariosCommand(cfg *config.Config) *ScenariosCommand {
	return &ScenariosCommand{
		BaseCommand: NewBaseCommand(
			"scenarios",
			"List available scenarios",
			"scenarios [options]",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the scenarios command.
func (c *ScenariosCommand) SetupFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.dir, "dir", "", "Scenario directory (default: scenario.dir)")
}

// Execute prints one line per scenario.
func (c *ScenariosCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if err := checkArgs(args, 0, stderr); err != nil {
		return err
	}
	dir := c.dir
	if dir == "" {
		dir = config.DefaultSchema().Resolve(c.config, "scenario.dir")
	}

	w := tabwriter.NewWriter(stdout, 0, 8, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSOURCE\tDESCRIPTION")
	for _, name := range scenario.Names() {
		s, err := scenario.Lookup(name)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%s\tbuiltin\t%s\n", s.Name, s.Description)
	}
	if dir != "" {
		files, err := scenario.LoadDir(dir)
		if err != nil {
			_ = w.Flush()
			return err
		}
		for _, s := range files {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, dir, s.Description)
		}
	}
	return w.Flush()
}
