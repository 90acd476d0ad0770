package command

import (
	"flag"
	"fmt"
	"io"
)

// Command represents a command that can be executed.
type Command interface {
	// Name returns the command name.
	Name() string

	// Description returns a short description of the command.
	Description() string

	// Usage returns the usage string for the command.
	Usage() string

	// SetupFlags configures the flag.FlagSet for this command.
	SetupFlags(fs *flag.FlagSet)

	// Execute runs the command with the arguments left after flag parsing.
	Execute(args []string, stdout, stderr io.Writer) error
}

// BaseCommand provides a basic implementation that other commands can embed.
type BaseCommand struct {
	name        string
	description string
	usage       string
}

// NewBaseCommand creates a new BaseCommand.
func NewBaseCommand(name, description, usage string) *BaseCommand {
	return &BaseCommand{
		name:        name,
		description: description,
		usage:       usage,
	}
}

// Name returns the command name.
func (c *BaseCommand) Name() string {
	return c.name
}

// Description returns the command description.
func (c *BaseCommand) Description() string {
	return c.description
}

// Usage returns the command usage.
func (c *BaseCommand) Usage() string {
	return c.usage
}

// SetupFlags is a default implementation that does nothing.
func (c *BaseCommand) SetupFlags(fs *flag.FlagSet) {}

// checkArgs fails unless exactly want positional arguments were given.
func checkArgs(args []string, want int, stderr io.Writer) error {
	if len(args) == want {
		return nil
	}
	if len(args) > want {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args[want:])
		return fmt.Errorf("unexpected arguments")
	}
	_, _ = fmt.Fprintf(stderr, "expected %d argument(s), got %d\n", want, len(args))
	return fmt.Errorf("missing arguments")
}
