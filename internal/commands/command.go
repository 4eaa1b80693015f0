// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"github.com/charmbracelet/log"

	"tasklist/internal/config"
	"tasklist/internal/service"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsStore returns true if the command reads or changes tasks.
	// Commands like help, version, login, logout return false.
	NeedsStore() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// FileLogger is implemented by commands that own the terminal and must
// not log to stderr while running.
type FileLogger interface {
	LogsToFile() bool
}

// Env is what the dispatcher hands to a command.
type Env struct {
	// Config is always provided (config dir, paths, backend settings).
	Config *config.Config

	// Store is nil if NeedsStore() returns false.
	Store service.Store

	// Logger is never nil.
	Logger *log.Logger
}
