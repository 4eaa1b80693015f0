// Package ui provides the interactive terminal screen.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"tasklist/internal/service"
)

// Option configures the screen.
type Option func(*runConfig)

type runConfig struct {
	logger *log.Logger
	in     io.Reader
	out    io.Writer
}

// WithLogger sets the logger. It must not write to the terminal.
func WithLogger(l *log.Logger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIO overrides the terminal streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *runConfig) {
		c.in = in
		c.out = out
	}
}

// Run shows the task list until the user quits or ctx is cancelled.
func Run(ctx context.Context, store service.Store, opts ...Option) error {
	c := &runConfig{
		logger: log.New(io.Discard),
		in:     os.Stdin,
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if !IsTTY(c.out) {
		return fmt.Errorf("terminal screen requires a TTY")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var changes <-chan struct{}
	if w, ok := store.(service.Watcher); ok {
		ch, err := w.Watch(ctx)
		if err != nil {
			c.logger.Warn("not watching for external changes", "err", err)
		} else {
			changes = ch
		}
	}

	model := New(ctx, store, c.logger, changes)
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(c.in),
		tea.WithOutput(c.out),
	)
	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
