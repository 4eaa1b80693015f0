package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"tasklist/internal/exitcode"
	"tasklist/internal/ui"
)

func init() {
	Register(&UICmd{})
}

// UICmd implements the interactive screen. It is also what runs when
// tasklist is invoked without arguments.
type UICmd struct{}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return nil }
func (c *UICmd) Synopsis() string  { return "Open the interactive task list" }
func (c *UICmd) Usage() string     { return "tasklist ui [common flags]" }
func (c *UICmd) NeedsStore() bool  { return true }
func (c *UICmd) LogsToFile() bool  { return true }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if !ui.IsTTY(out) {
		fmt.Fprintln(errOut, "error: the interactive screen needs a terminal (try: tasklist list)")
		return exitcode.UserError
	}

	if err := ui.Run(ctx, env.Store, ui.WithLogger(env.Logger), ui.WithIO(os.Stdin, out)); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.StoreError
	}
	return exitcode.Success
}
