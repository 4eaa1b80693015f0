package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasklist/internal/exitcode"
	"tasklist/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "tasklist list [common flags]" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	ctrl, code := loadController(ctx, env, errOut)
	if code != exitcode.Success {
		return code
	}

	if ctrl.Count() == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, output.EmptyList)
		}
		return exitcode.Success
	}

	for i := 0; i < ctrl.Count(); i++ {
		output.FormatRow(out, i+1, ctrl.Title(i))
	}
	return exitcode.Success
}
