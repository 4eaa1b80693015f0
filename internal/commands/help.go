package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasklist/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasklist help [command]" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	switch len(args) {
	case 0:
		fmt.Fprint(out, helpText)
		return exitcode.Success
	case 1:
	default:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	cmd, ok := DefaultRegistry.Find(args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	fmt.Fprintf(out, "Usage: %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
	}
	return exitcode.Success
}

const helpText = `Usage:
  tasklist [common flags]                    Open the interactive task list
  tasklist ui [common flags]
  tasklist list [common flags]               List tasks (alias: ls)
  tasklist add [common flags] <title...>     Create a task (alias: create)
  tasklist edit [common flags] <n> <title...>
                                             Change a task's title (alias: rename)
  tasklist rm [common flags] <n>             Delete a task (alias: delete)
  tasklist login [common flags]
  tasklist logout [common flags]
  tasklist help [command]
  tasklist version

Common flags:
  --config <dir>     Override config directory
  --backend <name>   Task store: file, sqlite, mysql or googletasks
  --quiet            Suppress informational output
  --debug            Print debug logs to stderr

Task numbers are the row numbers printed by list.
`
