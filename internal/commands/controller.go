package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tasklist/internal/exitcode"
	"tasklist/internal/service"
	"tasklist/internal/tasklist"
)

// newController builds a controller over the command's store.
func newController(env *Env) *tasklist.Controller {
	return tasklist.New(env.Store, tasklist.WithLogger(env.Logger))
}

// loadController builds a controller and loads it. On failure the error has
// been reported and the exit code is returned.
func loadController(ctx context.Context, env *Env, errOut io.Writer) (*tasklist.Controller, int) {
	ctrl := newController(env)
	if err := ctrl.Load(ctx); err != nil {
		return nil, reportError(errOut, err)
	}
	return ctrl, exitcode.Success
}

// reportError prints err in the CLI format and maps it to an exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case service.IsAuthError(err):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, tasklist.ErrNotFound):
		fmt.Fprintln(errOut, "error: task no longer exists")
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: store error: %v\n", err)
		return exitcode.StoreError
	}
}

// resolveRow maps a 1-based row number to the task currently shown there.
func resolveRow(ctrl *tasklist.Controller, num int, errOut io.Writer) (service.Task, int) {
	task, err := ctrl.TaskAt(num - 1)
	if err != nil {
		fmt.Fprintf(errOut, "error: task number out of range: %d\n", num)
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}
