package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2

	// exitBlock tells the assistant to feed stderr back to the model.
	exitBlock = 2
)

// errReported marks a failure whose details were already printed.
var errReported = errors.New("failure reported")

// exitError carries a specific exit code through cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func usageError(err error) error {
	return &exitError{code: exitUsage, err: err}
}

// usageArgs turns positional argument errors into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return usageError(err)
		}
		return nil
	}
}

// groupRunE shows help for a command group and rejects unknown sub-commands.
func groupRunE(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError(errors.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()))
	}
	return cmd.Help()
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// cobra reports unknown root sub-commands as plain errors.
	if strings.HasPrefix(err.Error(), "unknown command") {
		return exitUsage
	}
	return exitFailure
}
