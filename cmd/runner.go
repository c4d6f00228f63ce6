/*
Copyright © 2025 Logicos Software

runner.go implements subprocess execution for the native card tools.

Every card operation in cardprod is one invocation of one native tool.
The Runner interface keeps the tool wrappers and the production
sequence testable without a card: tests substitute a fake that records
the invocations it receives.
*/
package cmd

import (
	"errors"
	"os"
	"os/exec"
	"strings"
)

// Runner executes a native tool and reports its outcome.
//
// Run inherits the parent's stdio so the operator sees tool output and
// can answer tool prompts. Output captures stdout instead (used for
// certificate enumeration). Both return a *ToolExecutionError on a
// non-zero exit.
type Runner interface {
	Run(tool string, args ...string) error
	Output(tool string, args ...string) ([]byte, error)
}

// execRunner is the real Runner backed by os/exec.
type execRunner struct {
	log *Logger
}

// NewRunner returns a Runner that invokes tools as subprocesses.
func NewRunner(log *Logger) Runner {
	return &execRunner{log: log.WithComponent("exec")}
}

// Run implements Runner.
func (r *execRunner) Run(tool string, args ...string) error {
	r.log.Debug("running tool", "cmd", tool+" "+strings.Join(args, " "))
	cmd := exec.Command(tool, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return toolError(tool, cmd.Run())
}

// Output implements Runner. Stderr still goes to the operator.
func (r *execRunner) Output(tool string, args ...string) ([]byte, error) {
	r.log.Debug("running tool", "cmd", tool+" "+strings.Join(args, " "))
	cmd := exec.Command(tool, args...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, toolError(tool, err)
	}
	return out, nil
}

// toolError maps an exec error to a ToolExecutionError carrying the
// tool name and exit code. Start failures (tool not on PATH) use exit
// code -1.
func toolError(tool string, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ToolExecutionError{Tool: tool, ExitCode: exitErr.ExitCode(), Cause: err}
	}
	return &ToolExecutionError{Tool: tool, ExitCode: -1, Cause: err}
}
