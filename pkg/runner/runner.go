package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	shlex "github.com/anmitsu/go-shlex"
)

// ErrEmptyCommand is returned for a command line with no words.
var ErrEmptyCommand = errors.New("empty command")

// exitNotStarted is reported when the binary could not be started at all.
const exitNotStarted = 127

// Runner executes one command line and returns its raw streams. An error
// means the command could not be issued (bad quoting, broken transport); a
// command that ran and failed is a Result with a non-zero ExitCode.
type Runner interface {
	Run(ctx context.Context, cmdline string) (Result, error)
}

// ExecError reports a command that could not be issued.
type ExecError struct {
	Command string
	Host    string // "" for the local host
	Err     error
}

func (e *ExecError) Error() string {
	if e.Host != "" {
		return fmt.Sprintf("exec %q on %s: %v", e.Command, e.Host, e.Err)
	}
	return fmt.Sprintf("exec %q: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Split tokenizes a command line using POSIX shell quoting rules.
func Split(cmdline string) ([]string, error) {
	argv, err := shlex.Split(cmdline, true)
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	return argv, nil
}

// Local runs commands as subprocesses of this process, without a shell.
type Local struct {
	// Dir is the working directory; "" means the current one.
	Dir string
}

// NewLocal returns a runner for the local host.
func NewLocal() *Local {
	return &Local{}
}

// Run tokenizes cmdline and executes it.
func (l *Local) Run(ctx context.Context, cmdline string) (Result, error) {
	argv, err := Split(cmdline)
	if err != nil {
		return Result{}, &ExecError{Command: cmdline, Err: err}
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = l.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		// Not started (missing binary, permissions): report it the way a
		// shell would, as stderr text with exit 127.
		res.ExitCode = exitNotStarted
		if res.Stderr == "" {
			res.Stderr = err.Error()
		}
	}
	return res, nil
}
