// Package testutil provides test doubles and integration helpers.
package testutil

import (
	"context"
	"time"

	"github.com/newtron-network/bgpprop/pkg/runner"
)

// dateCommand matches record.DateCommand; repeated here so packages under
// test can import testutil without a cycle.
const dateCommand = "date +%Y%m%d%T"

// DateBase is the first timestamp the fake clock hands out.
var DateBase = time.Date(2018, 9, 14, 12, 0, 0, 0, time.UTC)

// FakeRunner is a scripted runner.Runner. Commands without a scripted
// response produce no output. The date command returns a clock that
// advances one second per call, so keys stay unique.
type FakeRunner struct {
	Responses map[string]runner.Result
	Errors    map[string]error
	Calls     []string

	// NoClock makes the date command return nothing.
	NoClock bool

	ticks int
}

// NewFakeRunner returns an empty fake.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Responses: make(map[string]runner.Result),
		Errors:    make(map[string]error),
	}
}

// On scripts the response for cmd.
func (f *FakeRunner) On(cmd string, res runner.Result) *FakeRunner {
	f.Responses[cmd] = res
	return f
}

// Stdout scripts a successful command that prints out.
func (f *FakeRunner) Stdout(cmd, out string) *FakeRunner {
	return f.On(cmd, runner.Result{Stdout: out})
}

// Fail scripts an issue error for cmd.
func (f *FakeRunner) Fail(cmd string, err error) *FakeRunner {
	f.Errors[cmd] = err
	return f
}

// Run implements runner.Runner.
func (f *FakeRunner) Run(ctx context.Context, cmdline string) (runner.Result, error) {
	f.Calls = append(f.Calls, cmdline)
	if err, ok := f.Errors[cmdline]; ok {
		return runner.Result{}, err
	}
	if cmdline == dateCommand {
		if f.NoClock {
			return runner.Result{}, nil
		}
		return runner.Result{Stdout: Stamp(f.tick()) + "\n"}, nil
	}
	return f.Responses[cmdline], nil
}

func (f *FakeRunner) tick() int {
	n := f.ticks
	f.ticks++
	return n
}

// Stamp returns the n-th timestamp of the fake clock, formatted like
// `date +%Y%m%d%T`.
func Stamp(n int) string {
	return DateBase.Add(time.Duration(n) * time.Second).Format("2006010215:04:05")
}

// CommandCalls returns the calls that were not the date command.
func (f *FakeRunner) CommandCalls() []string {
	var out []string
	for _, c := range f.Calls {
		if c != dateCommand {
			out = append(out, c)
		}
	}
	return out
}
