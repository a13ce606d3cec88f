// Package runner executes switch CLI commands locally or over SSH and reduces
// their streams to a single tagged output.
package runner

import (
	"strings"
	"unicode"
)

// NoneText is how an absent output is rendered in logs and hashes.
const NoneText = "None"

// Source tags where an Output's text came from.
type Source int

const (
	SourceNone   Source = iota // nothing on either stream, or never captured
	SourceStdout               // trimmed standard output
	SourceStderr               // trimmed standard error, stdout was empty
	SourceText                 // a literal value, not a command's output
)

func (s Source) String() string {
	switch s {
	case SourceStdout:
		return "stdout"
	case SourceStderr:
		return "stderr"
	case SourceText:
		return "text"
	default:
		return "none"
	}
}

// Output is the tagged result of one command as it is recorded.
type Output struct {
	Source   Source
	Text     string
	ExitCode int
}

// Absent returns the output of a command whose value was not captured.
func Absent() Output { return Output{Source: SourceNone} }

// Text returns a literal output value.
func Text(s string) Output { return Output{Source: SourceText, Text: s} }

// IsAbsent reports whether there is no value.
func (o Output) IsAbsent() bool { return o.Source == SourceNone }

// String renders the value; absent renders as NoneText.
func (o Output) String() string {
	if o.IsAbsent() {
		return NoneText
	}
	return o.Text
}

// Contains reports whether the output text contains substr. An absent
// output contains nothing.
func (o Output) Contains(substr string) bool {
	if o.IsAbsent() {
		return false
	}
	return strings.Contains(o.Text, substr)
}

// Result is the raw outcome of one command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Output collapses the streams: trimmed stdout when non-empty, else trimmed
// stderr when non-empty, else absent. The exit code rides along but does not
// affect which stream wins.
func (r Result) Output() Output {
	if out := strings.TrimRightFunc(r.Stdout, unicode.IsSpace); out != "" {
		return Output{Source: SourceStdout, Text: out, ExitCode: r.ExitCode}
	}
	if out := strings.TrimRightFunc(r.Stderr, unicode.IsSpace); out != "" {
		return Output{Source: SourceStderr, Text: out, ExitCode: r.ExitCode}
	}
	return Output{Source: SourceNone, ExitCode: r.ExitCode}
}
