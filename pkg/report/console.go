package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/newtron-network/bgpprop/pkg/cli"
	"github.com/newtron-network/bgpprop/pkg/record"
)

// maxValueWidth truncates long outputs in the console table; the log file
// has them in full.
const maxValueWidth = 60

// PrintConsole writes the transcript table and the verdict line.
func PrintConsole(w io.Writer, r *Run) {
	fmt.Fprintf(w, "%s %s\n\n", cli.Bold("bgpprop:"), r.Params.SwitchName)

	t := cli.NewTable(w, "KEY", "VALUE")
	for _, p := range r.Record.Pairs() {
		t.Row(p.Key, summarize(p.Value))
	}
	t.Flush()
	fmt.Fprintln(w)

	label := cli.DotPad(caseName(r.Params), 64)
	switch {
	case r.Result.Skipped:
		fmt.Fprintf(w, "%s %s\n", label, cli.Yellow("SKIP"))
	case r.Result.Passed:
		fmt.Fprintf(w, "%s %s\n", label, cli.Green("PASS"))
	default:
		fmt.Fprintf(w, "%s %s\n", label, cli.Red("FAIL"))
		for _, line := range strings.Split(strings.TrimSpace(r.Result.Detail), "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	fmt.Fprintf(w, "\n%s %s", cli.Dim("log:"), r.LogPath)
	if r.Duration > 0 {
		fmt.Fprintf(w, " %s", cli.Dim("("+r.Duration.Round(time.Millisecond).String()+")"))
	}
	fmt.Fprintln(w)
}

// PrintPairs writes pairs read back from a log as a table.
func PrintPairs(w io.Writer, pairs []record.Pair) {
	t := cli.NewTable(w, "#", "KEY", "VALUE")
	for i, p := range pairs {
		t.Row(fmt.Sprint(i+1), p.Key, summarize(p.Value))
	}
	t.Flush()
}

// summarize returns the first line of v, shortened, with a marker when
// lines were dropped.
func summarize(v string) string {
	first, rest, multi := strings.Cut(v, "\n")
	if len(first) > maxValueWidth {
		first = first[:maxValueWidth-3] + "..."
	}
	if multi {
		n := strings.Count(rest, "\n") + 1
		first += cli.Dim(fmt.Sprintf(" (+%d lines)", n))
	}
	if first == "" && !multi {
		return cli.Dim("(empty)")
	}
	return first
}
