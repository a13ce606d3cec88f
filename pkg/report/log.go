// Package report writes the verdict and transcript of a run: the per-hash log
// file, a JUnit report and a console summary.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/newtron-network/bgpprop/pkg/record"
)

// Mode selects how the log file is opened.
type Mode int

const (
	// ModeOverwrite starts a fresh log. Used by the presence phase.
	ModeOverwrite Mode = iota
	// ModeAppend adds to the log of the presence phase for the same hash.
	ModeAppend
)

func (m Mode) String() string {
	if m == ModeAppend {
		return "append"
	}
	return "overwrite"
}

// ModeFor returns the log mode for a run expecting the route present or not.
func ModeFor(routePresent bool) Mode {
	if routePresent {
		return ModeOverwrite
	}
	return ModeAppend
}

func (m Mode) flags() int {
	if m == ModeAppend {
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
}

// LogPath returns {dir}/{hash}.log.
func LogPath(dir, hash string) string {
	return filepath.Join(dir, hash+".log")
}

// Finalize appends result.status for the given verdict.
func Finalize(rec *record.Record, passed bool) {
	status := "Failed"
	if passed {
		status = "Passed"
	}
	rec.SetResult(record.KeyStatus, status)
}

// Write renders rec as blocks of key, value and a blank line.
func Write(w io.Writer, rec *record.Record) error {
	bw := bufio.NewWriter(w)
	for _, p := range rec.Pairs() {
		bw.WriteString(p.Key)
		bw.WriteByte('\n')
		bw.WriteString(p.Value)
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

// WriteLog writes rec to path using mode.
func WriteLog(path string, rec *record.Record, mode Mode) error {
	f, err := os.OpenFile(path, mode.flags(), 0644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	if err := Write(f, rec); err != nil {
		f.Close()
		return fmt.Errorf("write log %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close log %s: %w", path, err)
	}
	return nil
}

// Key shapes written by Write. A value line only starts a new block when it
// follows a blank line and matches one of these, so command output with
// blank lines survives a read-back.
var (
	commandKeyRe     = regexp.MustCompile(`^\S+ (\d{10}:\d{2}:\d{2}|None) \S`)
	placeholderKeyRe = regexp.MustCompile(`^\S+ ifconfig \S+ (down|up)$`)
)

func isKey(line string) bool {
	switch line {
	case record.KeyDetail, record.KeyStatus:
		return true
	}
	return commandKeyRe.MatchString(line) || placeholderKeyRe.MatchString(line)
}

// maxLineSize bounds a single log line; running-config dumps are long.
const maxLineSize = 16 * 1024 * 1024

// ReadLog parses a log written by Write back into ordered pairs. A log that
// holds several runs (presence then absence phase) yields all of them.
func ReadLog(r io.Reader) ([]record.Pair, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		pairs     []record.Pair
		cur       *record.Pair
		vals      []string
		blockOpen = true
		lineNo    int
	)
	flush := func() {
		if cur == nil {
			return
		}
		if n := len(vals); n > 0 && vals[n-1] == "" {
			vals = vals[:n-1]
		}
		cur.Value = strings.Join(vals, "\n")
		pairs = append(pairs, *cur)
	}

	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if blockOpen && isKey(line) {
			flush()
			cur = &record.Pair{Key: line}
			vals = nil
			blockOpen = false
			continue
		}
		if cur == nil {
			if line == "" {
				continue
			}
			return nil, fmt.Errorf("log line %d: expected a key, got %q", lineNo, line)
		}
		vals = append(vals, line)
		blockOpen = line == ""
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	flush()
	return pairs, nil
}

// ReadLogFile opens and parses the log at path.
func ReadLogFile(path string) ([]record.Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLog(f)
}
