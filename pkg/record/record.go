// Package record holds the ordered transcript of one verification run.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/newtron-network/bgpprop/pkg/runner"
)

// Reserved keys appended after the command entries.
const (
	KeyDetail = "result.detail"
	KeyStatus = "result.status"
)

// Kind distinguishes how an entry came to be in the record.
type Kind int

const (
	KindCommand     Kind = iota // executed here, timestamped
	KindPlaceholder             // executed by the orchestrator, recorded only
	KindResult                  // reserved result.* key
)

// Entry is one line item of the transcript.
type Entry struct {
	Kind      Kind
	Switch    string
	Timestamp runner.Output // output of the date command; KindCommand only
	Command   string        // command text, or the reserved key for KindResult
	Output    runner.Output
}

// Key returns the composite key used in the log file and result hash.
func (e Entry) Key() string {
	switch e.Kind {
	case KindPlaceholder:
		return e.Switch + " " + e.Command
	case KindResult:
		return e.Command
	default:
		return fmt.Sprintf("%s %s %s", e.Switch, e.Timestamp, e.Command)
	}
}

// Value returns the rendered value, NoneText when absent.
func (e Entry) Value() string {
	return e.Output.String()
}

// Pair is a rendered (key, value) item.
type Pair struct {
	Key   string
	Value string
}

// Record is an insertion-ordered transcript. The zero value is ready to use.
type Record struct {
	entries []Entry
}

// New returns an empty record.
func New() *Record {
	return &Record{}
}

// Append adds e at the end.
func (r *Record) Append(e Entry) {
	r.entries = append(r.entries, e)
}

// SetResult appends a reserved result entry.
func (r *Record) SetResult(key, value string) {
	r.Append(Entry{Kind: KindResult, Command: key, Output: runner.Text(value)})
}

// Len returns the number of entries.
func (r *Record) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the entries in insertion order.
func (r *Record) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Pairs renders every entry in insertion order.
func (r *Record) Pairs() []Pair {
	pairs := make([]Pair, len(r.entries))
	for i, e := range r.entries {
		pairs[i] = Pair{Key: e.Key(), Value: e.Value()}
	}
	return pairs
}

// Lookup returns the last entry with the given key.
func (r *Record) Lookup(key string) (Entry, bool) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Key() == key {
			return r.entries[i], true
		}
	}
	return Entry{}, false
}

// Status returns the value of result.status, or "" if not yet set.
func (r *Record) Status() string {
	e, ok := r.Lookup(KeyStatus)
	if !ok {
		return ""
	}
	return e.Value()
}

// Detail returns the value of result.detail, or "" if not set.
func (r *Record) Detail() string {
	e, ok := r.Lookup(KeyDetail)
	if !ok {
		return ""
	}
	return e.Value()
}

// MarshalJSON encodes the record as a JSON object whose members keep
// insertion order. Absent values encode as null.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(&buf, e.Key()); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if e.Output.IsAbsent() {
			buf.WriteString("null")
			continue
		}
		if err := writeString(&buf, e.Output.Text); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeString appends s as a JSON string. Route output is full of '>' so
// HTML escaping stays off.
func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
