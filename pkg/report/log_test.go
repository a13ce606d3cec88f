package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/newtron-network/bgpprop/internal/testutil"
	"github.com/newtron-network/bgpprop/pkg/record"
)

const runningConfig = `!
hostname spine1
!
router bgp 65200
 bgp router-id 192.168.0.1
 network 10.0.0.0/24
!

line vty
!`

func sampleRecord(t *testing.T) *record.Record {
	t.Helper()
	fake := testutil.NewFakeRunner().
		Stdout("vtysh -c 'sh running-config'", runningConfig+"\n").
		Stdout("goes status", "GOES status\n======================\n  Mode - SRIOV\n")
	rec := record.NewRecorder(fake, "spine1")
	for _, cmd := range []string{"vtysh -c 'sh running-config'", "service quagga restart"} {
		if _, err := rec.Execute(context.Background(), cmd); err != nil {
			t.Fatalf("Execute(%q): %v", cmd, err)
		}
	}
	rec.Record().SetResult(record.KeyDetail, "On Switch spine1 bgp route B>* 10.0.0.0/24 is not present\n")
	if _, err := rec.Execute(context.Background(), "goes status"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	Finalize(rec.Record(), false)
	return rec.Record()
}

func TestLogPath(t *testing.T) {
	if got, want := LogPath("/var/log/regtest", "bgp-1"), "/var/log/regtest/bgp-1.log"; got != want {
		t.Errorf("LogPath = %q, want %q", got, want)
	}
	if got, want := LogPath("logs/", "h"), "logs/h.log"; got != want {
		t.Errorf("LogPath = %q, want %q", got, want)
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor(true) != ModeOverwrite {
		t.Error("presence phase should overwrite")
	}
	if ModeFor(false) != ModeAppend {
		t.Error("absence phase should append")
	}
	if ModeAppend.String() != "append" || ModeOverwrite.String() != "overwrite" {
		t.Errorf("Mode.String: %s %s", ModeAppend, ModeOverwrite)
	}
}

func TestFinalize(t *testing.T) {
	rec := record.New()
	Finalize(rec, true)
	if rec.Status() != "Passed" {
		t.Errorf("Status = %q, want Passed", rec.Status())
	}
	rec = record.New()
	Finalize(rec, false)
	if rec.Status() != "Failed" {
		t.Errorf("Status = %q, want Failed", rec.Status())
	}
}

func TestWriteFormat(t *testing.T) {
	rec := record.New()
	rec.SetResult(record.KeyDetail, "")
	rec.SetResult(record.KeyStatus, "Passed")

	var buf bytes.Buffer
	if err := Write(&buf, rec); err != nil {
		t.Fatal(err)
	}
	want := "result.detail\n\n\nresult.status\nPassed\n\n"
	if buf.String() != want {
		t.Errorf("Write = %q, want %q", buf.String(), want)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	rec := sampleRecord(t)

	var buf bytes.Buffer
	if err := Write(&buf, rec); err != nil {
		t.Fatal(err)
	}
	got, err := ReadLog(&buf)
	if err != nil {
		t.Fatalf("ReadLog: %v", err)
	}
	if diff := cmp.Diff(rec.Pairs(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadLogRejectsGarbage(t *testing.T) {
	if _, err := ReadLog(strings.NewReader("not a key\nvalue\n")); err == nil {
		t.Error("expected error for a log that does not start with a key")
	}
}

func TestReadLogEmpty(t *testing.T) {
	got, err := ReadLog(strings.NewReader("\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d pairs, want 0", len(got))
	}
}

func TestWriteLogModes(t *testing.T) {
	dir := t.TempDir()
	path := LogPath(dir, "bgp-1")

	first := record.New()
	first.SetResult(record.KeyStatus, "Passed")
	second := record.New()
	second.SetResult(record.KeyStatus, "Failed")

	// A stale log from an earlier run is replaced by the presence phase.
	if err := os.WriteFile(path, []byte("stale\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteLog(path, first, ModeOverwrite); err != nil {
		t.Fatalf("WriteLog overwrite: %v", err)
	}
	if err := WriteLog(path, second, ModeAppend); err != nil {
		t.Fatalf("WriteLog append: %v", err)
	}

	pairs, err := ReadLogFile(path)
	if err != nil {
		t.Fatalf("ReadLogFile: %v", err)
	}
	want := []record.Pair{
		{Key: record.KeyStatus, Value: "Passed"},
		{Key: record.KeyStatus, Value: "Failed"},
	}
	if diff := cmp.Diff(want, pairs); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteLogAppendCreates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.log")
	rec := record.New()
	rec.SetResult(record.KeyStatus, "Passed")
	if err := WriteLog(path, rec, ModeAppend); err != nil {
		t.Fatalf("WriteLog: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log not created: %v", err)
	}
}

func TestWriteLogMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "h.log")
	if err := WriteLog(path, record.New(), ModeOverwrite); err == nil {
		t.Error("expected error for a missing log directory")
	}
}
