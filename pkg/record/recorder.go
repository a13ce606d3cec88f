package record

import (
	"context"
	"strings"

	"github.com/newtron-network/bgpprop/pkg/runner"
	"github.com/newtron-network/bgpprop/pkg/util"
)

const (
	// RestartCommand restarts the routing daemon. Its output is never kept:
	// the restart can drop the session or stall while bgpd comes back.
	RestartCommand = "service quagga restart"

	// DateCommand stamps each entry with the switch's wall clock.
	DateCommand = "date +%Y%m%d%T"
)

// Recorder runs commands for one switch and appends each to its record.
type Recorder struct {
	runner runner.Runner
	sw     string
	rec    *Record
}

// NewRecorder returns a recorder for switchName writing to a fresh record.
func NewRecorder(r runner.Runner, switchName string) *Recorder {
	return &Recorder{runner: r, sw: switchName, rec: New()}
}

// Record returns the record being built.
func (r *Recorder) Record() *Record {
	return r.rec
}

// Switch returns the switch name used in keys.
func (r *Recorder) Switch() string {
	return r.sw
}

// Execute runs cmd, stamps it and appends one entry. Exactly one entry is
// appended per successful call. An error means the command (or its
// timestamp) could not be issued, and nothing was appended.
func (r *Recorder) Execute(ctx context.Context, cmd string) (runner.Output, error) {
	log := util.WithCommand(r.sw, cmd)

	out := runner.Absent()
	if strings.Contains(cmd, RestartCommand) {
		log.Debug("restarting daemon, output not captured")
		if _, err := r.runner.Run(ctx, cmd); err != nil {
			log.Warnf("restart: %v", err)
		}
	} else {
		res, err := r.runner.Run(ctx, cmd)
		if err != nil {
			return runner.Absent(), err
		}
		out = res.Output()
		if res.ExitCode != 0 {
			log.Warnf("exit status %d (%s kept)", res.ExitCode, out.Source)
		}
		log.Debugf("output: %s", out.Source)
	}

	stamp, err := r.runner.Run(ctx, DateCommand)
	if err != nil {
		return runner.Absent(), err
	}

	r.rec.Append(Entry{
		Kind:      KindCommand,
		Switch:    r.sw,
		Timestamp: stamp.Output(),
		Command:   cmd,
		Output:    out,
	})
	return out, nil
}

// Placeholder appends an entry for a command that another host runs.
func (r *Recorder) Placeholder(switchName, cmd string) {
	util.WithCommand(switchName, cmd).Debug("recorded placeholder")
	r.rec.Append(Entry{
		Kind:    KindPlaceholder,
		Switch:  switchName,
		Command: cmd,
		Output:  runner.Absent(),
	})
}
