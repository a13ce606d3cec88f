package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/newtron-network/bgpprop/pkg/record"
	"github.com/newtron-network/bgpprop/pkg/util"
)

// Commands issued during a run.
const (
	RunningConfigCommand  = "vtysh -c 'sh running-config'"
	DaemonStatusCommand   = "service quagga status"
	RouteTableCommand     = "vtysh -c 'sh ip route'"
	PlatformStatusCommand = "goes status"
)

// LinkDownCommands are run on the first leaf by the orchestrator before an
// absence check; they are recorded here as placeholders.
var LinkDownCommands = []string{
	"ifconfig eth-19-1 down",
	"ifconfig eth-3-1 down",
}

// Result is the verdict of one run.
type Result struct {
	Passed  bool
	Skipped bool   // the route-table check did not run on this switch
	Route   string // route string looked for
	Detail  string // failure summary, "" when nothing failed
}

// Status returns "Passed" or "Failed".
func (r *Result) Status() string {
	if r.Passed {
		return "Passed"
	}
	return "Failed"
}

func (r *Result) fail(format string, args ...interface{}) {
	r.Passed = false
	r.Detail += fmt.Sprintf(format, args...)
}

// Run executes the verification sequence for p.SwitchName through rec and
// appends result.detail to its record. The returned error is non-nil only
// when a command could not be issued; route mismatches are reported in the
// Result.
func Run(ctx context.Context, rec *record.Recorder, p Params) (*Result, error) {
	log := util.WithSwitch(p.SwitchName)
	res := &Result{Passed: true, Route: p.Route()}

	if p.RoutePresent {
		for _, cmd := range []string{RunningConfigCommand, record.RestartCommand, DaemonStatusCommand} {
			if _, err := rec.Execute(ctx, cmd); err != nil {
				return nil, err
			}
		}
	} else {
		leaf := p.FirstLeaf()
		for _, cmd := range LinkDownCommands {
			rec.Placeholder(leaf, cmd)
		}
	}

	if p.SkipRouteCheck() {
		res.Skipped = true
		log.Info("first leaf switch, route check skipped")
	} else {
		checkNetwork(log, util.FirstOf(p.Networks()))
		out, err := rec.Execute(ctx, RouteTableCommand)
		if err != nil {
			return nil, err
		}
		found := out.Contains(res.Route)
		switch {
		case p.RoutePresent && !found:
			res.fail("On Switch %s bgp route %s is not present in the output of command %s\n",
				p.SwitchName, res.Route, RouteTableCommand)
		case !p.RoutePresent && found:
			res.fail("On Switch %s bgp route %s is present in the output of command %s even after shutting down this route\n",
				p.SwitchName, res.Route, RouteTableCommand)
		}
		log.Infof("route %q found=%t expected=%t", res.Route, found, p.RoutePresent)
	}

	rec.Record().SetResult(record.KeyDetail, res.Detail)

	if _, err := rec.Execute(ctx, PlatformStatusCommand); err != nil {
		return nil, err
	}

	if !res.Passed {
		log.Warn(strings.TrimSpace(res.Detail))
	}
	return res, nil
}

// checkNetwork warns when the checked network cannot appear verbatim in the
// routing table. The check still runs.
func checkNetwork(log *logrus.Entry, network string) {
	canon, ok := util.CanonicalPrefix(network)
	switch {
	case !ok:
		log.Warnf("leaf network %q is not an IPv4 prefix", network)
	case canon != network:
		log.Warnf("leaf network %q has host bits set, the routing table lists it as %s", network, canon)
	}
}
