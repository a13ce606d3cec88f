package report

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"time"

	"github.com/newtron-network/bgpprop/pkg/record"
	"github.com/newtron-network/bgpprop/pkg/verify"
)

// Run bundles what one invocation produced, for the reporters.
type Run struct {
	Params   verify.Params
	Result   *verify.Result
	Record   *record.Record
	LogPath  string
	Duration time.Duration
}

// WriteJUnit writes a JUnit XML report for CI integration: one suite per
// switch with a single route-check test case.
func WriteJUnit(path string, runs ...*Run) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	suites := junitTestSuites{}
	for _, r := range runs {
		suite := junitTestSuite{
			Name:  r.Params.SwitchName,
			Tests: 1,
			Time:  r.Duration.Seconds(),
		}
		tc := junitTestCase{
			Name:      caseName(r.Params),
			ClassName: "bgp." + r.Params.HashName,
			Time:      r.Duration.Seconds(),
			SystemOut: r.LogPath,
		}
		switch {
		case r.Result.Skipped:
			suite.Skipped++
			tc.Skipped = &junitSkipped{Message: "first leaf switch originates the route"}
		case !r.Result.Passed:
			suite.Failures++
			tc.Failure = &junitFailure{
				Message: r.Result.Detail,
				Type:    "route-check",
			}
		}
		suite.Cases = append(suite.Cases, tc)
		suites.Suites = append(suites.Suites, suite)
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, append([]byte(xml.Header), data...), 0o644)
}

func caseName(p verify.Params) string {
	if p.RoutePresent {
		return "route " + p.Route() + " present after restart"
	}
	return "route " + p.Route() + " withdrawn after link down"
}

// JUnit XML types

type junitTestSuites struct {
	XMLName xml.Name         `xml:"testsuites"`
	Suites  []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Skipped  int             `xml:"skipped,attr"`
	Time     float64         `xml:"time,attr"`
	Cases    []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}
