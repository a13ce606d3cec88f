package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/newtron-network/bgpprop/pkg/ansible"
	"github.com/newtron-network/bgpprop/pkg/record"
	"github.com/newtron-network/bgpprop/pkg/report"
	"github.com/newtron-network/bgpprop/pkg/runner"
	"github.com/newtron-network/bgpprop/pkg/util"
	"github.com/newtron-network/bgpprop/pkg/verify"
)

func setLogLevel(level string) {
	if err := util.SetLogLevel(level); err != nil {
		util.Warnf("%v", err)
	}
}

// execute runs one verification on r and writes the log file.
func execute(ctx context.Context, r runner.Runner, p verify.Params) (*report.Run, error) {
	log := util.WithOperation("verify").WithField("switch", p.SwitchName)
	start := time.Now()

	rec := record.NewRecorder(r, p.SwitchName)
	res, err := verify.Run(ctx, rec, p)
	if err != nil {
		return nil, err
	}
	report.Finalize(rec.Record(), res.Passed)

	path := report.LogPath(p.LogDirPath, p.HashName)
	mode := report.ModeFor(p.RoutePresent)
	if err := report.WriteLog(path, rec.Record(), mode); err != nil {
		return nil, err
	}
	log.Infof("%s, %d entries written to %s (%s)", res.Status(), rec.Record().Len(), path, mode)

	return &report.Run{
		Params:   p,
		Result:   res,
		Record:   rec.Record(),
		LogPath:  path,
		Duration: time.Since(start),
	}, nil
}

// runModule is the Ansible entry point: parse the args file, verify on the
// local switch and reply on out. A reply of failed=true returns
// errModuleFailed; a Failed verdict is still a successful module run.
func runModule(ctx context.Context, argsPath string, out io.Writer, r runner.Runner) error {
	fail := func(err error) error {
		if werr := ansible.FailJSON(out, err.Error()); werr != nil {
			return fmt.Errorf("%w: %v", errInfraError, werr)
		}
		return errModuleFailed
	}

	p, err := ansible.LoadArgs(argsPath)
	if err != nil {
		return fail(err)
	}
	if err := p.Validate(); err != nil {
		return fail(err)
	}

	run, err := execute(ctx, r, p)
	if err != nil {
		return fail(err)
	}
	if err := ansible.ExitJSON(out, run.Record, run.LogPath); err != nil {
		return fmt.Errorf("%w: %v", errInfraError, err)
	}
	return nil
}
