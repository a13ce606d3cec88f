package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/newtron-network/bgpprop/pkg/report"
	"github.com/newtron-network/bgpprop/pkg/runner"
	"github.com/newtron-network/bgpprop/pkg/settings"
	"github.com/newtron-network/bgpprop/pkg/store"
	"github.com/newtron-network/bgpprop/pkg/util"
	"github.com/newtron-network/bgpprop/pkg/verify"
)

// Environment variables consulted when the matching flag is not given.
const (
	envRedisAddr   = "BGPPROP_REDIS_ADDR"
	envSSHPassword = "BGPPROP_SSH_PASSWORD"
)

// verifyFlags holds everything the verify command reads from its flags.
type verifyFlags struct {
	params    verify.Params
	leafList  []string
	paramFile string

	sshHost string
	sshUser string
	sshPort int
	sshKey  string

	redisAddr string
	redisDB   int

	junitPath string
	strict    bool
	logLevel  string
	jsonLogs  bool
}

func newVerifyCmd() *cobra.Command {
	cmd, _ := verifyCommand()
	return cmd
}

// verifyCommand returns the command and the flag values it binds.
func verifyCommand() (*cobra.Command, *verifyFlags) {
	f := &verifyFlags{params: verify.DefaultParams()}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run the propagation check from the command line",
		Long: `Run the propagation check and print the transcript and verdict.

Parameters come from --params (YAML, same keys as the module arguments) and
are overridden by individual flags. Commands run locally unless --ssh-host
is given. With a Redis address (flag, BGPPROP_REDIS_ADDR or settings) the
record is also stored in the hash named --hash-name.

  bgpprop verify --params spine1.yaml
  bgpprop verify --params spine1.yaml --route-present=false --strict
  bgpprop verify --params spine1.yaml --ssh-host 10.1.1.5 --ssh-key ~/.ssh/id_rsa`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case verboseFlag:
				setLogLevel("debug")
			case f.logLevel != "":
				setLogLevel(f.logLevel)
			}
			if f.jsonLogs {
				util.SetJSONFormat()
			}

			s, err := settings.Load()
			if err != nil {
				util.Warnf("ignoring settings: %v", err)
				s = &settings.Settings{}
			}

			p, err := f.resolveParams(cmd.Flags(), s)
			if err != nil {
				return fmt.Errorf("%w: %v", errInfraError, err)
			}
			if err := p.Validate(); err != nil {
				return fmt.Errorf("%w: %v", errInfraError, err)
			}
			if err := os.MkdirAll(p.LogDirPath, 0755); err != nil {
				return fmt.Errorf("%w: %v", errInfraError, err)
			}

			r, closeRunner, err := f.openRunner(s)
			if err != nil {
				return fmt.Errorf("%w: %v", errInfraError, err)
			}
			defer closeRunner()

			run, err := execute(cmd.Context(), r, p)
			if err != nil {
				return fmt.Errorf("%w: %v", errInfraError, err)
			}

			if addr := f.resolveRedisAddr(cmd.Flags(), s); addr != "" {
				db := f.redisDB
				if !cmd.Flags().Changed("redis-db") {
					db = s.RedisDB
				}
				if err := publish(cmd.Context(), store.Options{Addr: addr, DB: db}, run); err != nil {
					util.Warnf("publish: %v", err)
					fmt.Fprintf(os.Stderr, "warning: result not stored in redis: %v\n", err)
				}
			}

			if f.junitPath != "" {
				if err := report.WriteJUnit(f.junitPath, run); err != nil {
					util.Warnf("failed to write JUnit report: %v", err)
				}
			}

			report.PrintConsole(os.Stdout, run)

			if f.strict && !run.Result.Passed {
				return errTestFailure
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.paramFile, "params", "", "YAML file with module parameters")
	flags.StringVar(&f.params.SwitchName, "switch-name", "", "switch under test, as used in record keys")
	flags.StringVar(&f.params.LeafNetworkList, "leaf-network-list", "", "comma-separated leaf networks; the first is checked")
	flags.StringSliceVar(&f.leafList, "leaf-list", nil, "leaf switches, first one owns the checked network")
	flags.BoolVar(&f.params.RoutePresent, "route-present", true, "expect the route present (false: expect it withdrawn)")
	flags.StringVar(&f.params.HashName, "hash-name", "", "run identifier, names the log file")
	flags.StringVar(&f.params.LogDirPath, "log-dir-path", "", "directory for the log file (default from settings)")

	flags.StringVar(&f.sshHost, "ssh-host", "", "run commands on this host over SSH instead of locally")
	flags.StringVar(&f.sshUser, "ssh-user", "", "SSH user (default from settings, then root)")
	flags.IntVar(&f.sshPort, "ssh-port", 22, "SSH port")
	flags.StringVar(&f.sshKey, "ssh-key", "", "SSH private key file")

	flags.StringVar(&f.redisAddr, "redis-addr", "", "Redis server to store the record in (host:port)")
	flags.IntVar(&f.redisDB, "redis-db", 0, "Redis database number")

	flags.StringVar(&f.junitPath, "junit", "", "JUnit XML output path")
	flags.BoolVar(&f.strict, "strict", false, "exit 1 when the verdict is Failed")
	flags.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&f.jsonLogs, "json", false, "log in JSON format")

	return cmd, f
}

// resolveParams layers defaults, the --params file, settings and flags.
// A flag only overrides when it was given.
func (f *verifyFlags) resolveParams(flags *pflag.FlagSet, s *settings.Settings) (verify.Params, error) {
	p := verify.DefaultParams()
	if f.paramFile != "" {
		var err error
		if p, err = verify.LoadParams(f.paramFile); err != nil {
			return p, err
		}
	}
	if p.LogDirPath == "" {
		p.LogDirPath = s.LogDir
	}

	if flags.Changed("switch-name") {
		p.SwitchName = f.params.SwitchName
	}
	if flags.Changed("leaf-network-list") {
		p.LeafNetworkList = f.params.LeafNetworkList
	}
	if flags.Changed("leaf-list") {
		p.LeafList = verify.StringList(util.SplitCommaSeparated(strings.Join(f.leafList, ",")))
	}
	if flags.Changed("route-present") {
		p.RoutePresent = f.params.RoutePresent
	}
	if flags.Changed("hash-name") {
		p.HashName = f.params.HashName
	}
	if flags.Changed("log-dir-path") {
		p.LogDirPath = f.params.LogDirPath
	}
	if p.LeafList == nil {
		p.LeafList = verify.StringList{}
	}
	return p, nil
}

func (f *verifyFlags) resolveRedisAddr(flags *pflag.FlagSet, s *settings.Settings) string {
	if flags.Changed("redis-addr") {
		return f.redisAddr
	}
	return firstNonEmpty(os.Getenv(envRedisAddr), s.RedisAddr)
}

// sshConfig builds the SSH settings. The password comes from the
// environment, or from a prompt when no key is given and stdin is a
// terminal.
func (f *verifyFlags) sshConfig(s *settings.Settings) (runner.SSHConfig, error) {
	cfg := runner.SSHConfig{
		Host:     f.sshHost,
		Port:     f.sshPort,
		User:     firstNonEmpty(f.sshUser, s.SSHUser, "root"),
		KeyFile:  f.sshKey,
		Password: os.Getenv(envSSHPassword),
	}
	if cfg.KeyFile == "" && cfg.Password == "" {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return cfg, errors.New("no SSH credentials: use --ssh-key or set " + envSSHPassword)
		}
		fmt.Fprintf(os.Stderr, "%s@%s's password: ", cfg.User, cfg.Host)
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return cfg, fmt.Errorf("read password: %w", err)
		}
		cfg.Password = string(pw)
	}
	return cfg, nil
}

// openRunner returns the local runner, or an SSH runner when --ssh-host is
// set. The returned func closes it.
func (f *verifyFlags) openRunner(s *settings.Settings) (runner.Runner, func(), error) {
	if f.sshHost == "" {
		return runner.NewLocal(), func() {}, nil
	}
	cfg, err := f.sshConfig(s)
	if err != nil {
		return nil, nil, err
	}
	c, err := runner.DialSSH(cfg)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

func publish(ctx context.Context, opts store.Options, run *report.Run) error {
	pub := store.NewPublisher(opts)
	defer pub.Close()

	if err := pub.Connect(ctx); err != nil {
		return err
	}
	return pub.Publish(ctx, run.Params.HashName, run.Record)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
