package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/bgpprop/pkg/ansible"
	"github.com/newtron-network/bgpprop/pkg/runner"
	"github.com/newtron-network/bgpprop/pkg/version"
)

var verboseFlag bool

// Sentinel errors for exit code mapping. RunE handlers return these instead
// of calling os.Exit directly, so deferred cleanup (like closing the SSH
// client) runs.
var (
	errTestFailure  = errors.New("test failure")
	errInfraError   = errors.New("infrastructure error")
	errModuleFailed = errors.New("module failed")
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bgpprop [args-file]",
		Short: "Verify BGP route propagation on Quagga switches",
		Long: `Bgpprop checks that a leaf network's BGP route is learned after a Quagga
restart, or withdrawn after the leaf's links are shut down, and records
every command it ran in {log_dir_path}/{hash_name}.log.

Given a single file argument it runs as the Ansible module
` + ansible.ModuleName + `, reading the module arguments
from that file and replying with JSON on stdout.

  bgpprop /tmp/ansible-tmp/args                    # Ansible module mode
  bgpprop verify --switch-name spine1 \
      --leaf-network-list 10.0.0.0/24 --leaf-list leaf1,leaf2 \
      --hash-name bgp-1 --log-dir-path /var/log/regtest
  bgpprop verify --params run.yaml --ssh-host 10.1.1.5
  bgpprop show /var/log/regtest/bgp-1.log`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			if verboseFlag {
				setLogLevel("debug")
			}
			return runModule(cmd.Context(), args[0], os.Stdout, runner.NewLocal())
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		newVerifyCmd(),
		newShowCmd(),
		newSettingsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				if version.Version == "dev" {
					fmt.Println("bgpprop dev build (version is set with -ldflags at release)")
				} else {
					fmt.Printf("bgpprop %s\n", version.Info())
				}
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status, reporting it on
// stderr unless the module reply already carried it.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errModuleFailed):
		return 1
	case errors.Is(err, errInfraError):
		fmt.Fprintln(os.Stderr, err)
		return 2
	default:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
}
