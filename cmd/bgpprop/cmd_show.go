package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/bgpprop/pkg/report"
	"github.com/newtron-network/bgpprop/pkg/settings"
	"github.com/newtron-network/bgpprop/pkg/util"
)

func newShowCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "show <log-file|hash-name>",
		Short: "Print a run log as a table",
		Long: `Parse a log written by a run and print its entries in order.

The argument is a log file path, or a hash name looked up in the log_dir
setting. A log holding both phases of a hash shows both.

  bgpprop show /var/log/regtest/bgp-1.log
  bgpprop show bgp-1 --full`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); os.IsNotExist(err) {
				if s, serr := settings.Load(); serr == nil && s.LogDir != "" {
					path = report.LogPath(s.LogDir, args[0])
				}
			}

			pairs, err := report.ReadLogFile(path)
			if err != nil {
				return err
			}
			util.WithField("log", path).Debugf("read %d entries", len(pairs))

			if full {
				for _, p := range pairs {
					fmt.Printf("%s\n%s\n\n", p.Key, p.Value)
				}
				return nil
			}
			fmt.Printf("Log file: %s\n\n", path)
			report.PrintPairs(os.Stdout, pairs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "print every value in full")
	return cmd
}
