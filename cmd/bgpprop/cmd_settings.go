package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/bgpprop/pkg/cli"
	"github.com/newtron-network/bgpprop/pkg/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage persistent settings",
		Long: `Manage persistent settings stored in ~/.bgpprop/settings.json.

Settings provide defaults for verify flags:
  - log_dir:    --log-dir-path when neither flag nor params file sets it
  - ssh_user:   --ssh-user
  - redis_addr: --redis-addr (BGPPROP_REDIS_ADDR takes precedence)
  - redis_db:   --redis-db

Examples:
  bgpprop settings show
  bgpprop settings set log_dir /var/log/regtest
  bgpprop settings set redis_addr 127.0.0.1:6379
  bgpprop settings clear`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current settings",
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := settings.Load()
				if err != nil {
					return fmt.Errorf("loading settings: %w", err)
				}

				fmt.Printf("Settings file: %s\n\n", settings.DefaultSettingsPath())

				t := cli.NewTable(os.Stdout, "SETTING", "VALUE")
				for _, key := range settings.Keys() {
					value, _ := s.Get(key)
					if value == "" {
						value = "(not set)"
					}
					t.Row(key, value)
				}
				t.Flush()
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <setting> <value>",
			Short: "Set a setting value",
			Long: `Set a persistent setting value.

Available settings: ` + strings.Join(settings.Keys(), ", "),
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := settings.Load()
				if err != nil {
					s = &settings.Settings{}
				}
				if err := s.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := s.Save(); err != nil {
					return fmt.Errorf("saving settings: %w", err)
				}
				fmt.Printf("%s set to: %s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "get <setting>",
			Short: "Get a setting value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				s, err := settings.Load()
				if err != nil {
					return fmt.Errorf("loading settings: %w", err)
				}
				value, err := s.Get(args[0])
				if err != nil {
					return err
				}
				if value == "" {
					fmt.Println("(not set)")
				} else {
					fmt.Println(value)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Clear all settings",
			RunE: func(cmd *cobra.Command, args []string) error {
				s := &settings.Settings{}
				if err := s.Save(); err != nil {
					return fmt.Errorf("saving settings: %w", err)
				}
				fmt.Println("Settings cleared")
				return nil
			},
		},
	)
	return cmd
}
