package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/meikuraledutech/chainchart/internal/config"
	"github.com/meikuraledutech/chainchart/internal/ui"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return toml.NewEncoder(cmd.OutOrStdout()).Encode(a.cfg)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default config if none exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path := a.configPath
				if path == "" {
					if err := config.EnsureExists(); err != nil {
						return err
					}
					path = config.Path()
				} else if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
					if err := config.Save(config.Default(), path); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", ui.StatusIcon(true), path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), config.Path())
				return nil
			},
		},
	)
	return cmd
}
