package main

import (
	"fmt"
	"os"

	"github.com/go-extras/cobraflags"
	"github.com/spf13/cobra"
	"github.com/surveydesk/backend/internal/config"
)

const configOutputFlag = "output"

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	flags := map[string]cobraflags.Flag{
		configOutputFlag: &cobraflags.StringFlag{
			Name:  configOutputFlag,
			Value: "config.yaml",
			Usage: "Where to write the default configuration",
		},
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file populated with defaults",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags[configOutputFlag].GetString()
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
			return nil
		},
	}

	cobraflags.RegisterMap(cmd, flags)
	return cmd
}
