package main

import (
	"fmt"
	"sort"

	"github.com/cposada23/qaharness/cmd/qaharness/config"
	"github.com/cposada23/qaharness/pkg/target"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "Show known deployment targets and the currently resolved one",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()

		// Config is optional here; artifacts just refine resolution.
		var cfg config.ConfigDoc
		_ = cfg.Load(v.GetString("config"))

		names := target.Names()
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}

		resolved := cfg.ResolveTarget(v.GetString("env"))
		fmt.Fprintf(cmd.OutOrStdout(), "\nresolved: %s (%s)\n", resolved.Name, resolved.BaseURL)
		return nil
	},
}
