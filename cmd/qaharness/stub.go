package main

import (
	"github.com/cposada23/qaharness/internal/stubserver"
	"github.com/spf13/cobra"
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve fixture JSON files over HTTP for self-contained suite runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		fixtures, _ := cmd.Flags().GetString("fixtures")
		addr, _ := cmd.Flags().GetString("addr")
		srv, err := stubserver.New(fixtures)
		if err != nil {
			return err
		}
		return srv.Run(addr)
	},
}

func init() {
	stubCmd.Flags().String("fixtures", "./fixtures", "directory of fixture JSON files")
	stubCmd.Flags().String("addr", ":8787", "listen address")
}
