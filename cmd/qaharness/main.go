package main

import (
	"os"

	"github.com/cposada23/qaharness"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "qaharness",
	Short: "Run API and database verification suites against a deployment target",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSuites(cmd.Context())
	},
}

func init() {
	v := viper.GetViper()
	v.SetDefault("config", "./qaharness.yaml")
	v.SetDefault("env", "")
	v.SetDefault("suites", "")
	v.SetDefault("report", "")

	// Environment variables support: QAHARNESS_CONFIG, QAHARNESS_ENV, ...
	v.SetEnvPrefix("QAHARNESS")
	v.AutomaticEnv()

	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to the harness config yaml")
	rootCmd.PersistentFlags().String("env", v.GetString("env"), "deployment target name (dev, qa, staging, prod)")
	rootCmd.Flags().String("suites", v.GetString("suites"), "suite directory (overrides suites_dir from config)")
	rootCmd.Flags().String("report", v.GetString("report"), "HTML report output path (overrides config)")

	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("env", rootCmd.PersistentFlags().Lookup("env"))
	_ = v.BindPFlag("suites", rootCmd.Flags().Lookup("suites"))
	_ = v.BindPFlag("report", rootCmd.Flags().Lookup("report"))

	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(stubCmd)
	rootCmd.AddCommand(envsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		qaharness.GetLogger().Error("command execution failed", "error", err)
		os.Exit(1)
	}
}
