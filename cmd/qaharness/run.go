package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cposada23/qaharness"
	"github.com/cposada23/qaharness/cmd/qaharness/config"
	"github.com/cposada23/qaharness/pkg/db"
	"github.com/cposada23/qaharness/pkg/httpx"
	"github.com/cposada23/qaharness/pkg/report"
	"github.com/cposada23/qaharness/pkg/suite"
	"github.com/spf13/viper"
)

// runSuites is the root command: resolve the target, load every suite and
// execute them in order, then emit the console summary and HTML report.
func runSuites(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	v := viper.GetViper()

	var cfg config.ConfigDoc
	configPath := v.GetString("config")
	if err := cfg.Load(configPath); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}
		// No config file: defaults still let ad-hoc runs work.
	}
	if err := cfg.SetupLogging(); err != nil {
		return err
	}
	logger := qaharness.GetLogger().WithComponent("run")

	t := cfg.ResolveTarget(v.GetString("env"))
	logger = logger.WithTarget(t.Name)
	logger.Info("target resolved", "base_url", t.BaseURL)

	baseEnv, err := cfg.GetEnv(t)
	if err != nil {
		return err
	}
	if err := cfg.DecodeAuth(ctx, baseEnv); err != nil {
		return err
	}

	dbCfg, err := cfg.DatabaseConfig()
	if err != nil {
		return err
	}
	var dbClient *db.Client
	if dbCfg != nil {
		dbClient = db.NewClient(dbCfg)
	}

	httpClient := httpx.NewWithTLS(cfg.TLSConfig())
	if err := maybeWaitForTarget(ctx, httpClient, cfg.Wait, t.BaseURL); err != nil {
		return err
	}

	suitesDir := strings.TrimSpace(v.GetString("suites"))
	if suitesDir == "" {
		suitesDir = cfg.SuitesDir
	}
	if suitesDir == "" {
		suitesDir = "./suites"
	}
	suites, err := suite.LoadDir(suitesDir)
	if err != nil {
		return fmt.Errorf("load suites from %s: %w", suitesDir, err)
	}
	if len(suites) == 0 {
		return fmt.Errorf("no suites found in %s", suitesDir)
	}

	runner := &suite.Runner{
		HTTP: httpClient,
		DB:   dbClient,
		Env:  baseEnv,
	}

	run := report.Run{Target: t.Name, BaseURL: t.BaseURL, StartedAt: time.Now()}
	for _, s := range suites {
		logger.Info("running suite", "suite", s.Name, "cases", len(s.Cases))
		run.Suites = append(run.Suites, runner.Run(ctx, s))
	}
	run.Duration = time.Since(run.StartedAt)

	report.PrintConsole(os.Stdout, run, !cfg.Report.NoColor)

	reportPath := strings.TrimSpace(v.GetString("report"))
	if reportPath == "" {
		reportPath = cfg.Report.HTML
	}
	if reportPath != "" {
		if err := report.WriteHTML(reportPath, run); err != nil {
			return err
		}
		logger.Info("report written", "path", reportPath)
	}

	if !run.OK() {
		return fmt.Errorf("%d case(s) failed", run.Failed())
	}
	return nil
}
