package suite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cposada23/qaharness/internal/common"
	"github.com/cposada23/qaharness/pkg/db"
	"github.com/cposada23/qaharness/pkg/env"
	"github.com/cposada23/qaharness/pkg/httpx"
)

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name       string
	Passed     bool
	Err        error
	StatusCode int
	Duration   time.Duration
}

// SuiteResult aggregates the outcomes of one suite.
type SuiteResult struct {
	Name     string
	Results  []CaseResult
	Passed   int
	Failed   int
	Duration time.Duration
}

// Runner executes suites sequentially. Cases run strictly in declared order;
// one failing case does not affect its siblings unless the suite opts into
// stop_on_failure.
type Runner struct {
	HTTP *httpx.Client
	DB   *db.Client
	// Env is the base environment: target variables in Global, auth values
	// in Auth. Each suite run gets its own clone so suites cannot leak
	// saved variables into each other.
	Env *env.Env
}

// Run executes every case of the suite and returns the collected results.
func (r *Runner) Run(ctx context.Context, s *Suite) SuiteResult {
	logger := common.GetLogger().WithComponent("runner").WithSuite(s.Name)
	start := time.Now()

	runEnv := r.Env.Clone()
	if s.Env != nil && s.Env.Local != nil {
		for k, v := range s.Env.Local {
			runEnv.Local[k] = v
		}
	}

	out := SuiteResult{Name: s.Name}
	for _, c := range s.Cases {
		cr := r.runCase(ctx, c, runEnv)
		out.Results = append(out.Results, cr)
		if cr.Passed {
			out.Passed++
			logger.Info("case passed", "case", cr.Name, "status_code", cr.StatusCode, "duration", cr.Duration)
		} else {
			out.Failed++
			logger.Warn("case failed", "case", cr.Name, "error", cr.Err)
			if s.StopOnFailure {
				logger.Warn("stopping suite after failure")
				break
			}
		}
	}
	out.Duration = time.Since(start)
	return out
}

func (r *Runner) runCase(ctx context.Context, c Case, runEnv *env.Env) CaseResult {
	start := time.Now()
	cr := CaseResult{Name: c.Name}

	if c.Request == nil && c.DB == nil {
		cr.Err = fmt.Errorf("case has neither request nor db check")
		cr.Duration = time.Since(start)
		return cr
	}

	if c.Request != nil {
		status, err := r.runRequest(ctx, c, runEnv)
		cr.StatusCode = status
		if err != nil {
			cr.Err = err
			cr.Duration = time.Since(start)
			return cr
		}
	}

	if c.DB != nil {
		if err := c.DB.Execute(ctx, r.DB, runEnv); err != nil {
			cr.Err = err
			cr.Duration = time.Since(start)
			return cr
		}
	}

	cr.Passed = true
	cr.Duration = time.Since(start)
	return cr
}

// runRequest sends the case's HTTP request and applies the response spec.
// Returns the observed status code even when verification fails.
func (r *Runner) runRequest(ctx context.Context, c Case, runEnv *env.Env) (int, error) {
	if r.HTTP == nil {
		return 0, fmt.Errorf("request declared but no http client configured")
	}
	url, hdrs, body, err := c.Request.Render(runEnv)
	if err != nil {
		return 0, fmt.Errorf("request template error: %w", err)
	}
	method := strings.ToUpper(strings.TrimSpace(c.Request.Method))
	if method == "" {
		method = "GET"
	}

	var bodyArg any
	if strings.TrimSpace(body) != "" {
		bodyArg = body
	}
	resp, err := r.HTTP.Do(ctx, method, url, bodyArg, hdrs)
	if err != nil {
		return 0, err
	}

	if c.Response != nil {
		if err := c.Response.Verify(resp); err != nil {
			return resp.StatusCode, err
		}
		extracted, err := c.Response.Extract(resp.Body)
		applyExtracted(runEnv, extracted)
		if err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}
