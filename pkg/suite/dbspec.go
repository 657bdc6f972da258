package suite

import (
	"context"
	"fmt"
	"strings"

	"github.com/cposada23/qaharness/pkg/db"
	"github.com/cposada23/qaharness/pkg/env"
	"github.com/cposada23/qaharness/pkg/verify"
)

// DBSpec declares the database check of a case. Exactly one of Query,
// Procedure or Table drives the check; query text, predicates and expected
// values are template-rendered before execution.
type DBSpec struct {
	// Query runs a literal SQL string; the case fails unless it succeeds.
	Query string `yaml:"query"`
	// Rows, when set with Query, requires an exact result row count.
	Rows *int `yaml:"rows"`

	// Procedure calls a stored procedure with ordered named parameters.
	Procedure string      `yaml:"procedure"`
	Params    []ProcParam `yaml:"params"`

	// Table/Where drive existence, count and field checks.
	Table string `yaml:"table"`
	Where string `yaml:"where"`
	// Exists asserts at least one (true) or zero (false) matching rows.
	Exists *bool `yaml:"exists"`
	// Count asserts the exact matching row count.
	Count *int64 `yaml:"count"`
	// Field/Value assert the named column of the first matching row.
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

type ProcParam struct {
	Name  string `yaml:"name"`
	Value any    `yaml:"value"`
}

// Execute runs the declared check against the client.
func (d DBSpec) Execute(ctx context.Context, c *db.Client, e *env.Env) error {
	if c == nil {
		return fmt.Errorf("db check declared but no database configured")
	}

	switch {
	case strings.TrimSpace(d.Query) != "":
		return d.runQuery(ctx, c, e)
	case strings.TrimSpace(d.Procedure) != "":
		return d.runProcedure(ctx, c, e)
	case strings.TrimSpace(d.Table) != "":
		return d.runTableChecks(ctx, c, e)
	default:
		return fmt.Errorf("db check requires query, procedure or table")
	}
}

func (d DBSpec) runQuery(ctx context.Context, c *db.Client, e *env.Env) error {
	q, err := e.RenderErr(d.Query)
	if err != nil {
		return fmt.Errorf("query template: %w", err)
	}
	res, err := c.Query(ctx, q)
	if err != nil {
		return err
	}
	if verr := verify.QuerySucceeded(res); verr != nil {
		return verr
	}
	if d.Rows != nil && len(res.Rows) != *d.Rows {
		return fmt.Errorf("expected %d rows, got %d", *d.Rows, len(res.Rows))
	}
	return nil
}

func (d DBSpec) runProcedure(ctx context.Context, c *db.Client, e *env.Env) error {
	params := make([]db.Param, 0, len(d.Params))
	for _, p := range d.Params {
		v := p.Value
		if s, ok := v.(string); ok && strings.Contains(s, "{{") {
			rendered, err := e.RenderErr(s)
			if err != nil {
				return fmt.Errorf("param %s template: %w", p.Name, err)
			}
			v = rendered
		}
		params = append(params, db.Param{Name: p.Name, Value: v})
	}
	res, err := c.ExecuteStoredProcedure(ctx, d.Procedure, params)
	if err != nil {
		return err
	}
	return verify.QuerySucceeded(res)
}

func (d DBSpec) runTableChecks(ctx context.Context, c *db.Client, e *env.Env) error {
	if d.Exists == nil && d.Count == nil && strings.TrimSpace(d.Field) == "" {
		return fmt.Errorf("table check requires exists, count or field")
	}
	where := e.Render(d.Where)

	if d.Exists != nil {
		if *d.Exists {
			if err := verify.RecordExists(ctx, c, d.Table, where); err != nil {
				return err
			}
		} else {
			if err := verify.RecordNotExists(ctx, c, d.Table, where); err != nil {
				return err
			}
		}
	}
	if d.Count != nil {
		count, err := c.GetRecordCount(ctx, d.Table, where)
		if err != nil {
			return err
		}
		if count != *d.Count {
			return fmt.Errorf("expected %d records in %s, got %d", *d.Count, d.Table, count)
		}
	}
	if strings.TrimSpace(d.Field) != "" {
		want := d.Value
		if s, ok := want.(string); ok && strings.Contains(s, "{{") {
			want = e.Render(s)
		}
		if err := verify.FieldValue(ctx, c, d.Table, d.Field, want, where); err != nil {
			return err
		}
	}
	return nil
}
