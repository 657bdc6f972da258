package verify

import (
	"context"
	"fmt"

	"github.com/cposada23/qaharness/pkg/db"
)

// RecordExists asserts at least one row of table matches the predicate.
// A failing underlying query is itself a failure, never a silent pass.
func RecordExists(ctx context.Context, c *db.Client, table, where string) error {
	count, err := c.GetRecordCount(ctx, table, where)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("expected at least one record in %s where %s, found none", table, where)
	}
	return nil
}

// RecordNotExists asserts no row of table matches the predicate.
func RecordNotExists(ctx context.Context, c *db.Client, table, where string) error {
	count, err := c.GetRecordCount(ctx, table, where)
	if err != nil {
		return err
	}
	if count != 0 {
		return fmt.Errorf("expected no records in %s where %s, found %d", table, where, count)
	}
	return nil
}

// FieldValue asserts the query matched at least one row and that the named
// field of the first row strictly equals want.
func FieldValue(ctx context.Context, c *db.Client, table, field string, want any, where string) error {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s", field, table, where)
	res, err := c.Query(ctx, q)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("field query failed: %s", res.Err)
	}
	if len(res.Rows) == 0 {
		return fmt.Errorf("expected at least one row in %s where %s, found none", table, where)
	}
	got, ok := res.Rows[0][field]
	if !ok {
		return fmt.Errorf("field %q not present in result", field)
	}
	if !strictEqual(got, want) {
		return fmt.Errorf("field %q: expected %s, got %s", field, formatValue(want), formatValue(got))
	}
	return nil
}

// QuerySucceeded asserts a Result represents a successful execution.
func QuerySucceeded(res db.Result) error {
	if !res.Success {
		return fmt.Errorf("query failed: %s", res.Err)
	}
	return nil
}
