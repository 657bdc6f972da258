package db

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// waitForPostgresDSN pings the DSN until it responds or timeout elapses (pgx stdlib).
func waitForPostgresDSN(dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for time.Now().Before(deadline) {
		conn, err := sql.Open("pgx", dsn)
		if err == nil {
			pingErr := conn.Ping()
			_ = conn.Close()
			if pingErr == nil {
				return nil
			}
			lastErr = pingErr
		} else {
			lastErr = err
		}
		time.Sleep(500 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("timeout waiting for postgres")
	}
	return lastErr
}

// Integration test with PostgreSQL via testcontainers
func TestClient_Postgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := tc.ContainerRequest{
		Image:        "postgres:16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "qaharness_test",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		),
	}
	pg, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		// Skip on CI envs that cannot run containers, rather than failing whole suite
		t.Skipf("skipping Postgres container test: %v", err)
		return
	}
	defer func() { _ = pg.Terminate(ctx) }()

	host, err := pg.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := pg.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://test:test@%s:%s/qaharness_test?sslmode=disable", host, port.Port())

	if err := waitForPostgresDSN(dsn, 30*time.Second); err != nil {
		t.Fatalf("postgres not ready: %v", err)
	}

	c := NewClient(&Config{Driver: DriverPostgresql, DSN: dsn})

	setup := []string{
		`CREATE TABLE users (id SERIAL PRIMARY KEY, name TEXT NOT NULL, email TEXT NOT NULL)`,
		`INSERT INTO users(name, email) VALUES ('ada', 'ada@test.com'), ('bob', 'bob@test.com')`,
		`CREATE PROCEDURE add_user(uname TEXT, uemail TEXT)
			LANGUAGE SQL
			AS $$ INSERT INTO users(name, email) VALUES (uname, uemail) $$`,
	}
	for _, stmt := range setup {
		res, err := c.Exec(ctx, stmt)
		if err != nil {
			t.Fatalf("exec: %v", err)
		}
		if !res.Success {
			t.Fatalf("exec %q failed: %s", stmt, res.Err)
		}
	}

	res, err := c.Query(ctx, "SELECT name, email FROM users ORDER BY id")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !res.Success || len(res.Rows) != 2 {
		t.Fatalf("unexpected query result: success=%v rows=%d err=%s", res.Success, len(res.Rows), res.Err)
	}
	if res.Rows[0]["name"] != "ada" {
		t.Fatalf("expected ada first, got %v", res.Rows[0]["name"])
	}

	// Stored procedures are supported on postgresql.
	res, err = c.ExecuteStoredProcedure(ctx, "add_user", []Param{
		{Name: "uname", Value: "cleo"},
		{Name: "uemail", Value: "cleo@test.com"},
	})
	if err != nil {
		t.Fatalf("stored procedure: %v", err)
	}
	if !res.Success {
		t.Fatalf("stored procedure failed: %s", res.Err)
	}

	count, err := c.GetRecordCount(ctx, "users", "")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 users after procedure, got %d", count)
	}

	res, err = c.DeleteRecords(ctx, "users", "email = 'cleo@test.com'")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.Success || res.RowsAffected != 1 {
		t.Fatalf("unexpected delete result: success=%v affected=%d", res.Success, res.RowsAffected)
	}
}
