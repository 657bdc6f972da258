package qaharness

import (
	"github.com/cposada23/qaharness/internal/common"
	"github.com/cposada23/qaharness/pkg/db"
	"github.com/cposada23/qaharness/pkg/env"
	"github.com/cposada23/qaharness/pkg/httpx"
	"github.com/cposada23/qaharness/pkg/suite"
	"github.com/cposada23/qaharness/pkg/target"
)

// Re-export commonly used types for public API

// Env is the layered variable structure used by suites.
type Env = env.Env

// Environment is one named deployment target.
type Environment = target.Environment

// Response is the value every HTTP request operation produces.
type Response = httpx.Response

// DBClient executes verification queries against the application database.
type DBClient = db.Client

// DBConfig describes how to reach the database under verification.
type DBConfig = db.Config

// DBResult is the outcome of one query or statement.
type DBResult = db.Result

// Suite is one YAML test file; SuiteResult its collected outcomes.
type Suite = suite.Suite

type SuiteResult = suite.SuiteResult

// Case and its spec types allow suites to be built in code instead of YAML.
type Case = suite.Case

type RequestSpec = suite.RequestSpec

type ResponseSpec = suite.ResponseSpec

type DBSpec = suite.DBSpec

// Runner executes suites sequentially.
type Runner = suite.Runner

// NewEnv returns an Env with all layers initialized.
func NewEnv() *Env { return env.New() }

// ResolveEnvironment resolves a deployment target by name, falling back to
// the default on lookup failure.
func ResolveEnvironment(name string) Environment { return target.Resolve(name) }

// NewHTTPClient returns an HTTP client with the harness request policy.
func NewHTTPClient() *httpx.Client { return httpx.New() }

// NewDBClient returns a database client with the given initial configuration.
func NewDBClient(cfg *DBConfig) *DBClient { return db.NewClient(cfg) }

// Logging re-exports so embedders configure the harness logger without
// importing internal packages.

type Logger = common.Logger

type LogLevel = common.LogLevel

const (
	LogLevelError = common.LogLevelError
	LogLevelWarn  = common.LogLevelWarn
	LogLevelInfo  = common.LogLevelInfo
	LogLevelDebug = common.LogLevelDebug
)

func NewLogger(level LogLevel) *Logger      { return common.NewLogger(level) }
func NewJSONLogger(level LogLevel) *Logger  { return common.NewJSONLogger(level) }
func NewColorLogger(level LogLevel) *Logger { return common.NewColorLogger(level) }
func SetDefaultLogger(l *Logger)            { common.SetDefaultLogger(l) }
func GetLogger() *Logger                    { return common.GetLogger() }

// EnableMasking toggles credential masking in log output process-wide.
func EnableMasking(enabled bool) { common.EnableMasking(enabled) }
