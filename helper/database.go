package helper

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Database wraps an open Postgres connection with the logger used throughout
// the engine, mirroring how every handler in this module takes a *Database
// rather than a bare *sql.DB.
type Database struct {
	Instance *sql.DB
	Logger   *slog.Logger
}

// DatabaseConfiguration holds Postgres connection parameters read from the
// environment. Required: HIRAG_DB_HOST, HIRAG_DB_PORT, HIRAG_DB_USER,
// HIRAG_DB_NAME. Optional: HIRAG_DB_PASSWORD (may be empty) and
// HIRAG_DB_SSLMODE (default "disable").
type DatabaseConfiguration struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// NewDatabaseConfiguration reads DatabaseConfiguration from the environment.
func NewDatabaseConfiguration() (*DatabaseConfiguration, error) {
	host := os.Getenv("HIRAG_DB_HOST")
	port := os.Getenv("HIRAG_DB_PORT")
	user := os.Getenv("HIRAG_DB_USER")
	password := os.Getenv("HIRAG_DB_PASSWORD")
	name := os.Getenv("HIRAG_DB_NAME")
	if host == "" || port == "" || user == "" || name == "" {
		return nil, NewError("new database configuration", fmt.Errorf("missing one of HIRAG_DB_HOST, HIRAG_DB_PORT, HIRAG_DB_USER, HIRAG_DB_NAME"))
	}
	sslmode := os.Getenv("HIRAG_DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}
	return &DatabaseConfiguration{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		Name:     name,
		SSLMode:  sslmode,
	}, nil
}

func (c *DatabaseConfiguration) dsn() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// NewDatabase opens a connection pool for appName and attaches logger. It does
// not verify connectivity beyond sql.Open's lazy validation; callers issue a
// real query (e.g. schema init) to surface connection errors early.
func NewDatabase(appName string, config *DatabaseConfiguration, logger *slog.Logger) *Database {
	db, err := sql.Open("postgres", config.dsn())
	if err != nil {
		logger.Error("open database connection", slog.String("app", appName), slog.String("error", err.Error()))
		return &Database{Instance: db, Logger: logger}
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	logger.Info("Opened database connection", slog.String("app", appName))
	return &Database{Instance: db, Logger: logger}
}

// MustStartPostgresContainer boots a disposable Postgres (with pgvector)
// via testcontainers-go for integration tests. It returns a teardown func,
// the mapped host port, and any startup error.
func MustStartPostgresContainer() (func(ctx context.Context, opts ...testcontainers.TerminateOption) error, string, error) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("hirag_test"),
		postgres.WithUsername("hirag"),
		postgres.WithPassword("hirag"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, "", NewError("start postgres container", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		return nil, "", NewError("mapped port", err)
	}

	return pgContainer.Terminate, port.Port(), nil
}

// SetTestDatabaseConfigEnvs points NewDatabaseConfiguration at the container
// started by MustStartPostgresContainer for the duration of a test.
func SetTestDatabaseConfigEnvs(t *testing.T, port string) {
	t.Helper()
	t.Setenv("HIRAG_DB_HOST", "localhost")
	t.Setenv("HIRAG_DB_PORT", port)
	t.Setenv("HIRAG_DB_USER", "hirag")
	t.Setenv("HIRAG_DB_PASSWORD", "hirag")
	t.Setenv("HIRAG_DB_NAME", "hirag_test")
	t.Setenv("HIRAG_DB_SSLMODE", "disable")
}

// NewTestDatabase opens a Database against the test container using a
// warn-level stderr logger, so test output isn't drowned in connection-pool
// noise. It retries the open-and-ping up to 10 times, 500ms apart.
func NewTestDatabase(config *DatabaseConfiguration) *Database {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	var db *Database
	for attempt := 0; attempt < 10; attempt++ {
		db = NewDatabase("hirag-test", config, logger)
		if db.Instance != nil && db.Instance.Ping() == nil {
			return db
		}
		time.Sleep(500 * time.Millisecond)
	}
	return db
}
