package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver, registered as "pgx"
)

// Config holds the connection parameters for the chat store. Database doubles
// as the schema namespace all tables live under.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

func (cfg Config) dsn() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s", cfg.Host, cfg.Port, cfg.User, cfg.Database)
	if cfg.Password != "" {
		dsn += " password=" + cfg.Password
	}
	return dsn
}

// RetryPolicy bounds the readiness wait performed by AwaitReady. The delay
// starts at InitialDelay and grows by a factor of 1.5 per failed attempt,
// capped at MaxDelay.
type RetryPolicy struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryPolicy waits roughly 170 seconds in the worst case before
// declaring the store unavailable.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:   30,
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
	}
}

// Client is the chat store. It owns a single database handle, lazily
// (re)establishes it, bootstraps the schema idempotently, and performs all
// chat/message CRUD. Every public operation repairs the connection and schema
// at its own call boundary, so a client constructed against an unreachable
// server becomes usable as soon as the server does.
//
// Readiness and bootstrap state live on the instance, not in process globals,
// and are invalidated whenever the handle is replaced or closed.
type Client struct {
	cfg   Config
	ns    string // sanitized schema identifier, derived from cfg.Database
	Retry RetryPolicy

	mu          sync.Mutex
	db          *sql.DB
	ready       bool
	schemaReady bool
	lastMsgID   int64

	// openDB is swapped out by tests to stand in a mock handle.
	openDB func() (*sql.DB, error)
}

// NewClient builds a client for the given connection parameters. No network
// traffic happens until Connect or the first store operation.
func NewClient(cfg Config) *Client {
	c := &Client{
		cfg:   cfg,
		ns:    pgx.Identifier{cfg.Database}.Sanitize(),
		Retry: DefaultRetryPolicy(),
	}
	c.openDB = func() (*sql.DB, error) {
		return sql.Open("pgx", cfg.dsn())
	}
	return c
}

// Connect opens a fresh database handle and verifies it with a ping. On
// success the previous handle (if any) is closed and replaced, and a schema
// bootstrap is attempted; a bootstrap failure is logged and deferred to the
// first store operation rather than failing the connect. A connection failure
// is logged and returned.
func (c *Client) Connect(ctx context.Context) error {
	db, err := c.openDB()
	if err == nil {
		err = db.PingContext(ctx)
		if err != nil {
			_ = db.Close()
		}
	}
	if err != nil {
		connectsTotal.WithLabelValues("error").Inc()
		slog.Warn("Database connection failed", "host", c.cfg.Host, "port", c.cfg.Port, "error", err)
		return fmt.Errorf("connect to postgres: %w", err)
	}

	c.mu.Lock()
	if c.db != nil {
		_ = c.db.Close()
	}
	c.db = db
	c.ready = false
	c.schemaReady = false
	c.mu.Unlock()

	connectsTotal.WithLabelValues("ok").Inc()
	if err := c.ensureSchema(ctx, db); err != nil {
		slog.Warn("Tables not ready yet", "error", err)
	}
	slog.Info("Connected to PostgreSQL database", "database", c.cfg.Database)
	return nil
}

// Close releases the database handle. It is idempotent: closing a client that
// never connected, or closing twice, is a no-op. Readiness and bootstrap
// state reset so a later reconnect re-verifies both.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db == nil {
		return nil
	}
	err := c.db.Close()
	c.db = nil
	c.ready = false
	c.schemaReady = false
	slog.Info("Database connection closed")
	return err
}

// AwaitReady blocks until the database answers a trivial liveness probe
// (`SELECT 1`), retrying with capped exponential backoff per c.Retry. Once a
// probe succeeds the result is cached on the instance and later calls return
// immediately; Close and handle replacement invalidate the cache. A failed
// attempt sleeps, grows the delay by 1.5x up to the cap, and tries to reopen
// the connection, with reconnect failures swallowed and retried on the next
// iteration. The wait aborts early when ctx is cancelled; both cancellation
// and an exhausted budget surface as ErrUnavailable.
func (c *Client) AwaitReady(ctx context.Context) error {
	c.mu.Lock()
	if c.ready {
		c.mu.Unlock()
		return nil
	}
	db := c.db
	c.mu.Unlock()

	if db == nil {
		if err := c.Connect(ctx); err == nil {
			db = c.handle()
		}
	}

	delay := c.Retry.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= c.Retry.MaxRetries; attempt++ {
		if db != nil {
			if lastErr = c.probe(ctx, db); lastErr == nil {
				readyProbes.WithLabelValues("ok").Inc()
				c.mu.Lock()
				c.ready = true
				c.mu.Unlock()
				slog.Info("PostgreSQL database is ready", "attempt", attempt)
				return nil
			}
		} else {
			lastErr = fmt.Errorf("no database handle")
		}
		readyProbes.WithLabelValues("error").Inc()
		slog.Warn("PostgreSQL database not available yet",
			"attempt", attempt, "max_retries", c.Retry.MaxRetries, "retry_in", delay, "error", lastErr)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: wait aborted: %w", ErrUnavailable, ctx.Err())
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * 1.5)
		if delay > c.Retry.MaxDelay {
			delay = c.Retry.MaxDelay
		}

		// Reconnection failures are swallowed here; the stale handle keeps
		// being probed until a reconnect succeeds or the budget runs out.
		if err := c.Connect(ctx); err == nil {
			db = c.handle()
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, c.Retry.MaxRetries, lastErr)
}

// Ping answers a single liveness probe against the current handle. Unlike
// AwaitReady it never retries, reconnects or blocks, which makes it cheap
// enough for readiness endpoints to call on every request.
func (c *Client) Ping(ctx context.Context) error {
	db := c.handle()
	if db == nil {
		return fmt.Errorf("%w: not connected", ErrUnavailable)
	}
	return c.probe(ctx, db)
}

func (c *Client) probe(ctx context.Context, db *sql.DB) error {
	var one int
	return db.QueryRowContext(ctx, "SELECT 1").Scan(&one)
}

func (c *Client) handle() *sql.DB {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db
}

// ensureConn guarantees a database handle exists, connecting if the client
// was never connected or has been closed. Handles that went bad behind an
// open *sql.DB repair themselves through the driver's pool, so no liveness
// round trip happens here.
func (c *Client) ensureConn(ctx context.Context) (*sql.DB, error) {
	if db := c.handle(); db != nil {
		return db, nil
	}
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c.handle(), nil
}

// ensureReady is the preamble shared by every store operation: a live handle
// first, then a bootstrapped schema.
func (c *Client) ensureReady(ctx context.Context) (*sql.DB, error) {
	db, err := c.ensureConn(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.ensureSchema(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

// ensureSchema creates the namespace, tables and indexes if they do not
// exist. Every statement is idempotent, so concurrent or repeated calls are
// safe; the instance flag only skips redundant round trips after the first
// success and resets when the handle is replaced.
func (c *Client) ensureSchema(ctx context.Context, db *sql.DB) error {
	c.mu.Lock()
	done := c.schemaReady
	c.mu.Unlock()
	if done {
		return nil
	}

	for _, stmt := range schemaStatements(c.ns) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			slog.Error("Failed to initialize tables", "error", err)
			return fmt.Errorf("bootstrap schema: %w", err)
		}
	}

	c.mu.Lock()
	c.schemaReady = true
	c.mu.Unlock()
	slog.Info("Database tables initialized", "schema", c.cfg.Database)
	return nil
}

// nextMessageID derives a message id from the wall clock in milliseconds,
// bumping past the previous id when two appends land in the same millisecond
// so ids stay strictly increasing per client.
func (c *Client) nextMessageID(now time.Time) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := now.UnixMilli()
	if id <= c.lastMsgID {
		id = c.lastMsgID + 1
	}
	c.lastMsgID = id
	return id
}
