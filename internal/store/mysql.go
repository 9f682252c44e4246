package store

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"time"

	"log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/jekabolt/grbpwr-analytics/internal/dependency"
	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"

	_ "modernc.org/sqlite"
)

// Config defines configurations to connect database
type Config struct {
	DSN                string `mapstructure:"dsn"`
	Dialect            string `mapstructure:"dialect"`
	Automigrate        bool   `mapstructure:"automigrate"`
	MaxOpenConnections int    `mapstructure:"max_open_connections"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections"`
	TLSCAPath          string `mapstructure:"tls_ca_path"`
	// MoneyColumns is cents, decimal or auto. auto inspects the schema once at startup.
	MoneyColumns string `mapstructure:"money_columns"`
}

// MYSQLStore implements methods to access the SQL database.
// The name predates sqlite support; the dialect decides the SQL it emits.
type MYSQLStore struct {
	// db is used for executing queries
	db      dependency.DB
	txDB    txDB
	ts      time.Time
	close   context.CancelFunc
	dialect Dialect
	money   MoneySchema
}

// registerTLSConfig registers a custom TLS configuration with the MySQL driver
// under the name "custom" so DSNs can reference it with tls=custom.
func registerTLSConfig(cfg Config) error {
	if cfg.TLSCAPath == "" {
		return nil
	}
	caCert, err := os.ReadFile(cfg.TLSCAPath)
	if err != nil {
		return fmt.Errorf("failed to read CA certificate from %s: %w", cfg.TLSCAPath, err)
	}
	slog.Default().Info("using CA certificate from file", "path", cfg.TLSCAPath)

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return fmt.Errorf("failed to parse CA certificate")
	}
	return mysql.RegisterTLSConfig("custom", &tls.Config{
		RootCAs: caCertPool,
	})
}

// Open connects to the database and applies migrations when configured.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, Dialect, error) {
	dialect, err := ParseDialect(cfg.Dialect)
	if err != nil {
		return nil, "", err
	}
	if dialect == DialectMySQL {
		if err := registerTLSConfig(cfg); err != nil {
			return nil, "", fmt.Errorf("failed to register TLS config: %w", err)
		}
	}

	d, err := sqlx.Open(dialect.driverName(), dialect.dsn(cfg.DSN))
	if err != nil {
		return nil, "", fmt.Errorf("couldn't open database : %v", err)
	}

	if cfg.MaxOpenConnections > 0 {
		d.SetMaxOpenConns(cfg.MaxOpenConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		d.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	d.SetConnMaxLifetime(2 * time.Minute)
	d.SetConnMaxIdleTime(30 * time.Second)

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	defer pingCancel()
	if err := d.PingContext(pingCtx); err != nil {
		d.Close()
		return nil, "", fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Automigrate {
		slog.Default().InfoContext(ctx, "applying migrations")
		migrateCtx, migrateCancel := context.WithTimeout(ctx, 5*time.Minute)
		defer migrateCancel()
		if err := MigrateWithContext(migrateCtx, d.DB, dialect); err != nil {
			d.Close()
			return nil, "", fmt.Errorf("migration failed: %w", err)
		}
	}
	return d, dialect, nil
}

// New connects to the database, applies migrations, resolves the money
// column layout and returns a new MYSQLStore object.
func New(ctx context.Context, cfg Config) (*MYSQLStore, error) {
	d, dialect, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	money, err := ResolveMoneySchema(ctx, d, dialect, MoneyFormat(cfg.MoneyColumns))
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("can't resolve money columns: %w", err)
	}
	slog.Default().InfoContext(ctx, "money columns resolved",
		slog.String("dialect", string(dialect)),
		slog.String("orders", string(money.Orders)),
		slog.String("order_items", string(money.Items)),
		slog.String("products", string(money.Products)),
	)

	ss := NewWithDB(d, dialect, money)

	ctx, c := context.WithCancel(ctx)
	ss.close = c
	go func() {
		<-ctx.Done()
		d.Close()
	}()

	return ss, nil
}

// NewWithDB wraps an already opened connection. The money schema is taken
// as given and never inspected.
func NewWithDB(db dependency.DB, dialect Dialect, money MoneySchema) *MYSQLStore {
	return &MYSQLStore{
		db:      db,
		close:   func() {},
		dialect: dialect,
		money:   money,
	}
}

//go:embed sql
var fs embed.FS

func MigrateWithContext(ctx context.Context, db *sql.DB, dialect Dialect) error {
	m := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: fs,
		Root:       "sql/" + string(dialect),
	}

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := migrate.Exec(db, dialect.migrateDialect(), m, migrate.Up)
		done <- result{n: n, err: err}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("migration timeout: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return fmt.Errorf("db migrations have failed: %w", res.err)
		}
		slog.Default().InfoContext(ctx, "applied migrations",
			slog.Int("count", res.n),
		)
		return nil
	}
}

func (ms *MYSQLStore) Close() {
	ms.close()
}

// Ping checks database connectivity by executing a simple query
func (ms *MYSQLStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result int
	err := ms.db.QueryRowxContext(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Dialect returns the SQL dialect the store was opened with.
func (ms *MYSQLStore) Dialect() Dialect {
	return ms.dialect
}

// Money returns the resolved money column layout.
func (ms *MYSQLStore) Money() MoneySchema {
	return ms.money
}
