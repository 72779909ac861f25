// Package bookshop answers the catalog questions of a small bookstore: which
// books, authors and categories match a filter, and how copies and profit
// add up. Every report is a single query through the query package, rendered
// by a pure formatter.
package bookshop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"pollex.nl/bookshop/config"
	"pollex.nl/bookshop/query"
)

// ErrUndatedBook is returned under UndatedReject when a date based query
// would have to look at a book without a release date.
var ErrUndatedBook = errors.New("book has no release date")

// UndatedPolicy decides how predicates on the release date treat books that
// have none.
type UndatedPolicy int

const (
	// UndatedSkip leaves undated books out of date based results.
	UndatedSkip UndatedPolicy = iota
	// UndatedReject fails date based queries while undated books are in scope.
	UndatedReject
)

func ParseUndatedPolicy(s string) (UndatedPolicy, error) {
	switch s {
	case config.UndatedSkip, "":
		return UndatedSkip, nil
	case config.UndatedReject:
		return UndatedReject, nil
	default:
		return 0, fmt.Errorf("unknown undated policy %q", s)
	}
}

// Store is the handle every catalog operation runs against. It owns its
// connection pool; close it when the unit of work is done.
type Store struct {
	db      *sql.DB
	log     *slog.Logger
	undated UndatedPolicy
}

type Option func(*Store)

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func WithUndatedPolicy(policy UndatedPolicy) Option {
	return func(s *Store) { s.undated = policy }
}

// New wraps an already opened database.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:      db,
		log:     slog.Default(),
		undated: UndatedSkip,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the database described by cfg and checks that it answers.
func Open(ctx context.Context, cfg config.DatabaseConfig, opts ...Option) (*Store, error) {
	dsn, err := dataSourceName(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := New(db, opts...)
	s.log.Debug("Database opened", "driver", cfg.Driver, "path", cfg.Path)

	return s, nil
}

func dataSourceName(cfg config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverSQLite3:
		return "file:" + cfg.Path + "?_busy_timeout=5000&_foreign_keys=on", nil
	case config.DriverSQLite:
		return "file:" + cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.log.Debug("Closing database connection")
	return s.db.Close()
}

// InTx runs fn in one transaction. It commits when fn succeeds and rolls
// back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Error("Failed to rollback transaction", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// datedOnly returns the predicates a query on the release date needs under
// the store's policy. With UndatedReject it first fails when an undated book
// matching scope exists.
func (s *Store) datedOnly(ctx context.Context, db squirrel.BaseRunner, scope ...query.Pred) ([]query.Pred, error) {
	if s.undated == UndatedReject {
		n, err := BookSchema.Query().
			Where(append([]query.Pred{query.IsNull("release_date")}, scope...)...).
			Count(ctx, db)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, fmt.Errorf("%w: %d undated books in scope", ErrUndatedBook, n)
		}
	}

	return []query.Pred{query.NotNull("release_date")}, nil
}
