package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/ptyxes/recipebook/internal/logging"
	"modernc.org/sqlite"
)

// sqliteLower is a Unicode-aware replacement for SQLite's LOWER, which only
// folds ASCII letters.
const sqliteLower = "unicode_lower"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(sqliteLower, 1, unicodeLower); err != nil {
		panic(fmt.Sprintf("register %s: %v", sqliteLower, err))
	}
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Dialect identifies the SQL flavour spoken by the store.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DialectOf derives the dialect from a database/sql driver name. Unknown
// drivers are treated as SQLite.
func DialectOf(driverName string) Dialect {
	switch driverName {
	case "postgres", "pgx", "pq":
		return DialectPostgres
	default:
		return DialectSQLite
	}
}

func (d Dialect) placeholder() sq.PlaceholderFormat {
	if d == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

// lower renders a case fold of column that agrees with strings.ToLower.
func (d Dialect) lower(column string) string {
	if d == DialectPostgres {
		return "LOWER(" + column + ")"
	}
	return sqliteLower + "(" + column + ")"
}

// containsExpr renders a case-sensitive substring test of column against a
// single bound parameter.
func (d Dialect) containsExpr(column string) string {
	if d == DialectPostgres {
		return fmt.Sprintf("strpos(%s, ?) > 0", column)
	}
	return fmt.Sprintf("instr(%s, ?) > 0", column)
}

// Store bundles the repositories that share one connection.
type Store struct {
	Users       *UserRepository
	Posts       *PostRepository
	Ingredients *IngredientRepository
	Upvotes     *UpvoteRepository
	Comments    *CommentRepository
}

// New builds every repository on top of db.
func New(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		Users:       NewUserRepository(db, logger),
		Posts:       NewPostRepository(db, logger),
		Ingredients: NewIngredientRepository(db, logger),
		Upvotes:     NewUpvoteRepository(db, logger),
		Comments:    NewCommentRepository(db, logger),
	}
}

// conn is the state shared by all repositories.
type conn struct {
	db      *sqlx.DB
	dialect Dialect
	builder sq.StatementBuilderType
	logger  *slog.Logger
}

func newConn(db *sqlx.DB, logger *slog.Logger) conn {
	dialect := DialectOf(db.DriverName())
	return conn{
		db:      db,
		dialect: dialect,
		builder: sq.StatementBuilder.PlaceholderFormat(dialect.placeholder()),
		logger:  logging.Store(logger),
	}
}

// withTx runs fn inside a transaction. Any error from fn, or a panic,
// rolls the transaction back before it propagates; only a nil return
// commits.
func (c conn) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			c.logger.Error("rollback failed", "op", op, "error", rbErr, "cause", err)
			return fmt.Errorf("%s: rollback failed: %v (original error: %w)", op, rbErr, err)
		}
		if expected(err) {
			c.logger.Debug("transaction rolled back", "op", op, "reason", err)
		} else {
			c.logger.Warn("transaction rolled back", "op", op, "error", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit: %w", op, err)
	}
	return nil
}

// expected reports whether err is a business outcome rather than a store
// failure.
func expected(err error) bool {
	return errors.Is(err, errNotApplied) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}

// applied converts the outcome of a boolean mutator transaction.
func applied(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errNotApplied):
		return false, nil
	default:
		return false, err
	}
}

// pageBounds normalizes a zero-based page and its size into LIMIT/OFFSET.
func pageBounds(page, pageSize int) (limit, offset uint64) {
	if page < 0 {
		page = 0
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return uint64(pageSize), uint64(page) * uint64(pageSize)
}

// DefaultPageSize is used when a caller passes a non-positive page size.
const DefaultPageSize = 10
