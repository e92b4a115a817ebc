package engine

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/ptyxes/recipebook/config"
	"github.com/ptyxes/recipebook/internal/db"
	"github.com/ptyxes/recipebook/internal/services"
	"github.com/ptyxes/recipebook/internal/store"
)

// Engine owns the store connection and the services built on it.
type Engine struct {
	Users    *services.UserService
	Posts    *services.PostService
	Comments *services.CommentService

	cfg    config.Config
	db     *sqlx.DB
	logger *slog.Logger
}

// New opens the configured store, ensures the schema exists and wires the
// services. The caller must Close the engine.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx, dbConn, cfg, logger); err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	repos := store.New(dbConn, logger)

	logger.Info("engine ready", "driver", dbConn.DriverName(), "target", cfg.Database.Target())

	return &Engine{
		Users:    services.NewUserService(repos.Users),
		Posts:    services.NewPostService(repos.Posts, repos.Upvotes, repos.Ingredients, cfg.PageSize),
		Comments: services.NewCommentService(repos.Comments),
		cfg:      cfg,
		db:       dbConn,
		logger:   logger,
	}, nil
}

// IsEmpty reports whether no user has registered yet.
func (e *Engine) IsEmpty(ctx context.Context) (bool, error) {
	return db.IsEmpty(ctx, e.db)
}

// Reset drops all data and recreates the schema.
func (e *Engine) Reset(ctx context.Context) error {
	return db.Reset(ctx, e.db, e.cfg, e.logger)
}

// Close releases the store connection.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}
