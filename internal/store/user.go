package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/ptyxes/recipebook/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	conn
}

func NewUserRepository(db *sqlx.DB, logger *slog.Logger) *UserRepository {
	return &UserRepository{conn: newConn(db, logger)}
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (types.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return r.getOne(ctx, sq.Eq{"username": username})
}

func (r *UserRepository) getOne(ctx context.Context, where sq.Sqlizer) (types.User, error) {
	query, args, err := r.builder.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return types.User{}, err
	}

	var user types.User
	if err := sqlx.GetContext(ctx, r.db, &user, query, args...); err != nil {
		return types.User{}, classify(err)
	}
	return user, nil
}

// Create inserts a new user with zero reputation and a fresh UUID. It
// returns ErrConflict when the username is taken.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	user.UUID = uuid.NewString()
	user.Reputation = 0
	user.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO users (username, password_hash, email, role, reputation, uuid, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	if err := sqlx.GetContext(
		ctx,
		r.db,
		&user.ID,
		r.db.Rebind(query),
		user.Username,
		user.PasswordHash,
		user.Email,
		user.Role,
		user.Reputation,
		user.UUID,
		user.CreatedAt,
	); err != nil {
		return types.User{}, classify(err)
	}
	return user, nil
}

// Update changes the password hash and/or email of a user. Empty values
// are left untouched. It reports false when there is nothing to change or
// the user does not exist.
func (r *UserRepository) Update(ctx context.Context, id int64, passwordHash, email string) (bool, error) {
	update := r.builder.Update("users").Where(sq.Eq{"id": id})

	changed := false
	if passwordHash != "" {
		update = update.Set("password_hash", passwordHash)
		changed = true
	}
	if strings.TrimSpace(email) != "" {
		update = update.Set("email", email)
		changed = true
	}
	if !changed {
		return false, nil
	}

	query, args, err := update.ToSql()
	if err != nil {
		return false, err
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, classify(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateReputation adds delta to the user's reputation.
func (r *UserRepository) UpdateReputation(ctx context.Context, id int64, delta int) (bool, error) {
	affected, err := adjustReputation(ctx, r.db, id, delta)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Delete removes a user together with everything they authored: their
// upvotes, their comments, and their posts with the posts' ingredient
// links, upvotes and comments. Upvotes the user cast are withdrawn from
// the counters of the posts they were cast on.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	err := r.withTx(ctx, "delete user", func(tx *sqlx.Tx) error {
		var exists int
		if err := sqlx.GetContext(ctx, tx, &exists, tx.Rebind(`SELECT COUNT(1) FROM users WHERE id = ?`), id); err != nil {
			return err
		}
		if exists == 0 {
			return errNotApplied
		}

		steps := []struct {
			name  string
			query string
			args  []any
		}{
			{
				name: "withdraw reputation",
				query: `
					UPDATE users
					SET reputation = reputation - (
						SELECT COUNT(1)
						FROM upvotes v
						JOIN meal_posts p ON p.id = v.meal_id
						WHERE v.user_id = ? AND p.user_id = users.id
					)
					WHERE id <> ? AND id IN (
						SELECT p.user_id
						FROM upvotes v
						JOIN meal_posts p ON p.id = v.meal_id
						WHERE v.user_id = ?
					)`,
				args: []any{id, id, id},
			},
			{
				name:  "withdraw upvote counters",
				query: `UPDATE meal_posts SET upvotes = upvotes - 1 WHERE id IN (SELECT meal_id FROM upvotes WHERE user_id = ?)`,
				args:  []any{id},
			},
			{name: "delete upvotes", query: `DELETE FROM upvotes WHERE user_id = ?`, args: []any{id}},
			{name: "delete comments", query: `DELETE FROM comments WHERE user_id = ?`, args: []any{id}},
			{name: "delete post upvotes", query: `DELETE FROM upvotes WHERE meal_id IN (SELECT id FROM meal_posts WHERE user_id = ?)`, args: []any{id}},
			{name: "delete post comments", query: `DELETE FROM comments WHERE meal_id IN (SELECT id FROM meal_posts WHERE user_id = ?)`, args: []any{id}},
			{name: "delete post ingredients", query: `DELETE FROM meal_ingredients WHERE meal_id IN (SELECT id FROM meal_posts WHERE user_id = ?)`, args: []any{id}},
			{name: "delete posts", query: `DELETE FROM meal_posts WHERE user_id = ?`, args: []any{id}},
			{name: "delete user", query: `DELETE FROM users WHERE id = ?`, args: []any{id}},
		}

		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, tx.Rebind(step.query), step.args...); err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
		}
		return nil
	})
	return applied(err)
}

// adjustReputation adds delta to a user's reputation and returns the number
// of rows touched.
func adjustReputation(ctx context.Context, q sqlx.ExtContext, userID int64, delta int) (int64, error) {
	const query = `UPDATE users SET reputation = reputation + ? WHERE id = ?`
	result, err := q.ExecContext(ctx, q.Rebind(query), delta, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
