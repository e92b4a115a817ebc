package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// UpvoteRepository records upvotes and keeps the post counter and the
// author's reputation in step with them.
type UpvoteRepository struct {
	conn
}

func NewUpvoteRepository(db *sqlx.DB, logger *slog.Logger) *UpvoteRepository {
	return &UpvoteRepository{conn: newConn(db, logger)}
}

// Upvote records that userID upvoted mealID, then increments the post's
// counter and its author's reputation. It reports false without changing
// anything when the upvote already exists or the user or post is unknown.
func (r *UpvoteRepository) Upvote(ctx context.Context, userID, mealID int64) (bool, error) {
	err := r.withTx(ctx, "upvote", func(tx *sqlx.Tx) error {
		authorID, err := postAuthor(ctx, tx, mealID)
		if err != nil {
			return err
		}
		var voters int
		if err := sqlx.GetContext(ctx, tx, &voters, tx.Rebind(`SELECT COUNT(1) FROM users WHERE id = ?`), userID); err != nil {
			return err
		}
		if voters == 0 {
			return errNotApplied
		}

		// The unique (user_id, meal_id) constraint is the guard: a second
		// upvote inserts nothing.
		const insert = `
			INSERT INTO upvotes (user_id, meal_id, created_at)
			VALUES (?, ?, ?)
			ON CONFLICT (user_id, meal_id) DO NOTHING`
		result, err := tx.ExecContext(ctx, tx.Rebind(insert), userID, mealID, time.Now().UTC())
		if err != nil {
			if errors.Is(classify(err), ErrNotFound) {
				return errNotApplied
			}
			return fmt.Errorf("insert upvote: %w", err)
		}
		inserted, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			return errNotApplied
		}

		return bumpCounters(ctx, tx, mealID, authorID, 1)
	})
	return applied(err)
}

// Unvote withdraws an upvote and decrements the post's counter and its
// author's reputation. It reports false when no such upvote exists.
func (r *UpvoteRepository) Unvote(ctx context.Context, userID, mealID int64) (bool, error) {
	err := r.withTx(ctx, "unvote", func(tx *sqlx.Tx) error {
		const remove = `DELETE FROM upvotes WHERE user_id = ? AND meal_id = ?`
		result, err := tx.ExecContext(ctx, tx.Rebind(remove), userID, mealID)
		if err != nil {
			return fmt.Errorf("delete upvote: %w", err)
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if removed == 0 {
			return errNotApplied
		}

		authorID, err := postAuthor(ctx, tx, mealID)
		if err != nil {
			return err
		}
		return bumpCounters(ctx, tx, mealID, authorID, -1)
	})
	return applied(err)
}

// HasUpvoted reports whether userID has upvoted mealID.
func (r *UpvoteRepository) HasUpvoted(ctx context.Context, userID, mealID int64) (bool, error) {
	const query = `SELECT COUNT(1) FROM upvotes WHERE user_id = ? AND meal_id = ?`
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, r.db.Rebind(query), userID, mealID); err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountForPost counts the upvote rows of a post. It always equals the
// post's cached counter.
func (r *UpvoteRepository) CountForPost(ctx context.Context, mealID int64) (int, error) {
	const query = `SELECT COUNT(1) FROM upvotes WHERE meal_id = ?`
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, r.db.Rebind(query), mealID); err != nil {
		return 0, err
	}
	return count, nil
}

// postAuthor returns the author of mealID, or errNotApplied when the post
// does not exist.
func postAuthor(ctx context.Context, q sqlx.ExtContext, mealID int64) (int64, error) {
	const query = `SELECT user_id FROM meal_posts WHERE id = ?`
	var authorID int64
	if err := sqlx.GetContext(ctx, q, &authorID, q.Rebind(query), mealID); err != nil {
		if errors.Is(classify(err), ErrNotFound) {
			return 0, errNotApplied
		}
		return 0, fmt.Errorf("lookup post author: %w", err)
	}
	return authorID, nil
}

// bumpCounters applies delta to the post's upvote counter and to its
// author's reputation.
func bumpCounters(ctx context.Context, q sqlx.ExtContext, mealID, authorID int64, delta int) error {
	const counter = `UPDATE meal_posts SET upvotes = upvotes + ? WHERE id = ?`
	if _, err := q.ExecContext(ctx, q.Rebind(counter), delta, mealID); err != nil {
		return fmt.Errorf("update upvote counter: %w", err)
	}
	if _, err := adjustReputation(ctx, q, authorID, delta); err != nil {
		return fmt.Errorf("update author reputation: %w", err)
	}
	return nil
}
