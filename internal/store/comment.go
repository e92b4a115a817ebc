package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/ptyxes/recipebook/types"
)

// CommentRepository handles persistence for post comments.
type CommentRepository struct {
	conn
}

func NewCommentRepository(db *sqlx.DB, logger *slog.Logger) *CommentRepository {
	return &CommentRepository{conn: newConn(db, logger)}
}

// Add stores a comment by userID on mealID. It returns ErrNotFound when the
// user or the post does not exist.
func (r *CommentRepository) Add(ctx context.Context, userID, mealID int64, content string) (types.Comment, error) {
	comment := types.Comment{
		AuthorID:  userID,
		MealID:    mealID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	err := r.withTx(ctx, "add comment", func(tx *sqlx.Tx) error {
		if _, err := postAuthor(ctx, tx, mealID); err != nil {
			if errors.Is(err, errNotApplied) {
				return ErrNotFound
			}
			return err
		}
		if err := sqlx.GetContext(ctx, tx, &comment.AuthorName, tx.Rebind(`SELECT username FROM users WHERE id = ?`), userID); err != nil {
			return classify(err)
		}

		const insert = `
			INSERT INTO comments (user_id, meal_id, content, created_at)
			VALUES (?, ?, ?, ?)
			RETURNING id`
		if err := sqlx.GetContext(ctx, tx, &comment.ID, tx.Rebind(insert), userID, mealID, content, comment.CreatedAt); err != nil {
			return classify(err)
		}
		return nil
	})
	if err != nil {
		return types.Comment{}, err
	}
	return comment, nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (types.Comment, error) {
	query, args, err := r.selectComments().Where(sq.Eq{"c.id": id}).ToSql()
	if err != nil {
		return types.Comment{}, err
	}

	var comment types.Comment
	if err := sqlx.GetContext(ctx, r.db, &comment, query, args...); err != nil {
		return types.Comment{}, classify(err)
	}
	return comment, nil
}

// ListForPost returns the comments of a post, newest first.
func (r *CommentRepository) ListForPost(ctx context.Context, mealID int64) ([]types.Comment, error) {
	query, args, err := r.selectComments().
		Where(sq.Eq{"c.meal_id": mealID}).
		OrderBy("c.created_at DESC", "c.id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	comments := []types.Comment{}
	if err := sqlx.SelectContext(ctx, r.db, &comments, query, args...); err != nil {
		return nil, err
	}
	return comments, nil
}

// Delete removes a comment on behalf of requestingUserID. Only the
// comment's author or an administrator may delete it; any other caller,
// or a missing comment, yields false.
func (r *CommentRepository) Delete(ctx context.Context, commentID, requestingUserID int64) (bool, error) {
	err := r.withTx(ctx, "delete comment", func(tx *sqlx.Tx) error {
		var authorID int64
		if err := sqlx.GetContext(ctx, tx, &authorID, tx.Rebind(`SELECT user_id FROM comments WHERE id = ?`), commentID); err != nil {
			if errors.Is(classify(err), ErrNotFound) {
				return errNotApplied
			}
			return fmt.Errorf("lookup comment: %w", err)
		}

		if authorID != requestingUserID {
			var role types.Role
			err := sqlx.GetContext(ctx, tx, &role, tx.Rebind(`SELECT role FROM users WHERE id = ?`), requestingUserID)
			if err != nil {
				if errors.Is(classify(err), ErrNotFound) {
					return errNotApplied
				}
				return fmt.Errorf("lookup requester: %w", err)
			}
			if !role.IsAdmin() {
				return errNotApplied
			}
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM comments WHERE id = ?`), commentID); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		return nil
	})
	return applied(err)
}

func (r *CommentRepository) selectComments() sq.SelectBuilder {
	return r.builder.Select(commentColumns...).From(commentsFrom).LeftJoin("users u ON u.id = c.user_id")
}
