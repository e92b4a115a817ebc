package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/ptyxes/recipebook/types"
)

// PostRepository handles persistence for meal posts and their ingredient
// lists.
type PostRepository struct {
	conn
}

func NewPostRepository(db *sqlx.DB, logger *slog.Logger) *PostRepository {
	return &PostRepository{conn: newConn(db, logger)}
}

// Search returns one page of posts matching filter in the order selected
// by mode. Ingredients are not loaded.
func (r *PostRepository) Search(ctx context.Context, filter types.PostFilter, mode types.SortMode, page, pageSize int) ([]types.MealPost, error) {
	return r.list(ctx, NewPostQuery(r.dialect, filter).apply(r.selectPosts()), orderBy(mode), page, pageSize)
}

// CountMatching returns how many posts match filter, ignoring paging.
func (r *PostRepository) CountMatching(ctx context.Context, filter types.PostFilter) (int, error) {
	return r.count(ctx, NewPostQuery(r.dialect, filter).apply(r.builder.Select("COUNT(1)").From(postsFrom)))
}

// SearchPlain matches term as a case-sensitive substring of the title, the
// description or the name of any ingredient. Results are ordered by upvotes,
// newest first on ties.
func (r *PostRepository) SearchPlain(ctx context.Context, term string, page, pageSize int) ([]types.MealPost, error) {
	// Rendered with question marks; the outer builder converts them.
	ingredientMatch, _, err := sq.
		Select("mi.meal_id").
		From("meal_ingredients mi").
		Join("ingredients i ON i.id = mi.ingredient_id").
		Where(r.dialect.containsExpr("i.name")).
		ToSql()
	if err != nil {
		return nil, err
	}

	b := r.selectPosts()
	if term != "" {
		b = b.Where(sq.Or{
			sq.Expr(r.dialect.containsExpr("p.title"), term),
			sq.Expr(r.dialect.containsExpr("p.description"), term),
			sq.Expr("p.id IN ("+ingredientMatch+")", term),
		})
	}
	return r.list(ctx, b, []string{"p.upvotes DESC", "p.created_at DESC", "p.id DESC"}, page, pageSize)
}

// List returns one page of all posts, newest first.
func (r *PostRepository) List(ctx context.Context, page, pageSize int) ([]types.MealPost, error) {
	return r.list(ctx, r.selectPosts(), orderBy(types.SortDate), page, pageSize)
}

// ListByUser returns one page of the posts written by userID, newest first.
func (r *PostRepository) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]types.MealPost, error) {
	return r.list(ctx, r.selectPosts().Where(sq.Eq{"p.user_id": userID}), orderBy(types.SortDate), page, pageSize)
}

// Count returns the total number of posts.
func (r *PostRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, r.builder.Select("COUNT(1)").From(postsFrom))
}

// Get loads a single post with its ordered ingredient list.
func (r *PostRepository) Get(ctx context.Context, id int64) (types.MealPost, error) {
	query, args, err := r.selectPosts().Where(sq.Eq{"p.id": id}).ToSql()
	if err != nil {
		return types.MealPost{}, err
	}

	var post types.MealPost
	if err := sqlx.GetContext(ctx, r.db, &post, query, args...); err != nil {
		return types.MealPost{}, classify(err)
	}

	ingredients, err := r.listMealIngredients(ctx, r.db, id)
	if err != nil {
		return types.MealPost{}, err
	}
	post.Ingredients = ingredients
	return post, nil
}

// Create inserts the post and links each of its ingredients, creating
// catalog entries as needed. Nothing is stored if any step fails.
func (r *PostRepository) Create(ctx context.Context, post types.MealPost) (types.MealPost, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.Upvotes = 0

	err := r.withTx(ctx, "create post", func(tx *sqlx.Tx) error {
		const query = `
			INSERT INTO meal_posts (
				title, user_id, description, instructions, preparation_time, cooking_time,
				servings, difficulty, dietary_type, image_url, upvotes, created_at, updated_at
			)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`
		if err := sqlx.GetContext(
			ctx,
			tx,
			&post.ID,
			tx.Rebind(query),
			post.Title,
			post.AuthorID,
			post.Description,
			post.Instructions,
			post.PreparationTime,
			post.CookingTime,
			post.Servings,
			post.Difficulty,
			post.DietaryType,
			post.ImageURL,
			post.Upvotes,
			post.CreatedAt,
			post.UpdatedAt,
		); err != nil {
			return classify(err)
		}

		linked, err := insertMealIngredients(ctx, tx, post.ID, post.Ingredients)
		if err != nil {
			return err
		}
		post.Ingredients = linked
		return nil
	})
	if err != nil {
		return types.MealPost{}, err
	}
	return post, nil
}

// Update rewrites the post's fields and replaces its whole ingredient list.
// It returns ErrNotFound when the post does not exist.
func (r *PostRepository) Update(ctx context.Context, post types.MealPost) (types.MealPost, error) {
	post.UpdatedAt = time.Now().UTC()

	err := r.withTx(ctx, "update post", func(tx *sqlx.Tx) error {
		const query = `
			UPDATE meal_posts
			SET title = ?,
				description = ?,
				instructions = ?,
				preparation_time = ?,
				cooking_time = ?,
				servings = ?,
				difficulty = ?,
				dietary_type = ?,
				image_url = ?,
				updated_at = ?
			WHERE id = ?`
		result, err := tx.ExecContext(
			ctx,
			tx.Rebind(query),
			post.Title,
			post.Description,
			post.Instructions,
			post.PreparationTime,
			post.CookingTime,
			post.Servings,
			post.Difficulty,
			post.DietaryType,
			post.ImageURL,
			post.UpdatedAt,
			post.ID,
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM meal_ingredients WHERE meal_id = ?`), post.ID); err != nil {
			return fmt.Errorf("clear ingredients: %w", err)
		}
		if _, err := insertMealIngredients(ctx, tx, post.ID, post.Ingredients); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return types.MealPost{}, err
	}
	return r.Get(ctx, post.ID)
}

// Delete removes a post with its upvotes, comments and ingredient links.
// It reports false when the post does not exist.
func (r *PostRepository) Delete(ctx context.Context, id int64) (bool, error) {
	err := r.withTx(ctx, "delete post", func(tx *sqlx.Tx) error {
		for _, query := range []string{
			`DELETE FROM upvotes WHERE meal_id = ?`,
			`DELETE FROM comments WHERE meal_id = ?`,
			`DELETE FROM meal_ingredients WHERE meal_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, tx.Rebind(query), id); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM meal_posts WHERE id = ?`), id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return errNotApplied
		}
		return nil
	})
	return applied(err)
}

func (r *PostRepository) selectPosts() sq.SelectBuilder {
	return r.builder.Select(postColumns...).From(postsFrom).LeftJoin(postsAuthor)
}

func (r *PostRepository) list(ctx context.Context, b sq.SelectBuilder, order []string, page, pageSize int) ([]types.MealPost, error) {
	limit, offset := pageBounds(page, pageSize)
	query, args, err := b.OrderBy(order...).Limit(limit).Offset(offset).ToSql()
	if err != nil {
		return nil, err
	}

	posts := make([]types.MealPost, 0, limit)
	if err := sqlx.SelectContext(ctx, r.db, &posts, query, args...); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) count(ctx context.Context, b sq.SelectBuilder) (int, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}
