package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/ptyxes/recipebook/types"
)

// IngredientRepository reads the shared ingredient catalog.
type IngredientRepository struct {
	conn
}

func NewIngredientRepository(db *sqlx.DB, logger *slog.Logger) *IngredientRepository {
	return &IngredientRepository{conn: newConn(db, logger)}
}

// Resolve returns the catalog id for name, creating the entry when it does
// not exist yet.
func (r *IngredientRepository) Resolve(ctx context.Context, name, category string) (int64, error) {
	return resolveIngredient(ctx, r.db, name, category)
}

func (r *IngredientRepository) List(ctx context.Context) ([]types.Ingredient, error) {
	const query = `SELECT id, name, category FROM ingredients ORDER BY name`
	ingredients := []types.Ingredient{}
	if err := sqlx.SelectContext(ctx, r.db, &ingredients, query); err != nil {
		return nil, err
	}
	return ingredients, nil
}

func (r *IngredientRepository) GetByName(ctx context.Context, name string) (types.Ingredient, error) {
	const query = `SELECT id, name, category FROM ingredients WHERE name = ?`
	var ingredient types.Ingredient
	if err := sqlx.GetContext(ctx, r.db, &ingredient, r.db.Rebind(query), name); err != nil {
		return types.Ingredient{}, classify(err)
	}
	return ingredient, nil
}

// resolveIngredient maps a name onto its catalog id. Lookup is exact and
// case-sensitive; the category of an existing entry is never changed. The
// unique index on name makes the insert-or-ignore atomic.
func resolveIngredient(ctx context.Context, q sqlx.ExtContext, name, category string) (int64, error) {
	const insert = `INSERT INTO ingredients (name, category) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`
	if _, err := q.ExecContext(ctx, q.Rebind(insert), name, category); err != nil {
		return 0, fmt.Errorf("insert ingredient %q: %w", name, err)
	}

	const lookup = `SELECT id FROM ingredients WHERE name = ?`
	var id int64
	if err := sqlx.GetContext(ctx, q, &id, q.Rebind(lookup), name); err != nil {
		return 0, fmt.Errorf("lookup ingredient %q: %w", name, err)
	}
	return id, nil
}

// insertMealIngredients links the given ingredients to a post in order.
func insertMealIngredients(ctx context.Context, q sqlx.ExtContext, mealID int64, ingredients []types.MealIngredient) ([]types.MealIngredient, error) {
	const link = `INSERT INTO meal_ingredients (meal_id, ingredient_id, quantity, unit) VALUES (?, ?, ?, ?)`

	linked := make([]types.MealIngredient, 0, len(ingredients))
	for _, ingredient := range ingredients {
		id, err := resolveIngredient(ctx, q, ingredient.Name, ingredient.Category)
		if err != nil {
			return nil, err
		}
		if _, err := q.ExecContext(ctx, q.Rebind(link), mealID, id, ingredient.Quantity, ingredient.Unit); err != nil {
			return nil, fmt.Errorf("link ingredient %q: %w", ingredient.Name, err)
		}
		ingredient.IngredientID = id
		linked = append(linked, ingredient)
	}
	return linked, nil
}

func (c conn) listMealIngredients(ctx context.Context, q sqlx.ExtContext, mealID int64) ([]types.MealIngredient, error) {
	query, args, err := c.builder.
		Select(mealIngredientColumns...).
		From("meal_ingredients mi").
		Join("ingredients i ON i.id = mi.ingredient_id").
		Where("mi.meal_id = ?", mealID).
		OrderBy("mi.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	ingredients := []types.MealIngredient{}
	if err := sqlx.SelectContext(ctx, q, &ingredients, query, args...); err != nil {
		return nil, err
	}
	return ingredients, nil
}
