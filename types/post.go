package types

import "time"

// MealPost represents a recipe shared by a user.
// It carries the recipe text, timing metadata, and the ordered list of
// ingredients required to cook it.
type MealPost struct {
	// ID is the unique identifier of the post.
	ID int64 `json:"id" db:"id"`

	// Title is the human-readable name of the recipe.
	Title string `json:"title" db:"title"`

	// AuthorID identifies the user who created the post.
	AuthorID int64 `json:"author_id" db:"user_id"`

	// AuthorName is the username of the author. It is populated by feed
	// queries and left empty when the post is loaded on its own.
	AuthorName string `json:"author_name,omitempty" db:"author_name"`

	// AuthorReputation is the author's reputation at query time. Feed queries
	// populate it; it drives the reputation sort order.
	AuthorReputation int `json:"author_reputation,omitempty" db:"author_reputation"`

	// Description is a short summary shown in the feed.
	Description string `json:"description" db:"description"`

	// Instructions contains the full cooking steps.
	Instructions string `json:"instructions" db:"instructions"`

	// PreparationTime is the preparation time in minutes.
	PreparationTime int `json:"preparation_time" db:"preparation_time"`

	// CookingTime is the cooking time in minutes.
	CookingTime int `json:"cooking_time" db:"cooking_time"`

	// Servings is the number of portions the recipe yields.
	Servings int `json:"servings" db:"servings"`

	// Difficulty is the self-reported difficulty of the recipe.
	Difficulty Difficulty `json:"difficulty" db:"difficulty"`

	// DietaryType is a free-form dietary label such as "Vegan",
	// "Vegetarian" or "None".
	DietaryType string `json:"dietary_type" db:"dietary_type"`

	// ImageURL points at an image of the finished dish.
	ImageURL string `json:"image_url" db:"image_url"`

	// Upvotes is the cached number of upvotes on the post. It always equals
	// the number of upvote rows referencing the post.
	Upvotes int `json:"upvotes" db:"upvotes"`

	// CreatedAt is the timestamp at which the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent edit.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Ingredients is the ordered ingredient list. List and search views
	// leave it nil; loading a single post fills it.
	Ingredients []MealIngredient `json:"ingredients,omitempty" db:"-"`
}

// TotalTime returns preparation plus cooking time in minutes.
func (p MealPost) TotalTime() int {
	return p.PreparationTime + p.CookingTime
}

// MealIngredient is a quantity of a catalog ingredient used by a post.
type MealIngredient struct {
	// IngredientID identifies the catalog entry. It is assigned when the
	// post is saved and ignored on input.
	IngredientID int64 `json:"ingredient_id" db:"ingredient_id"`

	// Name is the catalog name of the ingredient. Names are matched exactly.
	Name string `json:"name" db:"name"`

	// Category is the catalog category. It is only recorded the first time
	// a name is seen.
	Category string `json:"category" db:"category"`

	// Quantity is the amount used by this recipe.
	Quantity float64 `json:"quantity" db:"quantity"`

	// Unit is the free-form unit of Quantity (g, cup, pinch...).
	Unit string `json:"unit" db:"unit"`
}

// Ingredient is an entry of the shared ingredient catalog.
type Ingredient struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Category string `json:"category" db:"category"`
}

// Difficulty is the difficulty level of a recipe.
type Difficulty string

// Supported difficulty levels.
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// Dietary labels with special meaning for filtering.
const (
	DietaryVegan      = "Vegan"
	DietaryVegetarian = "Vegetarian"
	DietaryNone       = "None"
)
