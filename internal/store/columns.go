package store

// Column lists matching the db tags of the types package. Every read goes
// through one of these so sqlx can map rows onto the domain records.
var (
	userColumns = []string{
		"id", "username", "password_hash", "email", "role", "reputation", "uuid", "created_at",
	}

	// postColumns expects meal_posts aliased as p and users as u.
	postColumns = []string{
		"p.id", "p.title", "p.user_id", "p.description", "p.instructions",
		"p.preparation_time", "p.cooking_time", "p.servings", "p.difficulty",
		"p.dietary_type", "p.image_url", "p.upvotes", "p.created_at", "p.updated_at",
		"COALESCE(u.username, '') AS author_name",
		"COALESCE(u.reputation, 0) AS author_reputation",
	}

	// commentColumns expects comments aliased as c and users as u.
	commentColumns = []string{
		"c.id", "c.user_id", "c.meal_id", "c.content", "c.created_at",
		"COALESCE(u.username, '') AS author_name",
	}

	mealIngredientColumns = []string{
		"i.id AS ingredient_id", "i.name", "i.category", "mi.quantity", "mi.unit",
	}
)

const (
	postsFrom    = "meal_posts p"
	postsAuthor  = "users u ON u.id = p.user_id"
	commentsFrom = "comments c"
)
