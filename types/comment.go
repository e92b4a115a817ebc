package types

import "time"

// Comment is a message left by a user on a post.
type Comment struct {
	// ID is the unique identifier of the comment.
	ID int64 `json:"id" db:"id"`

	// AuthorID identifies the user who wrote the comment.
	AuthorID int64 `json:"author_id" db:"user_id"`

	// AuthorName is the username of the author, filled when comments are
	// listed for a post.
	AuthorName string `json:"author_name,omitempty" db:"author_name"`

	// MealID identifies the post the comment belongs to.
	MealID int64 `json:"meal_id" db:"meal_id"`

	// Content is the comment text.
	Content string `json:"content" db:"content"`

	// CreatedAt is the timestamp when the comment was posted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Upvote records that a user upvoted a post. At most one exists per
// (UserID, MealID) pair.
type Upvote struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	MealID    int64     `json:"meal_id" db:"meal_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
