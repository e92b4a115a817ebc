package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ptyxes/recipebook/types"
)

// DefaultPageSize is used when neither the caller nor the service
// configuration picks a page size.
const DefaultPageSize = 10

// PostRepository defines persistence operations for meal posts.
type PostRepository interface {
	Search(ctx context.Context, filter types.PostFilter, mode types.SortMode, page, pageSize int) ([]types.MealPost, error)
	CountMatching(ctx context.Context, filter types.PostFilter) (int, error)
	SearchPlain(ctx context.Context, term string, page, pageSize int) ([]types.MealPost, error)
	List(ctx context.Context, page, pageSize int) ([]types.MealPost, error)
	ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]types.MealPost, error)
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id int64) (types.MealPost, error)
	Create(ctx context.Context, post types.MealPost) (types.MealPost, error)
	Update(ctx context.Context, post types.MealPost) (types.MealPost, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// UpvoteRepository defines persistence operations for upvotes.
type UpvoteRepository interface {
	Upvote(ctx context.Context, userID, mealID int64) (bool, error)
	Unvote(ctx context.Context, userID, mealID int64) (bool, error)
	HasUpvoted(ctx context.Context, userID, mealID int64) (bool, error)
	CountForPost(ctx context.Context, mealID int64) (int, error)
}

// IngredientRepository defines read access to the ingredient catalog.
type IngredientRepository interface {
	List(ctx context.Context) ([]types.Ingredient, error)
}

// Page is one window of the feed together with what a caller needs to
// enable or disable navigation.
type Page struct {
	Posts    []types.MealPost `json:"posts"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	HasPrev  bool             `json:"has_prev"`
	HasNext  bool             `json:"has_next"`
}

// TotalPages returns the number of pages needed for Total posts.
func (p Page) TotalPages() int {
	return TotalPages(p.Total, p.PageSize)
}

// TotalPages returns ceil(total/pageSize), and at least 1 so an empty feed
// still has a first page.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

func newPage(posts []types.MealPost, total, page, pageSize int) Page {
	return Page{
		Posts:    posts,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		HasPrev:  page > 0,
		HasNext:  (page+1)*pageSize < total,
	}
}

// PostService encapsulates meal post use-cases.
type PostService struct {
	repo        PostRepository
	upvotes     UpvoteRepository
	ingredients IngredientRepository
	pageSize    int
}

func NewPostService(repo PostRepository, upvotes UpvoteRepository, ingredients IngredientRepository, pageSize int) *PostService {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &PostService{repo: repo, upvotes: upvotes, ingredients: ingredients, pageSize: pageSize}
}

func (s *PostService) window(page, pageSize int) (int, int) {
	if page < 0 {
		page = 0
	}
	if pageSize < 1 {
		pageSize = s.pageSize
	}
	return page, pageSize
}

// Search returns one page of the filtered feed and the total number of
// matching posts.
func (s *PostService) Search(ctx context.Context, filter types.PostFilter, mode types.SortMode, page, pageSize int) (Page, error) {
	page, pageSize = s.window(page, pageSize)

	posts, err := s.repo.Search(ctx, filter, mode, page, pageSize)
	if err != nil {
		return Page{}, fmt.Errorf("search posts: %w", err)
	}
	total, err := s.repo.CountMatching(ctx, filter)
	if err != nil {
		return Page{}, fmt.Errorf("count posts: %w", err)
	}
	return newPage(posts, total, page, pageSize), nil
}

// CountMatching returns how many posts match filter.
func (s *PostService) CountMatching(ctx context.Context, filter types.PostFilter) (int, error) {
	return s.repo.CountMatching(ctx, filter)
}

// SearchPlain runs the case-sensitive search over titles, descriptions and
// ingredient names.
func (s *PostService) SearchPlain(ctx context.Context, term string, page, pageSize int) ([]types.MealPost, error) {
	page, pageSize = s.window(page, pageSize)
	return s.repo.SearchPlain(ctx, term, page, pageSize)
}

// List returns one page of all posts, newest first.
func (s *PostService) List(ctx context.Context, page, pageSize int) (Page, error) {
	page, pageSize = s.window(page, pageSize)

	posts, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return Page{}, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return Page{}, err
	}
	return newPage(posts, total, page, pageSize), nil
}

func (s *PostService) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]types.MealPost, error) {
	page, pageSize = s.window(page, pageSize)
	return s.repo.ListByUser(ctx, userID, page, pageSize)
}

func (s *PostService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *PostService) Get(ctx context.Context, id int64) (types.MealPost, error) {
	return s.repo.Get(ctx, id)
}

// Create validates and stores a new post with its ingredients.
func (s *PostService) Create(ctx context.Context, post types.MealPost) (types.MealPost, error) {
	post = normalizePost(post)
	if err := validatePost(post); err != nil {
		return types.MealPost{}, err
	}
	return s.repo.Create(ctx, post)
}

// Update validates the post and replaces its stored fields and
// ingredients.
func (s *PostService) Update(ctx context.Context, post types.MealPost) (types.MealPost, error) {
	post = normalizePost(post)
	if err := validatePost(post); err != nil {
		return types.MealPost{}, err
	}
	return s.repo.Update(ctx, post)
}

func (s *PostService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.repo.Delete(ctx, id)
}

func (s *PostService) Upvote(ctx context.Context, userID, mealID int64) (bool, error) {
	return s.upvotes.Upvote(ctx, userID, mealID)
}

func (s *PostService) Unvote(ctx context.Context, userID, mealID int64) (bool, error) {
	return s.upvotes.Unvote(ctx, userID, mealID)
}

func (s *PostService) HasUpvoted(ctx context.Context, userID, mealID int64) (bool, error) {
	return s.upvotes.HasUpvoted(ctx, userID, mealID)
}

func (s *PostService) CountUpvotes(ctx context.Context, mealID int64) (int, error) {
	return s.upvotes.CountForPost(ctx, mealID)
}

// ListIngredients returns the ingredient catalog sorted by name.
func (s *PostService) ListIngredients(ctx context.Context) ([]types.Ingredient, error) {
	return s.ingredients.List(ctx)
}

func normalizePost(post types.MealPost) types.MealPost {
	post.Title = strings.TrimSpace(post.Title)
	post.DietaryType = strings.TrimSpace(post.DietaryType)
	if post.DietaryType == "" {
		post.DietaryType = types.DietaryNone
	}
	return post
}

func validatePost(post types.MealPost) error {
	switch {
	case post.Title == "":
		return fmt.Errorf("%w: title is required", ErrValidation)
	case !post.Difficulty.Valid():
		return fmt.Errorf("%w: unknown difficulty %q", ErrValidation, post.Difficulty)
	case post.PreparationTime < 0 || post.CookingTime < 0:
		return fmt.Errorf("%w: times must not be negative", ErrValidation)
	case post.Servings < 1:
		return fmt.Errorf("%w: servings must be at least 1", ErrValidation)
	}

	for _, ingredient := range post.Ingredients {
		if strings.TrimSpace(ingredient.Name) == "" {
			return fmt.Errorf("%w: ingredient name is required", ErrValidation)
		}
		if ingredient.Quantity < 0 {
			return fmt.Errorf("%w: quantity of %q must not be negative", ErrValidation, ingredient.Name)
		}
	}
	return nil
}
