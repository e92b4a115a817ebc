package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ptyxes/recipebook/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Add(ctx context.Context, userID, mealID int64, content string) (types.Comment, error)
	Get(ctx context.Context, id int64) (types.Comment, error)
	ListForPost(ctx context.Context, mealID int64) ([]types.Comment, error)
	Delete(ctx context.Context, commentID, requestingUserID int64) (bool, error)
}

// CommentService encapsulates comment use-cases.
type CommentService struct {
	repo CommentRepository
}

func NewCommentService(repo CommentRepository) *CommentService {
	return &CommentService{repo: repo}
}

// Add posts a comment. Blank content is rejected.
func (s *CommentService) Add(ctx context.Context, userID, mealID int64, content string) (types.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return types.Comment{}, fmt.Errorf("%w: comment is empty", ErrValidation)
	}
	return s.repo.Add(ctx, userID, mealID, content)
}

func (s *CommentService) Get(ctx context.Context, id int64) (types.Comment, error) {
	return s.repo.Get(ctx, id)
}

func (s *CommentService) ListForPost(ctx context.Context, mealID int64) ([]types.Comment, error) {
	return s.repo.ListForPost(ctx, mealID)
}

// Delete removes the comment when requestingUserID is its author or an
// admin. It reports false otherwise, without saying why.
func (s *CommentService) Delete(ctx context.Context, commentID, requestingUserID int64) (bool, error) {
	return s.repo.Delete(ctx, commentID, requestingUserID)
}
