package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/ptyxes/recipebook/config"
	"github.com/ptyxes/recipebook/internal/db"
	"github.com/ptyxes/recipebook/internal/logging"
	"github.com/ptyxes/recipebook/internal/store"
	"github.com/ptyxes/recipebook/types"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type ServicesSuite struct {
	suite.Suite

	ctx      context.Context
	users    *UserService
	posts    *PostService
	comments *CommentService
}

func TestServices(t *testing.T) {
	suite.Run(t, new(ServicesSuite))
}

func (s *ServicesSuite) SetupTest() {
	s.ctx = context.Background()

	cfg := config.Default()
	cfg.Database.Path = ":memory:"
	cfg.PageSize = 3

	conn, err := db.Open(s.ctx, cfg)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	s.Require().NoError(db.EnsureSchema(s.ctx, conn, cfg, logging.Discard()))

	repos := store.New(conn, logging.Discard())
	s.users = NewUserService(repos.Users).WithHashCost(bcrypt.MinCost)
	s.posts = NewPostService(repos.Posts, repos.Upvotes, repos.Ingredients, cfg.PageSize)
	s.comments = NewCommentService(repos.Comments)
}

func (s *ServicesSuite) register(username string) types.User {
	user, err := s.users.Register(s.ctx, username, username+"-secret", username+"@example.com")
	s.Require().NoError(err)
	return user
}

func (s *ServicesSuite) newPost(author types.User, title string) types.MealPost {
	post, err := s.posts.Create(s.ctx, types.MealPost{
		Title:           title,
		AuthorID:        author.ID,
		PreparationTime: 5,
		CookingTime:     10,
		Servings:        2,
		Difficulty:      types.DifficultyEasy,
		Ingredients: []types.MealIngredient{
			{Name: "Flour", Category: "Baking", Quantity: 100, Unit: "g"},
		},
	})
	s.Require().NoError(err)
	return post
}

func (s *ServicesSuite) TestAuthenticate() {
	alice := s.register("alice")
	s.NotEqual("alice-secret", alice.PasswordHash)
	s.Equal(types.RoleRegular, alice.Role)

	got, err := s.users.Authenticate(s.ctx, "alice", "alice-secret")
	s.Require().NoError(err)
	s.Equal(alice.ID, got.ID)

	_, err = s.users.Authenticate(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.users.Authenticate(s.ctx, "mallory", "alice-secret")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServicesSuite) TestCreateRejectsDuplicatesAndBadInput() {
	s.register("alice")

	_, err := s.users.Register(s.ctx, "alice", "other", "")
	s.ErrorIs(err, store.ErrConflict)

	_, err = s.users.Register(s.ctx, "  ", "pw", "")
	s.ErrorIs(err, ErrValidation)

	_, err = s.users.Create(s.ctx, "eve", "pw", "", types.Role(7))
	s.ErrorIs(err, ErrValidation)

	admin, err := s.users.Create(s.ctx, "root", "pw", "", types.RoleAdmin)
	s.Require().NoError(err)
	s.True(admin.IsAdmin())
}

func (s *ServicesSuite) TestUpdateRehashesPassword() {
	alice := s.register("alice")

	ok, err := s.users.Update(s.ctx, alice.ID, "new-secret", "")
	s.Require().NoError(err)
	s.True(ok)

	_, err = s.users.Authenticate(s.ctx, "alice", "alice-secret")
	s.ErrorIs(err, ErrInvalidCredentials)
	_, err = s.users.Authenticate(s.ctx, "alice", "new-secret")
	s.NoError(err)

	got, err := s.users.GetByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice@example.com", got.Email)

	ok, err = s.users.Update(s.ctx, alice.ID, "", "")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ServicesSuite) TestPostValidation() {
	alice := s.register("alice")

	valid := types.MealPost{Title: "Tea", AuthorID: alice.ID, Servings: 1, Difficulty: types.DifficultyEasy}
	tests := map[string]func(p *types.MealPost){
		"blank title":         func(p *types.MealPost) { p.Title = "  " },
		"unknown difficulty":  func(p *types.MealPost) { p.Difficulty = "Impossible" },
		"negative time":       func(p *types.MealPost) { p.CookingTime = -1 },
		"no servings":         func(p *types.MealPost) { p.Servings = 0 },
		"nameless ingredient": func(p *types.MealPost) { p.Ingredients = []types.MealIngredient{{Name: " "}} },
	}
	for name, mutate := range tests {
		s.Run(name, func() {
			post := valid
			mutate(&post)
			_, err := s.posts.Create(s.ctx, post)
			s.ErrorIs(err, ErrValidation)
		})
	}

	created, err := s.posts.Create(s.ctx, valid)
	s.Require().NoError(err)
	s.Equal(types.DietaryNone, created.DietaryType)
}

func (s *ServicesSuite) TestSearchPage() {
	alice := s.register("alice")
	for _, title := range []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"} {
		s.newPost(alice, title)
	}

	first, err := s.posts.Search(s.ctx, types.PostFilter{}, types.SortDate, 0, 0)
	s.Require().NoError(err)
	s.Len(first.Posts, 3, "configured page size")
	s.Equal(7, first.Total)
	s.Equal(3, first.TotalPages())
	s.False(first.HasPrev)
	s.True(first.HasNext)
	s.Equal("Seven", first.Posts[0].Title)

	last, err := s.posts.Search(s.ctx, types.PostFilter{}, types.SortDate, 2, 0)
	s.Require().NoError(err)
	s.Len(last.Posts, 1)
	s.True(last.HasPrev)
	s.False(last.HasNext)

	listed, err := s.posts.List(s.ctx, -1, 10)
	s.Require().NoError(err)
	s.Equal(0, listed.Page)
	s.Len(listed.Posts, 7)
	s.False(listed.HasNext)

	catalog, err := s.posts.ListIngredients(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(catalog, 1)
	s.Equal("Flour", catalog[0].Name)
}

func (s *ServicesSuite) TestLargePagesReachEveryPost() {
	alice := s.register("alice")
	const total = 230
	for i := 0; i < total; i++ {
		_, err := s.posts.Create(s.ctx, types.MealPost{
			Title:      fmt.Sprintf("Dish %03d", i),
			AuthorID:   alice.ID,
			Servings:   1,
			Difficulty: types.DifficultyEasy,
		})
		s.Require().NoError(err)
	}

	const pageSize = 150
	seen := make(map[int64]bool, total)
	first, err := s.posts.Search(s.ctx, types.PostFilter{}, types.SortDate, 0, pageSize)
	s.Require().NoError(err)
	s.Equal(pageSize, first.PageSize)
	s.Equal(2, first.TotalPages())

	for page := 0; page < first.TotalPages(); page++ {
		result, err := s.posts.Search(s.ctx, types.PostFilter{}, types.SortDate, page, pageSize)
		s.Require().NoError(err)
		for _, post := range result.Posts {
			s.False(seen[post.ID], "post %d returned twice", post.ID)
			seen[post.ID] = true
		}
	}
	s.Len(seen, total)
}

func (s *ServicesSuite) TestIngredientNamesAreExact() {
	alice := s.register("alice")
	_, err := s.posts.Create(s.ctx, types.MealPost{
		Title:      "Omelette",
		AuthorID:   alice.ID,
		Servings:   1,
		Difficulty: types.DifficultyEasy,
		Ingredients: []types.MealIngredient{
			{Name: "Egg", Category: "Dairy", Quantity: 2, Unit: "pcs"},
			{Name: "Egg ", Category: "Dairy", Quantity: 1, Unit: "pcs"},
		},
	})
	s.Require().NoError(err)

	catalog, err := s.posts.ListIngredients(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(catalog, 2)
	s.Equal("Egg", catalog[0].Name)
	s.Equal("Egg ", catalog[1].Name)
}

func (s *ServicesSuite) TestUpvoteThroughService() {
	alice := s.register("alice")
	bob := s.register("bob")
	post := s.newPost(alice, "Pancakes")

	ok, err := s.posts.Upvote(s.ctx, bob.ID, post.ID)
	s.Require().NoError(err)
	s.True(ok)

	voted, err := s.posts.HasUpvoted(s.ctx, bob.ID, post.ID)
	s.Require().NoError(err)
	s.True(voted)

	count, err := s.posts.CountUpvotes(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(1, count)

	ok, err = s.posts.Unvote(s.ctx, bob.ID, post.ID)
	s.Require().NoError(err)
	s.True(ok)

	author, err := s.users.GetByID(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Zero(author.Reputation)
}

func (s *ServicesSuite) TestComments() {
	alice := s.register("alice")
	bob := s.register("bob")
	post := s.newPost(alice, "Pancakes")

	_, err := s.comments.Add(s.ctx, bob.ID, post.ID, "   ")
	s.ErrorIs(err, ErrValidation)

	comment, err := s.comments.Add(s.ctx, bob.ID, post.ID, "  Delicious  ")
	s.Require().NoError(err)
	s.Equal("Delicious", comment.Content)

	ok, err := s.comments.Delete(s.ctx, comment.ID, alice.ID)
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.comments.Delete(s.ctx, comment.ID, bob.ID)
	s.Require().NoError(err)
	s.True(ok)

	listed, err := s.comments.ListForPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Empty(listed)
}

func TestTotalPages(t *testing.T) {
	require.Equal(t, 1, TotalPages(0, 10))
	require.Equal(t, 1, TotalPages(10, 10))
	require.Equal(t, 2, TotalPages(11, 10))
	require.Equal(t, 3, TotalPages(21, 0))
}
