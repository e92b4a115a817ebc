package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/ptyxes/recipebook/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateAndLookup(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice", types.RoleAdmin)
	require.NotZero(t, alice.ID)
	assert.Zero(t, alice.Reputation)
	_, err := uuid.Parse(alice.UUID)
	assert.NoError(t, err)

	byID, err := s.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, "hash-alice", byID.PasswordHash)
	assert.Equal(t, alice.UUID, byID.UUID)
	assert.True(t, byID.IsAdmin())

	byName, err := s.Users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	_, err = s.Users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserCreateDuplicateUsername(t *testing.T) {
	s, _ := newTestStore(t)

	seedUser(t, s, "alice", types.RoleRegular)
	_, err := s.Users.Create(context.Background(), types.User{Username: "alice", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserPartialUpdate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice", types.RoleRegular)

	ok, err := s.Users.Update(ctx, alice.ID, "", "")
	require.NoError(t, err)
	assert.False(t, ok, "nothing to change")

	ok, err = s.Users.Update(ctx, alice.ID, "", "new@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "hash-alice", got.PasswordHash)

	ok, err = s.Users.Update(ctx, alice.ID+5, "h", "")
	require.NoError(t, err)
	assert.False(t, ok, "unknown user")
}

func TestUserUpdateReputationMayGoNegative(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	alice := seedUser(t, s, "alice", types.RoleRegular)

	ok, err := s.Users.UpdateReputation(ctx, alice.ID, -3)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.Users.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, -3, got.Reputation)

	ok, err = s.Users.UpdateReputation(ctx, alice.ID+1, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserDeleteCascades(t *testing.T) {
	s, conn := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, s, "alice", types.RoleRegular)
	bob := seedUser(t, s, "bob", types.RoleRegular)
	carol := seedUser(t, s, "carol", types.RoleRegular)

	alicePost := seedPost(t, s, alice.ID, "Alice's Curry", func(p *types.MealPost) {
		p.Ingredients = []types.MealIngredient{{Name: "Rice", Category: "Grain", Quantity: 1, Unit: "cup"}}
	})
	bobPost := seedPost(t, s, bob.ID, "Bob's Chili", func(p *types.MealPost) {
		p.Ingredients = []types.MealIngredient{{Name: "Beans", Category: "Legume", Quantity: 1, Unit: "can"}}
	})

	// Votes and comments in every direction.
	for _, vote := range [][2]int64{
		{alice.ID, bobPost.ID},
		{bob.ID, alicePost.ID},
		{carol.ID, alicePost.ID},
		{carol.ID, bobPost.ID},
	} {
		ok, err := s.Upvotes.Upvote(ctx, vote[0], vote[1])
		require.NoError(t, err)
		require.True(t, ok)
	}
	for _, c := range []struct {
		user, post int64
	}{
		{alice.ID, bobPost.ID},
		{bob.ID, alicePost.ID},
		{carol.ID, bobPost.ID},
	} {
		_, err := s.Comments.Add(ctx, c.user, c.post, fmt.Sprintf("comment by %d", c.user))
		require.NoError(t, err)
	}

	ok, err := s.Users.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Users.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Posts.Get(ctx, alicePost.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Zero(t, countRows(t, conn, `SELECT COUNT(1) FROM meal_posts WHERE user_id = ?`, alice.ID))
	assert.Zero(t, countRows(t, conn, `SELECT COUNT(1) FROM upvotes WHERE user_id = ? OR meal_id = ?`, alice.ID, alicePost.ID))
	assert.Zero(t, countRows(t, conn, `SELECT COUNT(1) FROM comments WHERE user_id = ? OR meal_id = ?`, alice.ID, alicePost.ID))
	assert.Zero(t, countRows(t, conn, `SELECT COUNT(1) FROM meal_ingredients WHERE meal_id = ?`, alicePost.ID))

	// Bob's post keeps carol's vote and comment; alice's vote is withdrawn
	// from its counter and from bob's reputation.
	upvotes, reputation := upvoteState(t, s, bobPost.ID, bob.ID)
	assert.Equal(t, 1, upvotes)
	assert.Equal(t, 1, reputation)

	comments, err := s.Comments.ListForPost(ctx, bobPost.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, carol.ID, comments[0].AuthorID)

	for _, id := range []int64{bob.ID, carol.ID} {
		_, err := s.Users.GetByID(ctx, id)
		assert.NoError(t, err)
	}
	assert.Equal(t, 2, countRows(t, conn, `SELECT COUNT(1) FROM ingredients`), "catalog entries are never deleted")

	ok, err = s.Users.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
