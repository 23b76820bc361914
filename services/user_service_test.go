package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeQuestAPI/internal/goal"
	"codeQuestAPI/internal/user"
	"codeQuestAPI/storage"
)

func TestCreateUserSeedsDefaultDailyGoal(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewUserService(store)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID:  "clerk_ada",
		Email:    "ada@example.com",
		Username: "ada",
	})
	require.NoError(t, err)

	goals, err := store.LoadGoals(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1, "a new account gets one default goal")

	g := goals[0]
	assert.Equal(t, "Solve 3 problems", g.Title)
	assert.Equal(t, goal.KindDaily, g.Kind)
	assert.Equal(t, 3, g.Target)
	assert.Equal(t, 0, g.Current)
	assert.False(t, g.Completed)
	assert.False(t, g.PeriodStart.IsZero())
}

func TestCreateUserRejectsDuplicateClerkID(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewUserService(store)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID: "clerk_ada", Email: "ada@example.com", Username: "ada",
	})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, &user.CreateUserRequest{
		ClerkID: "clerk_ada", Email: "other@example.com", Username: "ada2",
	})
	assert.Error(t, err)
}
