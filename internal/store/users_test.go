package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/studytrack-api/internal/models"
)

func TestUpsertUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.UpsertUser(ctx, Identity{OpenID: "google-1", Name: strPtr("Ana"), Email: strPtr("ana@example.com")})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.False(t, created.LastSignedIn.IsZero())

	updated, err := s.UpsertUser(ctx, Identity{OpenID: "google-1", Name: strPtr("Ana Maria"), Role: strPtr(models.RoleAdmin)})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, "ana@example.com", updated.Email)
	assert.True(t, updated.IsAdmin())

	assert.Len(t, s.ListUsers(ctx), 1)

	_, err = s.UpsertUser(ctx, Identity{})
	assert.Error(t, err)
}

func TestUserManagement(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := &models.User{OpenID: "temp-1", Email: "bob@example.com", Name: "Bob", Password: "hash"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.Equal(t, models.RoleUser, u.Role)

	found := s.GetUserByEmail(ctx, "bob@example.com")
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.ID)

	require.NoError(t, s.UpdateUser(ctx, u.ID, map[string]interface{}{"role": models.RoleAdmin}))
	assert.True(t, s.GetUserByID(ctx, u.ID).IsAdmin())
	assert.Equal(t, ErrNoChanges, s.UpdateUser(ctx, u.ID, nil))

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	assert.Nil(t, s.GetUserByID(ctx, u.ID))
}

func TestGetUserByEmailSkipsPasswordlessAccounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, &models.User{OpenID: "oauth", Email: "x@example.com"}))

	assert.Nil(t, s.GetUserByEmail(ctx, "x@example.com"))
}
