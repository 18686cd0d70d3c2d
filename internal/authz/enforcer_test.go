package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
)

func TestActorRole(t *testing.T) {
	assert.Equal(t, RoleAnonymous, Actor{}.Role(5))
	assert.Equal(t, RoleAuthor, Actor{UserID: 5}.Role(5))
	assert.Equal(t, RoleUser, Actor{UserID: 6}.Role(5))
	assert.Equal(t, RoleUser, Actor{UserID: 6}.Role(0))
	assert.Equal(t, RoleAdmin, Actor{UserID: 6, IsStaff: true}.Role(5))
}

func TestEnforcerRecipePolicy(t *testing.T) {
	e, err := NewEnforcer()
	require.NoError(t, err)

	tests := []struct {
		role    string
		action  string
		allowed bool
	}{
		{RoleAnonymous, ActionRead, true},
		{RoleAnonymous, ActionCreate, false},
		{RoleUser, ActionRead, true},
		{RoleUser, ActionCreate, true},
		{RoleUser, ActionUpdate, false},
		{RoleUser, ActionDelete, false},
		{RoleAuthor, ActionUpdate, true},
		{RoleAuthor, ActionDelete, true},
		{RoleAdmin, ActionUpdate, true},
		{RoleAdmin, ActionDelete, true},
	}

	for _, tt := range tests {
		t.Run(tt.role+"_"+tt.action, func(t *testing.T) {
			allowed, err := e.Enforce(tt.role, ObjectRecipe, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestEnforcerRelations(t *testing.T) {
	e, err := NewEnforcer()
	require.NoError(t, err)

	for _, object := range []string{ObjectFavorite, ObjectCart, ObjectSubscription} {
		allowed, err := e.Enforce(RoleAnonymous, object, ActionWrite)
		require.NoError(t, err)
		assert.False(t, allowed, object)

		allowed, err = e.Enforce(RoleUser, object, ActionWrite)
		require.NoError(t, err)
		assert.True(t, allowed, object)
	}
}

func TestAuthorize(t *testing.T) {
	e, err := NewEnforcer()
	require.NoError(t, err)

	assert.NoError(t, e.Authorize(Actor{UserID: 1}, 1, ObjectRecipe, ActionUpdate))
	assert.NoError(t, e.Authorize(Actor{UserID: 2, IsStaff: true}, 1, ObjectRecipe, ActionDelete))

	err = e.Authorize(Actor{UserID: 2}, 1, ObjectRecipe, ActionUpdate)
	assert.Equal(t, models.KindPermissionDenied, models.KindOf(err))

	err = e.Authorize(Actor{}, 1, ObjectRecipe, ActionDelete)
	assert.Equal(t, models.KindUnauthorized, models.KindOf(err))
}
