package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestUserProfiles(t *testing.T) {
	s := setupTestServer(t, nil)
	alice := testhelpers.CreateUser(t, s.db, "alice")
	bob := testhelpers.CreateUser(t, s.db, "bob")
	token := s.login(t, alice)

	w := s.do(http.MethodGet, "/api/users/", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var page types.Page[types.UserView]
	decode(t, w, &page)
	assert.Equal(t, int64(2), page.Count)

	w = s.do(http.MethodGet, "/api/users/"+itoa(bob.ID)+"/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var view types.UserView
	decode(t, w, &view)
	assert.Equal(t, "bob", view.Username)
	assert.False(t, view.IsSubscribed)

	w = s.do(http.MethodGet, "/api/users/9999/", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptions(t *testing.T) {
	s := setupTestServer(t, nil)
	reader := testhelpers.CreateUser(t, s.db, "reader")
	author := testhelpers.CreateUser(t, s.db, "author")
	for _, name := range []string{"a", "b", "c", "d"} {
		testhelpers.CreateRecipe(t, s.db, author, name, nil)
	}
	token := s.login(t, reader)
	path := "/api/users/" + itoa(author.ID) + "/subscribe/"

	w := s.do(http.MethodPost, "/api/users/"+itoa(reader.ID)+"/subscribe/", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, path+"?recipes_limit=2", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sub types.SubscriptionView
	decode(t, w, &sub)
	assert.True(t, sub.IsSubscribed)
	assert.Equal(t, int64(4), sub.RecipesCount)
	assert.Len(t, sub.Recipes, 2)

	w = s.do(http.MethodPost, path, nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/users/subscriptions/", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var page types.Page[types.SubscriptionView]
	decode(t, w, &page)
	require.Len(t, page.Results, 1)
	assert.Equal(t, author.ID, page.Results[0].ID)
	assert.Len(t, page.Results[0].Recipes, 3)

	w = s.do(http.MethodGet, "/api/users/subscriptions/?recipes_limit=-1", nil, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/users/"+itoa(author.ID)+"/", nil, token)
	var view types.UserView
	decode(t, w, &view)
	assert.True(t, view.IsSubscribed)

	w = s.do(http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/users/9999/subscribe/", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
