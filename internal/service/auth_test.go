package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func registerRequest(username string) *types.RegisterRequest {
	return &types.RegisterRequest{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Vasya",
		LastName:  "Pupkin",
		Password:  "s3cret-password",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupServices(t)

	view, err := env.auth.Register(bg, registerRequest("vasya"))
	require.NoError(t, err)
	assert.NotZero(t, view.ID)
	assert.Equal(t, "vasya", view.Username)
	assert.False(t, view.IsSubscribed)

	token, err := env.auth.Login(bg, &types.LoginRequest{Email: "vasya@example.com", Password: "s3cret-password"})
	require.NoError(t, err)
	require.NotEmpty(t, token.AuthToken)

	claims, err := env.auth.ValidateToken(bg, token.AuthToken)
	require.NoError(t, err)
	assert.Equal(t, view.ID, claims.UserID)
	assert.Equal(t, "foodgram", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	env := setupServices(t)
	testhelpers.CreateUser(t, env.db, "taken")

	_, err := env.auth.Register(bg, registerRequest("taken"))
	requireKind(t, err, models.KindValidation)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "username")
}

func TestRegisterValidatesInput(t *testing.T) {
	env := setupServices(t)
	req := registerRequest("short")
	req.Password = "short"
	req.Email = "not-an-email"

	_, err := env.auth.Register(bg, req)
	requireKind(t, err, models.KindValidation)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "password")
	assert.Contains(t, appErr.Fields, "email")
}

func TestLoginWithBadCredentials(t *testing.T) {
	env := setupServices(t)
	testhelpers.CreateUser(t, env.db, "vasya")

	_, err := env.auth.Login(bg, &types.LoginRequest{Email: "vasya@example.com", Password: "wrong-password"})
	requireKind(t, err, models.KindValidation)

	_, err = env.auth.Login(bg, &types.LoginRequest{Email: "nobody@example.com", Password: "wrong-password"})
	requireKind(t, err, models.KindValidation)
}

func login(t *testing.T, env *testEnv, user *models.User) string {
	t.Helper()
	token, err := env.auth.Login(bg, &types.LoginRequest{Email: user.Email, Password: testhelpers.TestPassword})
	require.NoError(t, err)
	return token.AuthToken
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupServices(t)
	user := testhelpers.CreateUser(t, env.db, "vasya")
	token := login(t, env, user)

	claims, err := env.auth.ValidateToken(bg, token)
	require.NoError(t, err)
	require.NoError(t, env.auth.Logout(bg, claims))

	_, err = env.auth.ValidateToken(bg, token)
	requireKind(t, err, models.KindUnauthorized)

	// a fresh login still works
	_, err = env.auth.ValidateToken(bg, login(t, env, user))
	assert.NoError(t, err)
}

func TestValidateTokenRejectsForgedAndExpired(t *testing.T) {
	env := setupServices(t)
	user := testhelpers.CreateUser(t, env.db, "vasya")

	_, err := env.auth.ValidateToken(bg, "not-a-jwt")
	requireKind(t, err, models.KindUnauthorized)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "forged",
			Issuer:    "foodgram",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: user.ID,
	})
	signed, err := forged.SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, err = env.auth.ValidateToken(bg, signed)
	requireKind(t, err, models.KindUnauthorized)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "expired",
			Issuer:    "foodgram",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID: user.ID,
	})
	signed, err = expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = env.auth.ValidateToken(bg, signed)
	requireKind(t, err, models.KindUnauthorized)
}

func TestValidateTokenRefreshesStaffFlag(t *testing.T) {
	env := setupServices(t)
	user := testhelpers.CreateUser(t, env.db, "vasya")
	token := login(t, env, user)

	require.NoError(t, env.db.Model(user).Update("is_staff", true).Error)

	claims, err := env.auth.ValidateToken(bg, token)
	require.NoError(t, err)
	assert.True(t, claims.IsStaff)
}

func TestSetPassword(t *testing.T) {
	env := setupServices(t)
	user := testhelpers.CreateUser(t, env.db, "vasya")

	err := env.auth.SetPassword(bg, user.ID, &types.SetPasswordRequest{CurrentPassword: "wrong-one", NewPassword: "brand-new-pass"})
	requireKind(t, err, models.KindValidation)

	require.NoError(t, env.auth.SetPassword(bg, user.ID, &types.SetPasswordRequest{
		CurrentPassword: testhelpers.TestPassword,
		NewPassword:     "brand-new-pass",
	}))

	_, err = env.auth.Login(bg, &types.LoginRequest{Email: user.Email, Password: "brand-new-pass"})
	assert.NoError(t, err)
}

func TestDeleteAccountCascades(t *testing.T) {
	env := setupServices(t)
	user := testhelpers.CreateUser(t, env.db, "vasya")
	other := testhelpers.CreateUser(t, env.db, "petya")
	sugar := testhelpers.CreateIngredient(t, env.db, "Sugar", "g")
	recipe := testhelpers.CreateRecipe(t, env.db, user, "Cake", []testhelpers.RecipeIngredient{{Ingredient: sugar, Amount: 10}})
	token := login(t, env, user)

	_, err := env.follows.Subscribe(bg, actorOf(other), user.ID, 3)
	require.NoError(t, err)
	_, err = env.favorites.AddFavorite(bg, actorOf(other), recipe.ID)
	require.NoError(t, err)

	err = env.auth.DeleteAccount(bg, user.ID, &types.DeleteAccountRequest{CurrentPassword: "wrong-one"})
	requireKind(t, err, models.KindValidation)

	require.NoError(t, env.auth.DeleteAccount(bg, user.ID, &types.DeleteAccountRequest{CurrentPassword: testhelpers.TestPassword}))

	var count int64
	require.NoError(t, env.db.Model(&models.Recipe{}).Where("author_id = ?", user.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.Follow{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, env.db.Model(&models.Favorite{}).Count(&count).Error)
	assert.Zero(t, count)

	_, err = env.auth.ValidateToken(bg, token)
	requireKind(t, err, models.KindUnauthorized)
}
