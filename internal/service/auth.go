package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/cache"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/repository"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/pageza/foodgram/backend/internal/validation"
)

const denylistPrefix = "denylist:"

var errInvalidToken = models.NewUnauthorizedError("invalid token")

// AuthService registers accounts and issues, validates and revokes tokens.
type AuthService struct {
	users      repository.UserRepository
	recipes    repository.RecipeRepository
	images     *ImageService
	denylist   cache.Store
	cfg        config.AuthConfig
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(users repository.UserRepository, recipes repository.RecipeRepository, images *ImageService, denylist cache.Store, cfg config.AuthConfig) *AuthService {
	return &AuthService{
		users:      users,
		recipes:    recipes,
		images:     images,
		denylist:   denylist,
		cfg:        cfg,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// WithBcryptCost overrides the hashing cost, for tests.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.bcryptCost = cost
	return s
}

func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*types.UserView, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	emailTaken, usernameTaken, err := s.users.Taken(ctx, req.Email, req.Username)
	if err != nil {
		return nil, err
	}
	if emailTaken || usernameTaken {
		appErr := &models.AppError{Kind: models.KindValidation, Message: "invalid input", Fields: map[string][]string{}}
		if emailTaken {
			appErr.Fields["email"] = []string{"a user with that email already exists"}
		}
		if usernameTaken {
			appErr.Fields["username"] = []string{"a user with that username already exists"}
		}
		return nil, appErr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		Username:     req.Username,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user registered")
	view := userView(user, false)
	return &view, nil
}

func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (*types.AuthTokenResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewValidationError("unable to log in with provided credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.NewValidationError("unable to log in with provided credentials")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &types.AuthTokenResponse{AuthToken: token}, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	now := s.now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
		},
		UserID:  user.ID,
		IsStaff: user.IsStaff,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken parses a token and checks it against the denylist. The
// account is reloaded so deleted users are rejected and IsStaff is current.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid || claims.ID == "" || claims.UserID == 0 {
		return nil, errInvalidToken
	}

	_, revoked, err := s.denylist.Get(ctx, denylistPrefix+claims.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if revoked {
		return nil, models.NewUnauthorizedError("token has been revoked")
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, errInvalidToken
		}
		return nil, err
	}
	claims.IsStaff = user.IsStaff
	return claims, nil
}

// Logout revokes the token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, claims *types.TokenClaims) error {
	if claims == nil || claims.ID == "" {
		return errInvalidToken
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.denylist.Set(ctx, denylistPrefix+claims.ID, []byte("1"), ttl); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *AuthService) checkPassword(ctx context.Context, userID uint, password string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, models.NewFieldError("current_password", "invalid password")
		}
		return nil, models.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) SetPassword(ctx context.Context, userID uint, req *types.SetPasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if _, err := s.checkPassword(ctx, userID, req.CurrentPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

// DeleteAccount removes the user with everything they own. Recipe images
// are removed after the rows are gone.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint, req *types.DeleteAccountRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if _, err := s.checkPassword(ctx, userID, req.CurrentPassword); err != nil {
		return err
	}

	recipes, err := s.recipes.ListByAuthor(ctx, userID, -1)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	for _, r := range recipes {
		s.images.Remove(ctx, r.Image)
	}

	logging.Ctx(ctx).Info().Uint("user_id", userID).Int("recipes", len(recipes)).Msg("account deleted")
	return nil
}
