package authservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/acmecorp/talent_agency/internal/agency/domain/models"
	"github.com/acmecorp/talent_agency/internal/agency/repository/userrepo"
	"github.com/acmecorp/talent_agency/internal/pkg/config"
	"github.com/acmecorp/talent_agency/internal/pkg/jwtauth"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid name or password")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	userRepo Repository
	cfg      config.Auth
}

type Repository interface {
	CreateUser(context.Context, models.User) error
	GetUserByName(context.Context, string) (models.User, error)
	GetUserByID(context.Context, string) (models.User, error)
	FetchUsers(context.Context) ([]models.User, error)
}

func New(userRepo Repository, cfg config.Auth) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// CreateUser stores a new user with a bcrypt-hashed password and returns
// the stored record. The plaintext password is never persisted.
func (as *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("generate from password error: %w", err)
	}

	u := models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		PasswordHash: string(hash),
	}

	if err := as.userRepo.CreateUser(ctx, u); err != nil {
		return models.User{}, fmt.Errorf("create user error: %w", err)
	}

	return u, nil
}

// Register creates the user and signs a token for them. If signing fails
// after the insert, the user record persists without a returned token;
// registration is not retried.
func (as *AuthService) Register(ctx context.Context, req CreateUserRequest) (string, error) {
	u, err := as.CreateUser(ctx, req)
	if err != nil {
		return "", err
	}

	token, err := jwtauth.Sign(u.ID, as.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("can't get token error: %w", err)
	}

	return token, nil
}

// Authenticate verifies name/password and issues a token. An unknown name
// and a wrong password are indistinguishable to the caller: both yield
// ErrInvalidCredentials. The bcrypt comparison still runs when no user was
// found, so a missing row never panics and lookup timing stays flat.
func (as *AuthService) Authenticate(ctx context.Context, name, password string) (string, error) {
	u, err := as.userRepo.GetUserByName(ctx, name)
	if err != nil && !errors.Is(err, userrepo.ErrNotFound) {
		return "", fmt.Errorf("get user error: %w", err)
	}

	if errC := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); errC != nil || err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := jwtauth.Sign(u.ID, as.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("can't get token error: %w", err)
	}

	return token, nil
}

// FindUserByToken resolves a bearer token to an existing user. Signature
// mismatch, malformed structure and a dangling user id all surface as
// ErrInvalidToken.
func (as *AuthService) FindUserByToken(ctx context.Context, token string) (models.User, error) {
	id, err := jwtauth.Verify(token, as.cfg.Secret)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	u, err := as.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return models.User{}, ErrInvalidToken
		}

		return models.User{}, fmt.Errorf("get user error: %w", err)
	}

	return u, nil
}

func (as *AuthService) FetchUsers(ctx context.Context) ([]models.User, error) {
	users, err := as.userRepo.FetchUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch users error: %w", err)
	}

	return users, nil
}
