package services

import (
	"context"
	"sync"

	"warehouse/internal/apperrors"
	"warehouse/internal/auth"
	"warehouse/internal/models"
	"warehouse/internal/repositories"
	"warehouse/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Authenticator signs users up and in and resolves bearer tokens.
type Authenticator interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.Token, error)
	Authenticate(ctx context.Context, username, password string) (*models.Token, error)
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// TokenManager issues and validates session tokens.
type TokenManager interface {
	Issue(user *models.User) (*models.Token, error)
	Validate(token string) (*models.User, error)
}

// AuthService handles business logic for authentication. It keeps no
// session state: every request is authenticated from its token alone.
type AuthService struct {
	userRepo repositories.UserRepository
	hasher   auth.PasswordHasher
	tokens   TokenManager
	validate *validator.Validate

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, hasher auth.PasswordHasher, tokens TokenManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		validate: validation.New(),
	}
}

// Register creates a user and returns a token for it.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.Token, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Validation(validation.FieldErrors(err))
	}

	if err := s.ensureAvailable(ctx, req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Internal(errors.Wrap(err, "failed to hash password"))
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		Category:     req.Category,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.ErrDuplicateIdentity
		}
		return nil, apperrors.Internal(err)
	}

	return s.issue(user)
}

// Authenticate verifies username and password and returns a token. An
// unknown username and a wrong password fail identically.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.Token, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Internal(err)
		}
		// Spend the same hashing time as a real comparison.
		s.hasher.Verify(password, s.dummy())
		return nil, apperrors.ErrIncorrectLogin
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, apperrors.ErrIncorrectLogin
	}

	return s.issue(user)
}

// Resolve returns the identity carried by token.
func (s *AuthService) Resolve(_ context.Context, token string) (*models.User, error) {
	return s.tokens.Validate(token)
}

// ensureAvailable rejects a taken username or email before hashing. The
// unique indexes still decide concurrent sign-ups.
func (s *AuthService) ensureAvailable(ctx context.Context, req models.RegisterRequest) error {
	if err := available(s.userRepo.GetByUsername(ctx, req.Username)); err != nil {
		return err
	}
	return available(s.userRepo.GetByEmail(ctx, req.Email))
}

// available turns a lookup result into nil when no user was found.
func available(_ *models.User, err error) error {
	switch {
	case err == nil:
		return apperrors.ErrDuplicateIdentity
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	default:
		return apperrors.Internal(err)
	}
}

func (s *AuthService) issue(user *models.User) (*models.Token, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return token, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("warehouse-dummy-password")
	})
	return s.dummyHash
}
