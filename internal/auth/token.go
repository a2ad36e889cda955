package auth

import (
	"time"

	"warehouse/internal/apperrors"
	"warehouse/internal/config"
	"warehouse/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

// sessionUser is the identity embedded in a token. It never carries the
// password hash.
type sessionUser struct {
	ID       string          `json:"id"`
	Username string          `json:"username"`
	Email    string          `json:"email"`
	Category models.Category `json:"category"`
}

type sessionClaims struct {
	User *sessionUser `json:"user"`
	jwt.StandardClaims
}

// TokenService issues and validates self-contained session tokens. There is
// no revocation: a token stays valid until it expires.
type TokenService struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption customises a TokenService.
type TokenOption func(*TokenService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a TokenService from cfg. Only HMAC algorithms are
// accepted.
func NewTokenService(cfg config.TokenConfig, opts ...TokenOption) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("jwt expiration must be positive")
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, errors.Errorf("unsupported jwt algorithm %q", cfg.Algorithm)
	}

	s := &TokenService{
		secret: []byte(cfg.Secret),
		method: method,
		ttl:    cfg.TTL,
		now:    time.Now,
		parser: &jwt.Parser{
			ValidMethods:         []string{method.Alg()},
			SkipClaimsValidation: true, // checked against s.now in Validate
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue mints a bearer token for user.
func (s *TokenService) Issue(user *models.User) (*models.Token, error) {
	now := s.now()
	claims := sessionClaims{
		User: &sessionUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Category: user.Category,
		},
		StandardClaims: jwt.StandardClaims{
			Id:        ksuid.New().String(),
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			NotBefore: now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign token")
	}
	return &models.Token{AccessToken: signed, TokenType: models.TokenTypeBearer}, nil
}

// Validate checks the signature and validity window of tokenString and
// returns the embedded identity. Every failure is ErrInvalidCredentials.
func (s *TokenService) Validate(tokenString string) (*models.User, error) {
	claims := &sessionClaims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil || !token.Valid {
		return nil, apperrors.ErrInvalidCredentials
	}

	now := s.now().Unix()
	if claims.NotBefore > now || now >= claims.ExpiresAt {
		return nil, apperrors.ErrInvalidCredentials
	}

	u := claims.User
	if u == nil || u.ID == "" || u.Username == "" || !u.Category.Valid() || u.ID != claims.Subject {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &models.User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Category: u.Category,
	}, nil
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secret, nil
}
