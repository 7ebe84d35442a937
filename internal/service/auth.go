package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/passreg/passreg/internal/model"
	"github.com/passreg/passreg/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameRequired   = errors.New("username is required")
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
)

// TokenTTLDefault is the bearer token lifetime used when no TTL is configured.
const TokenTTLDefault = 24 * time.Hour

// Principal is the identity carried by a validated bearer token.
type Principal struct {
	UserID   int64
	Username string
}

// AuthService provides password hashing, email normalization, and JWT
// issuance/verification. The signing secret and token lifetime are explicit
// startup configuration, not ambient state.
type AuthService struct {
	store     *store.Store
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService. A non-positive ttl falls back to
// TokenTTLDefault.
func NewAuthService(st *store.Store, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = TokenTTLDefault
	}
	return &AuthService{
		store:     st,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  ttl,
	}
}

// HashPassword returns the bcrypt hash of a plaintext password.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NormalizeEmail case-folds the domain part of an email address. The local
// part is left untouched since it is case-sensitive per RFC 5321.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

// Register creates a regular account: validates required fields, normalizes
// the email, hashes the password, and persists. Duplicate username/email
// surfaces as store.ErrDuplicate.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.Account, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	acc := &model.Account{
		Username:     username,
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.store.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// CreateSuperuser creates an account via Register and then forces the staff
// and superuser flags, persisting again. A superuser must have a non-empty
// password.
func (s *AuthService) CreateSuperuser(ctx context.Context, username, email, password string) (*model.Account, error) {
	if password == "" {
		return nil, ErrPasswordRequired
	}

	acc, err := s.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}

	acc.IsStaff = true
	acc.IsSuperuser = true
	if err := s.store.UpdateAccount(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// Authenticate verifies a username/password pair against the stored account.
// Unknown usernames and wrong passwords both return ErrInvalidCredentials; the
// caller decides how to report a deactivated account.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.Account, error) {
	acc, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.CheckPassword(acc.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}

// IssueToken creates a new signed JWT carrying the account ID and username,
// expiring after the configured TTL.
func (s *AuthService) IssueToken(ctx context.Context, userID int64, username string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    "passreg",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies a JWT bearer token and returns the identity it
// carries.
func (s *AuthService) ValidateToken(ctx context.Context, tokenStr string) (*Principal, error) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !token.Valid {
		return nil, ErrInvalidCredentials
	}

	return &Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
	}, nil
}

// TokenTTL returns the configured token lifetime.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

type tokenClaims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
