package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"job-board-backend/internal/domain"
	"job-board-backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const localIssuer = "job-board-backend"

// LocalProvider authenticates a single configured admin account whose
// password is stored as a bcrypt hash, and issues HS256 session tokens.
type LocalProvider struct {
	email        string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewLocalProvider(email, passwordHash, secret string, ttl time.Duration) (*LocalProvider, error) {
	if email == "" || passwordHash == "" {
		return nil, fmt.Errorf("auth: ADMIN_EMAIL and ADMIN_PASSWORD_HASH are required for the local provider")
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("auth: session secret must be at least 32 bytes")
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &LocalProvider{
		email:        strings.ToLower(email),
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(strings.ToLower(strings.TrimSpace(email))), []byte(p.email)) == 1
	// Always run bcrypt so a wrong email costs the same as a wrong password.
	pwErr := bcrypt.CompareHashAndPassword(p.passwordHash, []byte(password))
	if !emailOK || pwErr != nil {
		return nil, apperror.Auth("Invalid login credentials")
	}

	now := p.now()
	exp := now.Add(p.ttl)
	claims := jwt.MapClaims{
		"iss":   localIssuer,
		"sub":   "admin:" + p.email,
		"email": p.email,
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	return &domain.Session{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   time.Unix(exp.Unix(), 0),
		Email:       p.email,
	}, nil
}

func (p *LocalProvider) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(localIssuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !parsed.Valid {
		return nil, verifyError(err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return principalFromClaims(claims, token)
}
