package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"job-board-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = domain.ErrTokenInvalid

// principalFromClaims extracts the identity the session gate needs. The
// token id prefers Supabase's session_id, then jti, then a hash of the raw
// token so every session can be revoked.
func principalFromClaims(claims jwt.MapClaims, raw string) (*domain.Principal, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, ErrInvalidToken
	}

	id, _ := claims["session_id"].(string)
	if id == "" {
		id, _ = claims["jti"].(string)
	}
	if id == "" {
		sum := sha256.Sum256([]byte(raw))
		id = hex.EncodeToString(sum[:])
	}

	return &domain.Principal{
		Subject:   sub,
		Email:     email,
		TokenID:   id,
		ExpiresAt: exp.Time,
	}, nil
}

// verifyError keeps "could not check" apart from "checked and rejected".
func verifyError(err error) error {
	if errors.Is(err, domain.ErrAuthUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}
