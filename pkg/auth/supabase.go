package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"job-board-backend/internal/domain"
	"job-board-backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
)

// SupabaseProvider signs admins in with Supabase Auth's password grant and
// verifies the access tokens it issues (HS256 with the project secret, or
// RS256 through JWKS).
type SupabaseProvider struct {
	baseURL   string
	apiKey    string
	jwtSecret string
	keys      *keySet
	client    *http.Client
}

func NewSupabaseProvider(baseURL, apiKey, jwtSecret string) *SupabaseProvider {
	baseURL = strings.TrimRight(baseURL, "/")
	return &SupabaseProvider{
		baseURL:   baseURL,
		apiKey:    apiKey,
		jwtSecret: jwtSecret,
		keys:      newKeySet(baseURL + "/auth/v1/.well-known/jwks.json"),
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

type passwordGrantResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type supabaseError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e supabaseError) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return "Invalid login credentials"
}

func (p *SupabaseProvider) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("supabase sign-in: %w", err)
	}
	req.Header.Set("apikey", p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, apperror.Unavailable("Authentication service unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, apperror.Unavailable("Authentication service unavailable")
	}
	if resp.StatusCode != http.StatusOK {
		var e supabaseError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, apperror.Auth(e.text())
	}

	var grant passwordGrantResponse
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		return nil, fmt.Errorf("supabase sign-in: decode: %w", err)
	}

	return &domain.Session{
		AccessToken: grant.AccessToken,
		TokenType:   grant.TokenType,
		ExpiresAt:   time.Now().Add(time.Duration(grant.ExpiresIn) * time.Second),
		Email:       grant.User.Email,
	}, nil
}

func (p *SupabaseProvider) Verify(ctx context.Context, token string) (*domain.Principal, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		switch t.Method.(type) {
		case *jwt.SigningMethodHMAC:
			if p.jwtSecret == "" {
				return nil, fmt.Errorf("HS256 token received but SUPABASE_JWT_SECRET is not configured")
			}
			return []byte(p.jwtSecret), nil
		case *jwt.SigningMethodRSA:
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, fmt.Errorf("kid header not found")
			}
			return p.keys.lookup(ctx, kid)
		}
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	})
	if err != nil || !parsed.Valid {
		return nil, verifyError(err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return principalFromClaims(claims, token)
}
