package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"job-board-backend/internal/domain"

	"golang.org/x/sync/singleflight"
)

const (
	jwksTTL        = 10 * time.Minute
	jwksMinRefresh = time.Minute
)

var errUnknownKey = errors.New("jwks: unknown signing key")

type jsonWebKey struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// keySet caches the RSA keys published at a JWKS endpoint. A set is served
// for jwksTTL; a kid missing from a fresh set triggers at most one refetch
// per jwksMinRefresh. When the endpoint is down, a key from an expired set
// is still used rather than reporting the session as unknown.
type keySet struct {
	url    string
	client *http.Client
	now    func() time.Time
	group  singleflight.Group

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	triedAt   time.Time
	lastErr   error
}

func newKeySet(url string) *keySet {
	return &keySet{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		now:    time.Now,
	}
}

// lookup returns the key for kid. Errors wrapping domain.ErrAuthUnavailable
// mean the endpoint could not be read and no cached key could stand in.
func (s *keySet) lookup(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	s.mu.Lock()
	key, known := s.keys[kid]
	now := s.now()
	fresh := !s.fetchedAt.IsZero() && now.Sub(s.fetchedAt) < jwksTTL
	throttled := now.Sub(s.triedAt) < jwksMinRefresh
	lastErr := s.lastErr
	s.mu.Unlock()

	switch {
	case known && fresh:
		return key, nil
	case throttled && lastErr != nil:
		if known {
			return key, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthUnavailable, lastErr)
	case throttled && fresh:
		return nil, errUnknownKey
	}

	if err := s.refresh(ctx); err != nil {
		if known {
			return key, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthUnavailable, err)
	}

	s.mu.Lock()
	key, known = s.keys[kid]
	s.mu.Unlock()
	if !known {
		return nil, errUnknownKey
	}
	return key, nil
}

// refresh collapses concurrent refetches into one request.
func (s *keySet) refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("jwks", func() (interface{}, error) {
		keys, err := s.fetch(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.triedAt, s.lastErr = s.now(), err
		if err == nil {
			s.keys, s.fetchedAt = keys, s.triedAt
		}
		return nil, err
	})
	return err
}

func (s *keySet) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch jwks: status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []jsonWebKey `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || k.Use == "enc" || k.Kid == "" {
			continue
		}
		pub, err := k.rsaKey()
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}
	return keys, nil
}

func (k jsonWebKey) rsaKey() (*rsa.PublicKey, error) {
	n, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, err
	}
	e, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, err
	}
	exp := new(big.Int).SetBytes(e)
	if len(n) == 0 || !exp.IsInt64() || exp.Int64() < 3 || exp.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("jwks: malformed key %q", k.Kid)
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(n), E: int(exp.Int64())}, nil
}
