package usecase

import (
	"context"
	"errors"
	"time"

	"job-board-backend/internal/domain"
	"job-board-backend/pkg/apperror"
	"job-board-backend/pkg/audit"
)

type authUsecase struct {
	provider domain.AuthProvider
	sessions domain.SessionStore
	audit    *audit.Logger
	now      func() time.Time
}

func NewAuthUsecase(provider domain.AuthProvider, sessions domain.SessionStore, auditLog *audit.Logger) domain.AuthUsecase {
	return &authUsecase{provider: provider, sessions: sessions, audit: auditLog, now: time.Now}
}

func (u *authUsecase) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	requestID, _ := ctx.Value(domain.KeyRequestID).(string)
	ip, _ := ctx.Value(domain.KeyClientIP).(string)

	if email == "" || password == "" {
		u.audit.LoginFailed(ctx, email, ip, requestID, "missing_credentials")
		return nil, apperror.Auth("Email and password are required")
	}

	session, err := u.provider.SignIn(ctx, email, password)
	if err != nil {
		u.audit.LoginFailed(ctx, email, ip, requestID, string(apperror.KindOf(err)))
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.Unavailable("Authentication service unavailable")
	}

	u.audit.LoginSuccess(ctx, session.Email, ip, requestID)
	return session, nil
}

// SignOut remembers the token id until the token would have expired anyway.
func (u *authUsecase) SignOut(ctx context.Context, principal *domain.Principal) error {
	if principal == nil {
		return apperror.Unauthorized("Not signed in")
	}
	ttl := principal.ExpiresAt.Sub(u.now())
	if err := u.sessions.Revoke(ctx, principal.TokenID, ttl); err != nil {
		return apperror.Unavailable("Could not sign out, please retry")
	}
	u.audit.Logout(ctx, principal.Email)
	return nil
}

// Resolve never reports ABSENT when it could not actually check: a token
// store or key server outage yields UNKNOWN.
func (u *authUsecase) Resolve(ctx context.Context, token string) (domain.SessionState, *domain.Principal, error) {
	if token == "" {
		return domain.SessionAbsent, nil, nil
	}

	principal, err := u.provider.Verify(ctx, token)
	if errors.Is(err, domain.ErrAuthUnavailable) {
		return domain.SessionUnknown, nil, err
	}
	if err != nil {
		return domain.SessionAbsent, nil, nil
	}

	revoked, err := u.sessions.IsRevoked(ctx, principal.TokenID)
	if err != nil {
		return domain.SessionUnknown, nil, err
	}
	if revoked {
		return domain.SessionAbsent, nil, nil
	}
	return domain.SessionPresent, principal, nil
}
