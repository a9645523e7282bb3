package domain

import "context"

type HealthUsecase interface {
	// Check reports "up", "down" or "disabled" per dependency plus an
	// overall "status".
	Check(ctx context.Context) (map[string]string, bool)
}
