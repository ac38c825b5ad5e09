package usecase

import (
	"context"
	"errors"
	"time"

	"aegis/internal/domain"
)

// Clock abstracts time.Now for tests.
type Clock func() time.Time

// KeyRotationService retires and replaces community keys on a schedule.
// Interval <= 0 disables age-based rotation; RotateIfDue then only
// provisions communities that have no active key yet.
type KeyRotationService struct {
	Store    CommunityKeyStore
	Clock    Clock
	Interval time.Duration
}

// Rotate forces a new key version for the community regardless of the
// age of the current one. Objects sealed under the old version keep
// their wrapped keys; only new seals pick up the replacement.
func (s *KeyRotationService) Rotate(ctx context.Context, coiName string) (domain.CommunityKeyRecord, error) {
	if s.Store == nil {
		return domain.CommunityKeyRecord{}, errors.New("community key store is required")
	}
	if coiName == "" {
		return domain.CommunityKeyRecord{}, errors.New("community name is required")
	}
	return s.Store.Rotate(ctx, coiName)
}

// RotateIfDue rotates when the community has no active key, when the
// active key's age is unknown, or when it is at least Interval old.
// It reports whether a rotation happened and the key now active.
func (s *KeyRotationService) RotateIfDue(ctx context.Context, coiName string) (bool, *domain.CommunityKeyRecord, error) {
	if s.Store == nil {
		return false, nil, errors.New("community key store is required")
	}
	if coiName == "" {
		return false, nil, errors.New("community name is required")
	}
	active, err := s.Store.ActiveKey(ctx, coiName)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, nil, err
	}
	if active == nil {
		return s.rotate(ctx, coiName)
	}
	if s.Interval <= 0 {
		return false, active, nil
	}
	if active.CreatedAt.IsZero() {
		return s.rotate(ctx, coiName)
	}
	if s.now().Sub(active.CreatedAt) >= s.Interval {
		return s.rotate(ctx, coiName)
	}
	return false, active, nil
}

func (s *KeyRotationService) rotate(ctx context.Context, coiName string) (bool, *domain.CommunityKeyRecord, error) {
	rotated, err := s.Store.Rotate(ctx, coiName)
	if err != nil {
		return false, nil, err
	}
	return true, &rotated, nil
}

func (s *KeyRotationService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}
