package keys

import (
	"context"
	"fmt"

	"aegis/internal/domain"
)

// Chain queries providers in order and returns the first key found. Nil
// entries are skipped. When every provider fails, the last error is
// returned so the caller sees the most specific cause.
type Chain []domain.CommunityKeyProvider

func (c Chain) GetCommunityKey(ctx context.Context, coiName string) ([]byte, error) {
	var lastErr error
	for _, provider := range c {
		if provider == nil {
			continue
		}
		key, err := provider.GetCommunityKey(ctx, coiName)
		if err == nil {
			return key, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("%w: %s", domain.ErrCommunityKeyUnavailable, coiName)
	}
	return nil, lastErr
}
