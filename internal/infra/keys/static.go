// Package keys provides community key material to the cipher layer.
// Providers all satisfy domain.CommunityKeyProvider and can be stacked
// with Chain: a Redis cache in front of the database registry, with a
// derived provider as the offline fallback.
package keys

import (
	"context"
	"fmt"

	"aegis/internal/domain"
)

// communityKeySize is the AES-256 key length every provider returns.
const communityKeySize = 32

// Static serves keys from a fixed in-memory map. Used by tests and by
// tooling that loads keys from configuration.
type Static struct {
	keys map[string][]byte
}

func NewStatic(keys map[string][]byte) *Static {
	copied := make(map[string][]byte, len(keys))
	for name, key := range keys {
		copied[name] = append([]byte(nil), key...)
	}
	return &Static{keys: copied}
}

func (s *Static) GetCommunityKey(_ context.Context, coiName string) ([]byte, error) {
	key, ok := s.keys[coiName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCommunityKeyUnavailable, coiName)
	}
	return append([]byte(nil), key...), nil
}
