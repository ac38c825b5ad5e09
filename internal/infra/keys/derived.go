package keys

import (
	"context"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"aegis/internal/domain"
)

// derivedKeySalt fixes the HKDF salt for community key derivation.
// Changing it rotates every derived key at once.
var derivedKeySalt = []byte("aegis-community-key-v1")

// Derived expands per-community keys from a master secret with
// HKDF-SHA-384, using the community name as the info string. Any node
// holding the same master secret derives identical keys, so communities
// need no key exchange.
type Derived struct {
	master []byte
}

func NewDerived(master []byte) (*Derived, error) {
	if len(master) == 0 {
		return nil, errors.New("master secret is required")
	}
	return &Derived{master: append([]byte(nil), master...)}, nil
}

func (d *Derived) GetCommunityKey(_ context.Context, coiName string) ([]byte, error) {
	if coiName == "" {
		return nil, fmt.Errorf("%w: empty community name", domain.ErrCommunityKeyUnavailable)
	}
	reader := hkdf.New(sha512.New384, d.master, derivedKeySalt, []byte(coiName))
	key := make([]byte, communityKeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("derive community key %q: %w", coiName, err)
	}
	return key, nil
}
