package seal

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"aegis/internal/domain"
	cryptoinfra "aegis/internal/infra/crypto"
)

// OpenOptions resolves the decryption key, in order: Key verbatim, the
// community provider for the label's COIs, the first KAO's wrapped key,
// then the deterministic per-object key.
type OpenOptions struct {
	Key            []byte
	Keys           domain.CommunityKeyProvider
	ExternalChunks map[int]string
}

// Open decrypts a sealed object's payload. It does not validate
// bindings; run Validate first when the object comes from outside.
func Open(ctx context.Context, obj domain.ZTDFObject, opts OpenOptions) ([]byte, error) {
	texts := make([]string, 0, len(obj.Payload.EncryptedChunks))
	for _, chunk := range obj.Payload.EncryptedChunks {
		text := chunk.Ciphertext
		if text == "" && chunk.StorageMode == domain.StorageModeExternal {
			external, ok := opts.ExternalChunks[chunk.ChunkIndex]
			if !ok {
				return nil, fmt.Errorf("chunk %d ciphertext stored externally and not supplied", chunk.ChunkIndex)
			}
			text = external
		}
		texts = append(texts, text)
	}
	raw, err := cryptoinfra.JoinChunks(texts)
	if err != nil {
		return nil, err
	}

	key, err := resolveKey(ctx, obj, opts)
	if err != nil {
		return nil, err
	}

	svc := cryptoinfra.NewService(opts.Keys)
	return svc.Decrypt(domain.EncryptResult{
		Ciphertext: base64.StdEncoding.EncodeToString(raw),
		IV:         obj.Payload.IV,
		AuthTag:    obj.Payload.AuthTag,
		Key:        base64.StdEncoding.EncodeToString(key),
	})
}

func resolveKey(ctx context.Context, obj domain.ZTDFObject, opts OpenOptions) ([]byte, error) {
	if len(opts.Key) > 0 {
		return opts.Key, nil
	}
	if opts.Keys != nil {
		for _, name := range obj.Policy.SecurityLabel.COI {
			key, err := opts.Keys.GetCommunityKey(ctx, name)
			if err == nil {
				return key, nil
			}
			if !errors.Is(err, domain.ErrCommunityKeyUnavailable) {
				return nil, fmt.Errorf("community key %q: %w", name, err)
			}
		}
	}
	for _, kao := range obj.Payload.KeyAccessObjects {
		if kao.WrappedKey == "" {
			continue
		}
		key, err := base64.StdEncoding.DecodeString(kao.WrappedKey)
		if err != nil {
			return nil, fmt.Errorf("decode wrapped key of %s: %w", kao.KAOID, err)
		}
		return key, nil
	}
	if obj.Manifest.ObjectID != "" {
		return cryptoinfra.DeriveResourceKey(obj.Manifest.ObjectID), nil
	}
	return nil, errors.New("no decryption key available")
}
