package crypto

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"aegis/internal/domain"
)

const (
	// AESKeySize is the AES-256 key length in bytes.
	AESKeySize = 32
	// GCMNonceSize is the IV length in bytes.
	GCMNonceSize = 12
	// GCMTagSize is the authentication tag length in bytes.
	GCMTagSize = 16
	// DefaultChunkSize is the ciphertext slice size for chunked payloads.
	DefaultChunkSize = 1024 * 1024
)

// resourceKeySalt is mixed into deterministic per-resource keys. Changing
// it orphans every key derived before the change.
var resourceKeySalt = []byte("aegis-resource-key-v1")

// Service implements hashing, canonicalization and authenticated
// encryption over the object format. Community keys come from the
// injected provider; everything else is self-contained.
type Service struct {
	keys domain.CommunityKeyProvider
}

// NewService returns a Service. keys may be nil when no community
// provider is configured; community-key encryption then fails closed.
func NewService(keys domain.CommunityKeyProvider) *Service {
	return &Service{keys: keys}
}

// Digest returns the SHA-384 of data as lowercase hex.
func (s *Service) Digest(data []byte) string {
	return Digest(data)
}

// ObjectDigest hashes a structured value over its canonical form.
func (s *Service) ObjectDigest(v any) (string, error) {
	return ObjectDigest(v)
}

// DeriveResourceKey derives the deterministic AES-256 key for a resource.
// A key-release service holding the same salt can reconstruct it without
// any shared state.
func DeriveResourceKey(resourceID string) []byte {
	h := sha256.New()
	h.Write([]byte(resourceID))
	h.Write(resourceKeySalt)
	return h.Sum(nil)
}

// Encrypt seals plaintext with AES-256-GCM. The key is chosen in order
// of preference: the community key for communityID when set, the
// deterministic per-resource key when resourceID is set, otherwise a
// fresh random key. All returned fields are base64.
func (s *Service) Encrypt(ctx context.Context, plaintext []byte, resourceID, communityID string) (domain.EncryptResult, error) {
	key, err := s.selectKey(ctx, resourceID, communityID)
	if err != nil {
		return domain.EncryptResult{}, err
	}
	return sealWithKey(key, plaintext)
}

// Decrypt reverses Encrypt. Any authentication failure, including a
// tampered ciphertext, IV, tag or key, surfaces as ErrDecryptionFailed
// without detail.
func (s *Service) Decrypt(enc domain.EncryptResult) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(enc.Key)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(enc.IV)
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(enc.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	tag, err := base64.StdEncoding.DecodeString(enc.AuthTag)
	if err != nil {
		return nil, fmt.Errorf("decode auth tag: %w", err)
	}
	if len(nonce) != GCMNonceSize {
		return nil, domain.ErrInvalidNonceSize
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, domain.ErrDecryptionFailed
	}
	return plaintext, nil
}

// SplitCiphertext slices the raw ciphertext of enc into chunkSize pieces
// and re-encodes each slice as base64. A non-positive chunkSize falls
// back to DefaultChunkSize. Empty ciphertext yields a single empty chunk
// so the payload always carries at least one.
func SplitCiphertext(enc domain.EncryptResult, chunkSize int) ([]string, error) {
	raw, err := base64.StdEncoding.DecodeString(enc.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if len(raw) == 0 {
		return []string{""}, nil
	}

	chunks := make([]string, 0, (len(raw)+chunkSize-1)/chunkSize)
	for from := 0; from < len(raw); from += chunkSize {
		to := from + chunkSize
		if to > len(raw) {
			to = len(raw)
		}
		chunks = append(chunks, base64.StdEncoding.EncodeToString(raw[from:to]))
	}
	return chunks, nil
}

// JoinChunks decodes base64 chunk ciphertexts and concatenates them back
// into the raw ciphertext stream, in slice order.
func JoinChunks(chunks []string) ([]byte, error) {
	var raw []byte
	for i, chunk := range chunks {
		part, err := base64.StdEncoding.DecodeString(chunk)
		if err != nil {
			return nil, fmt.Errorf("%w: chunk %d: %v", domain.ErrInvalidChunk, i, err)
		}
		raw = append(raw, part...)
	}
	return raw, nil
}

func (s *Service) selectKey(ctx context.Context, resourceID, communityID string) ([]byte, error) {
	if communityID != "" {
		if s.keys == nil {
			return nil, fmt.Errorf("%w: no provider configured", domain.ErrCommunityKeyUnavailable)
		}
		key, err := s.keys.GetCommunityKey(ctx, communityID)
		if err != nil {
			return nil, fmt.Errorf("community key %q: %w", communityID, err)
		}
		if len(key) != AESKeySize {
			return nil, fmt.Errorf("community key %q: %w", communityID, domain.ErrInvalidKeySize)
		}
		return key, nil
	}
	if resourceID != "" {
		return DeriveResourceKey(resourceID), nil
	}
	key := make([]byte, AESKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

func sealWithKey(key, plaintext []byte) (domain.EncryptResult, error) {
	aead, err := newGCM(key)
	if err != nil {
		return domain.EncryptResult{}, err
	}
	nonce := make([]byte, GCMNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return domain.EncryptResult{}, fmt.Errorf("generate iv: %w", err)
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	tagStart := len(sealed) - GCMTagSize
	return domain.EncryptResult{
		Ciphertext: base64.StdEncoding.EncodeToString(sealed[:tagStart]),
		IV:         base64.StdEncoding.EncodeToString(nonce),
		AuthTag:    base64.StdEncoding.EncodeToString(sealed[tagStart:]),
		Key:        base64.StdEncoding.EncodeToString(key),
	}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, domain.ErrInvalidKeySize
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return aead, nil
}
