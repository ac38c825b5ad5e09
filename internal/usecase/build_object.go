package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"aegis/internal/domain"
)

// ObjectBuilder assembles sealed objects: manifest, security label,
// bound policy, key access objects and encrypted payload. Build methods
// validate their inputs, copy every slice they are handed, and stamp
// hashes at creation so the validator can later recompute them.
type ObjectBuilder struct {
	Crypto CryptoService
	Signer PolicySigner
	Now    func() time.Time
}

func (b *ObjectBuilder) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

func (b *ObjectBuilder) timestamp() string {
	return b.now().UTC().Format(time.RFC3339)
}

// BuildManifest creates the descriptive envelope for an object. An empty
// objectID gets a fresh UUID.
func (b *ObjectBuilder) BuildManifest(objectID, objectType, owner, owningOrg, contentType string, payloadSize int64) domain.Manifest {
	if objectID == "" {
		objectID = uuid.NewString()
	}
	if objectType == "" {
		objectType = "document"
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	ts := b.timestamp()
	return domain.Manifest{
		ObjectID:           objectID,
		Version:            "1.0",
		ObjectType:         objectType,
		Owner:              owner,
		OwningOrganization: owningOrg,
		ContentType:        contentType,
		PayloadSize:        payloadSize,
		CreatedAt:          ts,
		ModifiedAt:         ts,
	}
}

// BuildSecurityLabel creates a label and derives its display marking.
// Releasability must name at least one country; an empty list would deny
// everyone and is rejected here rather than at read time.
func (b *ObjectBuilder) BuildSecurityLabel(classification domain.Classification, releasabilityTo, coi []string, operator domain.COIOperator, caveats []string, originatingCountry, creationDate string) (domain.SecurityLabel, error) {
	if classification == "" {
		return domain.SecurityLabel{}, errors.New("classification is required")
	}
	if len(releasabilityTo) == 0 {
		return domain.SecurityLabel{}, domain.ErrEmptyReleasability
	}
	if originatingCountry == "" {
		originatingCountry = "USA"
	}
	if creationDate == "" {
		creationDate = b.timestamp()
	}
	if len(coi) > 0 && operator == "" {
		operator = domain.COIOperatorAll
	}
	if len(coi) == 0 {
		operator = ""
	}

	label := domain.SecurityLabel{
		Classification:     classification,
		ReleasabilityTo:    copyStrings(releasabilityTo),
		COI:                copyStrings(coi),
		COIOperator:        operator,
		Caveats:            copyStrings(caveats),
		OriginatingCountry: originatingCountry,
		CreationDate:       creationDate,
	}
	label.DisplayMarking = domain.BuildDisplayMarking(label)
	return label, nil
}

// BuildPolicy binds a label and assertions under a fresh policy hash.
// When a signer is configured the policy is signed over the same
// canonical view the hash covers.
func (b *ObjectBuilder) BuildPolicy(ctx context.Context, label domain.SecurityLabel, assertions []domain.Assertion) (domain.Policy, error) {
	policy := domain.Policy{
		SecurityLabel:    label,
		PolicyAssertions: copyAssertions(assertions),
		PolicyVersion:    domain.PolicyVersionDefault,
	}
	hash, err := b.Crypto.PolicyDigest(policy)
	if err != nil {
		return domain.Policy{}, fmt.Errorf("hash policy: %w", err)
	}
	policy.PolicyHash = hash

	if b.Signer != nil {
		sig, err := b.Signer.Sign(ctx, policy)
		if err != nil {
			return domain.Policy{}, fmt.Errorf("sign policy: %w", err)
		}
		policy.PolicySignature = sig
	}
	return policy, nil
}

// BuildChunk records one ciphertext slice. The integrity hash covers the
// base64 text exactly as stored, and size is the decoded byte count.
func (b *ObjectBuilder) BuildChunk(index int, ciphertextB64 string) (domain.EncryptedChunk, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return domain.EncryptedChunk{}, fmt.Errorf("%w: chunk %d: %v", domain.ErrInvalidChunk, index, err)
	}
	return domain.EncryptedChunk{
		ChunkIndex:    index,
		Ciphertext:    ciphertextB64,
		StorageMode:   domain.StorageModeInline,
		Size:          int64(len(raw)),
		IntegrityHash: b.Crypto.Digest([]byte(ciphertextB64)),
	}, nil
}

// BuildKeyAccessObject snapshots the label's access conditions alongside
// an opaque wrapped key. The snapshot is what a key-release service
// enforces even if the policy document is later altered.
func (b *ObjectBuilder) BuildKeyAccessObject(kasURL, kasID, wrappedKey string, label domain.SecurityLabel) domain.KeyAccessObject {
	if kasURL == "" {
		kasURL = domain.DefaultKeyAccessURL
	}
	return domain.KeyAccessObject{
		KAOID:             uuid.NewString(),
		KASURL:            kasURL,
		KASID:             kasID,
		WrappedKey:        wrappedKey,
		WrappingAlgorithm: domain.AlgorithmAES256GCM,
		PolicyBinding: domain.PolicyBinding{
			ClearanceRequired: label.Classification,
			AllowedCountries:  copyStrings(label.ReleasabilityTo),
			COIRequired:       copyStrings(label.COI),
		},
		CreatedAt: b.timestamp(),
	}
}

// BuildPayload assembles the encrypted payload and stamps the payload
// hash over the chunk ciphertexts in order.
func (b *ObjectBuilder) BuildPayload(algorithm, iv, authTag string, kaos []domain.KeyAccessObject, chunks []domain.EncryptedChunk) domain.Payload {
	if algorithm == "" {
		algorithm = domain.AlgorithmAES256GCM
	}
	var text []byte
	for _, chunk := range chunks {
		text = append(text, chunk.Ciphertext...)
	}
	return domain.Payload{
		EncryptionAlgorithm: algorithm,
		IV:                  iv,
		AuthTag:             authTag,
		KeyAccessObjects:    copyKAOs(kaos),
		EncryptedChunks:     copyChunks(chunks),
		PayloadHash:         b.Crypto.Digest(text),
	}
}

// BuildObject aggregates the three parts. No further hashing happens
// here; every binding was stamped when its part was built.
func (b *ObjectBuilder) BuildObject(manifest domain.Manifest, policy domain.Policy, payload domain.Payload) domain.ZTDFObject {
	return domain.ZTDFObject{
		Manifest: manifest,
		Policy:   policy,
		Payload:  payload,
	}
}

func copyStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func copyAssertions(in []domain.Assertion) []domain.Assertion {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Assertion, len(in))
	copy(out, in)
	return out
}

func copyKAOs(in []domain.KeyAccessObject) []domain.KeyAccessObject {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.KeyAccessObject, len(in))
	copy(out, in)
	return out
}

func copyChunks(in []domain.EncryptedChunk) []domain.EncryptedChunk {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.EncryptedChunk, len(in))
	copy(out, in)
	return out
}
