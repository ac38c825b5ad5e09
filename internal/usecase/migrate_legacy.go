package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"aegis/internal/domain"
)

const (
	legacyIVSize  = 12
	legacyTagSize = 16
	legacyKeySize = 32
)

// MigrationReport accompanies a migrated object with the conditions
// migration could not repair.
type MigrationReport struct {
	ResourceID       string   `json:"resourceId"`
	CiphertextReused bool     `json:"ciphertextReused"`
	Notes            []string `json:"notes,omitempty"`
}

// LegacyMigrator converts pre-sealing records into bound objects.
// Records arriving already encrypted keep their ciphertext byte for
// byte and get fabricated iv/authTag/key material, so they cannot
// decrypt; the report flags them instead of silently re-keying data the
// migrator has no plaintext for. Plaintext records are encrypted under
// the deterministic per-resource key, so re-running migration yields
// the same key.
type LegacyMigrator struct {
	Builder *ObjectBuilder
	Crypto  CryptoService
	KASURL  string
}

func (m *LegacyMigrator) Execute(ctx context.Context, legacy domain.LegacyRecord) (*domain.ZTDFObject, *MigrationReport, error) {
	if legacy.ResourceID == "" {
		return nil, nil, errors.New("resourceId is required")
	}
	if strings.TrimSpace(legacy.Classification) == "" {
		return nil, nil, fmt.Errorf("classification is required for %s", legacy.ResourceID)
	}
	report := &MigrationReport{ResourceID: legacy.ResourceID}

	classification, err := domain.ParseClassification(legacy.Classification)
	if err != nil {
		if !errors.Is(err, domain.ErrUnknownClassification) {
			return nil, nil, err
		}
		classification = domain.Classification(strings.ToUpper(strings.TrimSpace(legacy.Classification)))
		report.Notes = append(report.Notes, fmt.Sprintf("classification %q not recognized; carried over verbatim", legacy.Classification))
	}

	var operator domain.COIOperator
	if len(legacy.COI) > 1 {
		operator = domain.COIOperatorAny
	}
	label, err := m.Builder.BuildSecurityLabel(classification, legacy.ReleasabilityTo, legacy.COI, operator, nil, "", legacy.CreationDate)
	if err != nil {
		return nil, nil, fmt.Errorf("build label for %s: %w", legacy.ResourceID, err)
	}

	assertions := []domain.Assertion{
		{Type: "clearance-required", Value: string(classification)},
		{Type: "releasability-required", Value: copyStrings(legacy.ReleasabilityTo)},
	}
	if len(legacy.COI) > 0 {
		assertions = append(assertions, domain.Assertion{Type: "coi-required", Value: copyStrings(legacy.COI)})
	}
	if legacy.Title != "" {
		assertions = append(assertions, domain.Assertion{Type: "legacy-title", Value: legacy.Title})
	}

	var chunkB64, iv, authTag, wrappedKey string
	switch {
	case legacy.Encrypted:
		if legacy.EncryptedContent == "" {
			return nil, nil, fmt.Errorf("%w: %s is marked encrypted but has no encryptedContent", domain.ErrMissingContent, legacy.ResourceID)
		}
		chunkB64 = legacy.EncryptedContent
		if iv, err = randomB64(legacyIVSize); err != nil {
			return nil, nil, fmt.Errorf("fabricate iv: %w", err)
		}
		if authTag, err = randomB64(legacyTagSize); err != nil {
			return nil, nil, fmt.Errorf("fabricate auth tag: %w", err)
		}
		if wrappedKey, err = randomB64(legacyKeySize); err != nil {
			return nil, nil, fmt.Errorf("fabricate key: %w", err)
		}
		report.CiphertextReused = true
		report.Notes = append(report.Notes, "encrypted content reused as-is with fabricated iv/authTag; the object cannot decrypt until re-encrypted from source")
	default:
		if legacy.Content == "" {
			return nil, nil, fmt.Errorf("%w: %s has neither content nor encryptedContent", domain.ErrMissingContent, legacy.ResourceID)
		}
		enc, err := m.Crypto.Encrypt(ctx, []byte(legacy.Content), legacy.ResourceID, "")
		if err != nil {
			return nil, nil, fmt.Errorf("encrypt %s: %w", legacy.ResourceID, err)
		}
		chunkB64, iv, authTag, wrappedKey = enc.Ciphertext, enc.IV, enc.AuthTag, enc.Key
	}

	chunk, err := m.Builder.BuildChunk(0, chunkB64)
	if err != nil {
		return nil, nil, fmt.Errorf("chunk %s: %w", legacy.ResourceID, err)
	}
	kao := m.Builder.BuildKeyAccessObject(m.KASURL, "", wrappedKey, label)
	payload := m.Builder.BuildPayload(domain.AlgorithmAES256GCM, iv, authTag, []domain.KeyAccessObject{kao}, []domain.EncryptedChunk{chunk})

	policy, err := m.Builder.BuildPolicy(ctx, label, assertions)
	if err != nil {
		return nil, nil, fmt.Errorf("build policy for %s: %w", legacy.ResourceID, err)
	}

	manifest := m.Builder.BuildManifest(legacy.ResourceID, "document", "legacy-migration", "", "text/plain", chunk.Size)
	obj := m.Builder.BuildObject(manifest, policy, payload)
	return &obj, report, nil
}

func randomB64(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}
