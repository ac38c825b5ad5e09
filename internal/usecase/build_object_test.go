package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"aegis/internal/domain"
	cryptoinfra "aegis/internal/infra/crypto"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
}

func newTestBuilder() *ObjectBuilder {
	return &ObjectBuilder{
		Crypto: cryptoinfra.NewService(nil),
		Now:    fixedClock,
	}
}

func TestBuildManifest(t *testing.T) {
	builder := newTestBuilder()

	manifest := builder.BuildManifest("doc-1", "document", "alice", "J2", "text/plain", 42)
	if manifest.ObjectID != "doc-1" {
		t.Errorf("objectId = %q", manifest.ObjectID)
	}
	if manifest.Version != "1.0" {
		t.Errorf("version = %q, want 1.0", manifest.Version)
	}
	if manifest.CreatedAt != "2026-08-21T10:00:00Z" || manifest.ModifiedAt != manifest.CreatedAt {
		t.Errorf("timestamps = %q / %q", manifest.CreatedAt, manifest.ModifiedAt)
	}
	if _, err := time.Parse(time.RFC3339, manifest.CreatedAt); err != nil {
		t.Errorf("createdAt not RFC 3339: %v", err)
	}
	if manifest.PayloadSize != 42 {
		t.Errorf("payloadSize = %d", manifest.PayloadSize)
	}
}

func TestBuildManifestDefaults(t *testing.T) {
	builder := newTestBuilder()

	manifest := builder.BuildManifest("", "", "alice", "", "", 0)
	if manifest.ObjectID == "" {
		t.Error("empty objectId not replaced with a generated id")
	}
	if manifest.ObjectType != "document" {
		t.Errorf("objectType = %q, want document", manifest.ObjectType)
	}
	if manifest.ContentType != "application/octet-stream" {
		t.Errorf("contentType = %q", manifest.ContentType)
	}

	other := builder.BuildManifest("", "", "alice", "", "", 0)
	if other.ObjectID == manifest.ObjectID {
		t.Error("generated ids repeat")
	}
}

func TestBuildSecurityLabel(t *testing.T) {
	builder := newTestBuilder()

	label, err := builder.BuildSecurityLabel(
		domain.ClassificationSecret,
		[]string{"USA", "GBR"},
		[]string{"FVEY"},
		"",
		nil,
		"",
		"",
	)
	if err != nil {
		t.Fatalf("build label: %v", err)
	}
	if label.DisplayMarking != "SECRET//FVEY//REL USA, GBR" {
		t.Errorf("displayMarking = %q", label.DisplayMarking)
	}
	if label.COIOperator != domain.COIOperatorAll {
		t.Errorf("coiOperator = %q, want ALL default", label.COIOperator)
	}
	if label.OriginatingCountry != "USA" {
		t.Errorf("originatingCountry = %q, want USA default", label.OriginatingCountry)
	}
	if label.CreationDate != "2026-08-21T10:00:00Z" {
		t.Errorf("creationDate = %q", label.CreationDate)
	}
}

func TestBuildSecurityLabelEmptyReleasability(t *testing.T) {
	builder := newTestBuilder()
	_, err := builder.BuildSecurityLabel(domain.ClassificationSecret, nil, nil, "", nil, "", "")
	if !errors.Is(err, domain.ErrEmptyReleasability) {
		t.Errorf("err = %v, want ErrEmptyReleasability", err)
	}
}

func TestBuildSecurityLabelRequiresClassification(t *testing.T) {
	builder := newTestBuilder()
	if _, err := builder.BuildSecurityLabel("", []string{"USA"}, nil, "", nil, "", ""); err == nil {
		t.Error("expected error for empty classification")
	}
}

func TestBuildSecurityLabelClearsOperatorWithoutCOI(t *testing.T) {
	builder := newTestBuilder()
	label, err := builder.BuildSecurityLabel(domain.ClassificationSecret, []string{"USA"}, nil, domain.COIOperatorAny, nil, "", "")
	if err != nil {
		t.Fatalf("build label: %v", err)
	}
	if label.COIOperator != "" {
		t.Errorf("coiOperator = %q, want empty without COI", label.COIOperator)
	}
}

func TestBuildSecurityLabelCopiesInputs(t *testing.T) {
	builder := newTestBuilder()
	releasability := []string{"USA", "GBR"}
	label, err := builder.BuildSecurityLabel(domain.ClassificationSecret, releasability, nil, "", nil, "", "")
	if err != nil {
		t.Fatalf("build label: %v", err)
	}
	releasability[1] = "RUS"
	if label.ReleasabilityTo[1] != "GBR" {
		t.Error("label shares backing array with caller input")
	}
}

func TestBuildPolicy(t *testing.T) {
	builder := newTestBuilder()
	label, err := builder.BuildSecurityLabel(domain.ClassificationSecret, []string{"USA"}, nil, "", nil, "", "")
	if err != nil {
		t.Fatalf("build label: %v", err)
	}

	policy, err := builder.BuildPolicy(context.Background(), label, []domain.Assertion{
		{Type: "clearance-required", Value: "SECRET"},
	})
	if err != nil {
		t.Fatalf("build policy: %v", err)
	}
	if policy.PolicyVersion != domain.PolicyVersionDefault {
		t.Errorf("policyVersion = %q", policy.PolicyVersion)
	}
	if len(policy.PolicyHash) != cryptoinfra.HashHexLength {
		t.Fatalf("policyHash length = %d", len(policy.PolicyHash))
	}

	recomputed, err := cryptoinfra.PolicyDigest(policy)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if recomputed != policy.PolicyHash {
		t.Error("stored policy hash does not match recomputation")
	}
	if policy.PolicySignature != nil {
		t.Error("unsigned build produced a signature")
	}
}

type stubSigner struct {
	sig *domain.PolicySignature
	err error
}

func (s stubSigner) Sign(context.Context, domain.Policy) (*domain.PolicySignature, error) {
	return s.sig, s.err
}

func TestBuildPolicySigned(t *testing.T) {
	builder := newTestBuilder()
	builder.Signer = stubSigner{sig: &domain.PolicySignature{
		Algorithm: "HS384",
		KeyID:     "policy-key-1",
		Value:     "c2ln",
	}}

	label, err := builder.BuildSecurityLabel(domain.ClassificationSecret, []string{"USA"}, nil, "", nil, "", "")
	if err != nil {
		t.Fatalf("build label: %v", err)
	}
	policy, err := builder.BuildPolicy(context.Background(), label, nil)
	if err != nil {
		t.Fatalf("build policy: %v", err)
	}
	if policy.PolicySignature == nil || policy.PolicySignature.KeyID != "policy-key-1" {
		t.Errorf("policySignature = %+v", policy.PolicySignature)
	}
}

func TestBuildPolicySignerFailure(t *testing.T) {
	builder := newTestBuilder()
	builder.Signer = stubSigner{err: errors.New("hsm offline")}

	label, err := builder.BuildSecurityLabel(domain.ClassificationSecret, []string{"USA"}, nil, "", nil, "", "")
	if err != nil {
		t.Fatalf("build label: %v", err)
	}
	if _, err := builder.BuildPolicy(context.Background(), label, nil); err == nil {
		t.Error("expected signer failure to surface")
	}
}

func TestBuildChunk(t *testing.T) {
	builder := newTestBuilder()
	raw := []byte("sixteen byte blk")
	encoded := base64.StdEncoding.EncodeToString(raw)

	chunk, err := builder.BuildChunk(3, encoded)
	if err != nil {
		t.Fatalf("build chunk: %v", err)
	}
	if chunk.ChunkIndex != 3 {
		t.Errorf("chunkIndex = %d", chunk.ChunkIndex)
	}
	if chunk.Size != int64(len(raw)) {
		t.Errorf("size = %d, want %d", chunk.Size, len(raw))
	}
	if chunk.StorageMode != domain.StorageModeInline {
		t.Errorf("storageMode = %q", chunk.StorageMode)
	}
	if chunk.IntegrityHash != cryptoinfra.Digest([]byte(encoded)) {
		t.Error("integrityHash does not cover the stored base64 text")
	}
}

func TestBuildChunkRejectsBadBase64(t *testing.T) {
	builder := newTestBuilder()
	if _, err := builder.BuildChunk(0, "!!!"); !errors.Is(err, domain.ErrInvalidChunk) {
		t.Errorf("err = %v, want ErrInvalidChunk", err)
	}
}

func TestBuildKeyAccessObject(t *testing.T) {
	builder := newTestBuilder()
	label, err := builder.BuildSecurityLabel(domain.ClassificationTopSecret, []string{"USA", "GBR", "CAN"}, []string{"FVEY"}, "", nil, "", "")
	if err != nil {
		t.Fatalf("build label: %v", err)
	}

	kao := builder.BuildKeyAccessObject("", "kas-east", "d2tleQ==", label)
	if kao.KAOID == "" {
		t.Error("kaoId not generated")
	}
	if kao.KASURL != domain.DefaultKeyAccessURL {
		t.Errorf("kasUrl = %q, want default", kao.KASURL)
	}
	if kao.WrappingAlgorithm != domain.AlgorithmAES256GCM {
		t.Errorf("wrappingAlgorithm = %q", kao.WrappingAlgorithm)
	}
	if kao.PolicyBinding.ClearanceRequired != domain.ClassificationTopSecret {
		t.Errorf("clearanceRequired = %q", kao.PolicyBinding.ClearanceRequired)
	}
	if len(kao.PolicyBinding.AllowedCountries) != 3 || kao.PolicyBinding.AllowedCountries[2] != "CAN" {
		t.Errorf("allowedCountries = %v", kao.PolicyBinding.AllowedCountries)
	}
	if kao.CreatedAt != "2026-08-21T10:00:00Z" {
		t.Errorf("createdAt = %q", kao.CreatedAt)
	}

	label.ReleasabilityTo[0] = "RUS"
	if kao.PolicyBinding.AllowedCountries[0] != "USA" {
		t.Error("policy binding aliases the label's slices")
	}

	other := builder.BuildKeyAccessObject("", "", "d2tleQ==", label)
	if other.KAOID == kao.KAOID {
		t.Error("kaoIds repeat")
	}
}

func TestBuildPayload(t *testing.T) {
	builder := newTestBuilder()
	first, err := builder.BuildChunk(0, base64.StdEncoding.EncodeToString([]byte("part one")))
	if err != nil {
		t.Fatalf("chunk 0: %v", err)
	}
	second, err := builder.BuildChunk(1, base64.StdEncoding.EncodeToString([]byte("part two")))
	if err != nil {
		t.Fatalf("chunk 1: %v", err)
	}

	payload := builder.BuildPayload("", "aXY=", "dGFn", nil, []domain.EncryptedChunk{first, second})
	if payload.EncryptionAlgorithm != domain.AlgorithmAES256GCM {
		t.Errorf("encryptionAlgorithm = %q", payload.EncryptionAlgorithm)
	}
	want := cryptoinfra.Digest([]byte(first.Ciphertext + second.Ciphertext))
	if payload.PayloadHash != want {
		t.Error("payloadHash does not cover concatenated chunk ciphertexts")
	}
}

func TestBuildObjectAggregates(t *testing.T) {
	builder := newTestBuilder()
	label, err := builder.BuildSecurityLabel(domain.ClassificationUnclassified, []string{"USA"}, nil, "", nil, "", "")
	if err != nil {
		t.Fatalf("build label: %v", err)
	}
	policy, err := builder.BuildPolicy(context.Background(), label, nil)
	if err != nil {
		t.Fatalf("build policy: %v", err)
	}
	manifest := builder.BuildManifest("doc-1", "", "alice", "", "", 4)
	payload := builder.BuildPayload("", "aXY=", "dGFn", nil, nil)

	obj := builder.BuildObject(manifest, policy, payload)
	if obj.Manifest.ObjectID != "doc-1" || obj.Policy.PolicyHash == "" || obj.Payload.IV != "aXY=" {
		t.Error("aggregation lost a part")
	}
}
