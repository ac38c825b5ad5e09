// Package seal is the embedding surface for producing, opening and
// checking bound objects without wiring the internal packages by hand.
package seal

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"aegis/internal/domain"
	cryptoinfra "aegis/internal/infra/crypto"
	"aegis/internal/usecase"
)

// Options describes a single sealing operation. Classification and
// ReleasabilityTo are required; everything else has a usable default.
type Options struct {
	Classification     domain.Classification
	ReleasabilityTo    []string
	COI                []string
	COIOperator        domain.COIOperator
	Caveats            []string
	OriginatingCountry string

	ObjectID           string
	ObjectType         string
	Owner              string
	OwningOrganization string
	ContentType        string

	Assertions []domain.Assertion

	// ChunkSize splits the ciphertext stream; zero keeps a single chunk.
	ChunkSize int

	KASURL string
	KASID  string

	// Keys supplies community keys. With COI set and Keys configured the
	// payload is sealed under the first community's key; sealing fails
	// when that key cannot be fetched. Without Keys the deterministic
	// per-object key is used instead.
	Keys domain.CommunityKeyProvider

	// Signer, when set, signs the policy after its hash is computed.
	Signer usecase.PolicySigner
}

// Seal encrypts content and binds it to the label described by opts,
// emitting one key access object per community of interest.
func Seal(ctx context.Context, content []byte, opts Options) (domain.ZTDFObject, error) {
	svc := cryptoinfra.NewService(opts.Keys)
	builder := &usecase.ObjectBuilder{Crypto: svc, Signer: opts.Signer}

	objectID := opts.ObjectID
	if objectID == "" {
		objectID = uuid.NewString()
	}

	label, err := builder.BuildSecurityLabel(opts.Classification, opts.ReleasabilityTo, opts.COI, opts.COIOperator, opts.Caveats, opts.OriginatingCountry, "")
	if err != nil {
		return domain.ZTDFObject{}, err
	}

	communityID := ""
	if opts.Keys != nil && len(label.COI) > 0 {
		communityID = label.COI[0]
	}
	enc, err := svc.Encrypt(ctx, content, objectID, communityID)
	if err != nil {
		return domain.ZTDFObject{}, fmt.Errorf("seal %s: %w", objectID, err)
	}

	texts := []string{enc.Ciphertext}
	if opts.ChunkSize > 0 {
		if texts, err = cryptoinfra.SplitCiphertext(enc, opts.ChunkSize); err != nil {
			return domain.ZTDFObject{}, err
		}
	}
	chunks := make([]domain.EncryptedChunk, 0, len(texts))
	for i, text := range texts {
		chunk, err := builder.BuildChunk(i, text)
		if err != nil {
			return domain.ZTDFObject{}, err
		}
		chunks = append(chunks, chunk)
	}

	kaos := buildKAOs(builder, opts, enc.Key, label)
	payload := builder.BuildPayload("", enc.IV, enc.AuthTag, kaos, chunks)

	policy, err := builder.BuildPolicy(ctx, label, opts.Assertions)
	if err != nil {
		return domain.ZTDFObject{}, err
	}

	manifest := builder.BuildManifest(objectID, opts.ObjectType, opts.Owner, opts.OwningOrganization, opts.ContentType, int64(len(content)))
	return builder.BuildObject(manifest, policy, payload), nil
}

// buildKAOs emits one KAO per community so a release service can gate
// each community independently. The binding snapshot narrows COI to the
// one community; labels without COI yield a single KAO.
func buildKAOs(builder *usecase.ObjectBuilder, opts Options, key string, label domain.SecurityLabel) []domain.KeyAccessObject {
	if len(label.COI) == 0 {
		return []domain.KeyAccessObject{builder.BuildKeyAccessObject(opts.KASURL, opts.KASID, key, label)}
	}
	kaos := make([]domain.KeyAccessObject, 0, len(label.COI))
	for _, name := range label.COI {
		kaoLabel := label
		kaoLabel.COI = []string{name}
		kaos = append(kaos, builder.BuildKeyAccessObject(opts.KASURL, opts.KASID, key, kaoLabel))
	}
	return kaos
}
