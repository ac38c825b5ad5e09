package seal

import (
	"context"

	"aegis/internal/domain"
	cryptoinfra "aegis/internal/infra/crypto"
	"aegis/internal/usecase"
)

// Validate checks the object's bindings with default options and no
// signature verifier. Embedders needing strict mode, test bypass or
// signature verification construct usecase.IntegrityValidator directly.
func Validate(ctx context.Context, obj domain.ZTDFObject) domain.ValidationResult {
	validator := &usecase.IntegrityValidator{Crypto: cryptoinfra.NewService(nil)}
	return validator.Execute(ctx, usecase.ValidateRequest{Object: obj})
}

// ValidateExternal is Validate for objects whose chunk ciphertext is
// stored out of band.
func ValidateExternal(ctx context.Context, obj domain.ZTDFObject, chunks map[int]string) domain.ValidationResult {
	validator := &usecase.IntegrityValidator{Crypto: cryptoinfra.NewService(nil)}
	return validator.Execute(ctx, usecase.ValidateRequest{Object: obj, ExternalChunks: chunks})
}
