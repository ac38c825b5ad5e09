package domain

import "errors"

var (
	ErrDecryptionFailed        = errors.New("decryption failed")
	ErrInvalidKeySize          = errors.New("invalid key size")
	ErrInvalidNonceSize        = errors.New("invalid nonce size")
	ErrEmptyReleasability      = errors.New("empty releasability list")
	ErrUnknownClassification   = errors.New("unknown classification")
	ErrCommunityKeyUnavailable = errors.New("community key unavailable")
	ErrMissingContent          = errors.New("missing content")
	ErrInvalidChunk            = errors.New("invalid chunk")
	ErrNotFound                = errors.New("not found")
)
