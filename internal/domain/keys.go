package domain

import "time"

type KeyStatus string

const (
	KeyStatusActive  KeyStatus = "active"
	KeyStatusRetired KeyStatus = "retired"
)

// CommunityKeyRecord describes one stored key version without exposing
// the key material. At most one version per community is active.
type CommunityKeyRecord struct {
	ID        string
	Name      string
	Status    KeyStatus
	CreatedAt time.Time
	RetiredAt *time.Time
}
