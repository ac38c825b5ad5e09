package keys

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"aegis/internal/domain"
)

var errRegistryUnavailable = errors.New("key registry db unavailable")

// CommunityKeyModel is the persisted form of one community key version.
// Exactly one row per name carries status active.
type CommunityKeyModel struct {
	ID        string           `gorm:"type:uuid;primaryKey"`
	Name      string           `gorm:"index;not null"`
	Key       []byte           `gorm:"type:bytea;not null"`
	Status    domain.KeyStatus `gorm:"index;not null"`
	CreatedAt time.Time        `gorm:"not null"`
	RetiredAt *time.Time
}

func (CommunityKeyModel) TableName() string { return "community_keys" }

func (m CommunityKeyModel) record() domain.CommunityKeyRecord {
	return domain.CommunityKeyRecord{
		ID:        m.ID,
		Name:      m.Name,
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		RetiredAt: m.RetiredAt,
	}
}

// Registry stores community keys in Postgres. With an empty DSN it runs
// in no-db mode: lookups report the key unavailable and mutations fail,
// which lets a Chain skip over it in development.
type Registry struct {
	db *gorm.DB
}

func OpenRegistry(dsn string) (*Registry, error) {
	if dsn == "" {
		return &Registry{}, nil
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Registry{db: gdb}, nil
}

// NewRegistry wraps an existing gorm handle. Used by tests.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

func (r *Registry) AutoMigrate() error {
	if r.db == nil {
		return errRegistryUnavailable
	}
	return r.db.AutoMigrate(&CommunityKeyModel{})
}

// GetCommunityKey returns the active key for a community, satisfying
// domain.CommunityKeyProvider.
func (r *Registry) GetCommunityKey(ctx context.Context, coiName string) ([]byte, error) {
	if r.db == nil {
		return nil, fmt.Errorf("%w: registry offline", domain.ErrCommunityKeyUnavailable)
	}
	var model CommunityKeyModel
	err := r.db.WithContext(ctx).
		Where("name = ? AND status = ?", coiName, domain.KeyStatusActive).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrCommunityKeyUnavailable, coiName)
		}
		return nil, err
	}
	return append([]byte(nil), model.Key...), nil
}

// ActiveKey returns the active version's record for a community, or
// domain.ErrNotFound when none exists.
func (r *Registry) ActiveKey(ctx context.Context, coiName string) (*domain.CommunityKeyRecord, error) {
	if r.db == nil {
		return nil, errRegistryUnavailable
	}
	var model CommunityKeyModel
	err := r.db.WithContext(ctx).
		Where("name = ? AND status = ?", coiName, domain.KeyStatusActive).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no active key for %s", domain.ErrNotFound, coiName)
		}
		return nil, err
	}
	record := model.record()
	return &record, nil
}

// Put registers key material as the active key for a community,
// retiring any previous active version in the same transaction.
func (r *Registry) Put(ctx context.Context, coiName string, key []byte) error {
	if coiName == "" {
		return errors.New("community name is required")
	}
	if len(key) != communityKeySize {
		return domain.ErrInvalidKeySize
	}
	if r.db == nil {
		return errRegistryUnavailable
	}
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&CommunityKeyModel{}).
			Where("name = ? AND status = ?", coiName, domain.KeyStatusActive).
			Updates(map[string]any{"status": domain.KeyStatusRetired, "retired_at": now}).Error
		if err != nil {
			return err
		}
		return tx.Create(&CommunityKeyModel{
			ID:        uuid.NewString(),
			Name:      coiName,
			Key:       append([]byte(nil), key...),
			Status:    domain.KeyStatusActive,
			CreatedAt: now,
		}).Error
	})
}

// Rotate replaces the active key for a community with a fresh random one
// and returns the new version's record.
func (r *Registry) Rotate(ctx context.Context, coiName string) (domain.CommunityKeyRecord, error) {
	key := make([]byte, communityKeySize)
	if _, err := rand.Read(key); err != nil {
		return domain.CommunityKeyRecord{}, fmt.Errorf("generate key: %w", err)
	}
	if err := r.Put(ctx, coiName, key); err != nil {
		return domain.CommunityKeyRecord{}, err
	}
	record, err := r.ActiveKey(ctx, coiName)
	if err != nil {
		return domain.CommunityKeyRecord{}, err
	}
	return *record, nil
}

// List returns every key version, newest first, without key material.
func (r *Registry) List(ctx context.Context) ([]domain.CommunityKeyRecord, error) {
	if r.db == nil {
		return nil, errRegistryUnavailable
	}
	var models []CommunityKeyModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.CommunityKeyRecord, 0, len(models))
	for _, model := range models {
		out = append(out, model.record())
	}
	return out, nil
}
