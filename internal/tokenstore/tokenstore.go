// Package tokenstore is the durable revocation ledger: one row per issued
// token, looked up by jti on every authenticated request. Lookups are
// fail-closed, a jti the store has never seen counts as revoked because the
// system has no provenance for it.
package tokenstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/brewhollow/shop-backend/internal/models"
	"github.com/brewhollow/shop-backend/internal/tokens"
)

var ErrTokenNotFound = errors.New("token not found")

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// Add registers a freshly minted token, unrevoked. A uniqueness violation
// here means the jti generator is broken and is returned as-is; callers
// treat it as an unexpected internal failure, not a user-facing condition.
func (s *Store) Add(ctx context.Context, claims *tokens.Claims) error {
	record := models.TokenRecord{
		JTI:       claims.ID,
		TokenType: claims.Type,
		Revoked:   false,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	return s.DB.WithContext(ctx).Create(&record).Error
}

// IsRevoked reports whether the token with the given jti may still be used.
// Missing record -> revoked.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var record models.TokenRecord
	if err := s.DB.WithContext(ctx).Where("jti = ?", jti).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return true, err
	}
	return record.Revoked, nil
}

// Revoke marks the record for jti as revoked. Revoking an already revoked
// jti succeeds again; revoking a jti the store never saw fails with
// ErrTokenNotFound, that token was not minted here.
func (s *Store) Revoke(ctx context.Context, jti string) error {
	result := s.DB.WithContext(ctx).Model(&models.TokenRecord{}).
		Where("jti = ?", jti).
		Update("revoked", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// Prune deletes records whose expiry has passed. Housekeeping only: an
// expired token already fails signature/expiry validation before the store
// is ever consulted.
func (s *Store) Prune(ctx context.Context) (int64, error) {
	result := s.DB.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&models.TokenRecord{})
	return result.RowsAffected, result.Error
}
