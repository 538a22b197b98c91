package checkout

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists correlation records in postgres so the return leg of the
// redirect can be served by any instance.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Put(ctx context.Context, rec PendingCheckout) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "checkout_key"}}, UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("persist pending checkout: %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, key string) (*PendingCheckout, error) {
	var rec PendingCheckout
	err := s.db.WithContext(ctx).Where("checkout_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pending checkout: %w", err)
	}
	return &rec, nil
}

func (s *GormStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&PendingCheckout{}, "checkout_key = ?", key).Error; err != nil {
		return fmt.Errorf("delete pending checkout: %w", err)
	}
	return nil
}
