package repository

import (
	"context"
	"maurizone/internal/model"

	"gorm.io/gorm"
)

type StoreRepo interface {
	Create(ctx context.Context, store *model.Store) error
	Get(ctx context.Context, storeID uint64) (*model.Store, error)
	GetByOwner(ctx context.Context, ownerID uint64) (*model.Store, error)
	Update(ctx context.Context, storeID uint64, fields map[string]interface{}) error
}

type storeRepoImpl struct {
	db *gorm.DB
}

func NewStoreRepo(db *gorm.DB) StoreRepo {
	return &storeRepoImpl{db: db}
}

func (s *storeRepoImpl) Create(ctx context.Context, store *model.Store) error {
	return s.db.WithContext(ctx).Create(store).Error
}

func (s *storeRepoImpl) Get(ctx context.Context, storeID uint64) (*model.Store, error) {
	var store model.Store
	err := s.db.WithContext(ctx).First(&store, storeID).Error
	return &store, err
}

func (s *storeRepoImpl) GetByOwner(ctx context.Context, ownerID uint64) (*model.Store, error) {
	var store model.Store
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&store).Error
	return &store, err
}

func (s *storeRepoImpl) Update(ctx context.Context, storeID uint64, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&model.Store{}).
		Where("id = ?", storeID).
		Updates(fields).Error
}
