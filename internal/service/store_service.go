package service

import (
	"context"
	"errors"
	"maurizone/internal/api/dto"
	"maurizone/internal/model"
	"maurizone/internal/repository"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// StoreService 店铺服务接口定义，一个用户至多一家店铺
type StoreService interface {
	CreateStore(ctx context.Context, ownerID uint64, req *dto.CreateStoreReq) (*dto.StoreDTO, error)
	GetStore(ctx context.Context, storeID uint64) (*dto.StoreDTO, error)
	GetMyStore(ctx context.Context, ownerID uint64) (*dto.StoreDTO, error)
	UpdateStore(ctx context.Context, ownerID, storeID uint64, req *dto.UpdateStoreReq) error
}

type storeServiceImpl struct {
	storeRepo repository.StoreRepo
}

func NewStoreService(storeRepo repository.StoreRepo) StoreService {
	return &storeServiceImpl{storeRepo: storeRepo}
}

func (s *storeServiceImpl) CreateStore(ctx context.Context, ownerID uint64, req *dto.CreateStoreReq) (*dto.StoreDTO, error) {
	if _, err := s.storeRepo.GetByOwner(ctx, ownerID); err == nil {
		return nil, ErrStoreExist
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	store := &model.Store{
		OwnerID:     ownerID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.storeRepo.Create(ctx, store); err != nil {
		return nil, err
	}
	return toStoreDTO(store), nil
}

func (s *storeServiceImpl) GetStore(ctx context.Context, storeID uint64) (*dto.StoreDTO, error) {
	store, err := s.storeRepo.Get(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return toStoreDTO(store), nil
}

func (s *storeServiceImpl) GetMyStore(ctx context.Context, ownerID uint64) (*dto.StoreDTO, error) {
	store, err := s.storeRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return toStoreDTO(store), nil
}

func (s *storeServiceImpl) UpdateStore(ctx context.Context, ownerID, storeID uint64, req *dto.UpdateStoreReq) error {
	store, err := s.storeRepo.Get(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStoreNotFound
		}
		return err
	}
	if store.OwnerID != ownerID {
		return ForbiddenError
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if len(fields) == 0 {
		return nil
	}
	return s.storeRepo.Update(ctx, storeID, fields)
}

func toStoreDTO(store *model.Store) *dto.StoreDTO {
	var out dto.StoreDTO
	_ = copier.Copy(&out, store)
	return &out
}
