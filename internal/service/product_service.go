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

// ProductService 商品服务接口定义
type ProductService interface {
	CreateProduct(ctx context.Context, ownerID uint64, req *dto.CreateProductReq) (*dto.ProductDTO, error)
	GetProduct(ctx context.Context, productID uint64) (*dto.ProductDTO, error)
	UpdateProduct(ctx context.Context, ownerID, productID uint64, req *dto.UpdateProductReq) error
	DeleteProduct(ctx context.Context, ownerID, productID uint64) error
	ListProducts(ctx context.Context, query *dto.ProductListQuery) ([]*dto.ProductDTO, int64, error)
}

type productServiceImpl struct {
	productRepo repository.ProductRepo
	storeRepo   repository.StoreRepo
}

func NewProductService(productRepo repository.ProductRepo, storeRepo repository.StoreRepo) ProductService {
	return &productServiceImpl{productRepo: productRepo, storeRepo: storeRepo}
}

// CreateProduct 上架商品，商品归属于当前用户的店铺
func (s *productServiceImpl) CreateProduct(ctx context.Context, ownerID uint64, req *dto.CreateProductReq) (*dto.ProductDTO, error) {
	store, err := s.storeRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	product := &model.Product{
		StoreID:     store.ID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Stock:       req.Stock,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductDTO(product), nil
}

func (s *productServiceImpl) GetProduct(ctx context.Context, productID uint64) (*dto.ProductDTO, error) {
	product, err := s.productRepo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return toProductDTO(product), nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, ownerID, productID uint64, req *dto.UpdateProductReq) error {
	if err := s.checkOwner(ctx, ownerID, productID); err != nil {
		return err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.PriceCents != nil {
		fields["price_cents"] = *req.PriceCents
	}
	if req.Stock != nil {
		fields["stock"] = *req.Stock
	}
	if len(fields) == 0 {
		return nil
	}
	return s.productRepo.Update(ctx, productID, fields)
}

func (s *productServiceImpl) DeleteProduct(ctx context.Context, ownerID, productID uint64) error {
	if err := s.checkOwner(ctx, ownerID, productID); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, productID)
}

func (s *productServiceImpl) ListProducts(ctx context.Context, query *dto.ProductListQuery) ([]*dto.ProductDTO, int64, error) {
	products, total, err := s.productRepo.List(ctx, query.StoreID, query.Query, query.Page, query.PageSize)
	if err != nil {
		return nil, 0, err
	}
	out := make([]*dto.ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toProductDTO(p))
	}
	return out, total, nil
}

func (s *productServiceImpl) checkOwner(ctx context.Context, ownerID, productID uint64) error {
	product, err := s.productRepo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	store, err := s.storeRepo.Get(ctx, product.StoreID)
	if err != nil {
		return err
	}
	if store.OwnerID != ownerID {
		return ForbiddenError
	}
	return nil
}

func toProductDTO(product *model.Product) *dto.ProductDTO {
	var out dto.ProductDTO
	_ = copier.Copy(&out, product)
	return &out
}
