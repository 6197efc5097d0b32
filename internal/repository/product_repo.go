package repository

import (
	"context"
	"maurizone/internal/model"

	"gorm.io/gorm"
)

type ProductRepo interface {
	Create(ctx context.Context, product *model.Product) error
	Get(ctx context.Context, productID uint64) (*model.Product, error)
	Update(ctx context.Context, productID uint64, fields map[string]interface{}) error
	Delete(ctx context.Context, productID uint64) error
	List(ctx context.Context, storeID uint64, query string, page, pageSize int) ([]*model.Product, int64, error)
	DecrStock(ctx context.Context, productID uint64, quantity int) (bool, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepo {
	return &productRepoImpl{db: db}
}

func (s *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *productRepoImpl) Get(ctx context.Context, productID uint64) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, productID).Error
	return &product, err
}

func (s *productRepoImpl) Update(ctx context.Context, productID uint64, fields map[string]interface{}) error {
	return s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(fields).Error
}

func (s *productRepoImpl) Delete(ctx context.Context, productID uint64) error {
	return s.db.WithContext(ctx).Delete(&model.Product{}, productID).Error
}

// List 商品列表，支持店铺过滤与名称模糊搜索
func (s *productRepoImpl) List(ctx context.Context, storeID uint64, query string, page, pageSize int) ([]*model.Product, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Product{})
	if storeID > 0 {
		q = q.Where("store_id = ?", storeID)
	}
	if query != "" {
		q = q.Where("name LIKE ?", "%"+query+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*model.Product
	err := q.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	return products, total, err
}

// DecrStock 原子扣减库存，库存不足时不更新任何行
func (s *productRepoImpl) DecrStock(ctx context.Context, productID uint64, quantity int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	return res.RowsAffected > 0, res.Error
}
