package repository

import (
	"context"
	"maurizone/internal/model"

	"gorm.io/gorm"
)

type OrderRepo interface {
	Create(ctx context.Context, order *model.Order) error
	Get(ctx context.Context, orderID uint64) (*model.Order, error)
	UpdateStatus(ctx context.Context, orderID uint64, status string) error
	ListByBuyer(ctx context.Context, buyerID uint64, page, pageSize int) ([]*model.Order, int64, error)
	ListByStore(ctx context.Context, storeID uint64, page, pageSize int) ([]*model.Order, int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepo {
	return &orderRepoImpl{db: db}
}

func (s *orderRepoImpl) Create(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *orderRepoImpl) Get(ctx context.Context, orderID uint64) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).First(&order, orderID).Error
	return &order, err
}

func (s *orderRepoImpl) UpdateStatus(ctx context.Context, orderID uint64, status string) error {
	return s.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (s *orderRepoImpl) ListByBuyer(ctx context.Context, buyerID uint64, page, pageSize int) ([]*model.Order, int64, error) {
	return s.list(ctx, "buyer_id = ?", buyerID, page, pageSize)
}

func (s *orderRepoImpl) ListByStore(ctx context.Context, storeID uint64, page, pageSize int) ([]*model.Order, int64, error) {
	return s.list(ctx, "store_id = ?", storeID, page, pageSize)
}

func (s *orderRepoImpl) list(ctx context.Context, cond string, id uint64, page, pageSize int) ([]*model.Order, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Order{}).Where(cond, id)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*model.Order
	err := q.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	return orders, total, err
}
