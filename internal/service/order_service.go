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

// 订单状态机：PENDING → PAID → SHIPPED → DELIVERED，PENDING/PAID 可取消
var orderTransitions = map[string][]string{
	model.OrderStatusPending: {model.OrderStatusPaid, model.OrderStatusCancelled},
	model.OrderStatusPaid:    {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped: {model.OrderStatusDelivered},
}

// OrderService 订单服务接口定义
type OrderService interface {
	CreateOrder(ctx context.Context, buyerID uint64, req *dto.CreateOrderReq) (*dto.OrderDTO, error)
	GetOrder(ctx context.Context, userID, orderID uint64) (*dto.OrderDTO, error)
	UpdateStatus(ctx context.Context, userID, orderID uint64, status string) error
	ListMyOrders(ctx context.Context, buyerID uint64, page, pageSize int) ([]*dto.OrderDTO, int64, error)
	ListStoreOrders(ctx context.Context, ownerID uint64, page, pageSize int) ([]*dto.OrderDTO, int64, error)
}

type orderServiceImpl struct {
	orderRepo   repository.OrderRepo
	productRepo repository.ProductRepo
	storeRepo   repository.StoreRepo
}

func NewOrderService(orderRepo repository.OrderRepo, productRepo repository.ProductRepo, storeRepo repository.StoreRepo) OrderService {
	return &orderServiceImpl{orderRepo: orderRepo, productRepo: productRepo, storeRepo: storeRepo}
}

// CreateOrder 下单：原子扣减库存后落单
func (s *orderServiceImpl) CreateOrder(ctx context.Context, buyerID uint64, req *dto.CreateOrderReq) (*dto.OrderDTO, error) {
	product, err := s.productRepo.Get(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	ok, err := s.productRepo.DecrStock(ctx, product.ID, req.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStockInsufficient
	}

	order := &model.Order{
		BuyerID:    buyerID,
		StoreID:    product.StoreID,
		ProductID:  product.ID,
		Quantity:   req.Quantity,
		TotalCents: product.PriceCents * int64(req.Quantity),
		Status:     model.OrderStatusPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, userID, orderID uint64) (*dto.OrderDTO, error) {
	order, err := s.getVisible(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

// UpdateStatus 订单状态流转，买家与卖家均可操作，非法流转拒绝
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, userID, orderID uint64, status string) error {
	order, err := s.getVisible(ctx, userID, orderID)
	if err != nil {
		return err
	}

	for _, next := range orderTransitions[order.Status] {
		if next == status {
			return s.orderRepo.UpdateStatus(ctx, orderID, status)
		}
	}
	return ErrOrderStatusInvalid
}

func (s *orderServiceImpl) ListMyOrders(ctx context.Context, buyerID uint64, page, pageSize int) ([]*dto.OrderDTO, int64, error) {
	orders, total, err := s.orderRepo.ListByBuyer(ctx, buyerID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return toOrderDTOs(orders), total, nil
}

func (s *orderServiceImpl) ListStoreOrders(ctx context.Context, ownerID uint64, page, pageSize int) ([]*dto.OrderDTO, int64, error) {
	store, err := s.storeRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrStoreNotFound
		}
		return nil, 0, err
	}
	orders, total, err := s.orderRepo.ListByStore(ctx, store.ID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return toOrderDTOs(orders), total, nil
}

// getVisible 仅买家或店铺所有者可见
func (s *orderServiceImpl) getVisible(ctx context.Context, userID, orderID uint64) (*model.Order, error) {
	order, err := s.orderRepo.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.BuyerID == userID {
		return order, nil
	}
	store, err := s.storeRepo.Get(ctx, order.StoreID)
	if err == nil && store.OwnerID == userID {
		return order, nil
	}
	return nil, ErrOrderNotFound
}

func toOrderDTO(order *model.Order) *dto.OrderDTO {
	var out dto.OrderDTO
	_ = copier.Copy(&out, order)
	return &out
}

func toOrderDTOs(orders []*model.Order) []*dto.OrderDTO {
	out := make([]*dto.OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	return out
}
