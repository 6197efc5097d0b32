package handler

import (
	"maurizone/internal/api/dto"
	"maurizone/internal/pkg/response"
	"maurizone/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create 下单
func (s *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.orderService.CreateOrder(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Get 订单详情，仅买家或卖家可见
func (s *OrderHandler) Get(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.orderService.GetOrder(c.Request.Context(), c.GetUint64("user_id"), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// UpdateStatus 订单状态流转
func (s *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.UpdateOrderStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.orderService.UpdateStatus(c.Request.Context(), c.GetUint64("user_id"), orderID, req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListMine 我的订单（买家视角）
func (s *OrderHandler) ListMine(c *gin.Context) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	items, total, err := s.orderService.ListMyOrders(c.Request.Context(), c.GetUint64("user_id"), query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PageDTO{Items: items, Total: total})
}

// ListStore 店铺订单（卖家视角）
func (s *OrderHandler) ListStore(c *gin.Context) {
	var query dto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	items, total, err := s.orderService.ListStoreOrders(c.Request.Context(), c.GetUint64("user_id"), query.Page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PageDTO{Items: items, Total: total})
}
