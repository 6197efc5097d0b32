package handler

import (
	"maurizone/internal/api/dto"
	"maurizone/internal/pkg/response"
	"maurizone/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type StoreHandler struct {
	storeService service.StoreService
}

func NewStoreHandler(storeService service.StoreService) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

// Create 开店接口
func (s *StoreHandler) Create(c *gin.Context) {
	var req dto.CreateStoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.storeService.CreateStore(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Get 店铺详情
func (s *StoreHandler) Get(c *gin.Context) {
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.storeService.GetStore(c.Request.Context(), storeID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetMine 当前用户的店铺
func (s *StoreHandler) GetMine(c *gin.Context) {
	res, err := s.storeService.GetMyStore(c.Request.Context(), c.GetUint64("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Update 更新店铺信息
func (s *StoreHandler) Update(c *gin.Context) {
	storeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.UpdateStoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.storeService.UpdateStore(c.Request.Context(), c.GetUint64("user_id"), storeID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
