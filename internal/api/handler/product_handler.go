package handler

import (
	"maurizone/internal/api/dto"
	"maurizone/internal/pkg/response"
	"maurizone/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create 上架商品
func (s *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.productService.CreateProduct(c.Request.Context(), c.GetUint64("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// Get 商品详情
func (s *ProductHandler) Get(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	res, err := s.productService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res)
}

// List 商品列表
func (s *ProductHandler) List(c *gin.Context) {
	var query dto.ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, err)
		return
	}

	items, total, err := s.productService.ListProducts(c.Request.Context(), &query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PageDTO{Items: items, Total: total})
}

// Update 更新商品
func (s *ProductHandler) Update(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.UpdateProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.productService.UpdateProduct(c.Request.Context(), c.GetUint64("user_id"), productID, &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Delete 下架商品
func (s *ProductHandler) Delete(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.productService.DeleteProduct(c.Request.Context(), c.GetUint64("user_id"), productID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
