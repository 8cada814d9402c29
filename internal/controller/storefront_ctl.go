package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/repository"
	"shopfarm_v1/internal/service"
)

// StorefrontController 店面公开读接口
// 不鉴权，按子域名定位店铺，只吐 active 数据
type StorefrontController struct {
	storeService   *service.StoreService
	productService *service.ProductService
}

func NewStorefrontController(storeService *service.StoreService, productService *service.ProductService) *StorefrontController {
	return &StorefrontController{
		storeService:   storeService,
		productService: productService,
	}
}

// ==================== 店面接口 ====================

// ResolveStore 子域名解析
// @Summary 按子域名解析店铺 (仅 active 店铺)
// @Tags Storefront
// @Produce json
// @Param subdomain path string true "子域名"
// @Success 200 {object} dto.StoreResp
// @Router /api/storefront/{subdomain} [get]
func (ctrl *StorefrontController) ResolveStore(c *gin.Context) {
	subdomain := c.Param("subdomain")

	ctx := c.Request.Context()
	store, err := ctrl.storeService.ResolveSubdomain(ctx, subdomain)
	if err != nil {
		c.JSON(404, gin.H{"code": 404, "message": "店铺不存在"})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.storeService.ToStoreResp(store),
	})
}

// GetStorefrontProducts 店面商品列表
// @Summary 店面商品列表 (仅 active 商品)
// @Tags Storefront
// @Produce json
// @Param subdomain path string true "子域名"
// @Param category_id query int false "分类筛选"
// @Param keyword query string false "名称搜索"
// @Param on_sale query bool false "仅促销"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ProductListResp
// @Router /api/storefront/{subdomain}/products [get]
func (ctrl *StorefrontController) GetStorefrontProducts(c *gin.Context) {
	ctx := c.Request.Context()
	store, err := ctrl.storeService.ResolveSubdomain(ctx, c.Param("subdomain"))
	if err != nil {
		c.JSON(404, gin.H{"code": 404, "message": "店铺不存在"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	categoryID, _ := strconv.ParseInt(c.Query("category_id"), 10, 64)

	filter := repository.ProductFilter{
		StoreID:    store.ID,
		CategoryID: categoryID,
		State:      model.ProductStateActive,
		Keyword:    c.Query("keyword"),
		Page:       page,
		PageSize:   pageSize,
	}
	if c.Query("on_sale") == "true" {
		filter.OnSale = true
	}

	products, total, err := ctrl.productService.ListProducts(ctx, filter)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	respList := make([]dto.ProductResp, 0, len(products))
	for _, p := range products {
		respList = append(respList, ctrl.productService.ToProductResp(&p))
	}

	c.JSON(200, dto.ProductListResp{
		Code:     0,
		Message:  "success",
		Data:     respList,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetStorefrontProduct 店面商品详情
// @Summary 店面商品详情，访问计数 +1
// @Tags Storefront
// @Produce json
// @Param subdomain path string true "子域名"
// @Param id path int true "商品ID"
// @Success 200 {object} dto.ProductResp
// @Router /api/storefront/{subdomain}/products/{id} [get]
func (ctrl *StorefrontController) GetStorefrontProduct(c *gin.Context) {
	ctx := c.Request.Context()
	store, err := ctrl.storeService.ResolveSubdomain(ctx, c.Param("subdomain"))
	if err != nil {
		c.JSON(404, gin.H{"code": 404, "message": "店铺不存在"})
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return
	}

	product, err := ctrl.productService.ViewProduct(ctx, id)
	if err != nil || product.StoreID != store.ID || product.State != model.ProductStateActive {
		c.JSON(404, gin.H{"code": 404, "message": "商品不存在"})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.productService.ToProductResp(product),
	})
}
