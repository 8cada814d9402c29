package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/service"
)

type VariantController struct {
	productService *service.ProductService
	storeService   *service.StoreService
}

func NewVariantController(productService *service.ProductService, storeService *service.StoreService) *VariantController {
	return &VariantController{
		productService: productService,
		storeService:   storeService,
	}
}

// ==================== 变体接口 ====================

// GetVariants 获取变体列表
// 公开接口：游客只能看上架商品；带 store_id 的店主视角可见草稿
// @Summary 获取商品的全部变体
// @Tags Variant
// @Produce json
// @Param id path int true "商品ID"
// @Param store_id query int false "店铺ID (店主视角，需登录)"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id}/variants [get]
func (ctrl *VariantController) GetVariants(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return
	}

	ctx := c.Request.Context()

	// 店主视角
	if raw := c.Query("store_id"); raw != "" {
		storeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || storeID <= 0 {
			c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
			return
		}
		if !requireOwnStore(c, ctrl.storeService, storeID) {
			return
		}

		product, err := ctrl.productService.GetProductForStore(ctx, id, storeID)
		if err != nil {
			ctrl.writeVariantError(c, err)
			return
		}
		ctrl.writeVariants(c, product)
		return
	}

	// 游客视角
	product, err := ctrl.productService.GetProduct(ctx, id)
	if err != nil {
		ctrl.writeVariantError(c, err)
		return
	}
	if product.State != model.ProductStateActive {
		c.JSON(404, gin.H{"code": 404, "message": "商品不存在"})
		return
	}
	ctrl.writeVariants(c, product)
}

func (ctrl *VariantController) writeVariants(c *gin.Context, product *model.Product) {
	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"has_variants": product.HasVariants,
			"total_stock":  product.TotalStock,
			"variants":     product.Variants,
		},
	})
}

// GenerateVariants 生成/重生成变体
// @Summary 按商品当前属性选择做笛卡尔积生成变体，已有组合整条保留
// @Tags Variant
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param store_id query int true "店铺ID"
// @Success 200 {object} dto.ProductResp
// @Router /api/products/{id}/generate-variants [post]
func (ctrl *VariantController) GenerateVariants(c *gin.Context) {
	id, storeID, ok := ctrl.variantScope(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.GenerateProductVariants(ctx, id, storeID)
	if err != nil {
		ctrl.writeVariantError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.productService.ToProductResp(product),
	})
}

// BulkUpdateVariants 批量变体操作
// @Summary regenerate=true 走生成器，否则 variants 整表替换
// @Tags Variant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param store_id query int true "店铺ID"
// @Param body body dto.BulkVariantsReq true "批量请求"
// @Success 200 {object} dto.ProductResp
// @Router /api/products/{id}/variants [put]
func (ctrl *VariantController) BulkUpdateVariants(c *gin.Context) {
	id, storeID, ok := ctrl.variantScope(c)
	if !ok {
		return
	}

	var req dto.BulkVariantsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.BulkUpdateVariants(ctx, id, storeID, &req)
	if err != nil {
		ctrl.writeVariantError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.productService.ToProductResp(product),
	})
}

// UpdateVariant 更新单个变体
// @Summary 部分更新单个变体 (价格/库存/SKU/图片/上下架)
// @Tags Variant
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param variant_id path string true "变体ID"
// @Param store_id query int true "店铺ID"
// @Param body body dto.UpdateVariantReq true "更新内容"
// @Success 200 {object} dto.ProductResp
// @Router /api/products/{id}/variants/{variant_id} [patch]
func (ctrl *VariantController) UpdateVariant(c *gin.Context) {
	id, storeID, ok := ctrl.variantScope(c)
	if !ok {
		return
	}
	variantID := c.Param("variant_id")
	if variantID == "" {
		c.JSON(400, gin.H{"code": 400, "message": "无效的变体ID"})
		return
	}

	var req dto.UpdateVariantReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.UpdateVariant(ctx, id, variantID, storeID, &req)
	if err != nil {
		ctrl.writeVariantError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.productService.ToProductResp(product),
	})
}

// DeleteVariant 删除单个变体
// @Summary 删除变体，最后一个变体删除后回到简单库存模式
// @Tags Variant
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param variant_id path string true "变体ID"
// @Param store_id query int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id}/variants/{variant_id} [delete]
func (ctrl *VariantController) DeleteVariant(c *gin.Context) {
	id, storeID, ok := ctrl.variantScope(c)
	if !ok {
		return
	}
	variantID := c.Param("variant_id")
	if variantID == "" {
		c.JSON(400, gin.H{"code": 400, "message": "无效的变体ID"})
		return
	}

	ctx := c.Request.Context()
	product, err := ctrl.productService.DeleteVariant(ctx, id, variantID, storeID)
	if err != nil {
		ctrl.writeVariantError(c, err)
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"deleted":      true,
			"has_variants": product.HasVariants,
			"total_stock":  product.TotalStock,
		},
	})
}

// GetImageGroups 变体图片分组
// @Summary 按需配图属性聚合变体，返回图片分组视图
// @Tags Variant
// @Produce json
// @Security BearerAuth
// @Param id path int true "商品ID"
// @Param store_id query int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/products/{id}/image-groups [get]
func (ctrl *VariantController) GetImageGroups(c *gin.Context) {
	id, storeID, ok := ctrl.variantScope(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	groups, err := ctrl.productService.GetImageGroups(ctx, id, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "商品不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    groups,
	})
}

// ==================== 辅助 ====================

// variantScope 解析商品 ID + store_id 并校验店铺归属
func (ctrl *VariantController) variantScope(c *gin.Context) (id, storeID int64, ok bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的商品ID"})
		return 0, 0, false
	}
	storeID, err = strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
		return 0, 0, false
	}
	if !requireOwnStore(c, ctrl.storeService, storeID) {
		return 0, 0, false
	}
	return id, storeID, true
}

// writeVariantError 变体操作错误统一映射
func (ctrl *VariantController) writeVariantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(404, gin.H{"code": 404, "message": "商品不存在"})
	case errors.Is(err, service.ErrVariantNotFound):
		c.JSON(404, gin.H{"code": 404, "message": "变体不存在"})
	case errors.Is(err, service.ErrNoAttributesConfigured),
		errors.Is(err, service.ErrNoValidAttributes),
		errors.Is(err, service.ErrBulkInputMissing):
		c.JSON(400, gin.H{"code": 400, "message": err.Error()})
	default:
		c.JSON(500, gin.H{"code": 500, "message": "操作失败: " + err.Error()})
	}
}
