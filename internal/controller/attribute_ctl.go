package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/service"
)

type AttributeController struct {
	attributeService *service.AttributeService
	storeService     *service.StoreService
}

func NewAttributeController(attributeService *service.AttributeService, storeService *service.StoreService) *AttributeController {
	return &AttributeController{
		attributeService: attributeService,
		storeService:     storeService,
	}
}

// ==================== 属性目录接口 ====================

// GetAttributes 属性列表
// @Summary 获取店铺的属性目录
// @Tags Attribute
// @Produce json
// @Security BearerAuth
// @Param store_id query int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/attributes [get]
func (ctrl *AttributeController) GetAttributes(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
		return
	}
	if !requireOwnStore(c, ctrl.storeService, storeID) {
		return
	}

	ctx := c.Request.Context()
	attributes, err := ctrl.attributeService.ListAttributes(ctx, storeID)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    attributes,
	})
}

// GetAttribute 属性详情
// @Summary 获取单个属性
// @Tags Attribute
// @Produce json
// @Security BearerAuth
// @Param id path int true "属性ID"
// @Param store_id query int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/attributes/{id} [get]
func (ctrl *AttributeController) GetAttribute(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的属性ID"})
		return
	}
	storeID, err := strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
		return
	}
	if !requireOwnStore(c, ctrl.storeService, storeID) {
		return
	}

	ctx := c.Request.Context()
	attribute, err := ctrl.attributeService.GetAttribute(ctx, id, storeID)
	if err != nil {
		c.JSON(404, gin.H{"code": 404, "message": "属性不存在"})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    attribute,
	})
}

// CreateAttribute 创建属性
// @Summary 创建属性及其值列表
// @Tags Attribute
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateAttributeReq true "属性信息"
// @Success 201 {object} map[string]interface{}
// @Router /api/attributes [post]
func (ctrl *AttributeController) CreateAttribute(c *gin.Context) {
	var req dto.CreateAttributeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}
	if !requireOwnStore(c, ctrl.storeService, req.StoreID) {
		return
	}

	ctx := c.Request.Context()
	attribute, err := ctrl.attributeService.CreateAttribute(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrSlugTaken) {
			c.JSON(409, gin.H{"code": 409, "message": "同名属性已存在"})
			return
		}
		if errors.Is(err, service.ErrInvalidValueType) {
			c.JSON(400, gin.H{"code": 400, "message": "仅颜色类型属性可设置色值"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "创建失败: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{
		"code":    0,
		"message": "success",
		"data":    attribute,
	})
}

// UpdateAttribute 更新属性
// @Summary 更新属性与值列表 (值整体提交)
// @Tags Attribute
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "属性ID"
// @Param body body dto.UpdateAttributeReq true "更新内容"
// @Success 200 {object} map[string]interface{}
// @Router /api/attributes/{id} [patch]
func (ctrl *AttributeController) UpdateAttribute(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的属性ID"})
		return
	}

	var req dto.UpdateAttributeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}
	req.ID = id
	if !requireOwnStore(c, ctrl.storeService, req.StoreID) {
		return
	}

	ctx := c.Request.Context()
	attribute, err := ctrl.attributeService.UpdateAttribute(ctx, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "属性不存在"})
			return
		}
		if errors.Is(err, service.ErrInvalidValueType) {
			c.JSON(400, gin.H{"code": 400, "message": "仅颜色类型属性可设置色值"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "更新失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    attribute,
	})
}

// DeleteAttribute 删除属性
// @Summary 删除属性 (商品内的陈旧引用在下次生成时被跳过)
// @Tags Attribute
// @Produce json
// @Security BearerAuth
// @Param id path int true "属性ID"
// @Param store_id query int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/attributes/{id} [delete]
func (ctrl *AttributeController) DeleteAttribute(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的属性ID"})
		return
	}
	storeID, err := strconv.ParseInt(c.Query("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的 store_id"})
		return
	}
	if !requireOwnStore(c, ctrl.storeService, storeID) {
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.attributeService.DeleteAttribute(ctx, id, storeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "属性不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "删除失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"code": 0, "message": "删除成功"})
}
