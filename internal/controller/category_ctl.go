package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/service"
)

type CategoryController struct {
	categoryService *service.CategoryService
}

func NewCategoryController(categoryService *service.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// ==================== 分类接口 ====================

// GetCategoryTree 分类树
// @Summary 获取两级分类树 (含分面统计)
// @Tags Category
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/categories [get]
func (ctrl *CategoryController) GetCategoryTree(c *gin.Context) {
	ctx := c.Request.Context()
	tree, err := ctrl.categoryService.GetCategoryTree(ctx)
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    tree,
	})
}

// CreateCategory 创建分类 (管理员)
// @Summary 创建平台级分类
// @Tags Category
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateCategoryReq true "分类信息"
// @Success 201 {object} dto.CategoryResp
// @Router /api/admin/categories [post]
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	category, err := ctrl.categoryService.CreateCategory(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrSlugTaken) {
			c.JSON(409, gin.H{"code": 409, "message": "分类 slug 已存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "创建失败: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{
		"code":    0,
		"message": "success",
		"data":    category,
	})
}

// DeleteCategory 删除分类 (管理员)
// @Summary 删除分类
// @Tags Category
// @Produce json
// @Security BearerAuth
// @Param id path int true "分类ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/categories/{id} [delete]
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的分类ID"})
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.categoryService.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "分类不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "删除失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"code": 0, "message": "删除成功"})
}
