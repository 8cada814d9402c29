package controller

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/middleware"
	"shopfarm_v1/internal/model"
	"shopfarm_v1/internal/service"
)

type StoreController struct {
	storeService *service.StoreService
}

func NewStoreController(storeService *service.StoreService) *StoreController {
	return &StoreController{storeService: storeService}
}

// ==================== 店铺接口 ====================

// CreateStore 开店
// @Summary 创建店铺
// @Tags Store
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateStoreReq true "店铺信息"
// @Success 201 {object} dto.StoreResp
// @Router /api/stores [post]
func (ctrl *StoreController) CreateStore(c *gin.Context) {
	var req dto.CreateStoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	store, err := ctrl.storeService.CreateStore(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, service.ErrSubdomainTaken) {
			c.JSON(409, gin.H{"code": 409, "message": "子域名已被占用"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "创建失败: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.storeService.ToStoreResp(store),
	})
}

// GetMyStores 我的店铺列表
// @Summary 获取当前用户的店铺列表
// @Tags Store
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/stores [get]
func (ctrl *StoreController) GetMyStores(c *gin.Context) {
	ctx := c.Request.Context()
	stores, err := ctrl.storeService.ListOwnStores(ctx, middleware.GetUserID(c))
	if err != nil {
		c.JSON(500, gin.H{"code": 500, "message": "查询失败: " + err.Error()})
		return
	}

	respList := make([]dto.StoreResp, 0, len(stores))
	for _, s := range stores {
		respList = append(respList, ctrl.storeService.ToStoreResp(&s))
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    respList,
	})
}

// GetStore 店铺详情
// @Summary 获取自己店铺的详情
// @Tags Store
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺ID"
// @Success 200 {object} dto.StoreResp
// @Router /api/stores/{id} [get]
func (ctrl *StoreController) GetStore(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的店铺ID"})
		return
	}

	ctx := c.Request.Context()
	store, err := ctrl.storeService.GetStoreForOwner(ctx, id, middleware.GetUserID(c))
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

// UpdateStore 更新店铺
// @Summary 更新店铺信息
// @Tags Store
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺ID"
// @Param body body dto.UpdateStoreReq true "更新内容"
// @Success 200 {object} dto.StoreResp
// @Router /api/stores/{id} [patch]
func (ctrl *StoreController) UpdateStore(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的店铺ID"})
		return
	}

	var req dto.UpdateStoreReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}
	req.ID = id

	ctx := c.Request.Context()
	store, err := ctrl.storeService.UpdateStore(ctx, middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "店铺不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "更新失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    ctrl.storeService.ToStoreResp(store),
	})
}

// SetStoreStatus 变更店铺状态 (管理员)
// @Summary 审核/封禁店铺
// @Tags Store
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "店铺ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/admin/stores/{id}/status [post]
func (ctrl *StoreController) SetStoreStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(400, gin.H{"code": 400, "message": "无效的店铺ID"})
		return
	}

	var req struct {
		Status int `json:"status" binding:"min=0,max=2"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := ctrl.storeService.SetStoreStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(404, gin.H{"code": 404, "message": "店铺不存在"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "操作失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{"code": 0, "message": "操作成功"})
}

// ==================== 控制器公共辅助 ====================

// requireOwnStore 校验当前用户拥有指定店铺，admin 放行
// 校验失败时已写响应，调用方直接 return
func requireOwnStore(c *gin.Context, storeService *service.StoreService, storeID int64) bool {
	if middleware.GetUserRole(c) == model.RoleAdmin {
		return true
	}

	_, err := storeService.GetStoreForOwner(c.Request.Context(), storeID, middleware.GetUserID(c))
	if err != nil {
		c.JSON(404, gin.H{"code": 404, "message": "店铺不存在"})
		return false
	}
	return true
}
