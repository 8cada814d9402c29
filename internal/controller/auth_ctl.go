package controller

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shopfarm_v1/internal/api/dto"
	"shopfarm_v1/internal/middleware"
	"shopfarm_v1/internal/service"
)

type AuthController struct {
	userService *service.UserService
}

func NewAuthController(userService *service.UserService) *AuthController {
	return &AuthController{userService: userService}
}

// ==================== 认证接口 ====================

// Register 用户注册
// @Summary 注册新用户
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} map[string]interface{}
// @Router /api/auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := ctrl.userService.Register(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			c.JSON(409, gin.H{"code": 409, "message": "用户名已被占用"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "注册失败: " + err.Error()})
		return
	}

	c.JSON(201, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"user_id":  user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// Login 用户登录
// @Summary 账号密码登录，返回 Token 对
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.LoginResponse
// @Router /api/auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	resp, err := ctrl.userService.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(401, gin.H{"code": 401, "message": "用户名或密码错误"})
			return
		}
		if errors.Is(err, service.ErrUserDisabled) {
			c.JSON(403, gin.H{"code": 403, "message": "账号已被禁用"})
			return
		}
		c.JSON(500, gin.H{"code": 500, "message": "登录失败: " + err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    resp,
	})
}

// Refresh 刷新 Token
// @Summary 用 Refresh Token 换取新 Token 对
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "刷新请求"
// @Success 200 {object} dto.LoginResponse
// @Router /api/auth/refresh [post]
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"code": 400, "message": "参数错误: " + err.Error()})
		return
	}

	ctx := c.Request.Context()
	resp, err := ctrl.userService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		c.JSON(401, gin.H{"code": 401, "message": "Refresh Token 无效或已过期"})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data":    resp,
	})
}

// Profile 当前用户信息
// @Summary 获取当前登录用户信息
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/profile [get]
func (ctrl *AuthController) Profile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	ctx := c.Request.Context()
	user, err := ctrl.userService.GetProfile(ctx, userID)
	if err != nil {
		c.JSON(404, gin.H{"code": 404, "message": "用户不存在"})
		return
	}

	c.JSON(200, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"user_id":   user.ID,
			"username":  user.Username,
			"email":     user.Email,
			"role":      user.Role,
			"is_active": user.IsActive,
		},
	})
}
