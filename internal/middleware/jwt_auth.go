package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"shopfarm_v1/internal/model"
)

// ==================== 签发配置 ====================

// 令牌种类，写入 RegisteredClaims.Subject，解析侧按种类校验
const (
	tokenKindAccess  = "access"
	tokenKindRefresh = "refresh"
)

// JWTConfig 令牌签发配置
type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

var jwtConfig = &JWTConfig{
	SecretKey:       "shopfarm-secret-key-change-in-production",
	AccessTokenTTL:  2 * time.Hour,
	RefreshTokenTTL: 7 * 24 * time.Hour,
	Issuer:          "shopfarm",
}

// LoadJWTConfigFromEnv 从环境变量装配签发配置，未设置的项保持默认值
// 启动时调用一次
func LoadJWTConfigFromEnv() {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		jwtConfig.SecretKey = secret
	}
	if issuer := os.Getenv("JWT_ISSUER"); issuer != "" {
		jwtConfig.Issuer = issuer
	}
}

// ==================== Claims ====================

// AuthClaims 登录态声明
// 只携带身份和平台角色。店铺归属不写进令牌：卖家可以随时新开店铺，
// 归属每次请求都查库校验 (见 controller 的 requireOwnStore)。
type AuthClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// validRoles 平台角色全集，签发与解析两侧都校验，
// 角色体系变更后旧令牌直接失效
var validRoles = map[string]bool{
	model.RoleAdmin:   true,
	model.RoleSeller:  true,
	model.RoleCourier: true,
	model.RoleBuyer:   true,
}

// ==================== 签发与解析 ====================

func issueToken(kind string, userID int64, username, role string, ttl time.Duration) (string, error) {
	if !validRoles[role] {
		return "", errors.New("未知角色: " + role)
	}

	now := time.Now()
	claims := &AuthClaims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			Subject:   kind,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtConfig.SecretKey))
}

// GenerateAccessToken 签发 Access Token
func GenerateAccessToken(userID int64, username, role string) (string, error) {
	return issueToken(tokenKindAccess, userID, username, role, jwtConfig.AccessTokenTTL)
}

// GenerateRefreshToken 签发 Refresh Token
func GenerateRefreshToken(userID int64, username, role string) (string, error) {
	return issueToken(tokenKindRefresh, userID, username, role, jwtConfig.RefreshTokenTTL)
}

func parseToken(tokenString, kind string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("签名算法不匹配")
		}
		return []byte(jwtConfig.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, errors.New("令牌无效")
	}
	if claims.Subject != kind {
		return nil, errors.New("令牌种类不匹配")
	}
	if !validRoles[claims.Role] {
		return nil, errors.New("令牌角色已失效")
	}

	return claims, nil
}

// ParseToken 解析 Access Token
func ParseToken(tokenString string) (*AuthClaims, error) {
	return parseToken(tokenString, tokenKindAccess)
}

// ParseRefreshToken 解析 Refresh Token
func ParseRefreshToken(tokenString string) (*AuthClaims, error) {
	return parseToken(tokenString, tokenKindRefresh)
}

// ==================== Gin 中间件 ====================

// Context Keys
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyRole     = "role"
)

// bearerToken 从 Authorization 头提取 Bearer 令牌
func bearerToken(c *gin.Context) (string, bool) {
	const prefix = "Bearer "
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func setAuthContext(c *gin.Context, claims *AuthClaims) {
	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyUsername, claims.Username)
	c.Set(ContextKeyRole, claims.Role)
}

// JWTAuth 登录校验中间件
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "请先登录",
			})
			return
		}

		claims, err := ParseToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "登录态无效或已过期",
			})
			return
		}

		setAuthContext(c, claims)
		c.Next()
	}
}

// OptionalAuth 可选登录中间件
// 带合法令牌则注入身份，否则按游客放行，用于店主/游客共用的公开读接口
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := ParseToken(token); err == nil {
				setAuthContext(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole 角色闸门，挂在 JWTAuth 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := GetUserRole(c)
		for _, r := range roles {
			if current == r {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": "无权限访问",
		})
	}
}

// ==================== Context 取值 ====================

// GetUserID 当前登录用户 ID，游客返回 0
func GetUserID(c *gin.Context) int64 {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// GetUsername 当前登录用户名，游客返回空串
func GetUsername(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyUsername); ok {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}

// GetUserRole 当前登录角色，游客返回空串
func GetUserRole(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyRole); ok {
		if role, ok := v.(string); ok {
			return role
		}
	}
	return ""
}
