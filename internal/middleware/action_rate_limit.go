package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ==================== 操作限流中间件 ====================

// ActionRateLimit 商品级操作限流中间件
// 按商品 + 操作类型维度进行冷却
//
// 使用示例:
//
//	router.POST("/api/products/:id/generate-variants",
//	    middleware.ActionRateLimit(middleware.ActionRegenerate, 0),
//	    productCtl.GenerateVariants,
//	)
//
// 参数:
//   - action: 操作类型
//   - interval: 冷却间隔，0 表示使用默认值
func ActionRateLimit(action ActionType, interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = GetInterval(action)
	}

	return func(c *gin.Context) {
		productIDStr := c.Param("id")
		if productIDStr == "" {
			c.Next()
			return
		}

		productID, err := strconv.ParseInt(productIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "无效的商品 ID",
			})
			c.Abort()
			return
		}

		key := ProductActionKey(productID, action)
		result := GetLimiter().Check(key, interval)
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": retryAfter,
					"action":      action,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// StoreActionRateLimit 店铺级操作限流中间件
// 用于导出这类按店铺整体冷却的操作
func StoreActionRateLimit(action ActionType, interval time.Duration) gin.HandlerFunc {
	if interval == 0 {
		interval = GetInterval(action)
	}

	return func(c *gin.Context) {
		storeIDStr := c.Query("store_id")
		if storeIDStr == "" {
			storeIDStr = c.Param("store_id")
		}

		storeID, err := strconv.ParseInt(storeIDStr, 10, 64)
		if err != nil {
			c.Next()
			return
		}

		key := StoreActionKey(storeID, action)
		result := GetLimiter().Check(key, interval)
		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Seconds())
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(result.RetryAfter),
				"data": gin.H{
					"retry_after": retryAfter,
					"action":      action,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ==================== 辅助函数 ====================

// formatRetryMessage 格式化重试提示信息
func formatRetryMessage(d time.Duration) string {
	seconds := int(d.Seconds())
	if seconds < 1 {
		seconds = 1
	}

	if seconds < 60 {
		return fmt.Sprintf("操作冷却中，请 %d 秒后重试", seconds)
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return fmt.Sprintf("操作冷却中，请 %d 分钟后重试", minutes)
	}

	return fmt.Sprintf("操作冷却中，请 %d 分 %d 秒后重试", minutes, remainingSeconds)
}
