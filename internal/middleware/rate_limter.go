package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== ActionRateLimiter 操作限流器 ====================

// ActionRateLimiter 重操作限流器
// 变体重新生成、导出这类操作会整表重写或拉全量数据，
// 按资源维度加冷却，防止前端连点打爆数据库
type ActionRateLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &ActionRateLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *ActionRateLimiter {
	return globalLimiter
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行
// key: 限流键，如 "product:123:regenerate"
// interval: 冷却间隔
func (r *ActionRateLimiter) Check(key string, interval time.Duration) CheckResult {
	// 获取或创建锁条目
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	// 更新最后执行时间
	entry.lastTime = now
	return CheckResult{
		Allowed:    true,
		RetryAfter: 0,
	}
}

// Reset 重置指定 key 的限流
func (r *ActionRateLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Key 生成工具 ====================

// ActionType 操作类型
type ActionType string

const (
	ActionRegenerate ActionType = "regenerate"
	ActionExport     ActionType = "export"
	ActionAIDescribe ActionType = "ai_describe"
)

// ProductActionKey 生成商品级操作 Key
func ProductActionKey(productID int64, action ActionType) string {
	return fmt.Sprintf("product:%d:%s", productID, action)
}

// StoreActionKey 生成店铺级操作 Key
func StoreActionKey(storeID int64, action ActionType) string {
	return fmt.Sprintf("store:%d:%s", storeID, action)
}

// ==================== 默认冷却间隔 ====================

// DefaultIntervals 默认冷却间隔配置
var DefaultIntervals = map[ActionType]time.Duration{
	ActionRegenerate: 3 * time.Second,
	ActionExport:     30 * time.Second,
	ActionAIDescribe: 10 * time.Second,
}

// GetInterval 获取操作类型的默认间隔
func GetInterval(action ActionType) time.Duration {
	if interval, ok := DefaultIntervals[action]; ok {
		return interval
	}
	return 5 * time.Second
}
