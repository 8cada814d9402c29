package middleware

import (
	"testing"
	"time"
)

func TestActionRateLimiterCooldown(t *testing.T) {
	limiter := &ActionRateLimiter{}
	key := ProductActionKey(1, ActionRegenerate)

	first := limiter.Check(key, 100*time.Millisecond)
	if !first.Allowed {
		t.Fatal("首次操作应放行")
	}

	second := limiter.Check(key, 100*time.Millisecond)
	if second.Allowed {
		t.Fatal("冷却期内应拒绝")
	}
	if second.RetryAfter <= 0 || second.RetryAfter > 100*time.Millisecond {
		t.Errorf("retry_after 异常: %v", second.RetryAfter)
	}

	time.Sleep(110 * time.Millisecond)
	third := limiter.Check(key, 100*time.Millisecond)
	if !third.Allowed {
		t.Fatal("冷却过后应放行")
	}
}

func TestActionRateLimiterKeyIsolation(t *testing.T) {
	limiter := &ActionRateLimiter{}

	if !limiter.Check(ProductActionKey(1, ActionRegenerate), time.Minute).Allowed {
		t.Fatal("首次操作应放行")
	}
	// 不同商品、不同操作互不影响
	if !limiter.Check(ProductActionKey(2, ActionRegenerate), time.Minute).Allowed {
		t.Error("其他商品不应被冷却牵连")
	}
	if !limiter.Check(ProductActionKey(1, ActionExport), time.Minute).Allowed {
		t.Error("同商品的其他操作不应被冷却牵连")
	}
	if !limiter.Check(StoreActionKey(1, ActionRegenerate), time.Minute).Allowed {
		t.Error("店铺级 key 与商品级 key 不应串扰")
	}
}

func TestActionRateLimiterReset(t *testing.T) {
	limiter := &ActionRateLimiter{}
	key := StoreActionKey(9, ActionExport)

	limiter.Check(key, time.Minute)
	if limiter.Check(key, time.Minute).Allowed {
		t.Fatal("冷却期内应拒绝")
	}

	limiter.Reset(key)
	if !limiter.Check(key, time.Minute).Allowed {
		t.Error("重置后应放行")
	}
}

func TestGetIntervalFallback(t *testing.T) {
	if GetInterval(ActionExport) != 30*time.Second {
		t.Error("导出冷却间隔配置异常")
	}
	if GetInterval(ActionType("unknown")) != 5*time.Second {
		t.Error("未知操作应回落到默认间隔")
	}
}
