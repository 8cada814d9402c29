package utils

import (
	"testing"
	"time"
)

func TestTTLCacheSetGet(t *testing.T) {
	cache := NewTTLCache()

	cache.Set("k", "v", time.Minute)
	got, ok := cache.Get("k")
	if !ok || got.(string) != "v" {
		t.Fatalf("Get 异常: %v %v", got, ok)
	}

	if _, ok := cache.Get("missing"); ok {
		t.Error("不存在的 key 不应命中")
	}
}

func TestTTLCacheExpiry(t *testing.T) {
	cache := NewTTLCache()

	cache.Set("k", "v", 30*time.Millisecond)
	if _, ok := cache.Get("k"); !ok {
		t.Fatal("过期前应命中")
	}

	time.Sleep(40 * time.Millisecond)
	if _, ok := cache.Get("k"); ok {
		t.Error("过期后不应命中")
	}
}

func TestTTLCacheDelete(t *testing.T) {
	cache := NewTTLCache()

	cache.Set("k", 1, time.Minute)
	cache.Delete("k")
	if _, ok := cache.Get("k"); ok {
		t.Error("删除后不应命中")
	}
}

func TestTTLCacheOverwrite(t *testing.T) {
	cache := NewTTLCache()

	cache.Set("k", 1, time.Minute)
	cache.Set("k", 2, time.Minute)
	got, _ := cache.Get("k")
	if got.(int) != 2 {
		t.Errorf("覆写后应取到新值，得到 %v", got)
	}
}
