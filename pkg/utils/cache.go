package utils

import (
	"sync"
	"time"
)

// TTLCache 进程内带过期时间的缓存
// 使用 sync.Map 保证并发安全，过期采用懒删除
type TTLCache struct {
	items sync.Map
}

type cacheItem struct {
	value      interface{}
	expiration int64
}

func NewTTLCache() *TTLCache {
	return &TTLCache{}
}

// Set 设置缓存
func (c *TTLCache) Set(key string, value interface{}, ttl time.Duration) {
	c.items.Store(key, cacheItem{
		value:      value,
		expiration: time.Now().Add(ttl).UnixNano(),
	})
}

// Get 获取缓存并验证是否过期
func (c *TTLCache) Get(key string) (interface{}, bool) {
	val, ok := c.items.Load(key)
	if !ok {
		return nil, false
	}

	item := val.(cacheItem)

	// 检查是否过期
	if time.Now().UnixNano() > item.expiration {
		c.items.Delete(key) // 懒删除
		return nil, false
	}

	return item.value, true
}

// Delete 删除缓存
func (c *TTLCache) Delete(key string) {
	c.items.Delete(key)
}
