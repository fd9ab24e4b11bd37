package router

import (
	"time"

	"git.fiblab.net/sim/accessroute/model"
	"github.com/puzpuzpuz/xsync/v3"
)

type cacheEntry struct {
	route  *model.Route
	stored time.Time
}

// expiringMap 有容量上限与有效期的并发映射，写满时先清理过期项再淘汰最早写入的项
type expiringMap struct {
	m    *xsync.MapOf[string, cacheEntry]
	size int
	ttl  time.Duration
	now  func() time.Time
}

func newExpiringMap(size int, ttl time.Duration, now func() time.Time) *expiringMap {
	return &expiringMap{
		m:    xsync.NewMapOf[string, cacheEntry](),
		size: size,
		ttl:  ttl,
		now:  now,
	}
}

func (e *expiringMap) get(key string) (*model.Route, bool) {
	entry, ok := e.m.Load(key)
	if !ok {
		return nil, false
	}
	if e.now().Sub(entry.stored) > e.ttl {
		e.m.Delete(key)
		return nil, false
	}
	return entry.route, true
}

func (e *expiringMap) put(key string, route *model.Route) {
	if e.size <= 0 {
		return
	}
	now := e.now()
	if _, exists := e.m.Load(key); !exists && e.m.Size() >= e.size {
		e.evict(now)
	}
	e.m.Store(key, cacheEntry{route: route, stored: now})
}

func (e *expiringMap) evict(now time.Time) {
	oldestKey, oldest := "", now
	found := false
	e.m.Range(func(k string, v cacheEntry) bool {
		if now.Sub(v.stored) > e.ttl {
			e.m.Delete(k)
			return true
		}
		if !found || v.stored.Before(oldest) {
			oldestKey, oldest, found = k, v.stored, true
		}
		return true
	})
	if e.m.Size() >= e.size && found {
		e.m.Delete(oldestKey)
	}
}

// RouteCache 按请求指纹缓存路线，并按已下发的路线id索引，用于GetRoute
// 容量与有效期来自Config，同一key后写覆盖先写
type RouteCache struct {
	routes *expiringMap
	issued *expiringMap
}

type CacheOption func(*cacheOptions)

type cacheOptions struct {
	now func() time.Time
}

// WithCacheClock 替换时间源（测试用）
func WithCacheClock(now func() time.Time) CacheOption {
	return func(o *cacheOptions) { o.now = now }
}

func NewRouteCache(size int, ttl time.Duration, opts ...CacheOption) *RouteCache {
	o := cacheOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &RouteCache{
		routes: newExpiringMap(size, ttl, o.now),
		issued: newExpiringMap(size, ttl, o.now),
	}
}

// Get 指纹对应的路线，过期视为未命中
func (c *RouteCache) Get(key string) (*model.Route, bool) {
	return c.routes.get(key)
}

func (c *RouteCache) Put(key string, route *model.Route) {
	c.routes.put(key, route)
}

// Remember 记录下发给调用方的路线，供按id查询
func (c *RouteCache) Remember(route *model.Route) {
	c.issued.put(route.ID, route)
}

// Lookup 按路线id查询
func (c *RouteCache) Lookup(id string) (*model.Route, bool) {
	return c.issued.get(id)
}

func (c *RouteCache) Len() int {
	return c.routes.m.Size()
}
