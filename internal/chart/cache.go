package chart

import (
	"sync"
	"time"
)

type cacheItem struct {
	data       []byte
	expiration time.Time
}

var (
	cacheMu     sync.Mutex
	renderCache = make(map[string]*cacheItem)
)

func cacheGet(key string) ([]byte, bool) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	if item, found := renderCache[key]; found && time.Now().Before(item.expiration) {
		return item.data, true
	}
	return nil, false
}

func cacheSet(key string, data []byte, ttl time.Duration) {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	renderCache[key] = &cacheItem{
		data:       data,
		expiration: time.Now().Add(ttl),
	}
}

// RenderActivityCached wraps a render behind a short-lived cache so a
// burst of /stats calls does not re-render the same chart.
func RenderActivityCached(key string, ttl time.Duration, load func() ([]byte, error)) ([]byte, error) {
	if data, found := cacheGet(key); found {
		return data, nil
	}

	data, err := load()
	if err != nil {
		return nil, err
	}
	cacheSet(key, data, ttl)
	return data, nil
}
