package minecraft

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCache(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		ttl      time.Duration
		wantCap  int
		wantTTL  time.Duration
	}{
		{
			name:    "default values",
			wantCap: DefaultCacheSize,
			wantTTL: DefaultCacheTTL,
		},
		{
			name:     "custom values",
			capacity: 50,
			ttl:      time.Minute,
			wantCap:  50,
			wantTTL:  time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewCache(tt.capacity, tt.ttl)
			assert.Equal(t, tt.wantCap, cache.capacity)
			assert.Equal(t, tt.wantTTL, cache.ttl)
			assert.Equal(t, 0, cache.Len())
		})
	}
}

func TestCache_SetGet(t *testing.T) {
	cache := NewCache(10, time.Hour)
	cache.Set(VersionInfo{ID: "1.12.2", URL: "https://example.com/1.12.2.json"})

	got := cache.Get("1.12.2")
	require.NotNil(t, got)
	assert.Equal(t, "https://example.com/1.12.2.json", got.Version.URL)
	assert.False(t, got.Timestamp.IsZero())

	assert.Nil(t, cache.Get("1.7.10"))

	cache.Set(VersionInfo{ID: "1.12.2", URL: "https://mirror.example.com/1.12.2.json"})
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, "https://mirror.example.com/1.12.2.json", cache.Get("1.12.2").Version.URL)
}

func TestCache_Expiration(t *testing.T) {
	cache := NewCache(10, 10*time.Millisecond)
	cache.Set(VersionInfo{ID: "1.12.2"})

	time.Sleep(20 * time.Millisecond)

	assert.Nil(t, cache.Get("1.12.2"))
	assert.Equal(t, 0, cache.Len(), "expired entries are dropped on read")
}

func TestCache_LRUEviction(t *testing.T) {
	cache := NewCache(2, time.Hour)
	cache.Set(VersionInfo{ID: "a"})
	cache.Set(VersionInfo{ID: "b"})

	require.NotNil(t, cache.Get("a"))
	cache.Set(VersionInfo{ID: "c"})

	assert.NotNil(t, cache.Get("a"))
	assert.Nil(t, cache.Get("b"), "least recently used entry is evicted")
	assert.NotNil(t, cache.Get("c"))
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache(10, time.Hour)
	cache.Set(VersionInfo{ID: "a"})
	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	assert.Nil(t, cache.Get("a"))
}

func TestCache_Concurrent(t *testing.T) {
	cache := NewCache(100, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("1.%d", i)
			cache.Set(VersionInfo{ID: id})
			_ = cache.Get(id)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, cache.Len())
}
