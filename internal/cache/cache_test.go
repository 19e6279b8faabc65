package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	// Set replaces
	c.Set("a", 2)
	v, _ = c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestMemory_ClearDropsEverything(t *testing.T) {
	c := NewMemory()
	c.Set("dashboard_1_all_all_all_all", "payload")
	c.Set("dashboard_1_3_2026_all_all", "payload")

	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("dashboard_1_all_all_all_all")
	assert.False(t, ok)

	// Usable after clearing
	c.Set("x", "y")
	v, ok := c.Get("x")
	assert.True(t, ok)
	assert.Equal(t, "y", v)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	c := NewMemory()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d", j%10)
				c.Set(key, n)
				c.Get(key)
				if j%25 == 0 {
					c.Clear()
				}
			}
		}(i)
	}
	wg.Wait()
}
