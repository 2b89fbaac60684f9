package runner

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	assert.False(t, shouldSuppressHeader(ctx))
	_, ok := getRunID(ctx)
	assert.False(t, ok)

	ctx = WithSuppressHeader(ctx)
	ctx = withRunID(ctx, 42)
	assert.True(t, shouldSuppressHeader(ctx))
	runID, ok := getRunID(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), runID)
}

// TestContextConcurrentAccess checks that the sweep workers can share one context.
func TestContextConcurrentAccess(t *testing.T) {
	ctx := withRunID(WithSuppressHeader(context.Background()), 7)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			runID, ok := getRunID(ctx)
			assert.True(t, shouldSuppressHeader(ctx), "goroutine %d", id)
			assert.True(t, ok, "goroutine %d", id)
			assert.Equal(t, int64(7), runID, "goroutine %d", id)
		}(i)
	}
	wg.Wait()
}
