package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestLimiter_BurstThenWait(t *testing.T) {
	l := New("test", 1)
	ctx := context.Background()

	assert.NoError(t, l.Wait(ctx))

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "test")
}

func TestLimiter_Unlimited(t *testing.T) {
	l := New("open", 0)
	for range 100 {
		assert.NoError(t, l.Wait(context.Background()))
	}
	assert.Equal(t, "open", l.Name())
}

func TestLimiter_Nil(t *testing.T) {
	var l *Limiter
	assert.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.IsError(t, l.Wait(ctx), context.Canceled)
}
