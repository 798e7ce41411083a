package ratelimit

import (
	"context"
	"testing"

	"github.com/stockroomhq/stockroom/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterDisabledWithoutRedis(t *testing.T) {
	l := NewLimiter(config.Config{})
	assert.False(t, l.Enabled())

	res, err := l.Allow(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestTokenBucketNilClient(t *testing.T) {
	assert.Nil(t, NewTokenBucket(nil))

	var tb *TokenBucket
	_, err := tb.Allow(context.Background(), "k", 1, 1)
	assert.Error(t, err)
}
