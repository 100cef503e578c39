package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRedisFailureLeavesClientNil(t *testing.T) {
	t.Setenv("REDIS_ADDR", "127.0.0.1:1")
	t.Setenv("REDIS_DB", "0")

	err := ConnectRedis()
	require.Error(t, err)
	assert.Nil(t, Rdb, "a failed connect must not leave a client aimed at a dead server")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SETLINE_CACHE_TEST_STR", "value")
	assert.Equal(t, "value", getEnv("SETLINE_CACHE_TEST_STR", "def"))
	assert.Equal(t, "def", getEnv("SETLINE_CACHE_TEST_MISSING", "def"))

	t.Setenv("SETLINE_CACHE_TEST_INT", "7")
	assert.Equal(t, 7, getEnvInt("SETLINE_CACHE_TEST_INT", 1))
	t.Setenv("SETLINE_CACHE_TEST_INT", "nope")
	assert.Equal(t, 1, getEnvInt("SETLINE_CACHE_TEST_INT", 1))
}
