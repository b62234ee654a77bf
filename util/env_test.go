package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("BGSWAP_TEST_STRING", "value")
	t.Setenv("BGSWAP_TEST_BOOL", "true")
	t.Setenv("BGSWAP_TEST_INT", "42")
	t.Setenv("BGSWAP_TEST_DURATION", "1m30s")
	t.Setenv("BGSWAP_TEST_BAD", "not-a-number")

	assert.Equal(t, "value", GetEnvString("BGSWAP_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", GetEnvString("BGSWAP_TEST_UNSET", "fallback"))

	assert.True(t, GetEnvBool("BGSWAP_TEST_BOOL", false))
	assert.True(t, GetEnvBool("BGSWAP_TEST_BAD", true))

	assert.Equal(t, 42, GetEnvInt("BGSWAP_TEST_INT", 1))
	assert.Equal(t, 1, GetEnvInt("BGSWAP_TEST_BAD", 1))

	assert.Equal(t, 90*time.Second, GetEnvDuration("BGSWAP_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("BGSWAP_TEST_BAD", time.Second))
}
