package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvFallsBackToDefault(t *testing.T) {
	assert.Equal(t, "fallback", GetEnv("SLIDECRAFT_TEST_UNSET", "fallback"))

	t.Setenv("SLIDECRAFT_TEST_SET", "value")
	assert.Equal(t, "value", GetEnv("SLIDECRAFT_TEST_SET", "fallback"))
}

func TestGetEnvAsIntParsesAndFallsBack(t *testing.T) {
	assert.Equal(t, 10, GetEnvAsInt("SLIDECRAFT_TEST_UNSET", 10))

	t.Setenv("SLIDECRAFT_TEST_INT", "25")
	assert.Equal(t, 25, GetEnvAsInt("SLIDECRAFT_TEST_INT", 10))

	t.Setenv("SLIDECRAFT_TEST_INT", "not a number")
	assert.Equal(t, 10, GetEnvAsInt("SLIDECRAFT_TEST_INT", 10))
}
