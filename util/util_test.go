package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckVersion(t *testing.T) {
	assert.NoError(t, CheckVersion(1, 0))
	assert.NoError(t, CheckVersion(1, 2))

	err := CheckVersion(2, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")

	assert.Error(t, CheckVersion(1, 3))
}

func TestPad(t *testing.T) {
	assert.Equal(t, "abc  ", Pad("abc", 5))
	assert.Equal(t, "abcdef", Pad("abcdef", 3))
}
