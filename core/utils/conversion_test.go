package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{int64(42), 42},
		{uint8(7), 7},
		{float64(3.9), 3},
		{"12", 12},
		{[]byte("8"), 8},
		{"abc", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToInt(tt.in), "%#v", tt.in)
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "x", ToString("x"))
	assert.Equal(t, "raw", ToString([]byte("raw")))
	assert.Equal(t, "5", ToString(5))
	assert.Equal(t, "", ToString(nil))
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool(true))
	assert.True(t, ToBool(int64(1)))
	assert.True(t, ToBool("TRUE"))
	assert.True(t, ToBool([]byte("1")))
	assert.True(t, ToBool(float64(1)))
	assert.False(t, ToBool(int64(0)))
	assert.False(t, ToBool("no"))
	assert.False(t, ToBool(nil))
}
