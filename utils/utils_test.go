package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type PositionTestCase struct {
	input    float64
	expected string
}

func TestFormatPosition(t *testing.T) {
	tests := []PositionTestCase{
		{0, "00:00"},
		{45, "00:45"},
		{225, "03:45"},
		{3599.9, "59:59"},
		{-5, "00:00"},
	}

	for _, tt := range tests {
		result := FormatPosition(tt.input)
		assert.Equal(t, tt.expected, result)
	}
}

func TestNowMillis(t *testing.T) {
	before := time.Now().UnixMilli()
	got := NowMillis()
	after := time.Now().UnixMilli()

	assert.GreaterOrEqual(t, got, before)
	assert.LessOrEqual(t, got, after)
}
