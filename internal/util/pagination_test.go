package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		page, size                   int
		wantPage, wantOffset, wantLi int
	}{
		{1, 10, 1, 0, 10},
		{3, 20, 3, 40, 20},
		{0, 0, 1, 0, DefaultPageSize},
		{-2, 500, 1, 0, DefaultPageSize},
		{math.MaxInt, 10, math.MaxInt / 10, (math.MaxInt/10 - 1) * 10, 10},
	}
	for _, tt := range tests {
		pg, offset, limit := Calculate(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, pg)
		assert.Equal(t, tt.wantOffset, offset)
		assert.Equal(t, tt.wantLi, limit)
		assert.GreaterOrEqual(t, offset, 0)
		assert.GreaterOrEqual(t, offset+limit, offset)
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("abc", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestNewMeta(t *testing.T) {
	m := NewMeta(2, 10, 10, 25)
	assert.EqualValues(t, 3, m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	m = NewMeta(3, 20, 10, 25)
	assert.False(t, m.HasNext)

	m = NewMeta(1, 0, 10, 0)
	assert.Zero(t, m.TotalPages)
	assert.False(t, m.HasPrev)
}
