package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		size      int
		wantFrom  int
		wantLimit int
	}{
		{name: "first page", page: 1, size: 5, wantFrom: 0, wantLimit: 5},
		{name: "third page", page: 3, size: 5, wantFrom: 10, wantLimit: 5},
		{name: "zero page clamps to first", page: 0, size: 5, wantFrom: 0, wantLimit: 5},
		{name: "negative page clamps to first", page: -2, size: 5, wantFrom: 0, wantLimit: 5},
		{name: "zero size defaults", page: 2, size: 0, wantFrom: 10, wantLimit: 10},
		{name: "oversized size defaults", page: 1, size: 500, wantFrom: 0, wantLimit: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 5))
	assert.Equal(t, 1, TotalPages(3, 5))
	assert.Equal(t, 1, TotalPages(5, 5))
	assert.Equal(t, 2, TotalPages(6, 5))
	assert.Equal(t, 0, TotalPages(10, 0))
}
