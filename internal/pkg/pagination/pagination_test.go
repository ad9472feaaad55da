package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults applied", 0, 0, 1, DefaultLimit, 0},
		{"negative page", -5, 10, 1, 10, 0},
		{"limit capped", 1, 500, 1, MaxLimit, 0},
		{"second page offset", 3, 20, 3, 20, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Clamp(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantOffset, p.Offset)
		})
	}
}

func TestNewPaged(t *testing.T) {
	p := Clamp(2, 10)
	paged := NewPaged([]string{"a", "b"}, p, 25)

	assert.Equal(t, 2, paged.Meta.Page)
	assert.Equal(t, int64(25), paged.Meta.Total)
	assert.Equal(t, 3, paged.Meta.TotalPages)
	assert.True(t, paged.Meta.HasNext)
	assert.True(t, paged.Meta.HasPrev)
}

func TestNewPagedLastPage(t *testing.T) {
	p := Clamp(3, 10)
	paged := NewPaged([]string{}, p, 25)

	assert.False(t, paged.Meta.HasNext)
	assert.True(t, paged.Meta.HasPrev)
}

func TestNewPagedEmpty(t *testing.T) {
	p := Clamp(1, 10)
	paged := NewPaged([]string{}, p, 0)

	assert.Equal(t, 0, paged.Meta.TotalPages)
	assert.False(t, paged.Meta.HasNext)
	assert.False(t, paged.Meta.HasPrev)
}
