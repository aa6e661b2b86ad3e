package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectClampPoint(t *testing.T) {
	r := Rect{Left: 0, Top: 0, Right: 1920, Bottom: 1080}

	tests := []struct {
		name         string
		x, y         int32
		wantX, wantY int32
	}{
		{"inside untouched", 500, 500, 500, 500},
		{"right edge exclusive", 1920, 500, 1919, 500},
		{"past right", 2500, 500, 1919, 500},
		{"past bottom", 500, 1200, 500, 1079},
		{"negative both", -10, -20, 0, 0},
		{"top-left corner", 0, 0, 0, 0},
		{"bottom-right corner", 1919, 1079, 1919, 1079},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := r.ClampPoint(tt.x, tt.y)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestRectClampPointNegativeOrigin(t *testing.T) {
	// Secondary monitor left of primary.
	r := Rect{Left: -1920, Top: 0, Right: 0, Bottom: 1080}

	x, y := r.ClampPoint(100, 500)
	assert.Equal(t, int32(-1), x)
	assert.Equal(t, int32(500), y)

	x, y = r.ClampPoint(-2000, 500)
	assert.Equal(t, int32(-1920), x)
	assert.Equal(t, int32(500), y)
}

func TestRectClampPointDegenerate(t *testing.T) {
	r := Rect{Left: 10, Top: 10, Right: 10, Bottom: 10}
	x, y := r.ClampPoint(55, 66)
	assert.Equal(t, int32(55), x)
	assert.Equal(t, int32(66), y)
}

func TestRectContains(t *testing.T) {
	r := Rect{Left: 1920, Top: 0, Right: 3840, Bottom: 1080}
	assert.True(t, r.Contains(1920, 0))
	assert.True(t, r.Contains(3839, 1079))
	assert.False(t, r.Contains(3840, 500))
	assert.False(t, r.Contains(1919, 500))
}

func TestRectDimensions(t *testing.T) {
	r := Rect{Left: 1920, Top: 0, Right: 3840, Bottom: 1080}
	assert.Equal(t, int32(1920), r.Width())
	assert.Equal(t, int32(1080), r.Height())
}
