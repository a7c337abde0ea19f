package layout

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlidesPerView(t *testing.T) {
	tests := []struct {
		name  string
		width float64
		want  int
	}{
		{"wide desktop", 1920, 5},
		{"exactly 1200", 1200, 5},
		{"just below 1200", 1199, 4},
		{"exactly 1000", 1000, 4},
		{"just below 1000", 999.5, 3},
		{"exactly 700", 700, 3},
		{"just below 700", 699, 2},
		{"exactly 500", 500, 2},
		{"phone", 375, 2},
		{"zero", 0, 2},
		{"negative", -100, 2},
		{"positive infinity", math.Inf(1), 5},
		{"negative infinity", math.Inf(-1), 2},
		{"not a number", math.NaN(), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlidesPerView(tt.width))
		})
	}
}

func TestSlidesPerView_AlwaysInRange(t *testing.T) {
	for w := -50.0; w <= 2500; w += 0.5 {
		got := SlidesPerView(w)
		assert.GreaterOrEqual(t, got, 2, "width %v", w)
		assert.LessOrEqual(t, got, 5, "width %v", w)
	}
}

func TestBreakpoints_WidestFirst(t *testing.T) {
	for i := 1; i < len(Breakpoints); i++ {
		assert.Greater(t, Breakpoints[i-1].MinWidth, Breakpoints[i].MinWidth)
	}
}
