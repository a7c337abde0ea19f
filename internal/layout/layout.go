// Package layout maps a viewport width to the number of carousel slides shown at once.
package layout

// DefaultSlides is used below the narrowest breakpoint, and for widths that
// are not numbers at all.
const DefaultSlides = 2

// Breakpoint is an inclusive lower width bound and the slide count it selects.
type Breakpoint struct {
	MinWidth float64
	Slides   int
}

// Breakpoints are checked widest first; the first match wins.
var Breakpoints = []Breakpoint{
	{MinWidth: 1200, Slides: 5},
	{MinWidth: 1000, Slides: 4},
	{MinWidth: 700, Slides: 3},
	{MinWidth: 500, Slides: 2},
}

// SlidesPerView returns the slide count for a viewport width.
// It is defined for every float64, including zero, negatives and NaN.
func SlidesPerView(width float64) int {
	for _, bp := range Breakpoints {
		if width >= bp.MinWidth {
			return bp.Slides
		}
	}
	return DefaultSlides
}
