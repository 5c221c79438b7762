package compose

import (
	"math"
	"strings"
)

// Layout proportions, relative to min(width, height) unless noted.
const (
	arabicSizeRatio      = 0.06
	translationSizeRatio = 0.025
	numberSizeRatio      = 0.03
	reciterSizeRatio     = 0.02
	lineHeightRatio      = 0.08

	// fractions of the canvas
	textWidthRatio = 0.85
	translationY   = 0.70
	numberY        = 0.85
	reciterY       = 0.92
)

// Measurer returns the pixel width of s in the current font.
type Measurer func(s string) float64

// MinDim is the reference dimension for every font size.
func MinDim(width, height int) int {
	if width < height {
		return width
	}
	return height
}

// FontSize returns floor(minDim*ratio), never below one pixel.
func FontSize(minDim int, ratio float64) float64 {
	px := math.Floor(float64(minDim) * ratio)
	if px < 1 {
		return 1
	}
	return px
}

// WrapLines breaks text into lines that fit maxWidth, greedily.
// A word that does not fit on a non-empty line starts a new one; a single
// word wider than maxWidth still gets its own line. The last line is always
// returned, so empty text yields one empty line.
func WrapLines(text string, maxWidth float64, measure Measurer) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := current + word + " "
		if measure(candidate) > maxWidth && current != "" {
			lines = append(lines, strings.TrimSpace(current))
			current = word + " "
			continue
		}
		current = candidate
	}
	return append(lines, strings.TrimSpace(current))
}

// LineCenters returns the middle-anchor y of n lines. The block starts
// n*lineHeight/2 above the canvas center and advances one lineHeight per
// line, so a single line sits half a line above center.
func LineCenters(n int, height, lineHeight float64) []float64 {
	ys := make([]float64, n)
	top := height/2 - float64(n)*lineHeight/2
	for i := range ys {
		ys[i] = top + float64(i)*lineHeight
	}
	return ys
}
