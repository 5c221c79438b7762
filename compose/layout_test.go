package compose

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"
)

// fixedWidth measures every rune as 10 pixels, spaces included.
func fixedWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s) * 10)
}

func TestWrapShortTextIsOneLine(t *testing.T) {
	lines := WrapLines("بسم الله", 1000, fixedWidth)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %q", len(lines), lines)
	}
	if lines[0] != "بسم الله" {
		t.Errorf("Unexpected line %q", lines[0])
	}
}

func TestWrapBreaksGreedily(t *testing.T) {
	// "aaa bbb " measures 80, "aaa bbb ccc " measures 120.
	lines := WrapLines("aaa bbb ccc ddd e", 100, fixedWidth)
	want := []string{"aaa bbb", "ccc ddd e"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("Expected %q, got %q", want, lines)
	}
}

func TestWrapKeepsEveryWord(t *testing.T) {
	text := "  one two   three\tfour five six seven eight nine  "
	lines := WrapLines(text, 60, fixedWidth)

	var words []string
	for i, line := range lines {
		if strings.HasPrefix(line, " ") || strings.HasSuffix(line, " ") {
			t.Errorf("Line %d has surrounding spaces: %q", i, line)
		}
		words = append(words, strings.Fields(line)...)
	}
	if strings.Join(words, " ") != strings.Join(strings.Fields(text), " ") {
		t.Errorf("Words changed: got %q", words)
	}
}

func TestWrapOversizedWordGetsOwnLine(t *testing.T) {
	lines := WrapLines("a verylongword b", 50, fixedWidth)
	want := []string{"a", "verylongword", "b"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("Expected %q, got %q", want, lines)
	}
}

func TestWrapEmptyText(t *testing.T) {
	lines := WrapLines("   ", 100, fixedWidth)
	if len(lines) != 1 || lines[0] != "" {
		t.Errorf("Expected one empty line, got %q", lines)
	}
}

func TestMinDimAndFontSizes(t *testing.T) {
	m := MinDim(1080, 1920)
	if m != 1080 {
		t.Fatalf("Expected min dimension 1080, got %d", m)
	}
	if got := FontSize(m, arabicSizeRatio); got != 64 {
		t.Errorf("Expected Arabic size 64, got %v", got)
	}
	if got := FontSize(m, translationSizeRatio); got != 27 {
		t.Errorf("Expected translation size 27, got %v", got)
	}
	if got := FontSize(m, numberSizeRatio); got != 32 {
		t.Errorf("Expected number size 32, got %v", got)
	}
	if got := FontSize(m, reciterSizeRatio); got != 21 {
		t.Errorf("Expected reciter size 21, got %v", got)
	}
	if got := FontSize(10, reciterSizeRatio); got != 1 {
		t.Errorf("Expected a one pixel floor, got %v", got)
	}
}

func TestLineCenters(t *testing.T) {
	ys := LineCenters(3, 1000, 100)
	want := []float64{350, 450, 550}
	for i := range want {
		if ys[i] != want[i] {
			t.Errorf("Line %d: expected y %v, got %v", i, want[i], ys[i])
		}
	}

	// 1080x1920 portrait: lineHeight is 0.08*1080.
	one := LineCenters(1, 1920, 86.4)
	if math.Abs(one[0]-916.8) > 1e-9 {
		t.Errorf("Single line should sit at 916.8, got %v", one[0])
	}
}
