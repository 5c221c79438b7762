package compose

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"quranreel/models"
)

// JPEGQuality is the encoder quality of every frame.
const JPEGQuality = 95

var (
	gradientTop    = color.RGBA{0x0a, 0x0a, 0x0a, 0xff}
	gradientMiddle = color.RGBA{0x1a, 0x1a, 0x2e, 0xff}
	gradientBottom = color.RGBA{0x16, 0x21, 0x3e, 0xff}
	textColor      = color.White
	accentColor    = color.RGBA{0x10, 0xb9, 0x81, 0xff}
)

// Renderer draws verse frames. It holds parsed fonts only; faces are
// created per render, so one Renderer can serve concurrent clips.
type Renderer struct {
	bold    *truetype.Font
	regular *truetype.Font
}

// NewRenderer loads the bold and regular TrueType fonts.
// An empty path selects the embedded Go font of that weight.
func NewRenderer(boldPath, regularPath string) (*Renderer, error) {
	bold, err := loadFont(boldPath, gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}
	regular, err := loadFont(regularPath, goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	return &Renderer{bold: bold, regular: regular}, nil
}

func loadFont(path string, fallback []byte) (*truetype.Font, error) {
	data := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		data = b
	}
	return truetype.Parse(data)
}

func (r *Renderer) face(bold bool, px float64) font.Face {
	f := r.regular
	if bold {
		f = r.bold
	}
	return truetype.NewFace(f, &truetype.Options{Size: px, Hinting: font.HintingFull})
}

// ValidateSettings rejects frame sizes that are not positive or exceed maxDim.
// It runs before any frame work starts.
func ValidateSettings(s models.RenderSettings, maxDim int) error {
	if s.Width <= 0 || s.Height <= 0 {
		return models.Invalid("settings", "width and height must be positive, got %dx%d", s.Width, s.Height)
	}
	if maxDim > 0 && (s.Width > maxDim || s.Height > maxDim) {
		return models.Invalid("settings", "width and height must not exceed %d, got %dx%d", maxDim, s.Width, s.Height)
	}
	return nil
}

// Render draws one frame of clip. Layers go back to front: gradient,
// Arabic text, translation, ayah number, reciter name.
func (r *Renderer) Render(clip models.Clip, s models.RenderSettings) image.Image {
	w, h := float64(s.Width), float64(s.Height)
	minDim := MinDim(s.Width, s.Height)
	dc := gg.NewContext(s.Width, s.Height)

	grad := gg.NewLinearGradient(0, 0, 0, h)
	grad.AddColorStop(0, gradientTop)
	grad.AddColorStop(0.5, gradientMiddle)
	grad.AddColorStop(1, gradientBottom)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	if s.ShowArabicText {
		dc.SetColor(textColor)
		dc.SetFontFace(r.face(true, FontSize(minDim, arabicSizeRatio)))
		measure := func(text string) float64 {
			tw, _ := dc.MeasureString(text)
			return tw
		}
		lines := WrapLines(clip.Arabic, w*textWidthRatio, measure)
		ys := LineCenters(len(lines), h, float64(minDim)*lineHeightRatio)
		for i, line := range lines {
			dc.DrawStringAnchored(line, w/2, ys[i], 0.5, 0.5)
		}
	}

	if s.ShowTranslation && clip.Translation != "" {
		dc.SetColor(accentColor)
		dc.SetFontFace(r.face(false, FontSize(minDim, translationSizeRatio)))
		dc.DrawStringAnchored(clip.Translation, w/2, h*translationY, 0.5, 0.5)
	}

	if s.ShowAyahNumber {
		dc.SetColor(accentColor)
		dc.SetFontFace(r.face(true, FontSize(minDim, numberSizeRatio)))
		dc.DrawStringAnchored(AyahMarker(clip.Number), w/2, h*numberY, 0.5, 0.5)
	}

	if s.ShowReciterName && s.ReciterName != "" {
		dc.SetColor(textColor)
		dc.SetFontFace(r.face(false, FontSize(minDim, reciterSizeRatio)))
		dc.DrawStringAnchored(s.ReciterName, w/2, h*reciterY, 0.5, 0.5)
	}

	return dc.Image()
}

// AyahMarker wraps a verse number in ornate parentheses.
func AyahMarker(n int) string {
	return "﴿ " + strconv.Itoa(n) + " ﴾"
}

// EncodeJPEG serializes a frame at JPEGQuality.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
