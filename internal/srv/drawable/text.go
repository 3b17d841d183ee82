package drawable

import (
	"image"
	"image/color"
	"image/draw"
	"unicode/utf8"

	"github.com/hajimehoshi/bitmapfont/v2"
	"github.com/jypelle/oledpi/internal/images"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
)

var (
	smallFace  font.Face = bitmapfont.Face
	mediumFace font.Face = basicfont.Face7x13
	largeFace  font.Face = inconsolata.Bold8x16
)

// AddLabel draws label with its baseline starting at x, y.
func AddLabel(img draw.Image, face font.Face, x, y int, label string, col color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

func AddCenteredLabel(img draw.Image, face font.Face, y int, label string, col color.Color) {
	width := font.MeasureString(face, label).Round()
	AddLabel(img, face, (img.Bounds().Dx()-width)/2, y, label, col)
}

// drawBitmap copies bmp to the canvas, with inverted channels when asked.
func drawBitmap(c screen.Canvas, bmp *images.Bitmap, inverted bool) {
	for y := 0; y < images.Size; y++ {
		for x := 0; x < images.Size; x++ {
			col := bmp.RGBAAt(x, y)
			if inverted {
				col = color.RGBA{R: 255 - col.R, G: 255 - col.G, B: 255 - col.B, A: 255}
			}
			col.A = 255
			c.Set(x, y, col)
		}
	}
}

// drawBitmapColored paints the silhouette of bmp with a single colour.
func drawBitmapColored(c screen.Canvas, bmp *images.Bitmap, col color.Color) {
	for y := 0; y < images.Size; y++ {
		for x := 0; x < images.Size; x++ {
			if bmp.IsBlack(x, y) {
				c.Set(x, y, screen.Black)
			} else {
				c.Set(x, y, col)
			}
		}
	}
}

// Truncate cuts s to at most n bytes without splitting a rune.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
