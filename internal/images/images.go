package images

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/jypelle/oledpi/internal/tool"
	"github.com/sirupsen/logrus"
)

const Size = 128

// Bitmap is a 128x128 picture sampled by the screensavers.
type Bitmap struct {
	*image.RGBA
}

func newBitmap() *Bitmap {
	return &Bitmap{RGBA: image.NewRGBA(image.Rect(0, 0, Size, Size))}
}

// RGB returns the 8 bits channels of the pixel at x, y.
func (b *Bitmap) RGB(x, y int) (uint8, uint8, uint8) {
	c := b.RGBAAt(x, y)
	return c.R, c.G, c.B
}

// IsBlack reports whether the pixel at x, y is off on the panel.
func (b *Bitmap) IsBlack(x, y int) bool {
	r, g, bl := b.RGB(x, y)
	return r < 8 && g < 4 && bl < 8
}

var generators = map[string]func() *Bitmap{
	"star":       Star,
	"rpi":        Raspberry,
	"duolingo":   Owl,
	"spaghetti":  Spaghetti,
	"plate":      Plate,
	"github":     Octocat,
	"teddy_bear": TeddyBear,
}

// Names lists the built-in bitmaps.
func Names() []string {
	return []string{"star", "rpi", "duolingo", "spaghetti", "plate", "github", "teddy_bear"}
}

// Load returns the bitmap called name. A PNG file <dir>/<name>.png takes
// precedence over the built-in picture.
func Load(dir string, name string) *Bitmap {
	if dir != "" {
		filename := filepath.Join(dir, name+".png")
		exists, err := tool.IsFileExists(filename)
		if err != nil {
			logrus.Warnf("Unable to access %s: %v", filename, err)
		}
		if exists {
			bmp, err := open(filename)
			if err == nil {
				logrus.Debugf("Use %s for %s bitmap", filename, name)
				return bmp
			}
			logrus.Warnf("Unable to load %s: %v", filename, err)
		}
	}

	generate, ok := generators[name]
	if !ok {
		logrus.Warnf("Unknown bitmap %s", name)
		return newBitmap()
	}
	return generate()
}

func open(filename string) (*Bitmap, error) {
	img, err := imaging.Open(filename)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// FromImage scales img to cover the whole bitmap.
func FromImage(img image.Image) *Bitmap {
	bmp := newBitmap()
	draw.Draw(bmp.RGBA, bmp.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	resized := imaging.Fill(img, Size, Size, imaging.Center, imaging.Lanczos)
	draw.Draw(bmp.RGBA, bmp.Bounds(), resized, image.Point{}, draw.Over)
	return bmp
}
