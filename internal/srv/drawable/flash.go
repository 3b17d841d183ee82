package drawable

import (
	"math/rand"

	"github.com/jypelle/oledpi/internal/images"
	"github.com/jypelle/oledpi/internal/srv/screen"
)

const (
	flashFrames  = 73
	flashTimeout = 110
)

// Flash blinks a bitmap with its inverted version, then holds the last
// frame until it expires.
type Flash struct {
	bitmap *images.Bitmap
	frames int
}

func NewFlash(bitmap *images.Bitmap) *Flash {
	return &Flash{bitmap: bitmap}
}

func (d *Flash) Draw(c screen.Canvas, rng *rand.Rand) (bool, error) {
	d.frames++
	if d.frames > flashFrames {
		return false, nil
	}
	drawBitmap(c, d.bitmap, d.frames%8 >= 4)
	return true, nil
}

func (d *Flash) Expired() bool {
	return d.frames > flashTimeout
}

func (d *Flash) Handle(screen.Command) {}
