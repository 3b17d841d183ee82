package drawable

import (
	"math/rand"

	"github.com/jypelle/oledpi/internal/images"
	"github.com/jypelle/oledpi/internal/srv/screen"
)

const (
	DefaultSpeed       = 32
	simpleFrameTimeout = 1000
	jitter             = 4
)

// SimpleScreensaver sparkles a bitmap onto the screen by redrawing random
// samples of it slightly off position and colour.
type SimpleScreensaver struct {
	id     string
	bitmap *images.Bitmap
	speed  int
}

func NewSimpleScreensaver(id string, bitmap *images.Bitmap, speed int) *SimpleScreensaver {
	if speed <= 0 {
		speed = DefaultSpeed
	}
	return &SimpleScreensaver{id: id, bitmap: bitmap, speed: speed}
}

func (s *SimpleScreensaver) Id() string {
	return s.id
}

func (s *SimpleScreensaver) NewDrawable() screen.Drawable {
	return &sparkle{SimpleScreensaver: s}
}

type sparkle struct {
	screen.Base
	*SimpleScreensaver
	frames int
}

func (d *sparkle) Draw(c screen.Canvas, rng *rand.Rand) (bool, error) {
	for i := 0; i < d.speed; i++ {
		x := rng.Intn(images.Size)
		y := rng.Intn(images.Size)
		dx := rng.Intn(2*jitter) - jitter
		dy := rng.Intn(2*jitter) - jitter
		red, green, blue := d.bitmap.RGB(x, y)
		if red|green|blue == 0 {
			continue
		}
		noise := rng.Uint32()
		c.Set(x+dx, y+dy, screen.RGB565(
			min(red>>3+uint8(noise&3), 0x1f),
			min(green>>2+uint8(noise>>2&3), 0x3f),
			min(blue>>3+uint8(noise>>4&3), 0x1f),
		))
	}
	d.frames++
	return true, nil
}

func (d *sparkle) Expired() bool {
	return d.frames > simpleFrameTimeout
}
