package screen

import (
	"image"
	"image/color"
	"image/draw"
)

const (
	Width  = 128
	Height = 128
)

var (
	Black = color.RGBA{A: 255}
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Canvas is the frame buffer drawables render into.
// The display device pushes it to the panel after a dirty tick.
type Canvas interface {
	draw.Image
	Fill(r image.Rectangle, c color.Color)
	Clear(c color.Color)
}

// Frame is an in-memory Canvas.
type Frame struct {
	*image.RGBA
}

func NewFrame(width, height int) *Frame {
	return &Frame{RGBA: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (f *Frame) Fill(r image.Rectangle, c color.Color) {
	draw.Draw(f.RGBA, r.Intersect(f.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
}

func (f *Frame) Clear(c color.Color) {
	f.Fill(f.Bounds(), c)
}

// RGB565 builds a colour from 5/6/5 bit channels, the native format of the panel.
func RGB565(r, g, b uint8) color.RGBA {
	r &= 0x1f
	g &= 0x3f
	b &= 0x1f
	return color.RGBA{
		R: r<<3 | r>>2,
		G: g<<2 | g>>4,
		B: b<<3 | b>>2,
		A: 255,
	}
}

// ToRGB565 packs a colour into the 16 bits word sent to the panel.
func ToRGB565(c color.Color) uint16 {
	r, g, b, _ := c.RGBA()
	return uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11)
}
