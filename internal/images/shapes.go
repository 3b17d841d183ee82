package images

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

type point struct {
	x, y float32
}

// painter fills anti-aliased shapes into a bitmap.
type painter struct {
	bmp *Bitmap
	z   *vector.Rasterizer
}

func newPainter() *painter {
	return &painter{bmp: newBitmap(), z: vector.NewRasterizer(Size, Size)}
}

func (p *painter) polygon(c color.Color, pts ...point) {
	if len(pts) < 3 {
		return
	}
	p.z.Reset(Size, Size)
	p.z.MoveTo(pts[0].x, pts[0].y)
	for _, pt := range pts[1:] {
		p.z.LineTo(pt.x, pt.y)
	}
	p.z.ClosePath()
	p.z.Draw(p.bmp.RGBA, p.bmp.Bounds(), image.NewUniform(c), image.Point{})
}

func (p *painter) ellipse(cx, cy, rx, ry float32, c color.Color) {
	const segments = 64
	pts := make([]point, 0, segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / segments
		pts = append(pts, point{cx + rx*float32(math.Cos(a)), cy + ry*float32(math.Sin(a))})
	}
	p.polygon(c, pts...)
}

func (p *painter) circle(cx, cy, r float32, c color.Color) {
	p.ellipse(cx, cy, r, r, c)
}

func (p *painter) rect(x0, y0, x1, y1 float32, c color.Color) {
	p.polygon(c, point{x0, y0}, point{x1, y0}, point{x1, y1}, point{x0, y1})
}

// line strokes the segment between a and b with the given width.
func (p *painter) line(a, b point, width float32, c color.Color) {
	dx, dy := b.x-a.x, b.y-a.y
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	p.polygon(c,
		point{a.x + nx, a.y + ny},
		point{b.x + nx, b.y + ny},
		point{b.x - nx, b.y - ny},
		point{a.x - nx, a.y - ny})
}

var (
	yellow    = color.RGBA{R: 255, G: 220, B: 0, A: 255}
	red       = color.RGBA{R: 200, G: 16, B: 60, A: 255}
	darkRed   = color.RGBA{R: 120, G: 8, B: 32, A: 255}
	green     = color.RGBA{R: 88, G: 204, B: 2, A: 255}
	darkGreen = color.RGBA{R: 40, G: 130, B: 20, A: 255}
	white     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	grey      = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	black     = color.RGBA{A: 255}
	orange    = color.RGBA{R: 255, G: 150, B: 0, A: 255}
	brown     = color.RGBA{R: 140, G: 80, B: 30, A: 255}
	tan       = color.RGBA{R: 220, G: 170, B: 110, A: 255}
)

func Star() *Bitmap {
	p := newPainter()
	pts := make([]point, 0, 10)
	for i := 0; i < 10; i++ {
		r := float32(60)
		if i%2 == 1 {
			r = 24
		}
		a := -math.Pi/2 + math.Pi*float64(i)/5
		pts = append(pts, point{64 + r*float32(math.Cos(a)), 68 + r*float32(math.Sin(a))})
	}
	p.polygon(yellow, pts...)
	return p.bmp
}

func Raspberry() *Bitmap {
	p := newPainter()
	p.polygon(darkGreen, point{64, 30}, point{30, 8}, point{20, 26}, point{50, 36})
	p.polygon(darkGreen, point{64, 30}, point{98, 8}, point{108, 26}, point{78, 36})
	p.ellipse(64, 78, 40, 46, darkRed)
	for _, c := range []point{
		{50, 48}, {78, 48},
		{38, 70}, {64, 66}, {90, 70},
		{46, 94}, {82, 94},
		{64, 112},
	} {
		p.circle(c.x, c.y, 14, red)
	}
	return p.bmp
}

func Owl() *Bitmap {
	p := newPainter()
	p.polygon(green, point{30, 30}, point{40, 8}, point{56, 28})
	p.polygon(green, point{98, 30}, point{88, 8}, point{72, 28})
	p.ellipse(64, 70, 44, 50, green)
	p.ellipse(22, 78, 10, 26, darkGreen)
	p.ellipse(106, 78, 10, 26, darkGreen)
	p.circle(44, 56, 17, white)
	p.circle(84, 56, 17, white)
	p.circle(48, 58, 7, black)
	p.circle(80, 58, 7, black)
	p.polygon(orange, point{56, 72}, point{72, 72}, point{64, 84})
	p.ellipse(48, 120, 10, 5, orange)
	p.ellipse(80, 120, 10, 5, orange)
	return p.bmp
}

func Spaghetti() *Bitmap {
	p := newPainter()
	p.circle(64, 64, 62, grey)
	p.circle(64, 64, 54, white)
	for row := 0; row < 7; row++ {
		y0 := float32(32 + row*10)
		var prev point
		for i := 0; i <= 32; i++ {
			x := float32(24 + i*80/32)
			y := y0 + 5*float32(math.Sin(float64(i)/2+float64(row)))
			cur := point{x, y}
			if i > 0 {
				p.line(prev, cur, 3, yellow)
			}
			prev = cur
		}
	}
	p.circle(64, 62, 18, red)
	p.circle(54, 58, 7, brown)
	p.circle(74, 60, 7, brown)
	p.circle(64, 72, 7, brown)
	return p.bmp
}

func Plate() *Bitmap {
	p := newPainter()
	p.circle(64, 64, 44, white)
	p.circle(64, 64, 34, grey)
	p.circle(64, 64, 31, white)
	// fork
	p.rect(10, 56, 15, 118, grey)
	p.rect(4, 12, 21, 58, grey)
	for _, x := range []float32{8, 12, 16} {
		p.rect(x, 10, x+2, 40, black)
	}
	// knife
	p.rect(112, 64, 118, 118, grey)
	p.polygon(grey, point{112, 66}, point{112, 12}, point{124, 30}, point{120, 66})
	return p.bmp
}

func Octocat() *Bitmap {
	p := newPainter()
	p.polygon(white, point{30, 50}, point{34, 14}, point{58, 34})
	p.polygon(white, point{98, 50}, point{94, 14}, point{70, 34})
	p.ellipse(64, 58, 40, 34, white)
	p.ellipse(64, 62, 28, 20, tan)
	p.ellipse(52, 62, 5, 7, brown)
	p.ellipse(76, 62, 5, 7, brown)
	p.rect(50, 90, 78, 120, white)
	p.line(point{50, 104}, point{32, 94}, 6, white)
	return p.bmp
}

func TeddyBear() *Bitmap {
	p := newPainter()
	p.circle(30, 30, 18, brown)
	p.circle(98, 30, 18, brown)
	p.circle(30, 30, 9, tan)
	p.circle(98, 30, 9, tan)
	p.circle(64, 66, 46, brown)
	p.ellipse(64, 86, 22, 17, tan)
	p.circle(46, 56, 6, black)
	p.circle(82, 56, 6, black)
	p.ellipse(64, 78, 8, 6, black)
	p.line(point{64, 82}, point{64, 94}, 2, black)
	return p.bmp
}
