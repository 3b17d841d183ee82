package drawable

import (
	"math/rand"

	"github.com/jypelle/oledpi/internal/images"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	washFrames     = 40
	revealFrames   = 30
	pageFrames     = 35
	linesPerPage   = 9
	revealPerFrame = images.Size * images.Size / revealFrames
)

// NotificationAlert washes an icon through the hue circle, reveals it pixel
// by pixel and then pages through the notification lines.
type NotificationAlert struct {
	icon   *images.Bitmap
	lines  []string
	frames int
	redraw bool
}

func NewNotificationAlert(icon *images.Bitmap, lines []string) *NotificationAlert {
	return &NotificationAlert{icon: icon, lines: lines}
}

func (d *NotificationAlert) pages() int {
	return max(1, (len(d.lines)+linesPerPage-1)/linesPerPage)
}

// Frames is the number of frames drawn before the alert expires.
func (d *NotificationAlert) Frames() int {
	return washFrames + revealFrames + d.pages()*pageFrames
}

func (d *NotificationAlert) Draw(c screen.Canvas, rng *rand.Rand) (bool, error) {
	frame := d.frames
	d.frames++

	switch {
	case frame < washFrames:
		hue := float64(frame) / washFrames * 360
		r, g, b := colorful.Hsv(hue, 1, 1).RGB255()
		drawBitmapColored(c, d.icon, screen.RGB565(r>>3, g>>2, b>>3))
		return true, nil
	case frame < washFrames+revealFrames:
		if frame == washFrames {
			c.Clear(screen.Black)
		}
		for i := 0; i < revealPerFrame; i++ {
			x, y := rng.Intn(images.Size), rng.Intn(images.Size)
			c.Set(x, y, d.icon.RGBAAt(x, y))
		}
		return true, nil
	default:
		elapsed := frame - washFrames - revealFrames
		if elapsed%pageFrames != 0 && !d.redraw {
			return false, nil
		}
		page := elapsed / pageFrames
		if page >= d.pages() {
			if !d.redraw {
				return false, nil
			}
			page = d.pages() - 1
		}
		d.redraw = false
		c.Clear(screen.Black)
		start := page * linesPerPage
		end := min(start+linesPerPage, len(d.lines))
		for i, line := range d.lines[start:end] {
			AddLabel(c, mediumFace, 0, 12+i*14, line, screen.White)
		}
		return true, nil
	}
}

func (d *NotificationAlert) Handle(cmd screen.Command) {
	if cmd == screen.Redraw {
		d.redraw = true
	}
}

func (d *NotificationAlert) Expired() bool {
	return d.frames >= d.Frames()
}
