package drawable

import (
	"fmt"
	"image/color"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/oledpi/internal/srv/screen"
)

var timeColors = []color.RGBA{
	screen.RGB565(0b01_111, 0b000_000, 0b00_000),
	screen.RGB565(0b01_111, 0b011_111, 0b00_000),
	screen.RGB565(0b00_000, 0b011_111, 0b00_000),
	screen.RGB565(0b00_000, 0b011_111, 0b01_111),
	screen.RGB565(0b00_000, 0b000_000, 0b01_111),
	screen.RGB565(0b01_111, 0b000_000, 0b01_111),
	screen.RGB565(0b00_111, 0b001_111, 0b01_111),
	screen.RGB565(0b01_111, 0b001_111, 0b00_111),
	screen.RGB565(0b00_111, 0b011_111, 0b00_111),
}

var defaultTimeColor = screen.RGB565(0b01_111, 0b011_111, 0b01_111)

// TimeDisplay is the idle clock. It repaints once per minute, at a position
// drifting with the time to spread panel wear.
type TimeDisplay struct {
	screen.Base
	clock      clockwork.Clock
	location   *time.Location
	lastMinute time.Time
}

func NewTimeDisplay(clock clockwork.Clock, location *time.Location) *TimeDisplay {
	return &TimeDisplay{clock: clock, location: location}
}

func (d *TimeDisplay) Id() string {
	return "time"
}

func (d *TimeDisplay) NewDrawable() screen.Drawable {
	return NewTimeDisplay(d.clock, d.location)
}

func (d *TimeDisplay) Handle(cmd screen.Command) {
	if cmd == screen.Redraw {
		d.lastMinute = time.Time{}
	}
}

func (d *TimeDisplay) Draw(c screen.Canvas, rng *rand.Rand) (bool, error) {
	now := d.clock.Now().In(d.location)
	minute := now.Truncate(time.Minute)
	if minute.Equal(d.lastMinute) {
		return false, nil
	}
	d.lastMinute = minute
	c.Clear(screen.Black)

	hour := now.Hour()
	col := defaultTimeColor
	if hour < len(timeColors) {
		col = timeColors[hour]
	}
	dx := (hour%3-1)*40 - 2
	dy := now.Minute() * 5 / 3 % 100

	AddLabel(c, largeFace, 64-20+dx, 20+dy, fmt.Sprintf("%02d", hour), col)
	AddLabel(c, largeFace, 64-3+dx, 18+dy, ":", col)
	AddLabel(c, largeFace, 64+5+dx, 20+dy, fmt.Sprintf("%02d", now.Minute()), col)
	return true, nil
}
