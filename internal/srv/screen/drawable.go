package screen

import (
	"math/rand"
)

// Drawable is anything that can occupy the screen.
type Drawable interface {
	// Draw renders one frame into c and reports whether c changed.
	Draw(c Canvas, rng *rand.Rand) (bool, error)
	// Expired reports whether the drawable should be removed from the screen.
	Expired() bool
	// Handle delivers a command sent while the drawable is on top.
	Handle(cmd Command)
}

// Base provides the default Expired and Handle behaviours.
type Base struct{}

func (Base) Expired() bool { return false }

func (Base) Handle(Command) {}

type Command int

const (
	// NextPage asks a paginated drawable to show its next page.
	NextPage Command = iota
	// Redraw asks a drawable to repaint fully on its next draw.
	Redraw
)

func (c Command) String() string {
	switch c {
	case NextPage:
		return "next_page"
	case Redraw:
		return "redraw"
	default:
		return "unknown"
	}
}

// Screensaver is a drawable factory addressable by id.
type Screensaver interface {
	Id() string
	NewDrawable() Drawable
}
