package screen

import (
	"time"
)

// Host is the part of the context a schedule may act on.
type Host interface {
	DoDraw(d Drawable)
	DoAction(id string)
	ActiveCount() int
	EnableBuzzer()
}

type Schedule interface {
	Check(h Host, now time.Time) bool
	Execute(h Host, now time.Time)
}

func CheckAndDo(s Schedule, h Host, now time.Time) {
	if s.Check(h, now) {
		s.Execute(h, now)
	}
}

// JulianDay returns the julian day number of the calendar date of t.
func JulianDay(t time.Time) int {
	date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(date.Unix()/86400) + 2440588
}
