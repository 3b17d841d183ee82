package schedule

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/sirupsen/logrus"
)

// Reminder shows a screensaver at a fixed time of day, only when nothing
// else is on screen.
type Reminder struct {
	Hour          int
	Minute        int
	ScreensaverId string
	Beep          bool

	// unix minute of the last fire
	lastFired atomic.Int64
}

func NewReminder(hour, minute int, screensaverId string, beep bool) *Reminder {
	return &Reminder{Hour: hour, Minute: minute, ScreensaverId: screensaverId, Beep: beep}
}

func (r *Reminder) Check(h screen.Host, now time.Time) bool {
	if now.Hour() != r.Hour || now.Minute() != r.Minute || h.ActiveCount() != 1 {
		return false
	}
	minute := now.Unix() / 60
	last := r.lastFired.Load()
	return last != minute && r.lastFired.CompareAndSwap(last, minute)
}

func (r *Reminder) Execute(h screen.Host, now time.Time) {
	logrus.Infof("Reminder %02d:%02d shows %s", r.Hour, r.Minute, r.ScreensaverId)
	h.DoAction(r.ScreensaverId)
	if r.Beep {
		h.EnableBuzzer()
	}
}

// DayReminder pushes a drawable at several times of some weekdays, at most
// once per calendar day.
type DayReminder struct {
	Weekdays    []time.Weekday
	Hour        int
	Minutes     []int
	NewDrawable func() screen.Drawable

	// julian day of the last fire
	lastDay atomic.Int64
}

func (r *DayReminder) Check(h screen.Host, now time.Time) bool {
	if !slices.Contains(r.Weekdays, now.Weekday()) || now.Hour() != r.Hour || !slices.Contains(r.Minutes, now.Minute()) {
		return false
	}
	day := int64(screen.JulianDay(now))
	last := r.lastDay.Load()
	return last != day && r.lastDay.CompareAndSwap(last, day)
}

func (r *DayReminder) Execute(h screen.Host, now time.Time) {
	logrus.Infof("Day reminder fired at %s", now.Format("15:04"))
	h.DoDraw(r.NewDrawable())
}
