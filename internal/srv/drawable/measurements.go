package drawable

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/jypelle/oledpi/internal/srv/store"
)

const (
	// one day of readings taken every five minutes
	recentReadings  = 288
	readingsPerHour = 6
	calendarDays    = 5
	eventListSize   = 7
)

type MeasurementsMode int

const (
	DefaultMode MeasurementsMode = iota
	TempsMode
	EventsMode
)

type SensorStore interface {
	Latest(ctx context.Context) (store.Reading, error)
	Recent(ctx context.Context, n int) ([]store.Reading, error)
}

type EventsLoader func() (*store.Events, error)

var dayNames = [7]string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

var eventColors = []color.RGBA{
	screen.RGB565(0x1f, 0x3f, 0x00),
	screen.RGB565(0x1f, 0x00, 0x1f),
	screen.RGB565(0x00, 0x3f, 0x1f),
	screen.RGB565(0x1f, 0x00, 0x00),
	screen.RGB565(0x00, 0x3f, 0x00),
	screen.RGB565(0x00, 0x00, 0x1f),
	screen.RGB565(0x1f, 0x3f, 0x1f),
}

var (
	defaultEventColor = screen.RGB565(0x1f, 0x3f, 0x02)
	nowColor          = screen.RGB565(0x1f, 0x00, 0x1f)
)

// degree sign and C drawn next to the temperature
var celsiusPixels = []image.Point{
	{118, 49}, {119, 49}, {117, 50}, {117, 51}, {120, 50}, {120, 51}, {118, 52}, {119, 52},
	{122, 50}, {122, 51}, {122, 52}, {123, 49}, {124, 49}, {123, 53}, {124, 53},
}

// Measurements is the sensor dashboard: clock, latest reading, a five days
// calendar and, depending on the mode, the temperature history or the list
// of upcoming events.
type Measurements struct {
	mode     MeasurementsMode
	clock    clockwork.Clock
	location *time.Location
	sensors  SensorStore
	events   EventsLoader
	// timeout in frames, 0 keeps the dashboard until popped
	timeout int
}

func NewMeasurements(mode MeasurementsMode, clock clockwork.Clock, location *time.Location, sensors SensorStore, events EventsLoader, timeout int) *Measurements {
	return &Measurements{
		mode:     mode,
		clock:    clock,
		location: location,
		sensors:  sensors,
		events:   events,
		timeout:  timeout,
	}
}

func (m *Measurements) Id() string {
	switch m.mode {
	case TempsMode:
		return "measurements_temps"
	case EventsMode:
		return "measurements_events"
	default:
		return "measurements"
	}
}

func (m *Measurements) NewDrawable() screen.Drawable {
	return &measurementsDraw{Measurements: m}
}

type measurementsDraw struct {
	*Measurements
	drawn bool
	// unix minute of the last draw
	minute int64
	frames int
}

func (d *measurementsDraw) Expired() bool {
	return d.timeout > 0 && d.frames > d.timeout
}

func (d *measurementsDraw) Handle(cmd screen.Command) {
	if cmd == screen.Redraw {
		d.drawn = false
	}
}

func (d *measurementsDraw) Draw(c screen.Canvas, rng *rand.Rand) (bool, error) {
	d.frames++
	now := d.clock.Now().In(d.location)
	minute := now.Unix() / 60
	if d.drawn && minute == d.minute {
		return false, nil
	}
	// failures are shown and reported once per minute
	d.drawn = true
	d.minute = minute

	events, err := d.events()
	if err != nil {
		return drawFailure(c, now, "events unreadable", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	latest, err := d.sensors.Latest(ctx)
	if err != nil {
		return drawFailure(c, now, "no sensor reading", err)
	}
	readings, err := d.sensors.Recent(ctx, recentReadings)
	if err != nil {
		return drawFailure(c, now, "no sensor reading", err)
	}
	occurrences, err := events.Upcoming(now)
	if err != nil {
		return drawFailure(c, now, "bad events", err)
	}

	c.Clear(screen.Black)
	drawClock(c, now)
	drawReading(c, latest)
	drawCalendar(c, now, occurrences)

	switch d.mode {
	case EventsMode:
		drawEventList(c, now, occurrences)
	case TempsMode:
		drawTemperatures(c, readings)
	}
	return true, nil
}

// drawFailure keeps the dashboard recognizable when its data is missing.
func drawFailure(c screen.Canvas, now time.Time, label string, err error) (bool, error) {
	c.Clear(screen.Black)
	drawClock(c, now)
	AddCenteredLabel(c, mediumFace, 70, label, nowColor)
	return true, err
}

func drawClock(c screen.Canvas, now time.Time) {
	AddLabel(c, largeFace, 66, 24, fmt.Sprintf("%02d", now.Hour()), screen.White)
	AddLabel(c, largeFace, 100, 24, fmt.Sprintf("%02d", now.Minute()), screen.White)
	c.Fill(image.Rect(93, 14, 97, 18), screen.White)
	c.Fill(image.Rect(93, 22, 97, 26), screen.White)
}

func drawReading(c screen.Canvas, r store.Reading) {
	AddLabel(c, largeFace, 67, 60, fmt.Sprintf("%02d", r.Humidity/10), screen.White)
	AddLabel(c, smallFace, 85, 60, "%", screen.White)
	AddLabel(c, largeFace, 99, 60, fmt.Sprintf("%02d", r.Celsius/10), screen.White)
	c.Set(117, 60, screen.White)
	AddLabel(c, smallFace, 119, 60, fmt.Sprintf("%d", r.Celsius%10), screen.White)
	for _, p := range celsiusPixels {
		c.Set(p.X, p.Y, screen.White)
	}
}

// drawCalendar plots five days from today, one column per six minutes and
// one row per hour, and the time left until the next event.
func drawCalendar(c screen.Canvas, now time.Time, occurrences []store.Occurrence) {
	c.Fill(image.Rect(2, 8, 3, 32), screen.White)
	c.Set(1, 16, screen.White)
	c.Set(1, 28, screen.White)

	weekday := store.MondayWeekday(now)
	today := screen.JulianDay(now)
	for i := 0; i < calendarDays; i++ {
		AddLabel(c, smallFace, 4+12*i, 7, dayNames[(weekday+i)%7], screen.White)
	}

	c.Set(4+now.Minute()/6, 8+now.Hour(), nowColor)

	for idx, o := range occurrences {
		offset := o.Day - today
		if offset < 0 || offset >= calendarDays {
			continue
		}
		col := defaultEventColor
		if idx < len(eventColors) {
			col = eventColors[idx]
		}
		start := o.Hour*60 + o.Minute
		end := start + o.Duration
		for slot := 0; slot < 24*10; slot++ {
			from := slot * 6
			if from+6 > start && from < end {
				c.Set(4+offset*12+slot%10, 8+slot/10, col)
			}
		}
	}

	if text := untilNext(now, occurrences); text != "" {
		AddLabel(c, largeFace, 2, 60, text, screen.White)
	}
}

func untilNext(now time.Time, occurrences []store.Occurrence) string {
	today := screen.JulianDay(now)
	for _, o := range occurrences {
		offset := o.Day - today
		if offset < 0 || offset >= calendarDays {
			continue
		}
		start := o.Start(now.Location())
		if start.Before(now.Truncate(time.Minute)) {
			continue
		}
		left := start.Sub(now.Truncate(time.Minute))
		hours := int(left.Hours())
		minutes := int(left.Minutes()) % 60
		switch {
		case hours >= 24:
			return ""
		case hours > 0:
			return fmt.Sprintf("%dh%dm", hours, minutes)
		case minutes > 0:
			return fmt.Sprintf("%dm", minutes)
		default:
			return "?"
		}
	}
	return ""
}

func drawEventList(c screen.Canvas, now time.Time, occurrences []store.Occurrence) {
	today := screen.JulianDay(now)
	for i, o := range occurrences[:min(eventListSize, len(occurrences))] {
		y := 64 + 9*i + 5
		if o.Day-today > 7 {
			start := o.Start(now.Location())
			AddLabel(c, smallFace, 0, y, fmt.Sprintf("%d.%d.", start.Day(), int(start.Month())), screen.White)
		} else {
			AddLabel(c, smallFace, 0, y, dayNames[o.Weekday], screen.White)
		}
		AddLabel(c, smallFace, 14, y, Truncate(o.Name, 19), eventColors[i])
	}
}

type hourRange struct {
	min, max int
}

// hourlyRanges groups readings, newest first, by hour and keeps the second
// lowest and second highest value of each hour to drop outliers.
func hourlyRanges(readings []store.Reading) []hourRange {
	ranges := make([]hourRange, 0, len(readings)/readingsPerHour+1)
	for start := 0; start < len(readings); start += readingsPerHour {
		chunk := readings[start:min(start+readingsPerHour, len(readings))]
		temps := make([]int, 0, len(chunk))
		for _, r := range chunk {
			temps = append(temps, r.Celsius)
		}
		slices.Sort(temps)

		lo, hi := temps[0], temps[len(temps)-1]
		if len(temps) >= 3 {
			lo, hi = temps[1], temps[len(temps)-2]
		}
		// sanity check value
		if hi > 400 {
			if len(ranges) == 0 {
				hi = lo
			} else {
				hi = ranges[len(ranges)-1].max
			}
			lo = min(lo, hi)
		}
		ranges = append(ranges, hourRange{min: lo, max: hi})
	}
	return ranges
}

func drawTemperatures(c screen.Canvas, readings []store.Reading) {
	ranges := hourlyRanges(readings)
	if len(ranges) == 0 {
		return
	}
	globalMin, globalMax := ranges[0].min, ranges[0].max
	for _, r := range ranges {
		globalMin = min(globalMin, r.min)
		globalMax = max(globalMax, r.max)
	}
	diff := max(globalMax-globalMin, 1)

	slices.Reverse(ranges)
	for i, r := range ranges {
		y1 := 64 + (globalMax-r.max)*63/diff
		y2 := 64 + (globalMax-r.min)*63/diff
		c.Fill(image.Rect(i*2, y1, i*2+2, y2+1), screen.White)
	}
	AddLabel(c, smallFace, 100, 74, fmt.Sprintf("%.1f", float64(globalMax)/10), screen.White)
	AddLabel(c, smallFace, 100, 114, fmt.Sprintf("%.1f", float64(globalMin)/10), screen.White)
}
