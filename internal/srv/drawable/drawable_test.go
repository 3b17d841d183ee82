package drawable

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/oledpi/internal/images"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/jypelle/oledpi/internal/srv/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var berlin = mustLoadLocation("Europe/Berlin")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func newFrame() *screen.Frame {
	return screen.NewFrame(screen.Width, screen.Height)
}

func litPixels(f *screen.Frame) int {
	lit := 0
	for y := 0; y < screen.Height; y++ {
		for x := 0; x < screen.Width; x++ {
			c := f.RGBAAt(x, y)
			if c.R|c.G|c.B != 0 {
				lit++
			}
		}
	}
	return lit
}

func TestSimpleScreensaverExpiresAfterThousandFrames(t *testing.T) {
	s := NewSimpleScreensaver("star", images.Star(), 0)
	assert.Equal(t, "star", s.Id())
	d := s.NewDrawable()
	frame := newFrame()
	rng := rand.New(rand.NewSource(17381))

	for i := 0; i < 1000; i++ {
		dirty, err := d.Draw(frame, rng)
		require.NoError(t, err)
		assert.True(t, dirty)
	}
	assert.False(t, d.Expired())
	_, _ = d.Draw(frame, rng)
	assert.True(t, d.Expired())
	assert.Greater(t, litPixels(frame), 1000)

	assert.False(t, s.NewDrawable().Expired())
}

func TestTimeDisplayRedrawsOncePerMinute(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 4, 9, 15, 10, 0, berlin))
	d := NewTimeDisplay(clock, berlin)
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	dirty, err := d.Draw(frame, rng)
	require.NoError(t, err)
	assert.True(t, dirty)
	assert.Greater(t, litPixels(frame), 0)

	clock.Advance(30 * time.Second)
	dirty, _ = d.Draw(frame, rng)
	assert.False(t, dirty)

	d.Handle(screen.Redraw)
	dirty, _ = d.Draw(frame, rng)
	assert.True(t, dirty)

	clock.Advance(time.Minute)
	dirty, _ = d.Draw(frame, rng)
	assert.True(t, dirty)

	// same minute one hour later
	clock.Advance(time.Hour)
	dirty, _ = d.Draw(frame, rng)
	assert.True(t, dirty)
	assert.False(t, d.Expired())
}

func TestFlash(t *testing.T) {
	d := NewFlash(images.TeddyBear())
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	for i := 1; i <= 110; i++ {
		dirty, err := d.Draw(frame, rng)
		require.NoError(t, err)
		assert.Equal(t, i <= 73, dirty, "frame %d", i)
		assert.False(t, d.Expired())
	}
	_, _ = d.Draw(frame, rng)
	assert.True(t, d.Expired())
}

func TestNotificationAlertPhases(t *testing.T) {
	d := NewNotificationAlert(images.Octocat(), []string{"oledpi #12", " Flicker on boot"})
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	require.Equal(t, 105, d.Frames())
	for i := 0; i < 70; i++ {
		dirty, err := d.Draw(frame, rng)
		require.NoError(t, err)
		assert.True(t, dirty, "frame %d", i)
		assert.False(t, d.Expired())
	}
	dirty, _ := d.Draw(frame, rng)
	assert.True(t, dirty)
	dirty, _ = d.Draw(frame, rng)
	assert.False(t, dirty)
	for i := 72; i < 105; i++ {
		assert.False(t, d.Expired())
		_, _ = d.Draw(frame, rng)
	}
	assert.True(t, d.Expired())
}

type blankRoot struct {
	screen.Base
}

func (blankRoot) Draw(c screen.Canvas, rng *rand.Rand) (bool, error) {
	return false, nil
}

type silentBuzzer struct{}

func (silentBuzzer) Enable()  {}
func (silentBuzzer) Disable() {}

func TestNotificationAlertRepaintsAfterPop(t *testing.T) {
	ctx := screen.NewContext(clockwork.NewFakeClock(), time.UTC, screen.NewRegistry(), silentBuzzer{}, "root", blankRoot{})
	alert := NewNotificationAlert(images.Octocat(), []string{"oledpi #12", " Flicker on boot"})
	ctx.Push(alert)
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	coverAndClose := func() {
		ctx.Push(NewFlash(images.TeddyBear()))
		ctx.Tick(frame, rng)
		require.True(t, ctx.PopAndClear(frame))
		require.Zero(t, litPixels(frame))

		dirty := ctx.Tick(frame, rng)
		assert.True(t, dirty)
		assert.Greater(t, litPixels(frame), 0)
		assert.Equal(t, 2, ctx.ActiveCount())

		// back to the cheap path
		assert.False(t, ctx.Tick(frame, rng))
	}

	// text phase, first page
	for i := 0; i < 75; i++ {
		ctx.Tick(frame, rng)
	}
	coverAndClose()

	// past the last page, until the alert expires
	for alert.frames < alert.Frames()-5 {
		ctx.Tick(frame, rng)
	}
	coverAndClose()
}

func TestNotificationAlertPaginates(t *testing.T) {
	lines := make([]string, 12)
	for i := range lines {
		lines[i] = "line"
	}
	d := NewNotificationAlert(images.Octocat(), lines)
	assert.Equal(t, 40+30+2*35, d.Frames())
}

func TestTotpPages(t *testing.T) {
	accounts := make([]TotpAccount, 7)
	for i := range accounts {
		accounts[i] = TotpAccount{Label: "GitHub - me", Secret: "JBSWY3DPEHPK3PXP"}
	}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 4, 9, 15, 10, 0, time.UTC))
	s := NewTotp(accounts, clock)
	d := s.NewDrawable()
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	dirty, err := d.Draw(frame, rng)
	require.NoError(t, err)
	assert.True(t, dirty)
	dirty, _ = d.Draw(frame, rng)
	assert.False(t, dirty)

	d.Handle(screen.NextPage)
	dirty, _ = d.Draw(frame, rng)
	assert.True(t, dirty)
	assert.Equal(t, 1, d.(*totpPage).page)

	d.Handle(screen.NextPage)
	assert.Equal(t, 0, d.(*totpPage).page)

	clock.Advance(30 * time.Second)
	dirty, _ = d.Draw(frame, rng)
	assert.True(t, dirty)
}

func TestTotpAccountName(t *testing.T) {
	assert.Equal(t, "GitHub", TotpAccount{Label: "GitHub - me"}.Name())
	assert.Equal(t, "Example", TotpAccount{Issuer: "Example Corp", Label: "x"}.Name())
	assert.Equal(t, "mailbox", TotpAccount{Label: "mailbox"}.Name())
}

func TestTotpInvalidSecret(t *testing.T) {
	s := NewTotp([]TotpAccount{{Issuer: "bad", Secret: "not base32 !"}}, clockwork.NewFakeClock())
	d := s.NewDrawable()
	dirty, err := d.Draw(newFrame(), rand.New(rand.NewSource(1)))
	assert.Error(t, err)
	assert.True(t, dirty)

	// reported once per period
	dirty, err = d.Draw(newFrame(), rand.New(rand.NewSource(1)))
	assert.NoError(t, err)
	assert.False(t, dirty)
}

func TestTotpRefreshesOncePerPeriod(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 4, 9, 15, 10, 0, time.UTC))
	d := NewTotp([]TotpAccount{{Issuer: "GitHub", Secret: "JBSWY3DPEHPK3PXP"}}, clock).NewDrawable()
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	dirty, err := d.Draw(frame, rng)
	require.NoError(t, err)
	assert.True(t, dirty)

	clock.Advance(19 * time.Second)
	dirty, _ = d.Draw(frame, rng)
	assert.False(t, dirty)
	assert.Equal(t, clock.Now().Unix()/totpPeriod, d.(*totpPage).step)

	clock.Advance(time.Second)
	dirty, _ = d.Draw(frame, rng)
	assert.True(t, dirty)

	d.Handle(screen.Redraw)
	dirty, _ = d.Draw(frame, rng)
	assert.True(t, dirty)
}

func TestQrCode(t *testing.T) {
	q := NewQrCode("WIFI:T:WPA;S:home;P:secret;;")
	d := q.NewDrawable()
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	dirty, err := d.Draw(frame, rng)
	require.NoError(t, err)
	assert.True(t, dirty)
	dirty, _ = d.Draw(frame, rng)
	assert.False(t, dirty)
	assert.Equal(t, screen.White, frame.RGBAAt(0, 0))
}

func TestQrCodeEncodingFailureReportedOnce(t *testing.T) {
	d := NewQrCode(strings.Repeat("x", 4000)).NewDrawable()
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	dirty, err := d.Draw(frame, rng)
	assert.Error(t, err)
	assert.True(t, dirty)
	for i := 0; i < 5; i++ {
		dirty, err = d.Draw(frame, rng)
		assert.NoError(t, err)
		assert.False(t, dirty)
	}
}

func TestStatus(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 4, 9, 15, 10, 0, time.UTC))
	calls := 0
	stats := func(ctx context.Context) (SystemStats, error) {
		calls++
		return SystemStats{Load1: 0.5, MemoryUsed: 40, DiskUsed: 70, Uptime: 50 * time.Hour, LastReading: clock.Now().Add(-time.Minute)}, nil
	}
	d := NewStatus(stats, clock).NewDrawable()
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < statusRefreshFrames; i++ {
		dirty, err := d.Draw(frame, rng)
		require.NoError(t, err)
		assert.Equal(t, i == 0, dirty)
	}
	_, _ = d.Draw(frame, rng)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "2d2h", formatUptime(50*time.Hour))
	assert.Equal(t, "0h05m", formatUptime(5*time.Minute))
}

type fakeSensors struct {
	latest   store.Reading
	readings []store.Reading
	err      error
}

func (s *fakeSensors) Latest(ctx context.Context) (store.Reading, error) {
	return s.latest, s.err
}

func (s *fakeSensors) Recent(ctx context.Context, n int) ([]store.Reading, error) {
	return s.readings, s.err
}

func TestMeasurementsDrawsOnce(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 4, 9, 15, 10, 0, berlin))
	readings := make([]store.Reading, 0, 288)
	for i := 0; i < 288; i++ {
		readings = append(readings, store.Reading{Celsius: 200 + i%30, Humidity: 450})
	}
	sensors := &fakeSensors{latest: store.Reading{Humidity: 471, Celsius: 268}, readings: readings}
	events := func() (*store.Events, error) {
		return &store.Events{Weekly: []store.Weekly{{Name: "Choir", Day: 1, Hour: 18, Minute: 30, Duration: 90}}}, nil
	}

	for _, mode := range []MeasurementsMode{DefaultMode, TempsMode, EventsMode} {
		m := NewMeasurements(mode, clock, berlin, sensors, events, 0)
		d := m.NewDrawable()
		frame := newFrame()
		rng := rand.New(rand.NewSource(1))

		dirty, err := d.Draw(frame, rng)
		require.NoError(t, err, m.Id())
		assert.True(t, dirty)
		assert.Greater(t, litPixels(frame), 100)

		dirty, _ = d.Draw(frame, rng)
		assert.False(t, dirty)
		d.Handle(screen.Redraw)
		dirty, _ = d.Draw(frame, rng)
		assert.True(t, dirty)
		assert.False(t, d.Expired())
	}
}

func TestMeasurementsTimeout(t *testing.T) {
	sensors := &fakeSensors{latest: store.Reading{Humidity: 471, Celsius: 268}}
	events := func() (*store.Events, error) { return &store.Events{}, nil }
	d := NewMeasurements(DefaultMode, clockwork.NewFakeClock(), time.UTC, sensors, events, 3).NewDrawable()
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 3; i++ {
		_, _ = d.Draw(frame, rng)
		assert.False(t, d.Expired())
	}
	_, _ = d.Draw(frame, rng)
	assert.True(t, d.Expired())
}

func TestMeasurementsReportsSensorErrors(t *testing.T) {
	sensors := &fakeSensors{err: store.ErrNoReading}
	events := func() (*store.Events, error) { return &store.Events{}, nil }
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	d := NewMeasurements(DefaultMode, clock, time.UTC, sensors, events, 0).NewDrawable()
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	dirty, err := d.Draw(frame, rng)
	assert.True(t, dirty)
	assert.True(t, errors.Is(err, store.ErrNoReading))
	assert.Greater(t, litPixels(frame), 0)

	dirty, err = d.Draw(frame, rng)
	assert.False(t, dirty)
	assert.NoError(t, err)

	// retried with the next minute
	clock.Advance(time.Minute)
	dirty, err = d.Draw(frame, rng)
	assert.True(t, dirty)
	assert.Error(t, err)
}

func TestMeasurementsWithoutEventsFile(t *testing.T) {
	sensors := &fakeSensors{latest: store.Reading{Humidity: 471, Celsius: 268}}
	events := func() (*store.Events, error) {
		return store.LoadEvents(filepath.Join(t.TempDir(), "events.json"))
	}
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 4, 10, 0, 0, 0, berlin))
	d := NewMeasurements(DefaultMode, clock, berlin, sensors, events, 0).NewDrawable()
	frame := newFrame()
	rng := rand.New(rand.NewSource(1))

	dirty, err := d.Draw(frame, rng)
	require.NoError(t, err)
	assert.True(t, dirty)
	assert.Greater(t, litPixels(frame), 100)

	// the clock on the dashboard follows the minutes
	clock.Advance(time.Minute)
	dirty, err = d.Draw(frame, rng)
	require.NoError(t, err)
	assert.True(t, dirty)
	dirty, _ = d.Draw(frame, rng)
	assert.False(t, dirty)
}

func TestHourlyRanges(t *testing.T) {
	readings := []store.Reading{
		{Celsius: 210}, {Celsius: 190}, {Celsius: 205}, {Celsius: 500}, {Celsius: 200}, {Celsius: 195},
		{Celsius: 900}, {Celsius: 901}, {Celsius: 902}, {Celsius: 100}, {Celsius: 903}, {Celsius: 904},
	}
	ranges := hourlyRanges(readings)
	require.Len(t, ranges, 2)
	assert.Equal(t, hourRange{min: 195, max: 210}, ranges[0])
	// outliers fall back to the previous hour maximum
	assert.Equal(t, hourRange{min: 210, max: 210}, ranges[1])
}

func TestUntilNext(t *testing.T) {
	now := time.Date(2024, 3, 4, 9, 15, 10, 0, berlin)
	today := screen.JulianDay(now)
	occurrences := []store.Occurrence{
		{Name: "past", Hour: 8, Minute: 0, Day: today},
		{Name: "soon", Hour: 11, Minute: 45, Day: today},
	}
	assert.Equal(t, "2h30m", untilNext(now, occurrences))
	assert.Equal(t, "", untilNext(now, nil))
	assert.Equal(t, "?", untilNext(now, []store.Occurrence{{Hour: 9, Minute: 15, Day: today}}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo", 6))
	assert.Equal(t, "h", Truncate("héllo", 2))
	assert.Equal(t, "short", Truncate("short", 16))
}
