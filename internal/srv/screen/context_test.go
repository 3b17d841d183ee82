package screen

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDrawable struct {
	Base
	dirty    bool
	err      error
	expired  bool
	draws    int
	commands []Command
}

func (d *fakeDrawable) Draw(c Canvas, rng *rand.Rand) (bool, error) {
	d.draws++
	return d.dirty, d.err
}

func (d *fakeDrawable) Expired() bool { return d.expired }

func (d *fakeDrawable) Handle(cmd Command) { d.commands = append(d.commands, cmd) }

type fakeScreensaver struct {
	id      string
	created []*fakeDrawable
}

func (s *fakeScreensaver) Id() string { return s.id }

func (s *fakeScreensaver) NewDrawable() Drawable {
	d := &fakeDrawable{dirty: true}
	s.created = append(s.created, d)
	return d
}

type fakeBuzzer struct {
	enabled  bool
	disables int
}

func (b *fakeBuzzer) Enable() { b.enabled = true }

func (b *fakeBuzzer) Disable() {
	b.enabled = false
	b.disables++
}

type clearCountingCanvas struct {
	*Frame
	clears int
}

func (c *clearCountingCanvas) Clear(col color.Color) {
	c.clears++
	c.Frame.Clear(col)
}

func newTestContext(root Drawable, screensavers ...Screensaver) (*Context, *fakeBuzzer, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	buzzer := &fakeBuzzer{}
	ctx := NewContext(clock, time.UTC, NewRegistry(screensavers...), buzzer, "time", root)
	return ctx, buzzer, clock
}

func TestTickWithoutEventsKeepsDepth(t *testing.T) {
	root := &fakeDrawable{}
	ctx, _, _ := newTestContext(root)
	frame := NewFrame(Width, Height)
	rng := rand.New(rand.NewSource(1))

	ctx.Push(&fakeDrawable{dirty: true})
	for i := 0; i < 50; i++ {
		assert.True(t, ctx.Tick(frame, rng))
		assert.Equal(t, 2, ctx.ActiveCount())
	}
}

func TestTickReportsRootDirtiness(t *testing.T) {
	root := &fakeDrawable{}
	ctx, _, _ := newTestContext(root)
	frame := NewFrame(Width, Height)
	rng := rand.New(rand.NewSource(1))

	assert.False(t, ctx.Tick(frame, rng))
	root.dirty = true
	assert.True(t, ctx.Tick(frame, rng))
	assert.Equal(t, 2, root.draws)
}

func TestTickPopsConsecutiveExpiredDrawables(t *testing.T) {
	root := &fakeDrawable{}
	ctx, buzzer, _ := newTestContext(root)
	frame := NewFrame(Width, Height)

	live := &fakeDrawable{dirty: true}
	ctx.Push(live)
	ctx.Push(&fakeDrawable{expired: true})
	ctx.Push(&fakeDrawable{expired: true})
	require.Equal(t, 4, ctx.ActiveCount())

	assert.True(t, ctx.Tick(frame, rand.New(rand.NewSource(1))))
	assert.Equal(t, 2, ctx.ActiveCount())
	assert.Equal(t, 1, live.draws)
	assert.Equal(t, 2, buzzer.disables)
	assert.Equal(t, []Command{Redraw}, live.commands)
}

func TestTickNeverPopsRoot(t *testing.T) {
	root := &fakeDrawable{expired: true, dirty: true}
	ctx, _, _ := newTestContext(root)

	assert.True(t, ctx.Tick(NewFrame(Width, Height), rand.New(rand.NewSource(1))))
	assert.Equal(t, 1, ctx.ActiveCount())
}

func TestTickTreatsDrawErrorAsDirty(t *testing.T) {
	root := &fakeDrawable{}
	ctx, _, _ := newTestContext(root)
	ctx.Push(&fakeDrawable{err: errors.New("no data")})

	assert.True(t, ctx.Tick(NewFrame(Width, Height), rand.New(rand.NewSource(1))))
	assert.Equal(t, 2, ctx.ActiveCount())
}

func TestPopAndClear(t *testing.T) {
	root := &fakeDrawable{}
	ctx, _, _ := newTestContext(root)
	canvas := &clearCountingCanvas{Frame: NewFrame(Width, Height)}

	assert.False(t, ctx.PopAndClear(canvas))
	assert.Equal(t, 1, ctx.ActiveCount())
	assert.Equal(t, 0, canvas.clears)

	ctx.Push(&fakeDrawable{})
	assert.True(t, ctx.PopAndClear(canvas))
	assert.Equal(t, 1, ctx.ActiveCount())
	assert.Equal(t, 1, canvas.clears)
}

func TestDoAction(t *testing.T) {
	star := &fakeScreensaver{id: "star"}
	ctx, _, _ := newTestContext(&fakeDrawable{}, star)

	ctx.DoAction("star")
	assert.Equal(t, 2, ctx.ActiveCount())
	assert.Equal(t, "star", ctx.TopId())

	ctx.DoAction("star")
	assert.Equal(t, 3, ctx.ActiveCount())
	require.Len(t, star.created, 2)
	assert.NotSame(t, star.created[0], star.created[1])

	ctx.DoAction("unknown")
	assert.Equal(t, 3, ctx.ActiveCount())
}

func TestSendDeliversToTopBeforeDraw(t *testing.T) {
	root := &fakeDrawable{}
	ctx, _, _ := newTestContext(root)
	top := &fakeDrawable{}
	ctx.Push(top)

	ctx.Send(NextPage)
	assert.Empty(t, top.commands)
	ctx.Tick(NewFrame(Width, Height), rand.New(rand.NewSource(1)))
	assert.Equal(t, []Command{NextPage}, top.commands)
	assert.Empty(t, root.commands)

	ctx.Tick(NewFrame(Width, Height), rand.New(rand.NewSource(1)))
	assert.Len(t, top.commands, 1)
}

type countingSchedule struct {
	due      bool
	executed int
	seen     time.Time
}

func (s *countingSchedule) Check(h Host, now time.Time) bool { return s.due }

func (s *countingSchedule) Execute(h Host, now time.Time) {
	s.executed++
	s.seen = now
	h.DoDraw(&fakeDrawable{dirty: true})
}

func TestTickRunsSchedulesBeforeDraw(t *testing.T) {
	root := &fakeDrawable{}
	ctx, _, clock := newTestContext(root)
	s := &countingSchedule{}
	ctx.AddSchedule(s)
	frame := NewFrame(Width, Height)
	rng := rand.New(rand.NewSource(1))

	assert.False(t, ctx.Tick(frame, rng))
	assert.Equal(t, 0, s.executed)

	s.due = true
	assert.True(t, ctx.Tick(frame, rng))
	assert.Equal(t, 1, s.executed)
	assert.True(t, clock.Now().Equal(s.seen))
	assert.Equal(t, 2, ctx.ActiveCount())
	assert.Equal(t, 1, root.draws)
}

func TestFrameFillClipsToBounds(t *testing.T) {
	frame := NewFrame(4, 4)
	frame.Fill(image.Rect(2, 2, 10, 10), White)
	assert.Equal(t, White, frame.RGBAAt(3, 3))
	assert.Equal(t, uint8(0), frame.RGBAAt(1, 1).A)

	frame.Clear(Black)
	assert.Equal(t, Black, frame.RGBAAt(3, 3))
}

func TestRGB565RoundTrip(t *testing.T) {
	assert.Equal(t, uint16(0xffff), ToRGB565(RGB565(31, 63, 31)))
	assert.Equal(t, uint16(0), ToRGB565(Black))
	assert.Equal(t, uint16(0xf800), ToRGB565(RGB565(31, 0, 0)))
	assert.Equal(t, uint16(0x07e0), ToRGB565(RGB565(0, 63, 0)))
}
