package screen

import (
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

type Buzzer interface {
	Enable()
	Disable()
}

type entry struct {
	id       string
	drawable Drawable
}

// Context owns the stack of active drawables. The bottom entry is the root
// and is never removed.
type Context struct {
	clock     clockwork.Clock
	location  *time.Location
	registry  *Registry
	buzzer    Buzzer
	schedules []Schedule

	active   []entry
	commands []Command
}

func NewContext(clock clockwork.Clock, location *time.Location, registry *Registry, buzzer Buzzer, rootId string, root Drawable) *Context {
	return &Context{
		clock:    clock,
		location: location,
		registry: registry,
		buzzer:   buzzer,
		active:   []entry{{id: rootId, drawable: root}},
	}
}

func (ctx *Context) AddSchedule(s Schedule) {
	ctx.schedules = append(ctx.schedules, s)
}

func (ctx *Context) Now() time.Time {
	return ctx.clock.Now().In(ctx.location)
}

func (ctx *Context) Push(d Drawable) {
	ctx.push("", d)
}

func (ctx *Context) push(id string, d Drawable) {
	ctx.active = append(ctx.active, entry{id: id, drawable: d})
	ctx.commands = nil
}

// DoDraw is Push as seen by schedules.
func (ctx *Context) DoDraw(d Drawable) {
	ctx.Push(d)
}

// DoAction pushes a fresh drawable of the screensaver registered with id.
func (ctx *Context) DoAction(id string) {
	s, ok := ctx.registry.Lookup(id)
	if !ok {
		logrus.Warnf("Screensaver %s not found", id)
		return
	}
	logrus.Debugf("Show screensaver %s", id)
	ctx.push(id, s.NewDrawable())
}

func (ctx *Context) ActiveCount() int {
	return len(ctx.active)
}

// TopId returns the id of the drawable on top, empty when it was pushed directly.
func (ctx *Context) TopId() string {
	return ctx.active[len(ctx.active)-1].id
}

func (ctx *Context) EnableBuzzer() {
	ctx.buzzer.Enable()
}

func (ctx *Context) DisableBuzzer() {
	ctx.buzzer.Disable()
}

// Send queues a command for the drawable currently on top.
func (ctx *Context) Send(cmd Command) {
	ctx.commands = append(ctx.commands, cmd)
}

// PopAndClear removes the top drawable and blanks the canvas.
// Nothing happens when only the root is left.
func (ctx *Context) PopAndClear(c Canvas) bool {
	if !ctx.pop() {
		return false
	}
	c.Clear(Black)
	return true
}

func (ctx *Context) pop() bool {
	if len(ctx.active) <= 1 {
		return false
	}
	ctx.active[len(ctx.active)-1] = entry{}
	ctx.active = ctx.active[:len(ctx.active)-1]
	ctx.commands = []Command{Redraw}
	return true
}

// Tick runs the schedules then draws the top drawable, removing expired ones
// first. It reports whether the canvas must be flushed.
func (ctx *Context) Tick(c Canvas, rng *rand.Rand) bool {
	now := ctx.Now()
	for _, s := range ctx.schedules {
		CheckAndDo(s, ctx, now)
	}

	if len(ctx.active) == 0 {
		return false
	}

	for ctx.active[len(ctx.active)-1].drawable.Expired() && ctx.pop() {
		ctx.buzzer.Disable()
	}

	top := ctx.active[len(ctx.active)-1].drawable
	for _, cmd := range ctx.commands {
		top.Handle(cmd)
	}
	ctx.commands = nil

	dirty, err := top.Draw(c, rng)
	if err != nil {
		logrus.Warnf("Unable to draw screen: %v", err)
		return true
	}
	return dirty
}
