package screen

import (
	"slices"
	"time"

	"github.com/jypelle/oledpi/internal/srv/event"
	"github.com/sirupsen/logrus"
)

const (
	MenuIdleTimeout = 10 * time.Second
	maxMenuDepth    = 3
)

// Transition is one entry of the menu table.
type Transition struct {
	Path []event.ButtonId
	// Action reports whether the transition completed. PopLast and Clear
	// only apply to completed transitions.
	Action  func() bool
	PopLast bool
	Clear   bool
}

// Menu accumulates button presses into a path and runs the transition whose
// path matches exactly.
type Menu struct {
	transitions []Transition
	path        []event.ButtonId
	lastPress   time.Time
}

func NewMenu(transitions []Transition) *Menu {
	return &Menu{transitions: transitions}
}

func (m *Menu) Path() []event.ButtonId {
	return append([]event.ButtonId(nil), m.path...)
}

// Press appends button to the path and reports whether a transition matched.
func (m *Menu) Press(button event.ButtonId, now time.Time) bool {
	m.lastPress = now
	m.path = append(m.path, button)
	logrus.Debugf("Menu path: %v", m.path)

	for _, t := range m.transitions {
		if !slices.Equal(t.Path, m.path) {
			continue
		}
		if t.Action() {
			if t.PopLast {
				m.path = m.path[:len(m.path)-1]
			}
			if t.Clear {
				m.path = m.path[:0]
			}
		}
		return true
	}

	// no transition is longer than maxMenuDepth
	if len(m.path) > maxMenuDepth {
		m.path = m.path[:0]
	}
	return false
}

// Expire forgets the path once the buttons have been idle long enough.
func (m *Menu) Expire(now time.Time) {
	if len(m.path) > 0 && now.Sub(m.lastPress) >= MenuIdleTimeout {
		logrus.Debugf("Menu path %v expired", m.path)
		m.path = m.path[:0]
	}
}
