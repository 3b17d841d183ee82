package srv

import (
	"github.com/jypelle/oledpi/internal/srv/event"
	"github.com/jypelle/oledpi/internal/srv/screen"
)

func path(buttons ...event.ButtonId) []event.ButtonId {
	return buttons
}

// menuTransitions is the button sequence table:
//
//	1      measurements
//	1 2    temperatures history
//	1 3    upcoming events
//	2      close the current screen
//	3      totp codes
//	3 1    next totp page
//	3 2 1  buzzer on
//	3 2 3  buzzer off
//	3 3    raspberry screensaver
func (s *ServerApp) menuTransitions() []screen.Transition {
	pushAction := func(id string) func() bool {
		return func() bool {
			s.context.DoAction(id)
			return true
		}
	}
	replaceAction := func(id string) func() bool {
		return func() bool {
			s.context.PopAndClear(s.displayDevice.Canvas())
			s.context.DoAction(id)
			return true
		}
	}

	return []screen.Transition{
		{Path: path(event.BUTTON_1), Action: pushAction("measurements")},
		{Path: path(event.BUTTON_1, event.BUTTON_2), Action: replaceAction("measurements_temps"), PopLast: true},
		{Path: path(event.BUTTON_1, event.BUTTON_3), Action: replaceAction("measurements_events"), PopLast: true},
		{Path: path(event.BUTTON_2), Action: s.closeTop, Clear: true},
		{Path: path(event.BUTTON_3), Action: pushAction("totp")},
		{Path: path(event.BUTTON_3, event.BUTTON_1), Action: func() bool {
			s.context.Send(screen.NextPage)
			return true
		}, PopLast: true},
		{Path: path(event.BUTTON_3, event.BUTTON_2, event.BUTTON_1), Action: func() bool {
			s.context.EnableBuzzer()
			return true
		}, PopLast: true},
		{Path: path(event.BUTTON_3, event.BUTTON_2, event.BUTTON_3), Action: func() bool {
			s.context.DisableBuzzer()
			return true
		}, PopLast: true},
		{Path: path(event.BUTTON_3, event.BUTTON_3), Action: pushAction("rpi"), Clear: true},
	}
}

// closeTop pops the current screen, the root screen is never closed.
func (s *ServerApp) closeTop() bool {
	if s.context.ActiveCount() <= 1 {
		return false
	}
	s.context.PopAndClear(s.displayDevice.Canvas())
	s.context.DisableBuzzer()
	s.displayDevice.Flush()
	return true
}
