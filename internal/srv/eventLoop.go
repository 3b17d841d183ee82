package srv

import (
	"fmt"
	"time"

	"github.com/jypelle/oledpi/apimodel"
	"github.com/jypelle/oledpi/internal/srv/event"
	"github.com/sirupsen/logrus"
)

// buttonWait bounds the wait for the next button edge at the start of each frame.
const buttonWait = time.Millisecond

func (s *ServerApp) eventLoop() {
	ticker := s.clock.NewTicker(s.FrameDuration())
	defer ticker.Stop()

	for loop := true; loop; {
		s.step()
		select {
		case <-s.eventLoopAskDone:
			loop = false
		case <-ticker.Chan():
		}
	}
	s.eventLoopDone <- true
}

// step runs one frame: input, remote requests, schedules and drawing.
func (s *ServerApp) step() {
	s.drainButtons()
	s.drainApi()
	s.menu.Expire(s.clock.Now())
	if s.context.Tick(s.displayDevice.Canvas(), s.rng) {
		s.displayDevice.Flush()
	}
}

func (s *ServerApp) drainButtons() {
	for {
		select {
		case ev := <-s.buttonsDevice.EventChannel():
			s.handleButton(ev)
		case <-time.After(buttonWait):
			return
		}
	}
}

func (s *ServerApp) handleButton(ev event.ButtonEvent) {
	logrus.Debugf("Receive button event: %d (offset %d)", ev.ButtonId, ev.Offset)
	s.menu.Press(ev.ButtonId, s.clock.Now())
}

func (s *ServerApp) drainApi() {
	for {
		select {
		case ev := <-s.apiEvents:
			s.handleApiEvent(ev)
		default:
			return
		}
	}
}

func (s *ServerApp) handleApiEvent(ev event.ApiEvent) {
	switch data := ev.Data.(type) {
	case event.ApiEventStatusData:
		data.Status <- s.status()
		ev.Result <- nil
	case event.ApiEventScreensaverData:
		if _, ok := s.registry.Lookup(data.ScreensaverId); !ok {
			errorMessage := apimodel.UnknownScreensaverErrorMessage
			ev.Result <- &errorMessage
			return
		}
		s.context.DoAction(data.ScreensaverId)
		ev.Result <- nil
	case event.ApiEventPopData:
		s.closeTop()
		ev.Result <- nil
	case event.ApiEventBuzzerData:
		if data.Enabled {
			s.context.EnableBuzzer()
		} else {
			s.context.DisableBuzzer()
		}
		ev.Result <- nil
	case event.ApiEventButtonData:
		s.buttonsDevice.Inject(data.ButtonId)
		ev.Result <- nil
	default:
		ev.Result <- fmt.Errorf("unsupported request %T", ev.Data)
	}
}

func (s *ServerApp) status() apimodel.Status {
	menuPath := []int{}
	for _, buttonId := range s.menu.Path() {
		menuPath = append(menuPath, int(buttonId))
	}
	return apimodel.Status{
		ActiveCount:  s.context.ActiveCount(),
		TopId:        s.context.TopId(),
		Buzzer:       s.buzzerDevice.IsEnabled(),
		MenuPath:     menuPath,
		Screensavers: s.registry.Ids(),
	}
}
