package device

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/oledpi/internal/srv/config"
	"github.com/jypelle/oledpi/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpioutil"
	"periph.io/x/host/v3"
)

const (
	buttonDenoise  = time.Millisecond
	buttonDebounce = 5 * time.Millisecond
	edgeWait       = 100 * time.Millisecond
)

type Button struct {
	buttonId event.ButtonId
	pin      gpio.PinIO
}

func NewButton(buttonId event.ButtonId, name string) (*Button, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown button pin %s", name)
	}

	// Set it as input, with an internal pull down resistor
	if err := pin.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return nil, fmt.Errorf("unable to setup %s button: %w", name, err)
	}
	debounced, err := gpioutil.Debounce(pin, buttonDenoise, buttonDebounce, gpio.RisingEdge)
	if err != nil {
		return nil, fmt.Errorf("unable to debounce %s button: %w", name, err)
	}
	return &Button{buttonId: buttonId, pin: debounced}, nil
}

type Buttons struct {
	keyMap       []config.ButtonParam
	clock        clockwork.Clock
	eventChannel chan event.ButtonEvent

	buttons []*Button

	askDone chan bool
	wg      sync.WaitGroup
}

func NewButtons(keyMap []config.ButtonParam, simulation bool) *Buttons {
	if simulation {
		keyMap = nil
	} else if _, err := host.Init(); err != nil {
		logrus.Fatalf("Unable to initialize periph host: %v", err)
	}
	return newButtons(keyMap, clockwork.NewRealClock())
}

func newButtons(keyMap []config.ButtonParam, clock clockwork.Clock) *Buttons {
	return &Buttons{
		keyMap:       keyMap,
		clock:        clock,
		eventChannel: make(chan event.ButtonEvent, 16),
		askDone:      make(chan bool),
	}
}

func (d *Buttons) Start() {
	logrus.Infof("Start buttons device")

	for _, key := range d.keyMap {
		button, err := NewButton(event.ButtonId(key.Id), key.Pin)
		if err != nil {
			logrus.Fatalf("Failed to setup button %d: %v", key.Id, err)
		}
		d.buttons = append(d.buttons, button)
	}

	for _, button := range d.buttons {
		d.wg.Add(1)
		go d.watch(button)
	}
}

func (d *Buttons) watch(b *Button) {
	defer d.wg.Done()
	for {
		select {
		case <-d.askDone:
			return
		default:
		}
		if !b.pin.WaitForEdge(edgeWait) || b.pin.Read() != gpio.High {
			continue
		}
		d.send(event.ButtonEvent{Offset: b.pin.Number(), ButtonId: b.buttonId, Time: d.clock.Now()})
	}
}

// Inject queues a press that did not come from a pin.
func (d *Buttons) Inject(buttonId event.ButtonId) {
	d.send(event.ButtonEvent{Offset: -1, ButtonId: buttonId, Time: d.clock.Now()})
}

func (d *Buttons) send(e event.ButtonEvent) {
	select {
	case d.eventChannel <- e:
	default:
		logrus.Warnf("Button event queue full, press of button %d dropped", e.ButtonId)
	}
}

func (d *Buttons) StopSendingEvent() {
	logrus.Infof("Stop buttons device")

	close(d.askDone)
	d.wg.Wait()
	for _, button := range d.buttons {
		if err := button.pin.Halt(); err != nil {
			logrus.Debugf("Unable to halt button %d: %v", button.buttonId, err)
		}
	}
}

func (d *Buttons) EventChannel() <-chan event.ButtonEvent {
	return d.eventChannel
}
