package device

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const (
	buzzerWindow = 500 * time.Millisecond
	buzzerCycles = 100
	buzzerHalf   = time.Millisecond
)

// Buzzer beeps in 500 ms windows while enabled. The control loop only
// flips the flag, the pin is owned by the buzzer goroutine.
type Buzzer struct {
	pinName string
	pin     gpio.PinOut
	clock   clockwork.Clock
	enabled atomic.Bool

	askDone chan bool
	done    chan bool
}

func NewBuzzer(pinName string, simulation bool) *Buzzer {
	if !simulation {
		if _, err := host.Init(); err != nil {
			logrus.Fatalf("Unable to initialize periph host: %v", err)
		}
	} else {
		pinName = ""
	}
	return newBuzzer(pinName, clockwork.NewRealClock())
}

func newBuzzer(pinName string, clock clockwork.Clock) *Buzzer {
	return &Buzzer{
		pinName: pinName,
		clock:   clock,
		askDone: make(chan bool),
		done:    make(chan bool),
	}
}

func (b *Buzzer) Start() {
	logrus.Infof("Start buzzer device")

	if b.pinName != "" {
		pin := gpioreg.ByName(b.pinName)
		if pin == nil {
			logrus.Fatalf("Failed to find %s buzzer pin", b.pinName)
		}
		if err := pin.Out(gpio.Low); err != nil {
			logrus.Fatalf("Failed to setup %s buzzer pin: %v", b.pinName, err)
		}
		b.pin = pin
	}

	go func() {
		for loop := true; loop; {
			select {
			case <-b.askDone:
				loop = false
			case <-b.clock.After(buzzerWindow):
				if b.enabled.Load() {
					b.beep()
				} else {
					b.out(gpio.Low)
				}
			}
		}
		b.out(gpio.Low)
		b.done <- true
	}()
}

func (b *Buzzer) beep() {
	for i := 0; i < buzzerCycles; i++ {
		b.out(gpio.High)
		b.clock.Sleep(buzzerHalf)
		b.out(gpio.Low)
		b.clock.Sleep(buzzerHalf)
	}
}

func (b *Buzzer) out(l gpio.Level) {
	if b.pin == nil {
		return
	}
	if err := b.pin.Out(l); err != nil {
		logrus.Debugf("Unable to drive buzzer: %v", err)
	}
}

func (b *Buzzer) Stop() {
	logrus.Infof("Stop buzzer device")
	b.askDone <- true
	<-b.done
}

func (b *Buzzer) Enable() {
	if !b.enabled.Swap(true) {
		logrus.Debugf("Buzzer enabled")
	}
}

func (b *Buzzer) Disable() {
	if b.enabled.Swap(false) {
		logrus.Debugf("Buzzer disabled")
	}
}

func (b *Buzzer) IsEnabled() bool {
	return b.enabled.Load()
}
