package event

import (
	"time"

	"github.com/jypelle/oledpi/apimodel"
)

// Buttons
type ButtonId int

const (
	BUTTON_1 ButtonId = iota + 1
	BUTTON_2
	BUTTON_3
	BUTTON_4
	BUTTON_5
	BUTTON_6
)

type ButtonEvent struct {
	// Offset is the GPIO number of the pin, -1 for injected presses.
	Offset   int
	ButtonId ButtonId
	Time     time.Time
}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ApiEventStatusData struct {
	Status chan apimodel.Status
}

type ApiEventScreensaverData struct {
	ScreensaverId string
}

type ApiEventPopData struct{}

type ApiEventBuzzerData struct {
	Enabled bool
}

type ApiEventButtonData struct {
	ButtonId ButtonId
}
