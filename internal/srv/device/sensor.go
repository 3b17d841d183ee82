package device

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

var (
	ErrSensorTimeout    = errors.New("sensor did not answer")
	ErrChecksumMismatch = errors.New("sensor checksum mismatch")
	ErrHumidityTooHigh  = errors.New("sensor humidity above 100%")
)

const (
	// humidity in tenths of percent
	maxHumidity = 1000
	// a high level lasting longer than this is a 1
	oneThreshold  = 35 * time.Microsecond
	sensorEdges   = 81
	sensorTimeout = time.Second
)

// SensorEdge is a level change seen on the data line, At is relative to the
// end of the start signal.
type SensorEdge struct {
	At     time.Duration
	Rising bool
}

// Sensor reads an AM2302 (DHT22) humidity and temperature sensor.
type Sensor struct {
	pin gpio.PinIO
}

func NewSensor(pinName string) (*Sensor, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("unable to initialize periph host: %w", err)
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("unknown sensor pin %s", pinName)
	}
	return &Sensor{pin: pin}, nil
}

// Read returns the humidity and the temperature, both in tenths.
func (s *Sensor) Read() (int, int, error) {
	edges, err := s.capture()
	if err != nil {
		return 0, 0, err
	}
	logrus.Debugf("Sensor sent %d edges", len(edges))
	return DecodeSensorBits(SensorBits(edges))
}

func (s *Sensor) capture() ([]SensorEdge, error) {
	if err := s.pin.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("unable to drive sensor pin: %w", err)
	}
	time.Sleep(500 * time.Millisecond)

	// the sensor answers within microseconds, keep the goroutine on its thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := s.pin.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("unable to drive sensor pin: %w", err)
	}
	time.Sleep(4 * time.Millisecond)
	if err := s.pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("unable to read sensor pin: %w", err)
	}

	start := time.Now()
	last := gpio.High
	edges := make([]SensorEdge, 0, sensorEdges)
	for len(edges) < sensorEdges {
		elapsed := time.Since(start)
		if elapsed > sensorTimeout {
			return nil, fmt.Errorf("%w: %d edges", ErrSensorTimeout, len(edges))
		}
		if l := s.pin.Read(); l != last {
			edges = append(edges, SensorEdge{At: elapsed, Rising: l == gpio.High})
			last = l
		}
	}
	return edges, nil
}

// SensorBits turns the captured edges into bits: every high pulse ending on
// a falling edge carries one bit. The first edge is the sensor ack.
func SensorBits(edges []SensorEdge) []byte {
	if len(edges) < 2 {
		return nil
	}
	bits := make([]byte, 0, 41)
	for i := 2; i < len(edges); i++ {
		if edges[i].Rising {
			continue
		}
		if edges[i].At-edges[i-1].At > oneThreshold {
			bits = append(bits, 1)
		} else {
			bits = append(bits, 0)
		}
	}
	return bits
}

// DecodeSensorBits returns humidity and temperature in tenths. The checksum
// is only verified when the 40 bits are present.
func DecodeSensorBits(bits []byte) (int, int, error) {
	if len(bits) > 0 && bits[0] == 1 {
		// leading ack bit, the humidity can't be that high
		bits = bits[1:]
	}
	if len(bits) < 32 {
		return 0, 0, fmt.Errorf("%w: %d bits", ErrSensorTimeout, len(bits))
	}
	var b [5]byte
	for i, bit := range bits {
		if i >= 40 {
			break
		}
		b[i/8] |= bit << (7 - i%8)
	}
	rh := int(b[0])<<8 | int(b[1])
	if rh > maxHumidity {
		return 0, 0, ErrHumidityTooHigh
	}
	celsius := int(b[2]&0x7f)<<8 | int(b[3])
	if b[2]&0x80 != 0 {
		celsius = -celsius
	}
	if len(bits) >= 40 && b[0]+b[1]+b[2]+b[3] != b[4] {
		return 0, 0, ErrChecksumMismatch
	}
	return rh, celsius, nil
}
