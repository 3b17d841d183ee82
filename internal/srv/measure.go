package srv

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/oledpi/internal/srv/store"
	"github.com/sirupsen/logrus"
)

const (
	measureAttempts = 10
	measureSamples  = 5
	measurePause    = 5 * time.Second
	// readings at or above 50.0°C are sensor glitches
	maxPlausibleCelsius = 500
)

var ErrNoMeasurement = errors.New("no plausible sensor reading")

type SensorReader interface {
	Read() (int, int, error)
}

type ReadingWriter interface {
	Add(ctx context.Context, r store.Reading) error
}

// Measure samples the sensor several times and stores the median reading.
// The stored time is the start of the measure.
func Measure(ctx context.Context, sensor SensorReader, readings ReadingWriter, clock clockwork.Clock) (store.Reading, error) {
	start := clock.Now().Truncate(time.Second)

	var humidities, temperatures []int
	for attempt := 1; attempt <= measureAttempts && len(temperatures) < measureSamples; attempt++ {
		rh, celsius, err := sensor.Read()
		switch {
		case err != nil:
			logrus.Debugf("Sensor read %d failed: %v", attempt, err)
		case rh > 0 && celsius < maxPlausibleCelsius:
			logrus.Debugf("Sensor read %d: %d %d", attempt, rh, celsius)
			humidities = append(humidities, rh)
			temperatures = append(temperatures, celsius)
		default:
			logrus.Debugf("Sensor read %d discarded: %d %d", attempt, rh, celsius)
		}
		if attempt == measureAttempts || len(temperatures) == measureSamples {
			break
		}
		select {
		case <-ctx.Done():
			return store.Reading{}, ctx.Err()
		case <-clock.After(measurePause):
		}
	}
	if len(temperatures) == 0 {
		return store.Reading{}, ErrNoMeasurement
	}

	// the median discards faulty reads
	slices.Sort(humidities)
	slices.Sort(temperatures)
	reading := store.Reading{
		Time:     start,
		Humidity: humidities[len(humidities)/2],
		Celsius:  temperatures[len(temperatures)/2],
	}
	if err := readings.Add(ctx, reading); err != nil {
		return reading, fmt.Errorf("unable to store reading: %w", err)
	}
	logrus.Infof("Stored reading: %.1f%% %.1f°C", float64(reading.Humidity)/10, float64(reading.Celsius)/10)
	return reading, nil
}
