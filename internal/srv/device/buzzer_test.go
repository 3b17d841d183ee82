package device

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

type countingPin struct {
	gpiotest.Pin
	highs atomic.Int32
}

func (p *countingPin) Out(l gpio.Level) error {
	if l == gpio.High {
		p.highs.Add(1)
	}
	return p.Pin.Out(l)
}

func TestBuzzerWindow(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	pin := &countingPin{}
	b := newBuzzer("", clock)
	b.pin = pin
	b.Start()

	// disabled: a window goes by silently
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(buzzerWindow)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, int32(0), pin.highs.Load())

	b.Enable()
	assert.True(t, b.IsEnabled())
	clock.Advance(buzzerWindow)
	for i := 0; i < 2*buzzerCycles; i++ {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(buzzerHalf)
	}
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, int32(buzzerCycles), pin.highs.Load())
	assert.Equal(t, gpio.Low, pin.Read())

	b.Disable()
	assert.False(t, b.IsEnabled())
	clock.Advance(buzzerWindow)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, int32(buzzerCycles), pin.highs.Load())

	b.Stop()
}

func TestBuzzerWithoutPin(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	b := NewBuzzer("GPIO12", true)
	b.Start()
	b.Enable()
	b.Disable()
	b.Stop()
}
