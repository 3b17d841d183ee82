package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSensorBits(t *testing.T) {
	// leading ack bit then 39 bits, no checksum byte
	rh, celsius, err := DecodeSensorBits([]byte{
		1, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 0, 1, 0, 1, 1, 1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 1, 0, 0, 1, 1, 1, 0,
		0, 1, 1,
	})
	require.NoError(t, err)
	assert.Equal(t, 471, rh)
	assert.Equal(t, 268, celsius)
}

func bitsOf(bytes ...byte) []byte {
	var bits []byte
	for _, b := range bytes {
		for i := 7; i >= 0; i-- {
			bits = append(bits, b>>i&1)
		}
	}
	return bits
}

func TestDecodeSensorBitsChecksum(t *testing.T) {
	rh, celsius, err := DecodeSensorBits(bitsOf(0x01, 0xD7, 0x01, 0x0C, 0x01+0xD7+0x01+0x0C))
	require.NoError(t, err)
	assert.Equal(t, 471, rh)
	assert.Equal(t, 268, celsius)

	_, _, err = DecodeSensorBits(bitsOf(0x01, 0xD7, 0x01, 0x0C, 0x00))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestDecodeSensorBitsNegative(t *testing.T) {
	_, celsius, err := DecodeSensorBits(bitsOf(0x01, 0x00, 0x80, 0x65, 0x01+0x80+0x65))
	require.NoError(t, err)
	assert.Equal(t, -101, celsius)
}

func TestDecodeSensorBitsRejects(t *testing.T) {
	// 100.1%
	_, _, err := DecodeSensorBits(bitsOf(0x03, 0xE9, 0x00, 0xC8))
	assert.ErrorIs(t, err, ErrHumidityTooHigh)

	_, _, err = DecodeSensorBits(bitsOf(0x01, 0x02))
	assert.ErrorIs(t, err, ErrSensorTimeout)
}

func TestSensorBits(t *testing.T) {
	edges := []SensorEdge{
		{At: 20 * time.Microsecond, Rising: false}, // ack
		{At: 100 * time.Microsecond, Rising: true},
		{At: 180 * time.Microsecond, Rising: false}, // ack end, long high pulse
		{At: 230 * time.Microsecond, Rising: true},
		{At: 256 * time.Microsecond, Rising: false}, // short: 0
		{At: 306 * time.Microsecond, Rising: true},
		{At: 376 * time.Microsecond, Rising: false}, // long: 1
	}
	assert.Equal(t, []byte{1, 0, 1}, SensorBits(edges))
	assert.Nil(t, SensorBits(edges[:1]))
}
