package device

import (
	"bytes"
	"image"
	"testing"

	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spitest"
)

func newTestSSD1351(t *testing.T) (*SSD1351, *spitest.Record, *gpiotest.Pin) {
	port := &spitest.Record{}
	dc := &gpiotest.Pin{N: "DC", Num: 25}
	rst := &gpiotest.Pin{N: "RST", Num: 27}
	oled, err := NewSSD1351(port, dc, rst, 20*physic.MegaHertz)
	require.NoError(t, err)
	assert.Equal(t, gpio.High, rst.Read())
	return oled, port, dc
}

func writes(port *spitest.Record) [][]byte {
	port.Lock()
	defer port.Unlock()
	var w [][]byte
	for _, op := range port.Ops {
		w = append(w, op.W)
	}
	return w
}

func TestSSD1351Init(t *testing.T) {
	_, port, dc := newTestSSD1351(t)

	w := writes(port)
	require.NotEmpty(t, w)
	assert.Equal(t, []byte{0xFD}, w[0])
	assert.Equal(t, []byte{0x12}, w[1])
	assert.Equal(t, []byte{0xFD}, w[2])
	assert.Equal(t, []byte{0xB1}, w[3])
	assert.Equal(t, []byte{0xAE}, w[4])
	// display on is the last command
	assert.Equal(t, []byte{0xAF}, w[len(w)-1])
	assert.Equal(t, gpio.Low, dc.Read())
}

func TestSSD1351Draw(t *testing.T) {
	oled, port, dc := newTestSSD1351(t)
	before := len(writes(port))

	img := image.NewRGBA(image.Rect(0, 0, screen.Width, screen.Height))
	img.SetRGBA(0, 0, screen.RGB565(0x1f, 0, 0))
	img.SetRGBA(1, 0, screen.RGB565(0, 0x3f, 0))
	img.SetRGBA(127, 127, screen.RGB565(0, 0, 0x1f))
	require.NoError(t, oled.Draw(img))

	w := writes(port)[before:]
	// column window, row window, write ram, then the pixels in 4096 bytes chunks
	assert.Equal(t, [][]byte{{0x15}, {0, 127}, {0x75}, {0, 127}, {0x5C}}, w[:5])
	chunks := w[5:]
	require.Len(t, chunks, 128*128*2/defaultMaxTx)
	data := bytes.Join(chunks, nil)
	assert.Equal(t, []byte{0xF8, 0x00, 0x07, 0xE0}, data[:4])
	assert.Equal(t, []byte{0x00, 0x1F}, data[len(data)-2:])
	assert.Equal(t, gpio.High, dc.Read())

	assert.Error(t, oled.Draw(nil))
}

func TestSSD1351Halt(t *testing.T) {
	oled, port, _ := newTestSSD1351(t)
	require.NoError(t, oled.Halt())
	w := writes(port)
	assert.Equal(t, []byte{0xAE}, w[len(w)-1])
}
