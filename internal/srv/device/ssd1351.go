package device

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/jypelle/oledpi/internal/srv/screen"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const defaultMaxTx = 4096

var ssd1351Init = [][]byte{
	{0xFD, 0x12}, // unlock driver
	{0xFD, 0xB1}, // unlock commands A2, B1, B3, BB, BE, C1
	{0xAE},       // display off
	{0xB3, 0xF1}, // clock divider
	{0xCA, 0x7F}, // mux ratio
	{0xA2, 0x00}, // display offset
	{0xA1, 0x00}, // start line
	{0xA0, 0x74}, // remap: 65k colors, COM split
	{0xB5, 0x00}, // gpio off
	{0xAB, 0x01}, // internal regulator
	{0xB4, 0xA0, 0xB5, 0x55},
	{0xC1, 0xC8, 0x80, 0xC0}, // contrast A B C
	{0xC7, 0x0F},             // master contrast
	{0xB1, 0x32},             // precharge
	{0xB2, 0xA4, 0x00, 0x00}, // display enhancement
	{0xBB, 0x17},             // precharge voltage
	{0xB6, 0x01},             // second precharge
	{0xBE, 0x05},             // vcomh
	{0xA6},                   // normal display
	{0xAF},                   // display on
}

// SSD1351 drives a 128x128 RGB565 oled over a 4-wire SPI link.
type SSD1351 struct {
	c     spi.Conn
	dc    gpio.PinOut
	rst   gpio.PinOut
	maxTx int
	buf   []byte
}

func NewSSD1351(port spi.Port, dc gpio.PinOut, rst gpio.PinOut, speed physic.Frequency) (*SSD1351, error) {
	c, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("unable to connect spi port: %w", err)
	}
	d := &SSD1351{
		c:     c,
		dc:    dc,
		rst:   rst,
		maxTx: defaultMaxTx,
		buf:   make([]byte, screen.Width*screen.Height*2),
	}
	if l, ok := c.(conn.Limits); ok && l.MaxTxSize() > 0 {
		d.maxTx = l.MaxTxSize()
	}
	if err = d.reset(); err != nil {
		return nil, err
	}
	for _, seq := range ssd1351Init {
		if err = d.command(seq[0], seq[1:]...); err != nil {
			return nil, fmt.Errorf("unable to initialize ssd1351: %w", err)
		}
	}
	return d, nil
}

func (d *SSD1351) reset() error {
	if d.rst == nil {
		return nil
	}
	for _, l := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if err := d.rst.Out(l); err != nil {
			return fmt.Errorf("unable to reset ssd1351: %w", err)
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (d *SSD1351) command(cmd byte, args ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return err
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return d.data(args)
}

func (d *SSD1351) data(b []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(b) > 0 {
		n := min(len(b), d.maxTx)
		if err := d.c.Tx(b[:n], nil); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// Draw sends the whole image, pixels outside img are sent black.
func (d *SSD1351) Draw(img *image.RGBA) error {
	if img == nil {
		return errors.New("nil image")
	}
	i := 0
	for y := 0; y < screen.Height; y++ {
		for x := 0; x < screen.Width; x++ {
			v := screen.ToRGB565(img.RGBAAt(img.Rect.Min.X+x, img.Rect.Min.Y+y))
			d.buf[i] = byte(v >> 8)
			d.buf[i+1] = byte(v)
			i += 2
		}
	}
	if err := d.command(0x15, 0, screen.Width-1); err != nil {
		return err
	}
	if err := d.command(0x75, 0, screen.Height-1); err != nil {
		return err
	}
	if err := d.command(0x5C); err != nil {
		return err
	}
	return d.data(d.buf)
}

// Halt turns the panel off, the next Draw does not turn it back on.
func (d *SSD1351) Halt() error {
	return d.command(0xAE)
}

func (d *SSD1351) Close() error {
	return d.Halt()
}
