package device

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	fb "github.com/gonutz/framebuffer"
	"github.com/jypelle/oledpi/internal/srv/screen"
	xdraw "golang.org/x/image/draw"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/devices/v3/ssd1306"
)

// monoPanel drives a 128x64 ssd1306 over I²C, frames are shrunk to fit.
type monoPanel struct {
	bus  i2c.BusCloser
	oled *ssd1306.Dev
	buf  *image.Gray
}

func newMonoPanel(bus i2c.BusCloser) (*monoPanel, error) {
	oled, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize oled display: %w", err)
	}
	oled.SetContrast(1)
	return &monoPanel{bus: bus, oled: oled, buf: image.NewGray(oled.Bounds())}, nil
}

func (p *monoPanel) Draw(img *image.RGBA) error {
	bounds := p.buf.Bounds()
	shrunk := imaging.Fit(img, bounds.Dx(), bounds.Dy(), imaging.Box)
	draw.Draw(p.buf, bounds, image.Black, image.Point{}, draw.Src)
	offset := image.Pt((bounds.Dx()-shrunk.Bounds().Dx())/2, (bounds.Dy()-shrunk.Bounds().Dy())/2)
	draw.Draw(p.buf, shrunk.Bounds().Add(offset), shrunk, image.Point{}, draw.Src)
	return p.oled.Draw(bounds, p.buf, image.Point{})
}

func (p *monoPanel) Halt() error {
	return p.oled.Halt()
}

func (p *monoPanel) Close() error {
	return p.bus.Close()
}

// framebufferPanel scales frames onto a fbdev device such as an fbtft overlay.
type framebufferPanel struct {
	dev *fb.Device
}

func newFramebufferPanel(path string) (*framebufferPanel, error) {
	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open framebuffer %s: %w", path, err)
	}
	return &framebufferPanel{dev: dev}, nil
}

func (p *framebufferPanel) Draw(img *image.RGBA) error {
	xdraw.NearestNeighbor.Scale(p.dev, p.dev.Bounds(), img, img.Bounds(), draw.Src, nil)
	return nil
}

func (p *framebufferPanel) Halt() error {
	draw.Draw(p.dev, p.dev.Bounds(), image.NewUniform(screen.Black), image.Point{}, draw.Src)
	return nil
}

func (p *framebufferPanel) Close() error {
	p.dev.Close()
	return nil
}
