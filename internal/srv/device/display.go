package device

import (
	"errors"
	"fmt"
	"image"

	"github.com/jypelle/oledpi/internal/srv/config"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Panel is the physical sink of the frames.
type Panel interface {
	Draw(img *image.RGBA) error
	Halt() error
	Close() error
}

type Display struct {
	param          config.DisplayParam
	simulationMode bool

	frame *screen.Frame
	panel Panel

	askDone chan bool
	askImg  chan *image.RGBA
	done    chan bool
}

func NewDisplay(param config.DisplayParam, simulationMode bool) *Display {
	if !simulationMode {
		if _, err := host.Init(); err != nil {
			logrus.Fatalf("Unable to initialize periph host: %v", err)
		}
	}
	return newDisplay(param, simulationMode, nil)
}

// NewDisplayWithPanel builds a display on an already opened panel.
func NewDisplayWithPanel(panel Panel) *Display {
	return newDisplay(config.DisplayParam{}, false, panel)
}

func newDisplay(param config.DisplayParam, simulationMode bool, panel Panel) *Display {
	return &Display{
		param:          param,
		simulationMode: simulationMode,
		frame:          screen.NewFrame(screen.Width, screen.Height),
		panel:          panel,
		askDone:        make(chan bool),
		askImg:         make(chan *image.RGBA, 1),
		done:           make(chan bool),
	}
}

func (d *Display) Start() {
	logrus.Infof("Start display device")

	if d.panel == nil {
		var err error
		d.panel, err = d.openPanel()
		if err != nil {
			logrus.Fatalf("Unable to open display: %v\n", err)
		}
	}

	go func() {
		for loop := true; loop; {
			select {
			case <-d.askDone:
				loop = false
			case img := <-d.askImg:
				if err := d.panel.Draw(img); err != nil {
					logrus.Debugf("Unable to flush display: %v", err)
				}
			}
		}
		if err := d.panel.Halt(); err != nil {
			logrus.Debugf("Unable to halt display: %v", err)
		}
		if err := d.panel.Close(); err != nil {
			logrus.Debugf("Unable to close display: %v", err)
		}
		d.done <- true
	}()
}

func (d *Display) Stop() {
	logrus.Infof("Stop display device")
	d.askDone <- true
	<-d.done
}

// Canvas is the frame drawables render into, pushed by Flush.
func (d *Display) Canvas() screen.Canvas {
	return d.frame
}

// Flush hands a copy of the frame to the panel goroutine. A frame still
// waiting to be drawn is replaced.
func (d *Display) Flush() {
	img := image.NewRGBA(d.frame.Rect)
	copy(img.Pix, d.frame.Pix)
	for {
		select {
		case d.askImg <- img:
			return
		default:
			select {
			case <-d.askImg:
			default:
			}
		}
	}
}

func (d *Display) openPanel() (Panel, error) {
	if d.simulationMode {
		return newSimulationPanel()
	}

	switch d.param.Driver {
	case "ssd1306":
		bus, err := i2creg.Open("")
		if err != nil {
			return nil, fmt.Errorf("unable to open i2c bus: %w", err)
		}
		return newMonoPanel(bus)
	case "fbdev":
		return newFramebufferPanel(d.param.Framebuffer)
	default:
		dc := gpioreg.ByName(d.param.DcPin)
		if dc == nil {
			return nil, fmt.Errorf("unknown dc pin %s", d.param.DcPin)
		}
		var rst gpio.PinOut
		if d.param.ResetPin != "" {
			rst = gpioreg.ByName(d.param.ResetPin)
			if rst == nil {
				return nil, fmt.Errorf("unknown reset pin %s", d.param.ResetPin)
			}
		}
		port, err := spireg.Open(d.param.SpiPort)
		if err != nil {
			return nil, fmt.Errorf("unable to open spi port: %w", err)
		}
		oled, err := NewSSD1351(port, dc, rst, physic.Frequency(d.param.SpiSpeed)*physic.Hertz)
		if err != nil {
			return nil, errors.Join(err, port.Close())
		}
		return &spiPanel{SSD1351: oled, port: port}, nil
	}
}

type spiPanel struct {
	*SSD1351
	port spi.PortCloser
}

func (p *spiPanel) Close() error {
	return errors.Join(p.SSD1351.Close(), p.port.Close())
}
