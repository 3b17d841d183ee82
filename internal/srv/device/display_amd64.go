package device

import (
	"image"
	"sync"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"github.com/sirupsen/logrus"
)

// simulationPanel shows the frames in a desktop window.
type simulationPanel struct {
	window *app.Window

	lock    sync.RWMutex
	lastImg image.Image
}

func newSimulationPanel() (Panel, error) {
	p := &simulationPanel{
		window:  app.NewWindow(app.Title("oledpi"), app.Size(unit.Px(256), unit.Px(256)), app.MinSize(unit.Px(128), unit.Px(128))),
		lastImg: image.NewRGBA(image.Rect(0, 0, 128, 128)),
	}
	go func() {
		if err := p.gioloop(); err != nil {
			logrus.Fatalf("Simulation window failed: %v", err)
		}
	}()
	go app.Main()
	return p, nil
}

func (p *simulationPanel) Draw(img *image.RGBA) error {
	p.lock.Lock()
	p.lastImg = img
	p.lock.Unlock()
	p.window.Invalidate()
	return nil
}

func (p *simulationPanel) Halt() error {
	return nil
}

func (p *simulationPanel) Close() error {
	p.window.Close()
	return nil
}

func (p *simulationPanel) gioloop() error {
	var ops op.Ops
	for {
		e := <-p.window.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)

			p.lock.RLock()
			lastImg := p.lastImg
			p.lock.RUnlock()

			img := widget.Image{Src: paint.NewImageOp(lastImg), Fit: widget.Contain}
			img.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}
