package drawable

import (
	"fmt"
	"image"
	"image/draw"
	"math/rand"

	"github.com/jypelle/oledpi/internal/srv/screen"
	"github.com/skip2/go-qrcode"
)

const qrFrameTimeout = 900

// QrCode shows a fixed payload, typically the wifi credentials.
type QrCode struct {
	payload string
}

func NewQrCode(payload string) *QrCode {
	return &QrCode{payload: payload}
}

func (q *QrCode) Id() string {
	return "qr"
}

func (q *QrCode) NewDrawable() screen.Drawable {
	return &qrCodeDraw{QrCode: q}
}

type qrCodeDraw struct {
	*QrCode
	drawn  bool
	frames int
}

func (d *qrCodeDraw) Draw(c screen.Canvas, rng *rand.Rand) (bool, error) {
	d.frames++
	if d.drawn {
		return false, nil
	}
	// an encoding failure is reported once
	d.drawn = true
	code, err := qrcode.New(d.payload, qrcode.Medium)
	if err != nil {
		return true, fmt.Errorf("unable to encode qr code: %w", err)
	}
	code.DisableBorder = true
	img := code.Image(screen.Width - 8)
	c.Clear(screen.White)
	draw.Draw(c, img.Bounds().Add(image.Pt(4, 4)), img, img.Bounds().Min, draw.Src)
	return true, nil
}

func (d *qrCodeDraw) Expired() bool {
	return d.frames > qrFrameTimeout
}

func (d *qrCodeDraw) Handle(cmd screen.Command) {
	if cmd == screen.Redraw {
		d.drawn = false
	}
}
