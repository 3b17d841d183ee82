package srv

import (
	"image"
	"image/draw"

	"github.com/jypelle/oledpi/internal/images"
	"github.com/jypelle/oledpi/internal/srv/drawable"
	"github.com/jypelle/oledpi/internal/srv/screen"
	"golang.org/x/image/font/basicfont"
)

// showSplash displays the raspberry with a caption, outside of the event loop.
func (s *ServerApp) showSplash(caption string) {
	canvas := s.displayDevice.Canvas()
	canvas.Clear(screen.Black)
	rpi := images.Load(s.GetCompleteImagesFolder(), "rpi")
	draw.Draw(canvas, canvas.Bounds(), rpi.RGBA, image.Point{}, draw.Src)
	canvas.Fill(image.Rect(0, 108, screen.Width, screen.Height), screen.Black)
	drawable.AddCenteredLabel(canvas, basicfont.Face7x13, 122, caption, screen.White)
	s.displayDevice.Flush()
}
