package present

import (
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// TextSize is the unscaled pixel size of s on one line.
func TextSize(s string) (w, h int) {
	adv := font.MeasureString(face, s)
	return adv.Ceil(), face.Metrics().Height.Ceil()
}

// RasterizeText draws s into an alpha mask sized by TextSize. Row 0 is the
// top of the text.
func RasterizeText(s string) *image.Alpha {
	w, h := TextSize(s)
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  dst,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: face.Metrics().Ascent},
	}
	d.DrawString(s)
	return dst
}
