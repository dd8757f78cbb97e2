// Package present turns task frames into screen-space quads and rasterizes
// their text. It has no GL dependency; internal/desktop draws the result.
package present

import (
	"audwm/internal/task"
)

// Viewport is the window size in screen pixels. Screen space has its origin
// at the top-left corner with y pointing down; task space is centred with
// y pointing up.
type Viewport struct {
	Width, Height int
}

// ToScreen maps a task point to screen pixels.
func (v Viewport) ToScreen(p task.Point) (x, y float64) {
	return p.X + float64(v.Width)/2, float64(v.Height)/2 - p.Y
}

// FromScreen maps screen pixels, e.g. a cursor position, to a task point.
func (v Viewport) FromScreen(x, y float64) task.Point {
	return task.Point{X: x - float64(v.Width)/2, Y: float64(v.Height)/2 - y}
}

// Quad is an axis-aligned screen rectangle. A quad with Text is drawn with
// the rasterized string as its alpha mask.
type Quad struct {
	X, Y, W, H float32 // top-left corner and size
	Color      RGB
	Text       string
}

// rectQuad converts a centred task rect to a screen quad.
func (v Viewport) rectQuad(r task.Rect, c RGB) Quad {
	x, y := v.ToScreen(task.Point{X: r.X - r.Width/2, Y: r.Y + r.Height/2})
	return Quad{X: float32(x), Y: float32(y), W: float32(r.Width), H: float32(r.Height), Color: c}
}

func targetColor(k task.TargetKind) RGB {
	switch k {
	case task.TargetSame:
		return Palette.Same
	case task.TargetDiff:
		return Palette.Diff
	}
	return Palette.Neutral
}

// Scene lists the quads of f in draw order: flash, targets, then text.
// textScale multiplies the glyph size.
func Scene(f task.Frame, v Viewport, textScale float32) []Quad {
	var out []Quad
	if f.Flash != nil {
		out = append(out, v.rectQuad(*f.Flash, Palette.Flash))
	}
	for _, t := range f.Targets {
		out = append(out, v.rectQuad(t.Region, targetColor(t.Kind)))
	}
	if f.Text != "" {
		w, h := TextSize(f.Text)
		sw, sh := float32(w)*textScale, float32(h)*textScale
		cx, cy := v.ToScreen(f.TextAt)
		out = append(out, Quad{
			X:     float32(cx) - sw/2,
			Y:     float32(cy) - sh/2,
			W:     sw,
			H:     sh,
			Color: Palette.Text,
			Text:  f.Text,
		})
	}
	return out
}
