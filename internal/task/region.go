package task

// Point is a position in centre-origin pixels, y pointing up.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned region given by its centre and size.
type Rect struct {
	X, Y          float64 // centre
	Width, Height float64
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	hw, hh := r.Width/2, r.Height/2
	return p.X >= r.X-hw && p.X <= r.X+hw && p.Y >= r.Y-hh && p.Y <= r.Y+hh
}

// Overlaps reports whether r and o share any point.
func (r Rect) Overlaps(o Rect) bool {
	return r.X-r.Width/2 <= o.X+o.Width/2 && o.X-o.Width/2 <= r.X+r.Width/2 &&
		r.Y-r.Height/2 <= o.Y+o.Height/2 && o.Y-o.Height/2 <= r.Y+r.Height/2
}

// TargetKind names the role of an on-screen target.
type TargetKind int

const (
	TargetSame    TargetKind = iota // green box
	TargetDiff                      // red box
	TargetNeutral                   // yellow box shown after a timeout
)

// Target is a drawn hit region.
type Target struct {
	Kind   TargetKind
	Region Rect
}

// Frame is everything drawn for one flip. The zero Frame is a blank screen.
type Frame struct {
	Flash   *Rect
	Targets []Target
	Text    string
	TextAt  Point
}

// Layout places the flash, targets and feedback text on screen.
type Layout struct {
	Flash    Rect
	Same     Rect
	Diff     Rect
	Neutral  Rect
	Feedback Point
	Park     Point // pointer position at trial start, away from every target
}

// DefaultLayout is the 200 px box arrangement of the reference task.
func DefaultLayout(width, height float64) Layout {
	const box = 200
	return Layout{
		Flash:    Rect{Width: box, Height: box},
		Same:     Rect{X: -300, Width: box, Height: box},
		Diff:     Rect{X: 300, Width: box, Height: box},
		Neutral:  Rect{Width: box, Height: box},
		Feedback: Point{Y: -300},
		Park:     Point{X: width * 1.5, Y: height * 1.5},
	}
}
