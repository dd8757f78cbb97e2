package present

// RGB is an 8-bit per channel colour.
type RGB struct {
	R, G, B uint8
}

// Floats returns the colour as normalized GL components.
func (c RGB) Floats() (r, g, b float32) {
	return float32(c.R) / 255.0, float32(c.G) / 255.0, float32(c.B) / 255.0
}

var Palette = struct {
	Background RGB
	Same       RGB
	Diff       RGB
	Neutral    RGB
	Flash      RGB
	Text       RGB
}{
	Background: RGB{128, 128, 128},
	Same:       RGB{0, 160, 0},
	Diff:       RGB{200, 0, 0},
	Neutral:    RGB{220, 200, 0},
	Flash:      RGB{255, 255, 255},
	Text:       RGB{255, 255, 255},
}
