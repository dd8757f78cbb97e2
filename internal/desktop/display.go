//go:build !android

package desktop

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"audwm/internal/present"
	"audwm/internal/task"
)

// TextScale enlarges the 7x13 feedback glyphs.
const TextScale = 4

// Display draws task frames into a glfw window and reads the cursor.
// Escape or closing the window requests an abort, which stays latched.
type Display struct {
	win     *glfw.Window
	rend    *Renderer
	in      *Input
	aborted bool
}

func NewDisplay(win *glfw.Window, rend *Renderer) *Display {
	return &Display{win: win, rend: rend, in: NewInput()}
}

func (d *Display) viewport() present.Viewport {
	w, h := d.win.GetSize()
	return present.Viewport{Width: w, Height: h}
}

func (d *Display) poll() {
	glfw.PollEvents()
	if d.in.JustPressed(d.win, glfw.KeyEscape) || d.win.ShouldClose() {
		d.aborted = true
	}
}

func (d *Display) Present(f task.Frame) error {
	d.poll()
	vp := d.viewport()
	fbW, fbH := d.win.GetFramebufferSize()
	gl.Viewport(0, 0, int32(fbW), int32(fbH))
	r, g, b := present.Palette.Background.Floats()
	gl.ClearColor(r, g, b, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	d.rend.Draw(present.Scene(f, vp, TextScale), vp.Width, vp.Height)
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gl error 0x%x", code)
	}
	d.win.SwapBuffers()
	return nil
}

func (d *Display) Pointer() task.Point {
	d.poll()
	x, y := d.win.GetCursorPos()
	return d.viewport().FromScreen(x, y)
}

func (d *Display) SetPointer(p task.Point) {
	x, y := d.viewport().ToScreen(p)
	d.win.SetCursorPos(x, y)
}

func (d *Display) AbortRequested() bool {
	d.poll()
	return d.aborted
}
