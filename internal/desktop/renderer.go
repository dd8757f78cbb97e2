//go:build !android

package desktop

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"audwm/internal/present"
)

// glOffset converts a byte offset to unsafe.Pointer for OpenGL VBO offset params.
func glOffset(n int) unsafe.Pointer { return unsafe.Pointer(uintptr(n)) }

type Renderer struct {
	prog uint32
	vao  uint32
	vbo  uint32

	uResolution int32
	uMask       int32
	uColor      int32

	solid uint32            // 1x1 opaque mask
	text  map[string]uint32 // rasterized strings
	buf   []float32
}

func NewRenderer() (*Renderer, error) {
	prog, err := linkProgram(quadVertSrc, quadFragSrc)
	if err != nil {
		return nil, fmt.Errorf("quad program: %w", err)
	}
	r := &Renderer{prog: prog, text: make(map[string]uint32)}
	gl.UseProgram(prog)
	r.uResolution = gl.GetUniformLocation(prog, gl.Str("uResolution\x00"))
	r.uMask = gl.GetUniformLocation(prog, gl.Str("uMask\x00"))
	r.uColor = gl.GetUniformLocation(prog, gl.Str("uColor\x00"))
	gl.Uniform1i(r.uMask, 0)

	// per-vertex pos(2) + uv(2)
	gl.GenVertexArrays(1, &r.vao)
	gl.GenBuffers(1, &r.vbo)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	stride := int32(4 * 4)
	gl.BufferData(gl.ARRAY_BUFFER, 6*int(stride), nil, gl.STREAM_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, glOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, glOffset(2*4))
	gl.BindVertexArray(0)

	r.solid = uploadMask([]uint8{255}, 1, 1)
	return r, nil
}

func uploadMask(pix []uint8, w, h int) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, int32(w), int32(h), 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return tex
}

func (r *Renderer) mask(text string) uint32 {
	if text == "" {
		return r.solid
	}
	if tex, ok := r.text[text]; ok {
		return tex
	}
	img := present.RasterizeText(text)
	b := img.Bounds()
	if b.Empty() {
		return r.solid
	}
	tex := uploadMask(img.Pix, b.Dx(), b.Dy())
	r.text[text] = tex
	return tex
}

// Draw renders quads in order. width and height are the window size in
// screen pixels.
func (r *Renderer) Draw(quads []present.Quad, width, height int) {
	if len(quads) == 0 {
		return
	}
	gl.UseProgram(r.prog)
	gl.BindVertexArray(r.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.Uniform2f(r.uResolution, float32(width), float32(height))
	gl.ActiveTexture(gl.TEXTURE0)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	for _, q := range quads {
		gl.BindTexture(gl.TEXTURE_2D, r.mask(q.Text))
		cr, cg, cb := q.Color.Floats()
		gl.Uniform3f(r.uColor, cr, cg, cb)

		x0, y0, x1, y1 := q.X, q.Y, q.X+q.W, q.Y+q.H
		// Two triangles: TL, TR, BL then TR, BR, BL.
		r.buf = append(r.buf[:0],
			x0, y0, 0, 0,
			x1, y0, 1, 0,
			x0, y1, 0, 1,
			x1, y0, 1, 0,
			x1, y1, 1, 1,
			x0, y1, 0, 1,
		)
		gl.BufferData(gl.ARRAY_BUFFER, len(r.buf)*4, gl.Ptr(r.buf), gl.STREAM_DRAW)
		gl.DrawArrays(gl.TRIANGLES, 0, 6)
	}

	gl.Disable(gl.BLEND)
	gl.BindVertexArray(0)
}

func (r *Renderer) Destroy() {
	for _, tex := range r.text {
		gl.DeleteTextures(1, &tex)
	}
	gl.DeleteTextures(1, &r.solid)
	gl.DeleteBuffers(1, &r.vbo)
	gl.DeleteVertexArrays(1, &r.vao)
	gl.DeleteProgram(r.prog)
}
