// Package strand holds the pixel buffer value type and the color algorithms
// that operate on it. The buffer knows nothing about transports; a sink from
// internal/led takes the raw bytes.
package strand

import "fmt"

// Color is one pixel in working form. W is ignored on 3-channel strips.
type Color struct {
	R, G, B, W uint8
}

// Black is the zero color.
var Black = Color{}

// Buffer is a flat pixel buffer backed by a single byte slice, stride 3 (RGB)
// or 4 (RGBW). Index 0 is the end the controller feeds.
type Buffer struct {
	pix    []byte
	stride int
}

// NewBuffer allocates a buffer of n pixels with the given channel count.
func NewBuffer(n, channels int) (*Buffer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid pixel count: %d", n)
	}
	if channels != 3 && channels != 4 {
		return nil, fmt.Errorf("invalid channel count: %d", channels)
	}
	return &Buffer{
		pix:    make([]byte, n*channels),
		stride: channels,
	}, nil
}

// Len returns the pixel count.
func (b *Buffer) Len() int { return len(b.pix) / b.stride }

// Channels answers the bytes-per-pixel query (3 for RGB, 4 for RGBW).
func (b *Buffer) Channels() int { return b.stride }

// Bytes exposes the backing slice for a sink Write. The layout is
// R,G,B[,W] per pixel in index order.
func (b *Buffer) Bytes() []byte { return b.pix }

func (b *Buffer) Set(i int, c Color) {
	off := i * b.stride
	b.pix[off+0] = c.R
	b.pix[off+1] = c.G
	b.pix[off+2] = c.B
	if b.stride == 4 {
		b.pix[off+3] = c.W
	}
}

func (b *Buffer) At(i int) Color {
	off := i * b.stride
	c := Color{R: b.pix[off+0], G: b.pix[off+1], B: b.pix[off+2]}
	if b.stride == 4 {
		c.W = b.pix[off+3]
	}
	return c
}

// Fill sets every pixel to c.
func (b *Buffer) Fill(c Color) {
	for i := 0; i < b.Len(); i++ {
		b.Set(i, c)
	}
}

// ShiftForward moves the buffer contents n pixels away from index 0 in one
// bulk copy, discards what falls off the far end, and loads the n pixels
// nearest index 0 with fill.
func (b *Buffer) ShiftForward(n int, fill Color) {
	count := b.Len()
	n = n % count
	if n <= 0 {
		return
	}
	copy(b.pix[n*b.stride:], b.pix[:(count-n)*b.stride])
	for i := 0; i < n; i++ {
		b.Set(i, fill)
	}
}

// ShiftBackward is the mirror of ShiftForward: contents move toward index 0
// and the far end is loaded with fill.
func (b *Buffer) ShiftBackward(n int, fill Color) {
	count := b.Len()
	n = n % count
	if n <= 0 {
		return
	}
	copy(b.pix, b.pix[n*b.stride:])
	for i := count - n; i < count; i++ {
		b.Set(i, fill)
	}
}
