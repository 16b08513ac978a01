package strand

// Bright scales a color by a brightness level 0..255. Level 255 leaves the
// color unchanged, 0 yields black. Channels are multiplied by (level+1)/256
// and truncated, so the scale never rounds up.
func Bright(c Color, level uint8) Color {
	factor := uint16(level) + 1
	return Color{
		R: uint8(uint16(c.R) * factor / 256),
		G: uint8(uint16(c.G) * factor / 256),
		B: uint8(uint16(c.B) * factor / 256),
		W: uint8(uint16(c.W) * factor / 256),
	}
}

// Wheel maps a hue position 0..255 through three 85-wide linear segments to a
// fully saturated RGB rainbow with no white point.
func Wheel(pos uint8) Color {
	p := int(255 - pos)
	switch {
	case p < 85:
		return Color{R: uint8(255 - p*3), B: uint8(p * 3)}
	case p < 170:
		p -= 85
		return Color{G: uint8(p * 3), B: uint8(255 - p*3)}
	default:
		p -= 170
		return Color{R: uint8(p * 3), G: uint8(255 - p*3)}
	}
}
