package hal

// packRGB565 folds 8-bit channels into the framebuffer's native pixel.
func packRGB565(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3
}

// unpackRGB565 expands a native pixel to 8-bit channels, scaling so a
// full-intensity channel maps to 255.
func unpackRGB565(p uint16) (r, g, b uint8) {
	r = uint8((p >> 11 & 0x1F) * 255 / 31)
	g = uint8((p >> 5 & 0x3F) * 255 / 63)
	b = uint8((p & 0x1F) * 255 / 31)
	return r, g, b
}
