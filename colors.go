package termengine

import "image/color"

// ansiPalette holds the 16 standard ANSI colors (indices 0-15): the 8 normal
// colors followed by their 8 bright variants.
var ansiPalette = [16]color.RGBA{
	{0, 0, 0, 255},       // Black
	{205, 49, 49, 255},   // Red
	{13, 188, 121, 255},  // Green
	{229, 229, 16, 255},  // Yellow
	{36, 114, 200, 255},  // Blue
	{188, 63, 188, 255},  // Magenta
	{17, 168, 205, 255},  // Cyan
	{229, 229, 229, 255}, // White

	{102, 102, 102, 255}, // Bright Black
	{241, 76, 76, 255},   // Bright Red
	{35, 209, 139, 255},  // Bright Green
	{245, 245, 67, 255},  // Bright Yellow
	{59, 142, 234, 255},  // Bright Blue
	{214, 112, 214, 255}, // Bright Magenta
	{41, 184, 219, 255},  // Bright Cyan
	{255, 255, 255, 255}, // Bright White
}

// DefaultPalette is the full 256-color palette: the 16 ANSI colors (0-15),
// a 6x6x6 RGB cube (16-231), and a 24-step grayscale ramp (232-255).
var DefaultPalette [256]color.RGBA

func cubeAxis(v int) uint8 {
	if v == 0 {
		return 0
	}
	return uint8(55 + 40*v)
}

func init() {
	for i, c := range ansiPalette {
		DefaultPalette[i] = c
	}

	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				DefaultPalette[i] = color.RGBA{R: cubeAxis(r), G: cubeAxis(g), B: cubeAxis(b), A: 255}
				i++
			}
		}
	}

	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		DefaultPalette[232+j] = color.RGBA{R: gray, G: gray, B: gray, A: 255}
	}
}

// DefaultForeground is the distinguished "default" foreground color, carried
// by convention on any cell whose SGR fg was never set, or was reset with 39.
var DefaultForeground = color.RGBA{204, 204, 204, 255}

// DefaultBackground is the distinguished "default" background color, carried
// by convention on any cell whose SGR bg was never set, or was reset with 49.
var DefaultBackground = color.RGBA{0, 0, 0, 255}

// DefaultCursorColor is the color used to render the cursor when no explicit
// cursor color has been requested.
var DefaultCursorColor = DefaultForeground

// colorFrom256 resolves an 8-bit indexed color (SGR 38;5;N / 48;5;N) to RGB.
// Indices outside 0-255 resolve to the default foreground.
func colorFrom256(idx int) color.RGBA {
	if idx < 0 || idx > 255 {
		return DefaultForeground
	}
	return DefaultPalette[idx]
}

// colorFromANSI resolves a base ANSI code (30-37, 40-47, 90-97, 100-107) to
// one of the 16 standard colors given its 0-7 index and bright flag.
func colorFromANSI(index int, bright bool) color.RGBA {
	if index < 0 || index > 7 {
		return DefaultForeground
	}
	if bright {
		index += 8
	}
	return ansiPalette[index]
}
