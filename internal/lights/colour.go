package lights

import (
	"math"

	"github.com/wheelibin/merossd/internal/constants"
)

// LevelToLuminance converts a 0-254 level into the device's 0-100 luminance
func LevelToLuminance(level int) int {
	level = clamp(level, 0, constants.MaxLevel)
	return int(math.Round(float64(level) / constants.MaxLevel * 100))
}

// HueSaturationToRGB converts 0-254 hue and saturation (value fixed at max)
// into 8-bit RGB channels.
func HueSaturationToRGB(hue254 int, sat254 int) (uint8, uint8, uint8) {
	h := float64(clamp(hue254, 0, constants.MaxLevel)) / constants.MaxLevel * 360
	s := float64(clamp(sat254, 0, constants.MaxLevel)) / constants.MaxLevel
	v := 1.0

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return toChannel(r + m), toChannel(g + m), toChannel(b + m)
}

func PackRGB(r uint8, g uint8, b uint8) int {
	return int(r)<<16 | int(g)<<8 | int(b)
}

func UnpackRGB(rgb int) (uint8, uint8, uint8) {
	return uint8(rgb >> 16 & 0xff), uint8(rgb >> 8 & 0xff), uint8(rgb & 0xff)
}

func toChannel(v float64) uint8 {
	return uint8(clamp(int(math.Round(v*255)), 0, 255))
}

func clamp(v int, lower int, upper int) int {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
