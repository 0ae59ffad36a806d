package utils

import (
	"fmt"
	"image/color"

	"github.com/mrlokans/session-catalog/internal/entities"
)

// Alpha values used by the calendar for block borders and fills.
const (
	BorderAlpha uint8 = 240
	FillAlpha   uint8 = 180
)

var levelRGB = map[entities.Level][3]uint8{
	entities.LevelIntroductory: {116, 191, 75},
	entities.LevelIntermediate: {251, 171, 44},
	entities.LevelAdvanced:     {227, 36, 27},
	entities.LevelGeneral:      {0, 188, 235},
}

// LevelColor returns the colour of a level with the given alpha. Unknown
// levels are grey.
func LevelColor(level entities.Level, alpha uint8) color.NRGBA {
	rgb, ok := levelRGB[level]
	if !ok {
		return color.NRGBA{R: 128, G: 128, B: 128, A: alpha}
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha}
}

// ColorToHexRGB formats a colour as RRGGBB, the form spreadsheet fills use.
func ColorToHexRGB(c color.NRGBA) string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}
