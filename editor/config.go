package editor

import (
	"fmt"
	"strconv"
	"strings"

	"ifc-viewer/core"
)

// Config holds the viewer settings that can be changed from the command line.
type Config struct {
	Window core.WindowConfig

	// Highlight is the color of the selected element overlay.
	Highlight core.Color

	// PickOnHover selects whatever is under the cursor as it moves;
	// otherwise a left click is needed.
	PickOnHover bool
}

func DefaultConfig() Config {
	return Config{
		Window:    core.DefaultWindowConfig(),
		Highlight: core.ColorOrange,
	}
}

// ParseColor reads "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (core.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return core.Color{}, fmt.Errorf("color %q: want #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return core.Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	channel := func(shift uint) float32 { return float32((v>>shift)&0xff) / 255 }
	return core.Color{R: channel(24), G: channel(16), B: channel(8), A: channel(0)}, nil
}
