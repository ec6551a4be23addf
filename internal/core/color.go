package core

// Color is a foreground colour for a screen cell.
// The platform maps it to a terminal colour; the core never does.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorOrange
	ColorGray
)

// Scene roles. Renderers use these so the palette can change in one place.
const (
	ColorBird     = ColorBrightYellow
	ColorBirdDead = ColorGray
	ColorPipe     = ColorGreen
	ColorPipeCap  = ColorBrightGreen
	ColorGround   = ColorOrange
	ColorHUD      = ColorBrightWhite
)

// birdPalette cycles through distinguishable colours for population members.
var birdPalette = []Color{
	ColorBrightYellow,
	ColorBrightRed,
	ColorBrightCyan,
	ColorBrightMagenta,
	ColorBrightBlue,
	ColorWhite,
	ColorYellow,
	ColorCyan,
}

// AgentColor returns a stable colour for the i-th agent of a population.
func AgentColor(i int) Color {
	if i < 0 {
		i = -i
	}
	return birdPalette[i%len(birdPalette)]
}
