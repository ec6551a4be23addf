package flappy

import (
	"fmt"
	"math"

	"github.com/vovakirdan/flappy-evolve/internal/config"
	"github.com/vovakirdan/flappy-evolve/internal/core"
)

// Visual characters for rendering
const (
	BirdBodyChar  = '●'
	BirdUpChar    = '▶'
	BirdDiveChar  = '▼'
	PipeChar      = '█'
	PipeCapTop    = '▀'
	PipeCapBottom = '▄'
	GroundChar    = '▒'
	GroundTopChar = '═'
	SkyEdgeChar   = '│'
)

// Projection maps world pixels onto a character grid. Terminal cells are about
// twice as tall as wide, so one row covers twice the pixels of one column.
type Projection struct {
	OffX       int // first column of the field
	Cols, Rows int
	fieldW     float64
	fieldH     float64
}

// NewProjection fits the field into a screen of the given size, keeping
// the aspect ratio and centring it in the space left of panelW columns.
func NewProjection(field config.FieldConfig, screenW, screenH, panelW int) Projection {
	rows := core.Max(screenH, 1)
	cols := core.Max(field.Width*2*rows/field.Height, 1)

	avail := core.Max(screenW-panelW, 1)
	if cols > avail {
		// Too narrow: fit the width instead and leave rows blank at the bottom.
		cols = avail
		rows = core.Max(core.Min(rows, field.Height*cols/(2*field.Width)), 1)
	}
	return Projection{
		OffX:   (avail - cols) / 2,
		Cols:   cols,
		Rows:   rows,
		fieldW: float64(field.Width),
		fieldH: float64(field.Height),
	}
}

// Col converts a world x to a screen column.
func (p Projection) Col(x float64) int {
	return p.OffX + int(math.Floor(x*float64(p.Cols)/p.fieldW))
}

// Row converts a world y to a screen row.
func (p Projection) Row(y float64) int {
	return int(math.Floor(y * float64(p.Rows) / p.fieldH))
}

// Right is the first column after the field.
func (p Projection) Right() int {
	return p.OffX + p.Cols
}

// inField clips a column to the field.
func (p Projection) inField(col int) bool {
	return col >= p.OffX && col < p.Right()
}

// HUD is extra text drawn beside the field.
type HUD struct {
	Title string
	Lines []string
}

// hudWidth is the panel reserved for the HUD when the screen is wide enough.
const hudWidth = 24

// RenderEpisode draws the field, pipes, ground and every active bird of ep,
// with a side panel of statistics.
func RenderEpisode(dst *core.Screen, ep *Episode, hud HUD) Projection {
	cfg := ep.Config()
	panel := hudWidth
	if dst.Width() < 2*hudWidth {
		panel = 0
	}
	proj := NewProjection(cfg.Field, dst.Width(), dst.Height(), panel)

	// Field border
	dst.DrawVLine(proj.OffX-1, 0, proj.Rows, SkyEdgeChar, core.ColorGray)
	dst.DrawVLine(proj.Right(), 0, proj.Rows, SkyEdgeChar, core.ColorGray)

	for _, p := range ep.Pipes() {
		drawPipe(dst, proj, cfg, p)
	}

	groundRow := proj.Row(float64(cfg.Field.GroundY))
	dst.DrawHLine(proj.OffX, groundRow, proj.Cols, GroundTopChar, core.ColorGround)
	dst.DrawRectColored(core.NewRect(proj.OffX, groundRow+1, proj.Cols, proj.Rows-groundRow-1), GroundChar, core.ColorGround)

	// Draw in reverse so the lowest ID ends on top.
	active := ep.Active()
	for i := len(active) - 1; i >= 0; i-- {
		a := active[i]
		color := core.ColorBird
		if a.Driven() && len(ep.Agents()) > 1 {
			color = core.AgentColor(a.ID)
		}
		drawBird(dst, proj, a.Bird, color)
	}

	lines := []string{
		fmt.Sprintf("Score: %d", ep.Score()),
		fmt.Sprintf("Tick:  %d", ep.Tick()),
	}
	if n := len(ep.Agents()); n > 1 {
		lines = append(lines, fmt.Sprintf("Alive: %d/%d", len(active), n))
	}
	if g := ep.Generation(); g > 0 {
		lines = append(lines, fmt.Sprintf("Gen:   %d", g))
	}
	lines = append(lines, hud.Lines...)

	if panel > 0 {
		x := proj.Right() + 2
		if hud.Title != "" {
			dst.DrawTextColored(x, 1, hud.Title, core.ColorHUD)
		}
		for i, l := range lines {
			dst.DrawText(x, 3+i, l)
		}
	} else {
		dst.DrawTextColored(proj.OffX, 0, lines[0], core.ColorHUD)
	}
	return proj
}

func drawPipe(dst *core.Screen, proj Projection, cfg config.FlappyConfig, p *Pipe) {
	c0 := proj.Col(p.X)
	c1 := proj.Col(p.Right())
	gapTop := proj.Row(float64(p.Height))
	gapBottom := proj.Row(float64(p.Bottom()))
	groundRow := proj.Row(float64(cfg.Field.GroundY))

	for x := c0; x < c1; x++ {
		if !proj.inField(x) {
			continue
		}
		dst.DrawVLine(x, 0, gapTop, PipeChar, core.ColorPipe)
		if gapTop > 0 {
			dst.SetColored(x, gapTop-1, PipeCapTop, core.ColorPipeCap)
		}
		dst.DrawVLine(x, gapBottom, groundRow-gapBottom, PipeChar, core.ColorPipe)
		if gapBottom < groundRow {
			dst.SetColored(x, gapBottom, PipeCapBottom, core.ColorPipeCap)
		}
	}
}

func drawBird(dst *core.Screen, proj Projection, b *Bird, color core.Color) {
	c0 := proj.Col(b.X)
	c1 := core.Max(proj.Col(b.X+float64(b.Width())), c0+1)
	row := proj.Row(b.Y + float64(b.Height())/2)

	head := BirdUpChar
	if b.Tilt <= -45 {
		head = BirdDiveChar
	}
	for x := c0; x < c1-1; x++ {
		dst.SetColored(x, row, BirdBodyChar, color)
	}
	dst.SetColored(c1-1, row, head, color)
}
