package viewer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/Garsondee/Eternal-War/internal/game"
)

// Inspector panel geometry, in screen pixels.
const (
	inspW     = 300
	inspPad   = 6
	inspLineH = 14
)

// Inspector holds the selected cell and, if one was under the cursor, army.
type Inspector struct {
	cell     game.Point
	hasCell  bool
	army     game.ArmyID
	copiedOK bool
}

// handleInspectorClick selects the cell under the cursor and the closest
// army within a few screen pixels of it. Clicking outside the map clears
// the selection.
func (g *Game) handleInspectorClick(mx, my int) {
	if mx < g.offX || my < g.offY || mx >= g.offX+g.gameWidth || my >= g.offY+g.gameHeight {
		return
	}
	wx, wy := g.screenToWorld(mx, my)
	p := game.WorldToCell(wx, wy)
	report, ok := g.sim.World.DescribeCell(p)
	if !ok {
		g.inspector = Inspector{}
		return
	}
	g.inspector = Inspector{cell: p, hasCell: true}
	g.log.Info(report.String())

	// Pick radius: 12 screen pixels expressed in cells.
	pick := 12.0 / (g.camZoom * cellPx)
	best := math.MaxFloat64
	for _, a := range g.sim.World.Armies() {
		d := math.Hypot(a.X+0.5-wx, a.Y+0.5-wy)
		if d < pick && d < best {
			best = d
			g.inspector.army = a.ID
		}
	}
}

// inspectionLines renders the current selection as text lines.
func (g *Game) inspectionLines() []string {
	if !g.inspector.hasCell {
		return nil
	}
	w := g.sim.World
	r, ok := w.DescribeCell(g.inspector.cell)
	if !ok {
		return nil
	}
	cost := fmt.Sprintf("%.2f", r.MovementCost)
	if r.MovementCost < 0 {
		cost = "impassable"
	}
	owner := r.Owner
	if owner == "" {
		owner = "none"
	}
	lines := []string{
		fmt.Sprintf("[ CELL %s ]", r.Cell),
		fmt.Sprintf("terrain: %s", r.TerrainName),
		fmt.Sprintf("move cost: %s  defense: %.1f", cost, r.DefenseBonus),
		fmt.Sprintf("features: %v", r.Features),
		fmt.Sprintf("territory: %d  owner: %s", r.Territory, owner),
	}

	if a, ok := w.Army(g.inspector.army); ok {
		lines = append(lines,
			"",
			fmt.Sprintf("[ ARMY %s  faction F%d ]", a.Label(), a.Faction),
			fmt.Sprintf("state: %s  stance: %s", a.State(), a.Stance),
			fmt.Sprintf("units: %d  hp: %d/%d", len(a.Units), a.TotalHP(), a.MaxHP()),
			fmt.Sprintf("attack: %d  defense: %d", a.AttackPower(), a.DefensePower()),
			fmt.Sprintf("target: A%d  waypoints: %d", a.Target(), len(a.Path())),
		)
		counts := map[string]int{}
		var order []string
		for _, u := range a.Units {
			if counts[u.Type] == 0 {
				order = append(order, u.Type)
			}
			counts[u.Type]++
		}
		for _, t := range order {
			lines = append(lines, fmt.Sprintf("  %-14s x%d", t, counts[t]))
		}
	}
	if g.inspector.copiedOK {
		lines = append(lines, "", "(copied)")
	}
	return lines
}

// copyInspection puts the selected cell's report on the system clipboard.
// Failure is logged only.
func (g *Game) copyInspection() {
	if !g.inspector.hasCell {
		return
	}
	r, ok := g.sim.World.DescribeCell(g.inspector.cell)
	if !ok {
		return
	}
	if err := clipboard.WriteAll(r.String()); err != nil {
		g.log.Warn("clipboard copy failed", zap.Error(err))
		return
	}
	g.inspector.copiedOK = true
}

// drawInspector renders the inspector panel in the top-right corner of the
// viewport.
func (g *Game) drawInspector(screen *ebiten.Image) {
	lines := g.inspectionLines()
	if len(lines) == 0 {
		return
	}

	// Highlight the selected cell on the map.
	cx, cy := g.worldToScreen(float64(g.inspector.cell.X), float64(g.inspector.cell.Y))
	size := float32(cellPx * g.camZoom)
	vector.StrokeRect(screen, cx, cy, size, size, 1.5, color.RGBA{R: 255, G: 255, B: 255, A: 220}, false)

	h := float32(len(lines)*inspLineH + 2*inspPad)
	px := float32(g.offX+g.gameWidth) - inspW - 8
	py := float32(g.offY + 8)

	panelBorder := color.RGBA{R: 55, G: 80, B: 55, A: 255}
	vector.FillRect(screen, px, py, inspW, h, color.RGBA{R: 14, G: 16, B: 14, A: 230}, false)
	vector.StrokeRect(screen, px, py, inspW, h, 1.0, panelBorder, false)
	// Inner highlight along top edge.
	vector.StrokeLine(screen, px+1, py+1, px+inspW-1, py+1, 1.0, color.RGBA{R: 70, G: 110, B: 70, A: 60}, false)

	for i, l := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(px)+inspPad, float64(py)+inspPad+float64(i*inspLineH))
		op.ColorScale.ScaleWithColor(color.RGBA{R: 220, G: 225, B: 220, A: 255})
		text.Draw(screen, l, g.face, op)
	}
}
