// Package viewer renders a running simulation with ebiten: terrain, roads,
// territories, armies and their paths, plus an event panel and a cell
// inspector.
package viewer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Eternal-War/internal/game"
)

// borderWidth is the pixel gap between the window edge and the battlefield.
const borderWidth = 16

// cellPx is the size of one grid cell in world pixels at zoom 1.
const cellPx = 8

// Game adapts a Simulation to ebiten's game loop.
type Game struct {
	sim *game.Simulation
	log *zap.Logger

	width      int
	height     int
	gameWidth  int // viewport width (event panel takes the rest)
	gameHeight int
	offX       int
	offY       int

	// Pre-rendered map, one pixel per cell. Rebuilt when the view mode changes.
	terrainImg *ebiten.Image
	political  bool

	// Camera pan + zoom, in world pixels.
	camX    float64
	camY    float64
	camZoom float64

	showHUD   bool
	showPaths bool
	prevKeys  map[ebiten.Key]bool

	// Simulation speed control.
	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64

	events    *EventPanel
	lastEvent int

	inspector     Inspector
	prevMouseLeft bool

	face *text.GoXFace
}

// New wraps sim in a viewer with a window of the given size.
func New(sim *game.Simulation, log *zap.Logger, width, height int) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		sim:        sim,
		log:        log,
		width:      width,
		height:     height,
		gameWidth:  width - 2*borderWidth - logPanelWidth,
		gameHeight: height - 2*borderWidth,
		offX:       borderWidth,
		offY:       borderWidth,
		camZoom:    1,
		showHUD:    true,
		showPaths:  true,
		prevKeys:   make(map[ebiten.Key]bool),
		simSpeed:   1,
		events:     NewEventPanel(),
		face:       text.NewGoXFace(basicfont.Face7x13),
	}
	grid := sim.World.Grid
	g.camX = float64(grid.Cols*cellPx) / 2
	g.camY = float64(grid.Rows*cellPx) / 2
	g.renderTerrain()
	return g
}

// renderTerrain paints every cell into terrainImg: terrain colour, roads on
// top, or the owning faction's colour in political mode.
func (g *Game) renderTerrain() {
	w := g.sim.World
	cols, rows := w.Grid.Cols, w.Grid.Rows
	if cols == 0 || rows == 0 {
		g.terrainImg = nil
		return
	}
	pix := make([]byte, cols*rows*4)
	roadCol := color.RGBA{R: 139, G: 115, B: 85, A: 255}
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			c := w.Grid.At(x, y)
			col := color.RGBA{R: 40, G: 40, B: 40, A: 255}
			if c.Terrain != nil {
				col = c.Terrain.RGBA()
			}
			if c.HasFeature(game.FeatureRoad) {
				col = roadCol
			}
			if g.political {
				col = g.politicalColor(game.Point{X: x, Y: y}, col)
			}
			i := (y*cols + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = col.R, col.G, col.B, col.A
		}
	}
	g.terrainImg = ebiten.NewImage(cols, rows)
	g.terrainImg.WritePixels(pix)
}

// politicalColor tints base toward the owner's colour.
func (g *Game) politicalColor(p game.Point, base color.RGBA) color.RGBA {
	t := g.sim.World.TerritoryAt(p)
	if t == nil || t.Owner == 0 {
		return mix(base, color.RGBA{R: 90, G: 90, B: 90, A: 255}, 0.6)
	}
	f, ok := g.sim.World.Faction(t.Owner)
	if !ok {
		return base
	}
	return mix(base, f.Color, 0.6)
}

func mix(a, b color.RGBA, t float64) color.RGBA {
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x)*(1-t) + float64(y)*t))
	}
	return color.RGBA{R: lerp(a.R, b.R), G: lerp(a.G, b.G), B: lerp(a.B, b.B), A: 255}
}

func (g *Game) Update() error {
	// Handle input every frame regardless of sim speed.
	g.handleInput()

	if g.simSpeed > 0 {
		// For speeds > 1 run multiple sim ticks per frame.
		// For speeds < 1 accumulate fractions.
		g.tickAccum += g.simSpeed
		for g.tickAccum >= 1.0 {
			g.tickAccum -= 1.0
			g.sim.Step(g.sim.Config.TickSeconds)
		}
	}

	entries, n := g.sim.Events.Since(g.lastEvent)
	g.lastEvent = n
	for _, e := range entries {
		g.events.Add(e, g.factionColor(e.Faction))
	}
	return nil
}

// handleInput processes camera, speed and toggle keys (edge-triggered).
func (g *Game) handleInput() {
	currentKeys := map[ebiten.Key]bool{}
	pressed := func(k ebiten.Key) bool {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		return currentKeys[k] && !g.prevKeys[k]
	}

	if pressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if pressed(ebiten.KeyT) {
		g.showPaths = !g.showPaths
	}
	if pressed(ebiten.KeyV) {
		g.political = !g.political
		g.renderTerrain()
	}

	// Camera pan: WASD or arrow keys.
	panSpeed := 6.0 / g.camZoom
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.camY -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.camY += panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.camX -= panSpeed
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.camX += panSpeed
	}

	// Camera zoom: mouse wheel or =/- keys.
	const zoomMin, zoomMax = 0.25, 6.0
	if _, wy := ebiten.Wheel(); wy != 0 {
		g.camZoom *= math.Pow(1.12, wy)
	}
	if pressed(ebiten.KeyEqual) {
		g.camZoom *= 1.25
	}
	if pressed(ebiten.KeyMinus) {
		g.camZoom /= 1.25
	}
	g.camZoom = math.Max(zoomMin, math.Min(zoomMax, g.camZoom))

	// Keep the camera centre over the map.
	worldW := float64(g.sim.World.Grid.Cols * cellPx)
	worldH := float64(g.sim.World.Grid.Rows * cellPx)
	g.camX = math.Max(0, math.Min(worldW, g.camX))
	g.camY = math.Max(0, math.Min(worldH, g.camY))

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.5, 1, 2, 4}
	if pressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if pressed(ebiten.KeyComma) {
		for i, s := range speeds {
			if s >= g.simSpeed && i > 0 {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if pressed(ebiten.KeyPeriod) {
		for _, s := range speeds {
			if s > g.simSpeed {
				g.simSpeed = s
				break
			}
		}
	}

	// Left mouse click: inspect the cell (and army) under the cursor.
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) && !g.prevMouseLeft {
		mx, my := ebiten.CursorPosition()
		g.handleInspectorClick(mx, my)
	}
	g.prevMouseLeft = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	// C: copy the inspected cell to the clipboard.
	if pressed(ebiten.KeyC) {
		g.copyInspection()
	}

	g.prevKeys = currentKeys
}

// worldToScreen maps world coordinates (cells) to screen pixels.
func (g *Game) worldToScreen(x, y float64) (float32, float32) {
	sx := (x*cellPx-g.camX)*g.camZoom + float64(g.gameWidth)/2 + float64(g.offX)
	sy := (y*cellPx-g.camY)*g.camZoom + float64(g.gameHeight)/2 + float64(g.offY)
	return float32(sx), float32(sy)
}

// screenToWorld is the inverse of worldToScreen.
func (g *Game) screenToWorld(mx, my int) (float64, float64) {
	wx := (float64(mx)-float64(g.offX)-float64(g.gameWidth)/2)/g.camZoom + g.camX
	wy := (float64(my)-float64(g.offY)-float64(g.gameHeight)/2)/g.camZoom + g.camY
	return wx / cellPx, wy / cellPx
}

func (g *Game) Draw(screen *ebiten.Image) {
	// Window background: very dark, outside battlefield.
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})

	if g.terrainImg != nil {
		var op ebiten.DrawImageOptions
		op.GeoM.Scale(cellPx, cellPx)
		op.GeoM.Translate(-g.camX, -g.camY)
		op.GeoM.Scale(g.camZoom, g.camZoom)
		op.GeoM.Translate(float64(g.gameWidth)/2+float64(g.offX), float64(g.gameHeight)/2+float64(g.offY))
		screen.DrawImage(g.terrainImg, &op)
	}

	if g.showPaths {
		g.drawPaths(screen)
	}
	g.drawArmies(screen)
	g.drawCombats(screen)

	// Battlefield border frame (drawn at screen coords, not transformed).
	ox, oy := float32(g.offX), float32(g.offY)
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)
	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)

	// Event panel (screen coords).
	logX := g.offX + g.gameWidth + g.offX
	g.events.Draw(screen, g.face, logX, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
	g.drawInspector(screen)
}

func (g *Game) factionColor(label string) color.RGBA {
	for _, f := range g.sim.World.Factions() {
		if fmt.Sprintf("F%d", f.ID) == label {
			return f.Color
		}
	}
	return color.RGBA{R: 160, G: 160, B: 160, A: 255}
}

func (g *Game) armyColor(a *game.Army) color.RGBA {
	if f, ok := g.sim.World.Faction(a.Faction); ok {
		return f.Color
	}
	return color.RGBA{R: 200, G: 200, B: 200, A: 255}
}

// drawArmies renders each army as a faction-coloured disc scaled by its
// remaining units, with a health bar underneath.
func (g *Game) drawArmies(screen *ebiten.Image) {
	for _, a := range g.sim.World.Armies() {
		sx, sy := g.worldToScreen(a.X+0.5, a.Y+0.5)
		r := float32(a.CollisionRadius*cellPx*g.camZoom) + float32(math.Sqrt(float64(len(a.Units))))
		col := g.armyColor(a)
		vector.FillCircle(screen, sx, sy, r, col, true)
		outline := color.RGBA{R: 10, G: 10, B: 10, A: 255}
		if a.InCombat() {
			outline = color.RGBA{R: 255, G: 220, B: 60, A: 255}
		}
		vector.StrokeCircle(screen, sx, sy, r, 1.5, outline, true)

		if maxHP := a.MaxHP(); maxHP > 0 {
			frac := float32(a.TotalHP()) / float32(maxHP)
			vector.FillRect(screen, sx-r, sy+r+2, 2*r, 3, color.RGBA{R: 60, G: 0, B: 0, A: 200}, false)
			vector.FillRect(screen, sx-r, sy+r+2, 2*r*frac, 3, color.RGBA{R: 60, G: 220, B: 60, A: 230}, false)
		}

		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(sx+r+3), float64(sy-6))
		op.ColorScale.ScaleWithColor(color.White)
		text.Draw(screen, fmt.Sprintf("%s %d", a.Label(), len(a.Units)), g.face, op)
	}
}

// drawPaths renders the remaining waypoints of every moving army.
func (g *Game) drawPaths(screen *ebiten.Image) {
	for _, a := range g.sim.World.Armies() {
		path := a.Path()
		if len(path) == 0 {
			continue
		}
		col := g.armyColor(a)
		col.A = 140
		px, py := g.worldToScreen(a.X+0.5, a.Y+0.5)
		for _, p := range path {
			nx, ny := g.worldToScreen(float64(p.X)+0.5, float64(p.Y)+0.5)
			vector.StrokeLine(screen, px, py, nx, ny, 1.5, col, true)
			px, py = nx, ny
		}
	}
}

// drawCombats marks every active battle with a crossed-swords style X
// between the two armies.
func (g *Game) drawCombats(screen *ebiten.Image) {
	mark := color.RGBA{R: 255, G: 230, B: 90, A: 230}
	for _, c := range g.sim.World.ActiveCombats() {
		a, okA := g.sim.World.Army(c.A)
		b, okB := g.sim.World.Army(c.B)
		if !okA || !okB {
			continue
		}
		mx, my := g.worldToScreen((a.X+b.X)/2+0.5, (a.Y+b.Y)/2+0.5)
		const s = 5
		vector.StrokeLine(screen, mx-s, my-s, mx+s, my+s, 2, mark, true)
		vector.StrokeLine(screen, mx-s, my+s, mx+s, my-s, 2, mark, true)
	}
}

// drawHUD renders keyboard shortcut hints in the bottom-left corner.
func (g *Game) drawHUD(screen *ebiten.Image) {
	speedStr := fmt.Sprintf("%.1fx", g.simSpeed)
	if g.simSpeed == 0 {
		speedStr = "PAUSED"
	}
	view := "terrain"
	if g.political {
		view = "political"
	}
	lines := []string{
		fmt.Sprintf("SIM: %s  t=%.1fs  tick=%d", speedStr, g.sim.Now(), g.sim.Tick()),
		fmt.Sprintf("armies=%d  combats=%d", len(g.sim.World.Armies()), len(g.sim.World.ActiveCombats())),
		"P=pause  ,/. speed",
		fmt.Sprintf("V=view [%s]  T=paths", view),
		"WASD/arrows=pan  scroll=zoom",
		"click=inspect  C=copy  H=hide",
	}

	const lineH = 14
	const padX = 6
	const padY = 4
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*7 + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)
	bx := float32(g.offX + 4)
	by := float32(g.offY+g.gameHeight) - boxH - 4

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, line := range lines {
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(bx)+padX, float64(by)+padY+float64(i*lineH))
		op.ColorScale.ScaleWithColor(color.RGBA{R: 200, G: 230, B: 200, A: 255})
		text.Draw(screen, line, g.face, op)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}
