package viewer

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Eternal-War/internal/game"
)

const (
	logPanelWidth = 420
	logMaxEntries = 80
	logLineHeight = 14
)

// panelEntry is a single line in the event panel.
type panelEntry struct {
	Tick    int
	Label   string
	Color   color.RGBA
	Message string
}

// EventPanel is a ring buffer of simulation events rendered on-screen.
type EventPanel struct {
	entries []panelEntry
	head    int
	count   int
}

// NewEventPanel creates an event panel with a fixed capacity.
func NewEventPanel() *EventPanel {
	return &EventPanel{
		entries: make([]panelEntry, logMaxEntries),
	}
}

// Add appends an event, dropping the oldest once full.
func (p *EventPanel) Add(e game.EventEntry, c color.RGBA) {
	p.entries[p.head] = panelEntry{
		Tick:    e.Tick,
		Label:   e.Army,
		Color:   c,
		Message: fmt.Sprintf("%s/%s %s", e.Category, e.Key, e.Value),
	}
	p.head = (p.head + 1) % logMaxEntries
	if p.count < logMaxEntries {
		p.count++
	}
}

// recent returns entries in chronological order (oldest first).
func (p *EventPanel) recent() []panelEntry {
	result := make([]panelEntry, p.count)
	for i := 0; i < p.count; i++ {
		idx := (p.head - p.count + i + logMaxEntries) % logMaxEntries
		result[i] = p.entries[idx]
	}
	return result
}

// Draw renders the panel on the right side of the screen.
func (p *EventPanel) Draw(screen *ebiten.Image, face text.Face, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	// Title bar.
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 18, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	title := &text.DrawOptions{}
	title.GeoM.Translate(float64(panelX+8), 2)
	title.ColorScale.ScaleWithColor(color.White)
	text.Draw(screen, "EVENT LOG", face, title)
	vector.StrokeLine(screen, float32(panelX), 18, float32(panelX+logPanelWidth), 18, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := p.recent()
	maxVisible := (panelH - 24) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	const highlight = 3

	y := 22
	for i, e := range entries {
		isRecent := i >= len(entries)-highlight
		if isRecent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), logLineHeight, color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}
		// Faction colour indicator.
		vector.FillRect(screen, float32(panelX+5), float32(y+4), 3, 6, e.Color, false)

		textCol := color.RGBA{R: 150, G: 160, B: 150, A: 255}
		if isRecent {
			textCol = color.RGBA{R: 235, G: 240, B: 235, A: 255}
		}
		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(panelX+12), float64(y))
		op.ColorScale.ScaleWithColor(textCol)
		text.Draw(screen, fmt.Sprintf("%5d [%s] %s", e.Tick, e.Label, e.Message), face, op)
		y += logLineHeight
	}
}
