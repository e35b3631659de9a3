package observer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Garsondee/Eternal-War/internal/game"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := game.DefaultSimConfig()
	cfg.Map.Cols, cfg.Map.Rows = 20, 20
	sim, err := game.NewSimulation(
		game.WithConfig(cfg),
		game.WithSeed(7),
		game.WithFaction(1, "North", [3]uint8{60, 110, 230}),
		game.WithFaction(2, "South", [3]uint8{210, 50, 50}),
		game.WithArmy(1, 2, 2, game.Roster{{Type: "spearman", Count: 3}}),
		game.WithArmy(2, 17, 17, game.Roster{{Type: "archer", Count: 2}}),
	)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	s := New(sim, nil)
	s.StreamInterval = 5 * time.Millisecond
	return s
}

func get(t *testing.T, h http.Handler, url string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if out != nil && rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("%s: decode: %v\n%s", url, err, rec.Body.String())
		}
	}
	return rec.Code
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	var body map[string]any
	if code := get(t, s.Router(), "/api/healthz", &body); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestWorldReflectsAdvance(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	var w struct {
		Cols     int `json:"cols"`
		Rows     int `json:"rows"`
		Factions []struct {
			Name  string `json:"name"`
			Color string `json:"color"`
		} `json:"factions"`
		Snapshot game.SimSnapshot `json:"snapshot"`
		Stats    game.RunStats    `json:"stats"`
	}
	if code := get(t, h, "/api/world", &w); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if w.Cols != 20 || w.Rows != 20 {
		t.Errorf("size = %dx%d, want 20x20", w.Cols, w.Rows)
	}
	if len(w.Factions) != 2 || w.Factions[0].Color != "#3c6ee6" {
		t.Errorf("factions = %+v", w.Factions)
	}
	if len(w.Snapshot.Armies) != 2 {
		t.Fatalf("armies = %d, want 2", len(w.Snapshot.Armies))
	}
	if w.Snapshot.Tick != 0 {
		t.Errorf("tick = %d before any advance", w.Snapshot.Tick)
	}

	s.Advance(3)
	if code := get(t, h, "/api/world", &w); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if w.Snapshot.Tick != 3 {
		t.Errorf("tick = %d after Advance(3), want 3", w.Snapshot.Tick)
	}
	if w.Stats.Outcome != "inconclusive" {
		t.Errorf("outcome = %q, want inconclusive", w.Stats.Outcome)
	}
}

func TestArmyEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	var a game.ArmySnapshot
	if code := get(t, h, "/api/armies/1", &a); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if a.Label != "A1" || a.Units != 3 || a.Cell != (game.Point{X: 2, Y: 2}) {
		t.Errorf("army = %+v", a)
	}
	if code := get(t, h, "/api/armies/99", nil); code != http.StatusNotFound {
		t.Errorf("missing army status = %d, want 404", code)
	}
	if code := get(t, h, "/api/armies/abc", nil); code != http.StatusNotFound {
		t.Errorf("non-numeric id status = %d, want 404 (no route)", code)
	}
}

func TestCellEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	var c game.CellReport
	if code := get(t, h, "/api/cells/3/4", &c); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if c.TerrainKey != "GRASSLAND" || !c.Walkable || c.MovementCost != 1 {
		t.Errorf("cell = %+v", c)
	}
	if code := get(t, h, "/api/cells/50/50", nil); code != http.StatusNotFound {
		t.Errorf("off-map status = %d, want 404", code)
	}
	if code := get(t, h, "/api/cells/-1/0", nil); code != http.StatusNotFound {
		t.Errorf("negative cell status = %d, want 404", code)
	}
}

func TestPathEndpoint(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	var p pathResponse
	if code := get(t, h, "/api/path?from=0,0&to=3,0", &p); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if p.Steps != 3 || p.Cost != 3 || p.Mode != "fastest" {
		t.Errorf("path = %+v", p)
	}
	if p.Path[0] != (game.Point{}) || p.Path[len(p.Path)-1] != (game.Point{X: 3, Y: 0}) {
		t.Errorf("endpoints = %v", p.Path)
	}

	if code := get(t, h, "/api/path?from=2,2&to=2,2&mode=shortest", &p); code != http.StatusOK {
		t.Fatalf("same-cell status = %d", code)
	}
	if p.Steps != 0 || len(p.Path) != 0 {
		t.Errorf("same-cell path = %+v", p)
	}

	for _, url := range []string{
		"/api/path?from=0&to=3,0",
		"/api/path?from=0,0&to=x,0",
		"/api/path?from=0,0&to=3,0&mode=scenic",
	} {
		if code := get(t, h, url, nil); code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", url, code)
		}
	}
	if code := get(t, h, "/api/path?from=0,0&to=40,40", nil); code != http.StatusNotFound {
		t.Errorf("off-map goal status = %d, want 404", code)
	}
}

func TestEventsSince(t *testing.T) {
	s := newTestServer(t)
	h := s.Router()

	var ev eventsResponse
	if code := get(t, h, "/api/events", &ev); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if ev.Next < 2 {
		t.Fatalf("next = %d, want at least the two army_added events", ev.Next)
	}
	found := false
	for _, e := range ev.Events {
		if e.Category == "world" && e.Key == "army_added" {
			found = true
		}
	}
	if !found {
		t.Error("army_added not reported")
	}

	var tail eventsResponse
	get(t, h, "/api/events?since="+strconv.Itoa(ev.Next), &tail)
	if len(tail.Events) != 0 || tail.Next != ev.Next {
		t.Errorf("since=next returned %d events, next %d", len(tail.Events), tail.Next)
	}
	if code := get(t, h, "/api/events?since=-4", nil); code != http.StatusBadRequest {
		t.Errorf("negative since status = %d, want 400", code)
	}
}

func TestEventBacklogIsBounded(t *testing.T) {
	s := newTestServer(t)
	s.maxEvents = 5
	h := s.Router()
	for i := 0; i < 12; i++ {
		s.sim.Events.Global("test", "tick", strconv.Itoa(i), float64(i))
	}
	s.publish()

	if len(s.events) != 5 {
		t.Fatalf("retained %d events, want 5", len(s.events))
	}
	total := s.sim.Events.Len()

	var ev eventsResponse
	get(t, h, "/api/events?since=0", &ev)
	if len(ev.Events) != 5 || ev.Next != total {
		t.Fatalf("since=0 returned %d events, next %d; want 5, %d", len(ev.Events), ev.Next, total)
	}
	if last := ev.Events[4]; last.Key != "tick" || last.Value != "11" {
		t.Fatalf("newest event = %+v", last)
	}

	// Indices stay absolute after trimming.
	var tail eventsResponse
	get(t, h, "/api/events?since="+strconv.Itoa(total-2), &tail)
	if len(tail.Events) != 2 || tail.Events[0].Value != "10" || tail.Next != total {
		t.Fatalf("tail = %+v", tail)
	}
}

func TestWebsocketStreamsSnapshots(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var snap game.SimSnapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("first read: %v", err)
	}
	if snap.Tick != 0 || len(snap.Armies) != 2 {
		t.Fatalf("first snapshot = tick %d, %d armies", snap.Tick, len(snap.Armies))
	}

	s.Advance(2)
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("second read: %v", err)
	}
	if snap.Tick != 2 {
		t.Errorf("second snapshot tick = %d, want 2", snap.Tick)
	}
}
