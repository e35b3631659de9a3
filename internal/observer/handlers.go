package observer

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Garsondee/Eternal-War/internal/game"
)

type worldResponse struct {
	worldInfo
	Snapshot game.SimSnapshot `json:"snapshot"`
	Stats    game.RunStats    `json:"stats"`
}

type pathResponse struct {
	From  game.Point   `json:"from"`
	To    game.Point   `json:"to"`
	Mode  string       `json:"mode"`
	Path  []game.Point `json:"path"`
	Steps int          `json:"steps"`
	Cost  float64      `json:"cost"`
}

type eventsResponse struct {
	Events []game.EventEntry `json:"events"`
	Next   int               `json:"next"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "tick": snap.Tick})
}

func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := worldResponse{worldInfo: s.static, Snapshot: s.snap, Stats: s.stats}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleArmy(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad army id")
		return
	}
	for _, a := range s.snapshot().Armies {
		if a.ID == game.ArmyID(id) {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("army %d: %v", id, game.ErrArmyNotFound))
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	x, errX := strconv.Atoi(vars["x"])
	y, errY := strconv.Atoi(vars["y"])
	if errX != nil || errY != nil {
		writeError(w, http.StatusBadRequest, "bad cell coordinates")
		return
	}
	// Terrain, features and territories are fixed after generation.
	report, ok := s.sim.World.DescribeCell(game.Point{X: x, Y: y})
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("cell (%d,%d) is off the map", x, y))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handlePath previews a route: /api/path?from=x,y&to=x,y&mode=fastest.
func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parsePoint(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from: "+err.Error())
		return
	}
	to, err := parsePoint(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to: "+err.Error())
		return
	}
	mode := game.PathFastest
	switch q.Get("mode") {
	case "", "fastest":
	case "shortest":
		mode = game.PathShortest
	default:
		writeError(w, http.StatusBadRequest, "mode must be fastest or shortest")
		return
	}

	path, err := game.FindPath(s.grid, from, to, mode)
	if errors.Is(err, game.ErrNoPath) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.log.Warn("path preview failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	steps := 0
	if len(path) > 1 {
		steps = len(path) - 1
	}
	writeJSON(w, http.StatusOK, pathResponse{
		From:  from,
		To:    to,
		Mode:  mode.String(),
		Path:  path,
		Steps: steps,
		Cost:  game.PathCost(s.grid, path, mode),
	})
}

func parsePoint(v string) (game.Point, error) {
	xs, ys, ok := strings.Cut(v, ",")
	if !ok {
		return game.Point{}, fmt.Errorf("want x,y, got %q", v)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return game.Point{}, fmt.Errorf("bad x: %w", err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return game.Point{}, fmt.Errorf("bad y: %w", err)
	}
	return game.Point{X: x, Y: y}, nil
}

// handleEvents returns the events recorded since index ?since=N and the
// index to ask for next time. Only the retained backlog is served.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	since := 0
	if v := r.URL.Query().Get("since"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = n
	}
	s.mu.RLock()
	total := s.eventBase + len(s.events)
	since = max(since, s.eventBase)
	var out []game.EventEntry
	if since < total {
		out = make([]game.EventEntry, total-since)
		copy(out, s.events[since-s.eventBase:])
	}
	s.mu.RUnlock()
	if out == nil {
		out = []game.EventEntry{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{Events: out, Next: total})
}

// handleWS streams a snapshot whenever the simulation tick changes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("ws: upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	s.log.Info("ws: connect", zap.String("remote", r.RemoteAddr))

	// Reader goroutine: clients send nothing we act on, but reading is how a
	// close frame is noticed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(snap game.SimSnapshot) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(snap); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("ws: write failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
			}
			return false
		}
		return true
	}

	last := s.snapshot()
	if !send(last) {
		return
	}
	ticker := time.NewTicker(s.StreamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			s.log.Info("ws: closed", zap.String("remote", r.RemoteAddr))
			return
		case <-ticker.C:
			snap := s.snapshot()
			if snap.Tick == last.Tick {
				continue
			}
			if !send(snap) {
				return
			}
			last = snap
		}
	}
}

func hexColor(r, g, b uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
