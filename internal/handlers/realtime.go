package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alextreichler/portfolio/internal/carousel"
	"github.com/alextreichler/portfolio/internal/projects"
	"github.com/alextreichler/portfolio/internal/realtime"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// clientMessage is what the page script sends about the carousel.
type clientMessage struct {
	Type     string `json:"type"` // view, hover, swipe, next, prev, select
	Visible  bool   `json:"visible"`
	Hovering bool   `json:"hovering"`
	Distance int    `json:"distance"`
	Index    int    `json:"index"`
}

type changeMessage struct {
	Type string `json:"type"` // always "change"
	realtime.Event
}

type carouselMessage struct {
	Type   string `json:"type"` // always "carousel"
	Active int    `json:"active"`
	Count  int    `json:"count"`
}

// RealtimeHandler gives every open page a websocket that carries table
// change notifications and drives that page's carousel.
type RealtimeHandler struct {
	Feed     projects.Feed
	Projects *projects.View
	Interval time.Duration
}

func (h *RealtimeHandler) count() int {
	return len(carousel.Items(h.Projects.Projects()))
}

func (h *RealtimeHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan any, 16)
	send := func(m any) {
		select {
		case out <- m:
		case <-ctx.Done():
		}
	}

	// Start where the page was rendered (?active=N on the socket URL).
	count := h.count()
	start := carousel.New(count)
	if i, err := strconv.Atoi(r.URL.Query().Get("active")); err == nil {
		start.Select(i)
	}
	rot := carousel.NewRotator(count, h.Interval, func(active int) {
		send(carouselMessage{Type: "carousel", Active: active, Count: h.count()})
	}).StartAt(start.Active())
	go rot.Run(ctx)

	projectChanges := h.Feed.Subscribe(realtime.TableProjects)
	defer projectChanges.Close()
	configChanges := h.Feed.Subscribe(realtime.TableSiteConfig)
	defer configChanges.Close()

	go h.writeLoop(ctx, conn, out, projectChanges, configChanges, rot)

	send(carouselMessage{Type: "carousel", Active: start.Active(), Count: count})
	h.readLoop(conn, rot)
}

// writeLoop is the only goroutine writing to conn.
func (h *RealtimeHandler) writeLoop(ctx context.Context, conn *websocket.Conn, out <-chan any, projectChanges, configChanges *realtime.Subscription, rot *carousel.Rotator) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	write := func(m any) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(m); err != nil {
			slog.Debug("Websocket write failed", "error", err)
			conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case m := <-out:
			if !write(m) {
				return
			}
		case ev, ok := <-projectChanges.C():
			if !ok {
				return
			}
			// Every page re-reads the whole table on a change, the same
			// as the background watcher; overlapping reads are not ordered.
			h.Projects.Refresh(ctx)
			go rot.Resize(h.count())
			if !write(changeMessage{Type: "change", Event: ev}) {
				return
			}
		case ev, ok := <-configChanges.C():
			if !ok {
				return
			}
			if !write(changeMessage{Type: "change", Event: ev}) {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *RealtimeHandler) readLoop(conn *websocket.Conn, rot *carousel.Rotator) {
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("Websocket read failed", "error", err)
			}
			return
		}

		var m clientMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			slog.Debug("Ignoring malformed realtime message", "error", err)
			continue
		}

		switch m.Type {
		case "view":
			rot.SetInView(m.Visible)
		case "hover":
			rot.SetHovering(m.Hovering)
		case "swipe":
			rot.Swipe(m.Distance)
		case "next":
			rot.Next()
		case "prev":
			rot.Prev()
		case "select":
			rot.Select(m.Index)
		default:
			slog.Debug("Ignoring unknown realtime message", "type", m.Type)
		}
	}
}
