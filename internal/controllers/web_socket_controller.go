package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"route_tracker/internal/editor"
	"route_tracker/internal/geo"
	"route_tracker/internal/render"
)

const writeWait = 5 * time.Second

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client message types.
const (
	msgPointerUp = "pointerup"
	msgDragMove  = "dragmove"
	msgEvent     = "event"
)

// clientMessage is what the map page sends over the socket. Layer and Event
// are set for "event" messages, Lat and Lng for "event" and "dragmove".
type clientMessage struct {
	Type  string           `json:"type"`
	Layer render.Handle    `json:"layer"`
	Event render.EventType `json:"event"`
	Lat   float64          `json:"lat"`
	Lng   float64          `json:"lng"`
}

// SceneHub fans every flushed frame out to the connected map pages.
type SceneHub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan render.Frame
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.Mutex
}

// NewSceneHub creates the hub and starts its broadcast goroutine.
func NewSceneHub() *SceneHub {
	hub := &SceneHub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan render.Frame, 100),
		done:      make(chan struct{}),
	}
	go hub.run()
	return hub
}

func (h *SceneHub) run() {
	for {
		select {
		case <-h.done:
			return
		case frame := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := writeFrame(conn, frame); err != nil {
					logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", conn)).
						Info("SceneHub: write failed, unregistering client")
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

func writeFrame(conn *websocket.Conn, frame render.Frame) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(frame)
}

// PublishFrame queues a frame for broadcast. Frames are dropped when the
// queue is full.
func (h *SceneHub) PublishFrame(frame render.Frame) {
	select {
	case h.broadcast <- frame:
	default:
		logrus.WithField("seq", frame.Seq).Warn("SceneHub: broadcast channel full, dropping frame")
	}
}

// Register sends initial to conn and adds it to the broadcast set.
func (h *SceneHub) Register(conn *websocket.Conn, initial render.Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if initial.Seq > 0 {
		if err := writeFrame(conn, initial); err != nil {
			return err
		}
	}
	h.clients[conn] = true
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("SceneHub: client registered")
	return nil
}

func (h *SceneHub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", conn)).Info("SceneHub: client unregistered")
}

// ClientCount is the number of registered clients.
func (h *SceneHub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close stops the broadcast goroutine and closes every client.
func (h *SceneHub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
}

// SceneController serves the rendered scene and the live socket.
type SceneController struct {
	ed    *editor.Editor
	scene *render.Scene
	hub   *SceneHub
}

func NewSceneController(ed *editor.Editor, scene *render.Scene, hub *SceneHub) *SceneController {
	return &SceneController{ed: ed, scene: scene, hub: hub}
}

// GetScene returns the last flushed frame.
func (sc *SceneController) GetScene(c *gin.Context) {
	c.JSON(http.StatusOK, sc.scene.Last())
}

// HandleSceneWebSocket upgrades the request, pushes every render pass and
// applies the pointer messages the page sends back. A disconnect counts as
// a pointer release so a drag can never keep the map locked.
func (sc *SceneController) HandleSceneWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("HandleSceneWebSocket: upgrade failed")
		return
	}
	defer conn.Close()

	if err := sc.hub.Register(conn, sc.scene.Last()); err != nil {
		logrus.WithError(err).Warn("HandleSceneWebSocket: could not send initial frame")
		return
	}
	defer func() {
		sc.hub.Unregister(conn)
		if err := sc.ed.EndDrag(context.Background()); err != nil {
			logrus.WithError(err).Warn("HandleSceneWebSocket: release on disconnect failed")
		}
	}()

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logrus.Debug("HandleSceneWebSocket: client closed")
			} else {
				logrus.WithError(err).Info("HandleSceneWebSocket: read failed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		sc.handleMessage(c.Request.Context(), p)
	}
}

func (sc *SceneController) handleMessage(ctx context.Context, p []byte) {
	var msg clientMessage
	if err := json.Unmarshal(p, &msg); err != nil {
		logrus.WithError(err).Warn("HandleSceneWebSocket: malformed message")
		return
	}

	var err error
	switch msg.Type {
	case msgPointerUp:
		err = sc.ed.EndDrag(ctx)
	case msgDragMove:
		err = sc.ed.DragTo(ctx, geo.Coord{Lat: msg.Lat, Lng: msg.Lng})
	case msgEvent:
		err = sc.scene.Dispatch(msg.Layer, msg.Event, geo.Coord{Lat: msg.Lat, Lng: msg.Lng})
	default:
		logrus.WithField("type", msg.Type).Warn("HandleSceneWebSocket: unknown message type")
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("type", msg.Type).Debug("HandleSceneWebSocket: message rejected")
	}
}
