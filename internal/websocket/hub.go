package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Naimurthedang/bondly-main/domain/entities"
	"github.com/Naimurthedang/bondly-main/domain/repositories"
	"github.com/Naimurthedang/bondly-main/internal/audio"
	"github.com/Naimurthedang/bondly-main/internal/metrics"
	"github.com/Naimurthedang/bondly-main/internal/views"
	"github.com/Naimurthedang/bondly-main/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024 * 1024 // 1MB for camera chunks

	// Time allowed for the follow-up of a finished recording.
	responseTimeout = 5 * time.Minute
)

// ErrDisconnected is reported to a view whose device stream went away.
var ErrDisconnected = errors.New("capture device disconnected")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active capture streams.
type Hub struct {
	// Registered clients, by device id.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Closed when Run returns.
	done chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	capture   *usecase.CaptureService
	validator *MessageValidator

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(capture *usecase.CaptureService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		capture:    capture,
		validator:  NewMessageValidator(),
		logger:     logger,
	}
}

// Run starts the hub's main loop. It closes every stream when ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				client.closeSend()
				metrics.CaptureConnections.Dec()
			}
			h.mu.Unlock()
			h.logger.Info("Capture hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.deviceID] = client
			h.mu.Unlock()
			metrics.CaptureConnections.Inc()
			h.logger.Info("Client registered",
				zap.String("deviceID", client.deviceID),
				zap.String("sessionID", client.sessionID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.deviceID]; ok {
				delete(h.clients, client.deviceID)
				client.closeSend()
				metrics.CaptureConnections.Dec()
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("deviceID", client.deviceID))
		}
	}
}

// GetActiveDevices returns the ids of the connected devices.
func (h *Hub) GetActiveDevices() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	return ids
}

type WriteData struct {
	// MessageType is the type of the websocket message.
	// Expect websocket.TextMessage or websocket.CloseMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the view
// recording from it. It is the view's capture device: releasing it closes
// the connection.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	deviceID  string
	sessionID string
	kind      entities.DeviceKind
	stream    *usecase.CaptureStream

	logger *zap.Logger

	mu sync.Mutex
	// handling is set while readPump processes a message; a release that
	// happens meanwhile closes the connection after the reply is queued.
	handling bool
	released bool
	closing  bool
	closed   bool
}

var _ views.Device = (*Client)(nil)

// ParseCaptureView returns the route a capture stream feeds. "camera" is
// accepted for the baby cam.
func ParseCaptureView(s string) (entities.Route, error) {
	if s == "camera" {
		return entities.RouteBabyCam, nil
	}
	return entities.ParseRoute(s)
}

// HandleWebSocketWithAuth handles a capture stream of an authenticated
// session. The view comes from the "view" query parameter and, for the
// friends view, the friend from "friend".
func HandleWebSocketWithAuth(hub *Hub, c echo.Context, sessionID string, logger *zap.Logger) error {
	route, err := ParseCaptureView(c.QueryParam("view"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	stream, err := hub.capture.Open(c.Request().Context(), sessionID, route, c.QueryParam("friend"))
	switch {
	case errors.Is(err, usecase.ErrSessionExpired), errors.Is(err, repositories.ErrSessionNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, usecase.ErrViewNotShown):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	kind := entities.DeviceMicrophone
	if route == entities.RouteBabyCam {
		kind = entities.DeviceCamera
	}
	deviceID := uuid.New().String()
	client := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan WriteData, 256),
		deviceID:  deviceID,
		sessionID: sessionID,
		kind:      kind,
		stream:    stream,
		logger: logger.With(
			zap.String("deviceID", deviceID),
			zap.String("sessionID", sessionID),
			zap.String("view", string(route))),
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return errors.New("capture hub stopped")
	}

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// Release implements views.Device.
func (c *Client) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil
	}
	c.released = true
	if !c.handling {
		c.closeLocked()
	}
	c.logger.Info("Capture device released")
	return nil
}

func (c *Client) isReleased() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.released
}

// closeLocked queues a close frame; writePump ends after writing it.
func (c *Client) closeLocked() {
	if c.closing {
		return
	}
	c.closing = true
	c.enqueueLocked(WriteData{
		Type:    websocket.CloseMessage,
		Payload: websocket.FormatCloseMessage(websocket.CloseNormalClosure, "device released"),
	})
}

// closeSend is called by the hub once the client is unregistered.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) enqueueLocked(data WriteData) {
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warn("Send buffer full, dropping message", zap.Int("type", data.Type))
	}
}

func (c *Client) sendJSON(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to encode message", zap.Error(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueueLocked(WriteData{Type: websocket.TextMessage, Payload: payload})
}

// readPump pumps messages from the websocket connection to the view.
func (c *Client) readPump() {
	defer func() {
		if !c.isReleased() {
			c.stream.Failed(ErrDisconnected)
		}
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		c.mu.Lock()
		c.handling = true
		c.mu.Unlock()

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		case websocket.BinaryMessage:
			c.processBinaryChunk(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
		}

		c.mu.Lock()
		c.handling = false
		if c.released {
			c.closeLocked()
		}
		c.mu.Unlock()
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}
			if message.Type == websocket.CloseMessage {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// processMessage processes a control message from the browser
func (c *Client) processMessage(message []byte) {
	msg, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Invalid message", zap.Error(err))
		c.sendJSON(CreateErrorMessage(ErrorCodeInvalidMessage, "invalid message", err.Error()))
		return
	}

	switch m := msg.(type) {
	case *DeviceReadyMessage:
		err := c.stream.Ready(c, entities.Device{
			ID:          c.deviceID,
			Kind:        c.kind,
			MIMEType:    m.MIMEType,
			SampleRate:  m.SampleRate,
			ConnectedAt: time.Now(),
		})
		if err != nil {
			// The device was released; the close follows the error.
			c.sendError(err)
			return
		}
		c.sendState()

	case *DeviceErrorMessage:
		c.stream.Failed(errors.New(m.Message))
		c.sendState()

	case *RecordingMessage:
		if m.Type == MessageTypeRecordingStart {
			if err := c.stream.Start(); err != nil {
				c.sendError(err)
				return
			}
			c.sendState()
			return
		}
		go c.finishRecording()

	case *AudioChunkMessage:
		if err := c.stream.WriteBase64(m.AudioData); err != nil {
			c.sendError(err)
		}

	case *PingMessage:
		c.sendJSON(CreatePongMessage(m.Data))
	}
}

// processBinaryChunk appends raw media bytes to the recording
func (c *Client) processBinaryChunk(data []byte) {
	if err := c.stream.Write(data); err != nil {
		c.sendError(err)
		return
	}
	c.logger.Debug("Received binary chunk", zap.Int("size", len(data)))
}

// finishRecording stops the recording and replies with the companion's
// answer and the view state. It runs outside readPump so pings keep
// flowing during slow gateway calls.
func (c *Client) finishRecording() {
	ctx, cancel := context.WithTimeout(context.Background(), responseTimeout)
	defer cancel()

	started := time.Now()
	snap, err := c.stream.Stop(ctx)
	if err != nil {
		c.logger.Warn("Recording follow-up failed", zap.Error(err))
		c.sendError(err)
	}
	if snap == nil {
		return
	}

	if text, audioURL, ok := answerOf(snap); ok {
		c.sendJSON(CreateAIResponseMessage(string(c.stream.Route()), text, audioURL))
	}
	c.sendJSON(CreateStateMessage(string(c.stream.Route()), snap))
	c.logger.Info("Recording handled", zap.Duration("duration", time.Since(started)))
}

func (c *Client) sendState() {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	snap, err := c.stream.Snapshot(ctx)
	if err != nil {
		c.sendError(err)
		return
	}
	c.sendJSON(CreateStateMessage(string(c.stream.Route()), snap))
}

func (c *Client) sendError(err error) {
	c.sendJSON(CreateErrorMessage(errorCode(err), err.Error(), ""))
}

// answerOf extracts what the companion said from a view snapshot.
func answerOf(snap any) (text, audioURL string, ok bool) {
	switch s := snap.(type) {
	case views.FriendSnapshot:
		if s.State.Status == views.StatusSuccess && s.State.Value != nil {
			return s.State.Value.Text, s.State.Value.AudioURL, true
		}
	case views.GuideSnapshot:
		if s.State.Status == views.StatusSuccess && s.State.Value != nil {
			return s.State.Value.Summary, "", true
		}
	case views.CameraSnapshot:
		if s.State.Status == views.StatusSuccess && s.State.Value != nil {
			return s.State.Value.Text, s.State.Value.AudioURL, true
		}
	}
	return "", "", false
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, views.ErrNoDevice):
		return ErrorCodeNoDevice
	case errors.Is(err, views.ErrRecording), errors.Is(err, views.ErrNotRecording):
		return ErrorCodeInvalidState
	case errors.Is(err, views.ErrClipTooLarge):
		return ErrorCodeClipTooLarge
	case errors.Is(err, views.ErrEmptyClip):
		return ErrorCodeEmptyClip
	case errors.Is(err, views.ErrEmptyTranscript):
		return ErrorCodeEmptyTranscript
	case errors.Is(err, views.ErrBusy):
		return ErrorCodeBusy
	case errors.Is(err, views.ErrDiscarded):
		return ErrorCodeDiscarded
	case errors.Is(err, repositories.ErrUnauthorized):
		return ErrorCodeUnauthorized
	case errors.Is(err, usecase.ErrSessionExpired), errors.Is(err, repositories.ErrSessionNotFound):
		return ErrorCodeSessionExpired
	case errors.Is(err, usecase.ErrViewNotShown):
		return ErrorCodeViewNotShown
	default:
		var decodeErr *audio.DecodeError
		if errors.As(err, &decodeErr) {
			return ErrorCodeInvalidMessage
		}
		return ErrorCodeInternal
	}
}
