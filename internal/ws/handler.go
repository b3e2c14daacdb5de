// Package ws bridges the display client's WebSocket to the controller.
// One client at a time: a new connection replaces the previous one.
package ws

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/termhost/termhost/internal/logging"
	"github.com/termhost/termhost/internal/monitoring"
	"github.com/termhost/termhost/internal/protocol"
	"github.com/termhost/termhost/internal/workspace"
)

// outBufferSize bounds the per-client write queue. A client that falls
// this far behind is disconnected rather than allowed to stall the
// controller loop.
const outBufferSize = 512

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // single local client, loopback bind
	},
}

// Handler upgrades /stream connections and pumps messages both ways.
type Handler struct {
	ctrl    *workspace.Controller
	log     *logging.Logger
	metrics *monitoring.Metrics
}

func NewHandler(ctrl *workspace.Controller, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	if log == nil {
		log = logging.NewNop()
	}
	return &Handler{ctrl: ctrl, log: log, metrics: metrics}
}

// HandleConnection upgrades the request and runs the read loop until
// the client goes away.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connID := uuid.NewString()
	log := h.log.With(zap.String("conn_id", connID))
	log.Info("display client connected", zap.String("remote", conn.RemoteAddr().String()))
	h.metrics.WSConnected()

	cl := newClient(conn, log)
	go cl.writePump()
	h.ctrl.AttachClient(cl)

	defer func() {
		h.ctrl.DetachClient(cl)
		cl.Close()
		h.metrics.WSDisconnected()
		log.Info("display client disconnected")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		msg, err := protocol.DecodeInbound(data)
		if err != nil {
			if errors.Is(err, protocol.ErrUnknownType) {
				log.Debug("ignoring unknown message", zap.Error(err))
			} else {
				log.Warn("dropping malformed message", zap.Error(err))
			}
			continue
		}
		h.ctrl.HandleInbound(msg)
	}
}

// client is one attached display client. It satisfies workspace.Sink;
// Send never blocks the controller loop.
type client struct {
	conn *websocket.Conn
	log  *logging.Logger
	out  chan []byte
	done chan struct{}
	stop sync.Once
}

func newClient(conn *websocket.Conn, log *logging.Logger) *client {
	return &client{
		conn: conn,
		log:  log,
		out:  make(chan []byte, outBufferSize),
		done: make(chan struct{}),
	}
}

func (c *client) Send(msg protocol.Outbound) {
	frame, err := protocol.EncodeOutbound(msg)
	if err != nil {
		c.log.Error("encode outbound message", zap.Error(err))
		return
	}
	select {
	case c.out <- frame:
	case <-c.done:
	default:
		c.log.Warn("display client write queue full, disconnecting")
		c.Close()
	}
}

func (c *client) Close() {
	c.stop.Do(func() { close(c.done) })
}

func (c *client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case frame := <-c.out:
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-c.done:
			closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = c.conn.WriteMessage(websocket.CloseMessage, closing)
			return
		}
	}
}
