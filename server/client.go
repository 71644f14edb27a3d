package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 20
)

// Client is one WebSocket connection to the session.
type Client struct {
	ID    string
	Name  string
	Color string

	session *Session
	conn    *websocket.Conn
	send    chan []byte
	log     *slog.Logger
}

// Guest names shown next to remote cursors.
var (
	moods   = []string{"Curious", "Quiet", "Bold", "Sleepy", "Bright", "Lucky", "Swift", "Calm"}
	thinker = []string{"Oak", "Maple", "Willow", "Cedar", "Birch", "Aspen", "Elm", "Pine"}
	palette = []string{"#e74c3c", "#3498db", "#2ecc71", "#f39c12", "#9b59b6", "#1abc9c", "#e67e22", "#00bcd4"}
)

func pick(xs []string) string { return xs[rand.Intn(len(xs))] }

func newClient(s *Session, conn *websocket.Conn) *Client {
	id := uuid.NewString()
	return &Client{
		ID:      id,
		Name:    pick(moods) + " " + pick(thinker),
		Color:   pick(palette),
		session: s,
		conn:    conn,
		send:    make(chan []byte, 256),
		log:     s.log.With("client", id),
	}
}

var commands = map[string]bool{
	MsgNew: true, MsgOpen: true, MsgSave: true, MsgSaveAs: true,
	MsgUndo: true, MsgRedo: true, MsgOp: true,
}

// ReadPump decodes commands from the WebSocket and queues them on the
// session. It leaves the session when the connection drops.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.session.leave <- c:
		case <-c.session.done:
		}
		c.conn.Close()
	}()

	c.keepAlive()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read failed", "err", err)
			}
			return
		}

		msg, err := decode(data)
		if err != nil {
			c.sendError(err.Error())
			continue
		}

		select {
		case c.session.incoming <- command{client: c, msg: msg}:
		case <-c.session.done:
			return
		}
	}
}

// keepAlive extends the read deadline on every pong.
func (c *Client) keepAlive() {
	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
}

func decode(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, errors.New("invalid message format")
	}
	if !commands[msg.Type] {
		return msg, errors.New("unknown message type: " + msg.Type)
	}
	return msg, nil
}

// WritePump drains the send channel onto the WebSocket and keeps the
// connection alive with pings. A closed send channel or a stopped session
// ends the connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		var (
			kind int
			data []byte
		)
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.write(websocket.CloseMessage, nil)
				return
			}
			kind, data = websocket.TextMessage, msg
		case <-ticker.C:
			kind = websocket.PingMessage
		case <-c.session.done:
			c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		}
		if err := c.write(kind, data); err != nil {
			c.log.Debug("write failed", "err", err)
			return
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(kind, data)
}

func (c *Client) sendMsg(msg ServerMessage) {
	select {
	case c.send <- msg.Encode():
	default:
		c.log.Warn("send buffer full, dropping message", "type", msg.Type)
	}
}

func (c *Client) sendError(message string) {
	c.sendMsg(ServerMessage{Type: MsgError, Message: message})
}

func (c *Client) Info() ClientInfo {
	return ClientInfo{ID: c.ID, Name: c.Name, Color: c.Color}
}
