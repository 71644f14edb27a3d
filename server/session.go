package server

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/alimasry/heimer/history"
	"github.com/alimasry/heimer/lifecycle"
	"github.com/alimasry/heimer/ot"
	"github.com/alimasry/heimer/store"
)

type command struct {
	client *Client
	msg    ClientMessage
}

// Session serves the single open document to every connected client.
// All commands are serialized through the Run goroutine, which is the only
// caller of the controller, the history and the workspace.
//
// Session is the controller's Sink and Dialogs: state changes are broadcast,
// alerts and path prompts go to the client whose command caused them.
type Session struct {
	ctrl   *lifecycle.Controller
	hist   *history.History
	ws     *store.Workspace
	engine ot.Engine
	log    *slog.Logger

	clients map[*Client]bool
	current *Client // sender of the command being handled

	incoming chan command
	join     chan *Client
	leave    chan *Client
	done     chan struct{}
}

// NewSession creates a session and attaches it to ctrl.
func NewSession(ctrl *lifecycle.Controller, hist *history.History, ws *store.Workspace, engine ot.Engine, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Session{
		ctrl:     ctrl,
		hist:     hist,
		ws:       ws,
		engine:   engine,
		log:      log.With("component", "session"),
		clients:  make(map[*Client]bool),
		incoming: make(chan command, 64),
		join:     make(chan *Client, 16),
		leave:    make(chan *Client, 16),
		done:     make(chan struct{}),
	}
	ctrl.Attach(s, s)
	return s
}

// Run is the session's main loop. It returns when ctx is cancelled and
// closes Done, which ends every client's write pump.
//
// Only handleLeave closes a client's send channel: the client's read pump
// may still reply to it until the connection drops.
func (s *Session) Run(ctx context.Context) {
	defer func() {
		clear(s.clients)
		close(s.done)
	}()
	for {
		select {
		case c := <-s.join:
			s.handleJoin(c)
		case c := <-s.leave:
			s.handleLeave(c)
		case cmd := <-s.incoming:
			s.handleCommand(ctx, cmd)
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed when Run returns.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) handleJoin(c *Client) {
	s.clients[c] = true
	s.log.Info("client joined", "client", c.ID, "clients", len(s.clients))

	doc := s.ws.Document()
	c.sendMsg(ServerMessage{
		Type:     MsgDoc,
		Content:  doc.Content,
		Revision: doc.Version,
		Clients:  s.clientInfos(),
		State:    s.stateInfo(),
	})

	for other := range s.clients {
		if other != c {
			other.sendMsg(ServerMessage{
				Type:     MsgJoin,
				ClientID: c.ID,
				Name:     c.Name,
				Color:    c.Color,
			})
		}
	}
}

func (s *Session) handleLeave(c *Client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
	s.log.Info("client left", "client", c.ID, "clients", len(s.clients))

	for other := range s.clients {
		other.sendMsg(ServerMessage{
			Type:     MsgLeave,
			ClientID: c.ID,
		})
	}
}

func (s *Session) handleCommand(ctx context.Context, cmd command) {
	s.current = cmd.client
	defer func() { s.current = nil }()

	var err error
	switch cmd.msg.Type {
	case MsgNew:
		s.ctrl.NewDocument()
		s.broadcastDoc()
	case MsgOpen:
		if cmd.msg.Path == "" {
			err = s.ctrl.RequestOpen(ctx)
			break
		}
		if err = s.ctrl.Open(ctx, cmd.msg.Path); err == nil {
			s.broadcastDoc()
		}
	case MsgSave:
		err = s.ctrl.Save(ctx)
	case MsgSaveAs:
		if cmd.msg.Path == "" {
			err = s.ctrl.RequestSaveAs(ctx)
			break
		}
		err = s.ctrl.SaveAs(ctx, cmd.msg.Path)
	case MsgUndo:
		if s.ctrl.Undo() {
			s.broadcastOp(s.hist.Last(), nil)
		}
	case MsgRedo:
		if s.ctrl.Redo() {
			s.broadcastOp(s.hist.Last(), nil)
		}
	case MsgOp:
		s.handleOp(cmd)
	default:
		cmd.client.sendError("unknown message type: " + cmd.msg.Type)
	}

	// Lifecycle failures were already reported through Alert.
	var lerr *lifecycle.Error
	if err != nil && !errors.As(err, &lerr) {
		cmd.client.sendError(err.Error())
	}
}

func (s *Session) handleOp(cmd command) {
	if !s.ctrl.State().Loaded {
		cmd.client.sendError(lifecycle.ErrNoDocument.Error())
		return
	}

	doc := s.ws.Document()
	transformed, err := s.engine.TransformIncoming(cmd.msg.Op, cmd.msg.Revision, doc.History)
	if err != nil {
		s.log.Warn("transform failed", "client", cmd.client.ID, "err", err)
		cmd.client.sendError("transform error: " + err.Error())
		return
	}

	if err := s.hist.Apply(transformed); err != nil {
		s.log.Warn("apply failed", "client", cmd.client.ID, "err", err)
		cmd.client.sendError("apply error: " + err.Error())
		return
	}
	if transformed.IsNoop() {
		cmd.client.sendMsg(ServerMessage{Type: MsgAck, Revision: doc.Version})
		return
	}
	if err := s.ctrl.EditPerformed(); err != nil {
		cmd.client.sendError(err.Error())
		return
	}

	cmd.client.sendMsg(ServerMessage{
		Type:     MsgAck,
		Revision: doc.Version,
	})
	s.broadcastOp(transformed, cmd.client)
}

// broadcastOp sends op to every client except from. Operations produced by
// the server itself (undo, redo) pass a nil from and reach everyone.
func (s *Session) broadcastOp(op ot.Operation, from *Client) {
	doc := s.ws.Document()
	msg := ServerMessage{
		Type:     MsgOp,
		Revision: doc.Version,
		Op:       op,
	}
	if from != nil {
		msg.ClientID = from.ID
	}
	for c := range s.clients {
		if c != from {
			c.sendMsg(msg)
		}
	}
}

// broadcastDoc replaces every client's buffer after new or open.
func (s *Session) broadcastDoc() {
	doc := s.ws.Document()
	s.broadcast(ServerMessage{
		Type:     MsgDoc,
		Content:  doc.Content,
		Revision: doc.Version,
		Clients:  s.clientInfos(),
		State:    s.stateInfo(),
	})
}

func (s *Session) broadcast(msg ServerMessage) {
	for c := range s.clients {
		c.sendMsg(msg)
	}
}

// reply sends msg to the client being served, or to everyone when the
// controller acts on its own.
func (s *Session) reply(msg ServerMessage) {
	if s.current != nil {
		s.current.sendMsg(msg)
		return
	}
	s.broadcast(msg)
}

func (s *Session) stateInfo() *StateInfo {
	return newStateInfo(s.ctrl.Availability(), s.ctrl.State())
}

func (s *Session) clientInfos() []ClientInfo {
	infos := make([]ClientInfo, 0, len(s.clients))
	for c := range s.clients {
		infos = append(infos, c.Info())
	}
	return infos
}

// Update implements lifecycle.Sink.
func (s *Session) Update(a lifecycle.Availability) {
	s.broadcast(ServerMessage{Type: MsgState, State: newStateInfo(a, s.ctrl.State())})
}

// Alert implements lifecycle.Sink.
func (s *Session) Alert(e *lifecycle.Error) {
	s.reply(ServerMessage{
		Type:    MsgError,
		Message: e.Message(),
		Kind:    e.Kind.String(),
		Path:    e.Path,
	})
}

// OpenPath implements lifecycle.Dialogs. Clients answer the prompt with an
// open message carrying the path, so the call itself never yields one.
func (s *Session) OpenPath(dir string) (string, bool) {
	s.reply(ServerMessage{Type: MsgPrompt, Prompt: PromptOpen, Dir: dir})
	return "", false
}

// SavePath implements lifecycle.Dialogs. See OpenPath.
func (s *Session) SavePath(dir string) (string, bool) {
	s.reply(ServerMessage{Type: MsgPrompt, Prompt: PromptSaveAs, Dir: dir})
	return "", false
}
