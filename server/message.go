package server

import (
	"encoding/json"

	"github.com/alimasry/heimer/lifecycle"
	"github.com/alimasry/heimer/ot"
)

// Message types exchanged over WebSocket.
const (
	// Client to server.
	MsgNew    = "new"
	MsgOpen   = "open"
	MsgSave   = "save"
	MsgSaveAs = "saveAs"
	MsgUndo   = "undo"
	MsgRedo   = "redo"

	// Both directions.
	MsgOp = "op"

	// Server to client.
	MsgDoc    = "doc"
	MsgState  = "state"
	MsgAck    = "ack"
	MsgPrompt = "prompt"
	MsgError  = "error"
	MsgJoin   = "join"
	MsgLeave  = "leave"
)

// Prompt kinds carried by MsgPrompt.
const (
	PromptOpen   = "open"
	PromptSaveAs = "saveAs"
)

// ClientMessage is a message from client to server.
type ClientMessage struct {
	Type     string       `json:"type"`
	Path     string       `json:"path,omitempty"`
	Revision int          `json:"revision"`
	Op       ot.Operation `json:"op,omitempty"`
}

// ServerMessage is a message from server to client.
type ServerMessage struct {
	Type     string       `json:"type"`
	Content  string       `json:"content"`
	Revision int          `json:"revision"`
	Op       ot.Operation `json:"op,omitempty"`
	ClientID string       `json:"clientId,omitempty"`
	Name     string       `json:"name,omitempty"`
	Color    string       `json:"color,omitempty"`
	Message  string       `json:"message,omitempty"`
	Kind     string       `json:"kind,omitempty"`
	Path     string       `json:"path,omitempty"`
	Prompt   string       `json:"prompt,omitempty"`
	Dir      string       `json:"dir,omitempty"`
	Clients  []ClientInfo `json:"clients,omitempty"`
	State    *StateInfo   `json:"state,omitempty"`
}

// ClientInfo describes a connected user.
type ClientInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// StateInfo mirrors lifecycle.Availability plus the open path so remote
// clients can render their menus and title bar.
type StateInfo struct {
	Title  string `json:"title"`
	Path   string `json:"path,omitempty"`
	Dirty  bool   `json:"dirty"`
	Save   bool   `json:"save"`
	SaveAs bool   `json:"saveAs"`
	Undo   bool   `json:"undo"`
	Redo   bool   `json:"redo"`
}

func newStateInfo(a lifecycle.Availability, st lifecycle.State) *StateInfo {
	return &StateInfo{
		Title:  a.Title,
		Path:   st.Path,
		Dirty:  st.Dirty,
		Save:   a.Save,
		SaveAs: a.SaveAs,
		Undo:   a.Undo,
		Redo:   a.Redo,
	}
}

// Encode serializes a ServerMessage to JSON bytes.
func (m ServerMessage) Encode() []byte {
	b, _ := json.Marshal(m)
	return b
}
