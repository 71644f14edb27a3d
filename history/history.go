// Package history keeps the undo and redo stacks of the open document.
package history

import (
	"fmt"

	"github.com/alimasry/heimer/ot"
)

// Buffer exposes the document edits are applied to. The document behind it
// may be replaced (new/open); the owner calls Reset when that happens.
type Buffer interface {
	Document() *ot.Document
}

type entry struct {
	op      ot.Operation
	inverse ot.Operation
}

// History records applied operations together with their inverses.
// It is not safe for concurrent use.
type History struct {
	buf   Buffer
	limit int
	undo  []entry
	redo  []entry
	last  ot.Operation
}

// New creates a History over buf. A limit of zero or less keeps every entry.
func New(buf Buffer, limit int) *History {
	return &History{buf: buf, limit: limit}
}

// Apply applies op to the buffer's document and records it. Any redo
// entries are discarded.
func (h *History) Apply(op ot.Operation) error {
	if op.IsNoop() {
		return nil
	}
	doc := h.buf.Document()
	inv, err := ot.Invert(doc.Content, op)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	if err := doc.Apply(op); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	h.undo = append(h.undo, entry{op: op, inverse: inv})
	if h.limit > 0 && len(h.undo) > h.limit {
		h.undo = append([]entry(nil), h.undo[len(h.undo)-h.limit:]...)
	}
	h.redo = nil
	h.last = op
	return nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Undo reverts the most recent entry. It reports false when there is
// nothing to undo or the document no longer matches the stack.
func (h *History) Undo() bool {
	if !h.CanUndo() {
		return false
	}
	e := h.undo[len(h.undo)-1]
	if err := h.buf.Document().Apply(e.inverse); err != nil {
		h.Reset()
		return false
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	h.last = e.inverse
	return true
}

// Redo re-applies the most recently undone entry.
func (h *History) Redo() bool {
	if !h.CanRedo() {
		return false
	}
	e := h.redo[len(h.redo)-1]
	if err := h.buf.Document().Apply(e.op); err != nil {
		h.Reset()
		return false
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	h.last = e.op
	return true
}

// Reset drops both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
	h.last = ot.Operation{}
}

// Last returns the operation most recently applied through Apply, Undo or Redo.
func (h *History) Last() ot.Operation { return h.last }

// Depth returns the number of undo and redo entries.
func (h *History) Depth() (undo, redo int) { return len(h.undo), len(h.redo) }
