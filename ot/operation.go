// Package ot holds the edit primitives of a mind map text buffer: operations
// over its serialized text, their inverses for undo, and the transformation
// that lets concurrent remote edits converge.
//
// Positions and lengths count bytes of the serialized text.
package ot

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBaseLength is returned when an operation is applied to, inverted
// against or transformed with text of the wrong length.
var ErrBaseLength = errors.New("base length mismatch")

// Kind tells which of the three edit steps a Component is.
type Kind int

const (
	KindNone Kind = iota
	KindRetain
	KindInsert
	KindDelete
)

// Component is one step of an Operation. Exactly one field is set.
type Component struct {
	Retain int    `json:"retain,omitempty"` // skip N bytes
	Insert string `json:"insert,omitempty"` // write text at the cursor
	Delete int    `json:"delete,omitempty"` // drop N bytes at the cursor
}

// Kind reports which step c is. A zero Component is KindNone.
func (c Component) Kind() Kind {
	switch {
	case c.Insert != "":
		return KindInsert
	case c.Delete > 0:
		return KindDelete
	case c.Retain > 0:
		return KindRetain
	}
	return KindNone
}

func (c Component) IsRetain() bool { return c.Kind() == KindRetain }
func (c Component) IsInsert() bool { return c.Kind() == KindInsert }
func (c Component) IsDelete() bool { return c.Kind() == KindDelete }

// Len is the number of bytes c covers: retained, inserted or deleted.
func (c Component) Len() int {
	switch c.Kind() {
	case KindRetain:
		return c.Retain
	case KindInsert:
		return len(c.Insert)
	case KindDelete:
		return c.Delete
	}
	return 0
}

// Operation is a left-to-right walk over the whole text. Retains and
// deletes consume input; retains and inserts produce output.
type Operation struct {
	Ops []Component `json:"ops"`
}

// BaseLen is the text length the operation applies to.
func (op Operation) BaseLen() int {
	n := 0
	for _, c := range op.Ops {
		if k := c.Kind(); k == KindRetain || k == KindDelete {
			n += c.Len()
		}
	}
	return n
}

// TargetLen is the text length after the operation.
func (op Operation) TargetLen() int {
	n := 0
	for _, c := range op.Ops {
		if k := c.Kind(); k == KindRetain || k == KindInsert {
			n += c.Len()
		}
	}
	return n
}

// IsNoop reports whether op leaves any text unchanged.
func (op Operation) IsNoop() bool {
	for _, c := range op.Ops {
		if k := c.Kind(); k == KindInsert || k == KindDelete {
			return false
		}
	}
	return true
}

// Apply runs op over text.
func Apply(text string, op Operation) (string, error) {
	if len(text) != op.BaseLen() {
		return "", fmt.Errorf("apply: text length %d, operation expects %d: %w", len(text), op.BaseLen(), ErrBaseLength)
	}
	var b strings.Builder
	b.Grow(op.TargetLen())
	pos := 0
	for _, c := range op.Ops {
		switch c.Kind() {
		case KindRetain:
			b.WriteString(text[pos : pos+c.Retain])
			pos += c.Retain
		case KindInsert:
			b.WriteString(c.Insert)
		case KindDelete:
			pos += c.Delete
		}
	}
	return b.String(), nil
}

// NewInsert returns the operation inserting text at pos into a text of
// length size.
func NewInsert(pos int, text string, size int) Operation {
	var b builder
	b.retain(pos)
	b.insert(text)
	b.retain(size - pos)
	return b.op()
}

// NewDelete returns the operation removing count bytes at pos from a text
// of length size.
func NewDelete(pos, count, size int) Operation {
	var b builder
	b.retain(pos)
	b.delete(count)
	b.retain(size - pos - count)
	return b.op()
}

// builder appends components, dropping empty ones and merging neighbours
// of the same kind.
type builder struct {
	ops []Component
}

func (b *builder) push(c Component) {
	k := c.Kind()
	if k == KindNone {
		return
	}
	if n := len(b.ops); n > 0 && b.ops[n-1].Kind() == k {
		last := &b.ops[n-1]
		last.Retain += c.Retain
		last.Insert += c.Insert
		last.Delete += c.Delete
		return
	}
	b.ops = append(b.ops, c)
}

func (b *builder) retain(n int)    { b.push(Component{Retain: n}) }
func (b *builder) insert(s string) { b.push(Component{Insert: s}) }
func (b *builder) delete(n int)    { b.push(Component{Delete: n}) }
func (b *builder) op() Operation   { return Operation{Ops: b.ops} }
