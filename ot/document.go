package ot

import "fmt"

// Document is the serialized text of the open mind map. Version counts the
// operations applied since it was created or loaded; History[i] took it
// from version i to i+1.
type Document struct {
	Content string
	Version int
	History []Operation
}

// NewDocument returns a document at version zero holding content.
func NewDocument(content string) *Document {
	return &Document{Content: content}
}

// Apply applies op and records it. Operations that change nothing are
// dropped without bumping the version.
func (d *Document) Apply(op Operation) error {
	if op.IsNoop() {
		return nil
	}
	next, err := Apply(d.Content, op)
	if err != nil {
		return fmt.Errorf("document v%d: %w", d.Version, err)
	}
	d.Content = next
	d.History = append(d.History, op)
	d.Version++
	return nil
}
