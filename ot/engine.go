package ot

import "fmt"

// Engine rebases an operation a remote client made at an older revision
// onto the current text.
type Engine interface {
	// TransformIncoming transforms op, made at revision, over every
	// operation in history from that revision on. history[i] took the
	// text from revision i to i+1.
	TransformIncoming(op Operation, revision int, history []Operation) (Operation, error)
}

// JupiterEngine transforms the client operation against each unseen server
// operation in turn, keeping the client side of every pair.
type JupiterEngine struct{}

func (JupiterEngine) TransformIncoming(op Operation, revision int, history []Operation) (Operation, error) {
	if revision < 0 || revision > len(history) {
		return Operation{}, fmt.Errorf("revision %d outside history of %d", revision, len(history))
	}
	for i, server := range history[revision:] {
		var err error
		if op, _, err = Transform(op, server); err != nil {
			return Operation{}, fmt.Errorf("revision %d: %w", revision+i, err)
		}
	}
	return op, nil
}
