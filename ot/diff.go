package ot

import "github.com/sergi/go-diff/diffmatchpatch"

// FromDiff builds the operation that turns before into after. Buffers that
// are edited in place (the terminal editor) use it to record what changed.
func FromDiff(before, after string) Operation {
	if before == after {
		var b builder
		b.retain(len(before))
		return b.op()
	}
	dmp := diffmatchpatch.New()
	var b builder
	for _, d := range dmp.DiffMain(before, after, false) {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.retain(len(d.Text))
		case diffmatchpatch.DiffInsert:
			b.insert(d.Text)
		case diffmatchpatch.DiffDelete:
			b.delete(len(d.Text))
		}
	}
	return b.op()
}
