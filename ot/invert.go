package ot

import "fmt"

// Invert returns the operation that undoes op. base is the text op was
// applied to; deleted text is recovered from it.
func Invert(base string, op Operation) (Operation, error) {
	if len(base) != op.BaseLen() {
		return Operation{}, fmt.Errorf("invert: text length %d, operation expects %d: %w", len(base), op.BaseLen(), ErrBaseLength)
	}
	var b builder
	pos := 0
	for _, c := range op.Ops {
		switch c.Kind() {
		case KindRetain:
			b.retain(c.Retain)
			pos += c.Retain
		case KindInsert:
			b.delete(len(c.Insert))
		case KindDelete:
			b.insert(base[pos : pos+c.Delete])
			pos += c.Delete
		}
	}
	return b.op(), nil
}
