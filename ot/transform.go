package ot

import "fmt"

// Transform rebases two concurrent operations a and b, both made against
// the same text, so that
//
//	Apply(Apply(text, a), bPrime) == Apply(Apply(text, b), aPrime)
//
// When both insert at the same position, a's text comes first.
func Transform(a, b Operation) (aPrime, bPrime Operation, err error) {
	if a.BaseLen() != b.BaseLen() {
		return Operation{}, Operation{}, fmt.Errorf("transform: a expects %d, b expects %d: %w", a.BaseLen(), b.BaseLen(), ErrBaseLength)
	}

	var ab, bb builder
	ca, cb := &cursor{ops: a.Ops}, &cursor{ops: b.Ops}

	for !ca.done() || !cb.done() {
		// Inserts consume no input; the other side skips over them.
		if ca.kind() == KindInsert {
			s := ca.next(0).Insert
			ab.insert(s)
			bb.retain(len(s))
			continue
		}
		if cb.kind() == KindInsert {
			s := cb.next(0).Insert
			bb.insert(s)
			ab.retain(len(s))
			continue
		}
		if ca.done() || cb.done() {
			return Operation{}, Operation{}, fmt.Errorf("transform: operations end at different positions")
		}

		n := min(ca.remaining(), cb.remaining())
		x, y := ca.next(n), cb.next(n)
		switch {
		case x.IsRetain() && y.IsRetain():
			ab.retain(n)
			bb.retain(n)
		case x.IsDelete() && y.IsRetain():
			ab.delete(n)
		case x.IsRetain() && y.IsDelete():
			bb.delete(n)
		}
		// Both deleting the same bytes leaves nothing for either side.
	}
	return ab.op(), bb.op(), nil
}

// cursor walks the components of an operation and can split the current
// one.
type cursor struct {
	ops    []Component
	i      int
	offset int
}

func (c *cursor) done() bool { return c.i >= len(c.ops) }

func (c *cursor) kind() Kind {
	if c.done() {
		return KindNone
	}
	return c.ops[c.i].Kind()
}

func (c *cursor) remaining() int {
	if c.done() {
		return 0
	}
	return c.ops[c.i].Len() - c.offset
}

// next consumes up to n bytes of the current component and returns them.
// n <= 0 takes the rest of it.
func (c *cursor) next(n int) Component {
	cur := c.ops[c.i]
	rest := c.remaining()
	if n <= 0 || n >= rest {
		n = rest
	}
	start := c.offset
	c.offset += n
	if c.offset >= cur.Len() {
		c.i++
		c.offset = 0
	}

	switch cur.Kind() {
	case KindRetain:
		return Component{Retain: n}
	case KindInsert:
		return Component{Insert: cur.Insert[start : start+n]}
	case KindDelete:
		return Component{Delete: n}
	}
	return Component{}
}
