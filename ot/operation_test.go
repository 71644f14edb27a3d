package ot

import (
	"errors"
	"reflect"
	"testing"
)

func ops(cs ...Component) Operation { return Operation{Ops: cs} }

func TestLengths(t *testing.T) {
	tests := []struct {
		name         string
		op           Operation
		base, target int
		noop         bool
	}{
		{"empty", Operation{}, 0, 0, true},
		{"retain", ops(Component{Retain: 4}), 4, 4, true},
		{"insert", ops(Component{Insert: "node"}), 0, 4, false},
		{"delete", ops(Component{Delete: 3}), 3, 0, false},
		{"rename child", ops(Component{Retain: 5}, Component{Delete: 5}, Component{Insert: "branch"}, Component{Retain: 1}), 11, 12, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.BaseLen(); got != tt.base {
				t.Errorf("BaseLen() = %d, want %d", got, tt.base)
			}
			if got := tt.op.TargetLen(); got != tt.target {
				t.Errorf("TargetLen() = %d, want %d", got, tt.target)
			}
			if got := tt.op.IsNoop(); got != tt.noop {
				t.Errorf("IsNoop() = %v, want %v", got, tt.noop)
			}
		})
	}
}

func TestComponentKind(t *testing.T) {
	tests := []struct {
		c    Component
		kind Kind
		len  int
	}{
		{Component{}, KindNone, 0},
		{Component{Retain: 2}, KindRetain, 2},
		{Component{Insert: "ab"}, KindInsert, 2},
		{Component{Delete: 7}, KindDelete, 7},
	}
	for _, tt := range tests {
		if got := tt.c.Kind(); got != tt.kind {
			t.Errorf("%+v.Kind() = %v, want %v", tt.c, got, tt.kind)
		}
		if got := tt.c.Len(); got != tt.len {
			t.Errorf("%+v.Len() = %d, want %d", tt.c, got, tt.len)
		}
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		text string
		op   Operation
		want string
	}{
		{"add root", "", NewInsert(0, "root", 0), "root"},
		{"add child", "root", NewInsert(4, "\n  child", 4), "root\n  child"},
		{"prefix", "child", NewInsert(0, "- ", 5), "- child"},
		{"middle", "rootnode", NewInsert(4, " ", 8), "root node"},
		{"drop head", "root\nleaf", NewDelete(0, 5, 9), "leaf"},
		{"drop tail", "root\nleaf", NewDelete(4, 5, 9), "root"},
		{"drop middle", "a-b-c", NewDelete(1, 3, 5), "ac"},
		{"retain all", "same", ops(Component{Retain: 4}), "same"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(tt.text, tt.op)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Apply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApply_BaseLengthMismatch(t *testing.T) {
	_, err := Apply("hi", NewInsert(0, "x", 5))
	if !errors.Is(err, ErrBaseLength) {
		t.Fatalf("Apply() error = %v, want ErrBaseLength", err)
	}
}

func TestNewInsertAndDelete(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		want Operation
	}{
		{"insert at start", NewInsert(0, "x", 3), ops(Component{Insert: "x"}, Component{Retain: 3})},
		{"insert at end", NewInsert(3, "x", 3), ops(Component{Retain: 3}, Component{Insert: "x"})},
		{"insert into empty", NewInsert(0, "x", 0), ops(Component{Insert: "x"})},
		{"delete middle", NewDelete(1, 1, 3), ops(Component{Retain: 1}, Component{Delete: 1}, Component{Retain: 1})},
		{"delete all", NewDelete(0, 3, 3), ops(Component{Delete: 3})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !reflect.DeepEqual(tt.op, tt.want) {
				t.Errorf("got %+v, want %+v", tt.op.Ops, tt.want.Ops)
			}
		})
	}
}

func TestBuilderMergesNeighbours(t *testing.T) {
	var b builder
	b.retain(2)
	b.retain(0)
	b.retain(3)
	b.insert("a")
	b.insert("")
	b.insert("b")
	b.delete(1)
	b.delete(2)
	want := ops(Component{Retain: 5}, Component{Insert: "ab"}, Component{Delete: 3})
	if got := b.op(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got.Ops, want.Ops)
	}
}
