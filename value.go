// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cibola

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies the type of a Value.
type Kind uint8

// Value kinds.  The zero Value is null.
const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ArrayKind:
		return "array"
	case ObjectKind:
		return "object"
	}
	return "unknown"
}

// ErrKindMismatch is returned (wrapped) by accessors called on a Value of the
// wrong kind.
var ErrKindMismatch = errors.New("kind mismatch")

// Value is a JSON value: a tagged union over null, bool, number, string,
// array and object.
//
// String values produced by ParseString may share memory with the parsed
// string (see Borrowed).  All other values own their memory.  A Value tree is
// not safe for concurrent mutation, but the package never mutates a tree after
// returning it.
type Value struct {
	kind     Kind
	boolean  bool
	borrowed bool
	num      Number
	str      string
	elems    []Value
	members  []Member
}

// Member is a key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Null returns a null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: BoolKind, boolean: b} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: NumberKind, num: NumberFromInt(i)} }

// Uint returns an unsigned integer Value.
func Uint(u uint64) Value { return Value{kind: NumberKind, num: NumberFromUint(u)} }

// Float returns a floating-point Value.  NaN and infinities can be held but
// not serialized.
func Float(f float64) Value { return Value{kind: NumberKind, num: NumberFromFloat(f)} }

// NumberValue wraps a Number.
func NumberValue(n Number) Value { return Value{kind: NumberKind, num: n} }

// String returns a string Value.  s should be valid UTF-8; invalid bytes are
// serialized as U+FFFD.
func String(s string) Value { return Value{kind: StringKind, str: s} }

// Array returns an array Value holding elems.  The slice is retained.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: ArrayKind, elems: elems}
}

// Object returns an object Value.  When a key repeats, the last value wins
// and takes the position of the key's first occurrence, exactly as when
// parsing.
func Object(members ...Member) Value {
	b := objectBuilder{members: make([]Member, 0, len(members))}
	for _, m := range members {
		b.add(m.Key, m.Value)
	}
	return Value{kind: ObjectKind, members: b.members}
}

// Kind returns the value's kind.
func (v *Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v *Value) IsNull() bool { return v.kind == NullKind }

// Borrowed reports whether a string value shares memory with the input it was
// parsed from.
func (v *Value) Borrowed() bool { return v.borrowed }

func (v *Value) mismatch(want Kind) error {
	return errors.Wrapf(ErrKindMismatch, "value is %s, not %s", v.kind, want)
}

// AsBool returns the value of a bool.
func (v *Value) AsBool() (bool, error) {
	if v.kind != BoolKind {
		return false, v.mismatch(BoolKind)
	}
	return v.boolean, nil
}

// AsNumber returns the value of a number.
func (v *Value) AsNumber() (Number, error) {
	if v.kind != NumberKind {
		return Number{}, v.mismatch(NumberKind)
	}
	return v.num, nil
}

// AsString returns the decoded value of a string.
func (v *Value) AsString() (string, error) {
	if v.kind != StringKind {
		return "", v.mismatch(StringKind)
	}
	return v.str, nil
}

// Elements returns the elements of an array.  The slice is shared with v.
func (v *Value) Elements() ([]Value, error) {
	if v.kind != ArrayKind {
		return nil, v.mismatch(ArrayKind)
	}
	return v.elems, nil
}

// Members returns the members of an object in order.  The slice is shared
// with v.
func (v *Value) Members() ([]Member, error) {
	if v.kind != ObjectKind {
		return nil, v.mismatch(ObjectKind)
	}
	return v.members, nil
}

// Len returns the number of elements or members of an array or object, and 0
// for anything else.
func (v *Value) Len() int {
	switch v.kind {
	case ArrayKind:
		return len(v.elems)
	case ObjectKind:
		return len(v.members)
	}
	return 0
}

// Index returns the i'th element of an array, or nil if v isn't an array or i
// is out of range.
func (v *Value) Index(i int) *Value {
	if v.kind != ArrayKind || i < 0 || i >= len(v.elems) {
		return nil
	}
	return &v.elems[i]
}

// Get returns the value for key in an object, or nil if v isn't an object or
// has no such key.
func (v *Value) Get(key string) *Value {
	if v.kind != ObjectKind {
		return nil
	}
	for i := range v.members {
		if v.members[i].Key == key {
			return &v.members[i].Value
		}
	}
	return nil
}

// Equal reports whether v and o are structurally equal.  Arrays compare in
// order; objects compare as key sets, ignoring member order.
func (v *Value) Equal(o *Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NullKind:
		return true
	case BoolKind:
		return v.boolean == o.boolean
	case NumberKind:
		return v.num.Equal(o.num)
	case StringKind:
		return v.str == o.str
	case ArrayKind:
		if len(v.elems) != len(o.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(&o.elems[i]) {
				return false
			}
		}
		return true
	case ObjectKind:
		return equalMembers(v.members, o.members)
	}
	return false
}

func equalMembers(a, b []Member) bool {
	if len(a) != len(b) {
		return false
	}
	if len(b) <= linearKeyScan {
		o := Value{kind: ObjectKind, members: b}
		for i := range a {
			w := o.Get(a[i].Key)
			if w == nil || !a[i].Value.Equal(w) {
				return false
			}
		}
		return true
	}

	index := make(map[string]int, len(b))
	for i := range b {
		index[b[i].Key] = i
	}
	for i := range a {
		j, ok := index[a[i].Key]
		if !ok || !a[i].Value.Equal(&b[j].Value) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of v.  Borrowed strings are copied, so the clone
// never shares memory with parser input.
func (v *Value) Clone() Value {
	c := Value{kind: v.kind, boolean: v.boolean, num: v.num}
	switch v.kind {
	case StringKind:
		if v.borrowed {
			c.str = strings.Clone(v.str)
		} else {
			c.str = v.str
		}
	case ArrayKind:
		c.elems = make([]Value, len(v.elems))
		for i := range v.elems {
			c.elems[i] = v.elems[i].Clone()
		}
	case ObjectKind:
		c.members = make([]Member, len(v.members))
		for i := range v.members {
			c.members[i] = Member{
				Key:   strings.Clone(v.members[i].Key),
				Value: v.members[i].Value.Clone(),
			}
		}
	}
	return c
}

// String returns v in canonical compact JSON.  A value that can't be
// serialized (NaN or infinite floats) renders as an error description.
func (v *Value) String() string {
	b, err := Marshal(v)
	if err != nil {
		return "!ERROR(" + err.Error() + ")"
	}
	return string(b)
}

// MarshalJSON implements json.Marshaler.
func (v *Value) MarshalJSON() ([]byte, error) {
	return Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler with the default configuration.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// linearKeyScan is the object size past which duplicate detection switches
// from a linear scan to a map.
const linearKeyScan = 16

// objectBuilder accumulates object members with last-wins deduplication.
type objectBuilder struct {
	members []Member
	index   map[string]int
	// scratch, when set, is reused as the index instead of allocating one.
	scratch map[string]int
}

func (b *objectBuilder) add(key string, v Value) {
	if b.index == nil {
		for i := range b.members {
			if b.members[i].Key == key {
				b.members[i].Value = v
				return
			}
		}
		b.members = append(b.members, Member{Key: key, Value: v})
		if len(b.members) > linearKeyScan {
			b.buildIndex()
		}
		return
	}

	if i, ok := b.index[key]; ok {
		b.members[i].Value = v
		return
	}
	b.index[key] = len(b.members)
	b.members = append(b.members, Member{Key: key, Value: v})
}

// release empties a scratch index so it doesn't keep keys reachable.
func (b *objectBuilder) release() {
	if b.index != nil && b.scratch != nil {
		clear(b.scratch)
	}
}

func (b *objectBuilder) buildIndex() {
	if b.scratch != nil {
		clear(b.scratch)
		b.index = b.scratch
	} else {
		b.index = make(map[string]int, 2*len(b.members))
	}
	for i := range b.members {
		b.index[b.members[i].Key] = i
	}
}
