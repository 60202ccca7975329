// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cibola

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// AppendBSON converts an object Value to a BSON document appended to dst.
// Only objects can be documents.  Integers that fit in 32 bits become BSON
// int32, other integers int64; unsigned integers beyond int64 and floats
// become doubles.
func (v *Value) AppendBSON(dst []byte) ([]byte, error) {
	if v.kind != ObjectKind {
		return nil, errors.Errorf("only an object converts to a BSON document, not %s", v.kind)
	}
	return appendBSONDocument(dst, bsoncore.AppendDocumentStart, v.members)
}

type docStart func([]byte) (int32, []byte)

func appendBSONDocument(dst []byte, start docStart, members []Member) ([]byte, error) {
	var err error
	idx, dst := start(dst)
	for i := range members {
		dst, err = appendBSONElement(dst, members[i].Key, &members[i].Value)
		if err != nil {
			return nil, err
		}
	}
	return bsoncore.AppendDocumentEnd(dst, idx)
}

func appendBSONElement(dst []byte, key string, v *Value) ([]byte, error) {
	// BSON keys are C strings.
	if strings.IndexByte(key, 0) >= 0 {
		return nil, errors.Errorf("key %q contains a NUL byte", key)
	}

	switch v.kind {
	case NullKind:
		return bsoncore.AppendNullElement(dst, key), nil
	case BoolKind:
		return bsoncore.AppendBooleanElement(dst, key, v.boolean), nil
	case NumberKind:
		return appendBSONNumber(dst, key, v.num), nil
	case StringKind:
		return bsoncore.AppendStringElement(dst, key, v.str), nil
	case ArrayKind:
		var err error
		var idx int32
		idx, dst = bsoncore.AppendArrayElementStart(dst, key)
		for i := range v.elems {
			dst, err = appendBSONElement(dst, strconv.Itoa(i), &v.elems[i])
			if err != nil {
				return nil, err
			}
		}
		return bsoncore.AppendArrayEnd(dst, idx)
	case ObjectKind:
		start := func(b []byte) (int32, []byte) {
			return bsoncore.AppendDocumentElementStart(b, key)
		}
		out, err := appendBSONDocument(dst, start, v.members)
		if err != nil {
			return nil, errors.WithMessagef(err, "in %q", key)
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedValue, "unknown kind %d", v.kind)
}

func appendBSONNumber(dst []byte, key string, n Number) []byte {
	if i, ok := n.Int64(); ok && n.IsIntegral() {
		if i < math.MinInt32 || i > math.MaxInt32 {
			return bsoncore.AppendInt64Element(dst, key, i)
		}
		return bsoncore.AppendInt32Element(dst, key, int32(i))
	}
	return bsoncore.AppendDoubleElement(dst, key, n.Float64())
}

// FromBSON converts a BSON document to an object Value.  Only the BSON types
// with a JSON counterpart are accepted: double, string, document, array,
// boolean, null, int32 and int64.  Repeated keys follow the same last-wins
// rule as parsing.
func FromBSON(doc []byte) (Value, error) {
	d := bsoncore.Document(doc)
	if err := d.Validate(); err != nil {
		return Value{}, errors.Wrap(err, "invalid BSON document")
	}
	return convertBSONDocument(d)
}

func convertBSONDocument(d bsoncore.Document) (Value, error) {
	elems, err := d.Elements()
	if err != nil {
		return Value{}, errors.Wrap(err, "reading BSON elements")
	}
	b := objectBuilder{members: make([]Member, 0, len(elems))}
	for _, e := range elems {
		v, err := convertBSONValue(e.Value())
		if err != nil {
			return Value{}, errors.WithMessagef(err, "key %q", e.Key())
		}
		b.add(e.Key(), v)
	}
	return Value{kind: ObjectKind, members: b.members}, nil
}

func convertBSONValue(bv bsoncore.Value) (Value, error) {
	switch bv.Type {
	case bsontype.Double:
		return Float(bv.Double()), nil
	case bsontype.String:
		return String(bv.StringValue()), nil
	case bsontype.EmbeddedDocument:
		return convertBSONDocument(bv.Document())
	case bsontype.Array:
		vals, err := bv.Array().Values()
		if err != nil {
			return Value{}, errors.Wrap(err, "reading BSON array")
		}
		elems := make([]Value, len(vals))
		for i := range vals {
			elems[i], err = convertBSONValue(vals[i])
			if err != nil {
				return Value{}, errors.WithMessagef(err, "index %d", i)
			}
		}
		return Value{kind: ArrayKind, elems: elems}, nil
	case bsontype.Boolean:
		return Bool(bv.Boolean()), nil
	case bsontype.Null:
		return Null(), nil
	case bsontype.Int32:
		return Int(int64(bv.Int32())), nil
	case bsontype.Int64:
		return Int(bv.Int64()), nil
	}
	return Value{}, errors.Wrapf(ErrUnsupportedValue, "BSON type %s has no JSON form", bv.Type)
}
