// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cibola

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// ErrUnsupportedValue is returned (wrapped) when a Value holds something JSON
// can't represent, such as a NaN or infinite float.
var ErrUnsupportedValue = errors.New("unsupported value")

// Encoder serializes Values.  An Encoder is immutable once created and may be
// shared between goroutines.
type Encoder struct {
	pretty         bool
	indent         int
	newline        string
	escapeNonASCII bool
}

var compactEncoder = &Encoder{}

// NewEncoder returns an Encoder for the serialization settings of cfg.
func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &Encoder{
		pretty:         cfg.Pretty,
		indent:         cfg.IndentWidth,
		newline:        cfg.Newline,
		escapeNonASCII: cfg.EscapeNonASCII,
	}, nil
}

// Marshal returns the canonical compact JSON form of v.
func Marshal(v *Value) ([]byte, error) {
	return compactEncoder.Append(nil, v)
}

// MarshalWithConfig serializes v with the settings of cfg.
func MarshalWithConfig(v *Value, cfg Config) ([]byte, error) {
	enc, err := NewEncoder(cfg)
	if err != nil {
		return nil, err
	}
	return enc.Append(nil, v)
}

// Encode returns the JSON form of v.
func (e *Encoder) Encode(v *Value) ([]byte, error) {
	return e.Append(make([]byte, 0, 256), v)
}

// Append appends the JSON form of v to dst.  If the buffer is not large
// enough, a new buffer will be allocated on demand.  The final buffer is
// returned, just like with `append`.
func (e *Encoder) Append(dst []byte, v *Value) ([]byte, error) {
	return e.appendValue(dst, v, 0)
}

func (e *Encoder) appendValue(dst []byte, v *Value, level int) ([]byte, error) {
	var err error
	switch v.kind {
	case NullKind:
		return append(dst, "null"...), nil
	case BoolKind:
		if v.boolean {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case NumberKind:
		return v.num.AppendJSON(dst)
	case StringKind:
		return e.appendString(dst, v.str), nil
	case ArrayKind:
		if len(v.elems) == 0 {
			return append(dst, '[', ']'), nil
		}
		dst = append(dst, '[')
		for i := range v.elems {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = e.appendBreak(dst, level+1)
			dst, err = e.appendValue(dst, &v.elems[i], level+1)
			if err != nil {
				return nil, err
			}
		}
		dst = e.appendBreak(dst, level)
		return append(dst, ']'), nil
	case ObjectKind:
		if len(v.members) == 0 {
			return append(dst, '{', '}'), nil
		}
		dst = append(dst, '{')
		for i := range v.members {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = e.appendBreak(dst, level+1)
			dst = e.appendString(dst, v.members[i].Key)
			dst = append(dst, ':')
			if e.pretty {
				dst = append(dst, ' ')
			}
			dst, err = e.appendValue(dst, &v.members[i].Value, level+1)
			if err != nil {
				return nil, errors.WithMessagef(err, "member %q", v.members[i].Key)
			}
		}
		dst = e.appendBreak(dst, level)
		return append(dst, '}'), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedValue, "unknown kind %d", v.kind)
}

func (e *Encoder) appendBreak(dst []byte, level int) []byte {
	if !e.pretty {
		return dst
	}
	dst = append(dst, e.newline...)
	for i := level * e.indent; i > 0; i-- {
		dst = append(dst, ' ')
	}
	return dst
}

const hexDigits = "0123456789abcdef"

// appendString quotes s.  Quote, backslash and control characters are always
// escaped, using the short forms where JSON has them.
func (e *Encoder) appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if strSafe[c] {
				i++
				continue
			}
			dst = append(dst, s[start:i]...)
			switch c {
			case '"', '\\':
				dst = append(dst, '\\', c)
			case '\b':
				dst = append(dst, '\\', 'b')
			case '\f':
				dst = append(dst, '\\', 'f')
			case '\n':
				dst = append(dst, '\\', 'n')
			case '\r':
				dst = append(dst, '\\', 'r')
			case '\t':
				dst = append(dst, '\\', 't')
			default:
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
			}
			i++
			start = i
			continue
		}

		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			dst = append(dst, s[start:i]...)
			if e.escapeNonASCII {
				dst = appendUnicodeEscape(dst, utf8.RuneError)
			} else {
				dst = utf8.AppendRune(dst, utf8.RuneError)
			}
		case e.escapeNonASCII:
			dst = append(dst, s[start:i]...)
			dst = appendUnicodeEscape(dst, r)
		default:
			i += size
			continue
		}
		i += size
		start = i
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

func appendUnicodeEscape(dst []byte, r rune) []byte {
	if r > 0xFFFF {
		hi, lo := utf16.EncodeRune(r)
		return appendHex4(appendHex4(dst, hi), lo)
	}
	return appendHex4(dst, r)
}

func appendHex4(dst []byte, r rune) []byte {
	return append(dst, '\\', 'u',
		hexDigits[r>>12&0xF], hexDigits[r>>8&0xF], hexDigits[r>>4&0xF], hexDigits[r&0xF])
}
