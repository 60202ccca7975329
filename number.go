// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cibola

import (
	"bytes"
	"math"
	"math/big"
	"strconv"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// NumberType distinguishes the representations a Number can hold.
type NumberType uint8

const (
	// IntNumber is a signed 64-bit integer.
	IntNumber NumberType = iota
	// UintNumber is an unsigned 64-bit integer above math.MaxInt64.  Parsing
	// only produces it for values that don't fit IntNumber.
	UintNumber
	// FloatNumber is an IEEE-754 double.
	FloatNumber
)

func (t NumberType) String() string {
	switch t {
	case IntNumber:
		return "int"
	case UintNumber:
		return "uint"
	case FloatNumber:
		return "float"
	}
	return "NumberType(" + strconv.Itoa(int(t)) + ")"
}

// Number is a JSON number.  Integers are held exactly; anything else is a
// float64.  The zero Number is the integer 0.
type Number struct {
	typ  NumberType
	bits uint64
}

// NumberFromInt returns an integer Number.
func NumberFromInt(i int64) Number { return Number{typ: IntNumber, bits: uint64(i)} }

// NumberFromUint returns an integer Number.  Values that fit an int64 are
// stored as IntNumber.
func NumberFromUint(u uint64) Number {
	if u <= math.MaxInt64 {
		return Number{typ: IntNumber, bits: u}
	}
	return Number{typ: UintNumber, bits: u}
}

// NumberFromFloat returns a floating-point Number.
func NumberFromFloat(f float64) Number {
	return Number{typ: FloatNumber, bits: math.Float64bits(f)}
}

// Type returns the number's representation.
func (n Number) Type() NumberType { return n.typ }

// IsIntegral reports whether the number was held as an integer.
func (n Number) IsIntegral() bool { return n.typ != FloatNumber }

// Int64 returns the number as an int64 and whether the conversion was exact.
func (n Number) Int64() (int64, bool) {
	switch n.typ {
	case IntNumber:
		return int64(n.bits), true
	case UintNumber:
		return 0, false
	}
	f := math.Float64frombits(n.bits)
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// Uint64 returns the number as a uint64 and whether the conversion was exact.
func (n Number) Uint64() (uint64, bool) {
	switch n.typ {
	case IntNumber:
		if int64(n.bits) < 0 {
			return 0, false
		}
		return n.bits, true
	case UintNumber:
		return n.bits, true
	}
	f := math.Float64frombits(n.bits)
	if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
		return 0, false
	}
	return uint64(f), true
}

// Float64 returns the number as a float64, rounding large integers.
func (n Number) Float64() float64 {
	switch n.typ {
	case IntNumber:
		return float64(int64(n.bits))
	case UintNumber:
		return float64(n.bits)
	}
	return math.Float64frombits(n.bits)
}

// Decimal returns the number as an exact decimal.  Floats are converted from
// their shortest round-tripping representation.
func (n Number) Decimal() (decimal.Decimal, error) {
	switch n.typ {
	case IntNumber:
		return decimal.NewFromInt(int64(n.bits)), nil
	case UintNumber:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(n.bits), 0), nil
	}
	f := math.Float64frombits(n.bits)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, errors.Wrapf(ErrUnsupportedValue, "no decimal form of %v", f)
	}
	return decimal.NewFromFloat(f), nil
}

// Equal reports whether two numbers are the same value.  Integers compare by
// value regardless of signedness, but an integer never equals a float.
func (n Number) Equal(o Number) bool {
	switch {
	case n.typ == o.typ:
		if n.typ == FloatNumber {
			return math.Float64frombits(n.bits) == math.Float64frombits(o.bits)
		}
		return n.bits == o.bits
	case n.typ == FloatNumber || o.typ == FloatNumber:
		return false
	}
	// Mixed int and uint: the int must be non-negative.
	i, u := n, o
	if i.typ == UintNumber {
		i, u = u, i
	}
	return int64(i.bits) >= 0 && i.bits == u.bits
}

// AppendJSON appends the number's JSON text to dst.  It fails only for NaN and
// infinities, which JSON can't represent.
func (n Number) AppendJSON(dst []byte) ([]byte, error) {
	switch n.typ {
	case IntNumber:
		return strconv.AppendInt(dst, int64(n.bits), 10), nil
	case UintNumber:
		return strconv.AppendUint(dst, n.bits, 10), nil
	}
	return appendFloat(dst, math.Float64frombits(n.bits))
}

func (n Number) String() string {
	b, err := n.AppendJSON(nil)
	if err != nil {
		return strconv.FormatFloat(n.Float64(), 'g', -1, 64)
	}
	return string(b)
}

// appendFloat writes the shortest text that parses back to f.  Like
// ECMAScript, it uses exponent form only below 1e-6 or from 1e21 up.  Output
// without an exponent always carries a fraction so it stays a float when
// reparsed.
func appendFloat(dst []byte, f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return dst, errors.Wrapf(ErrUnsupportedValue, "cannot encode %v", f)
	}

	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}

	start := len(dst)
	dst = strconv.AppendFloat(dst, f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(dst)
		if n-start >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
		return dst, nil
	}
	if bytes.IndexByte(dst[start:], '.') < 0 {
		dst = append(dst, '.', '0')
	}
	return dst, nil
}

// parseNumber converts the span of a number token.  Integer literals are
// converted exactly; only literals with a fraction or exponent, or integers
// that overflow 64 bits, go through floating point.
func parseNumber(raw []byte, fraction bool) (Number, error) {
	if !fraction {
		if n, ok := parseInteger(raw); ok {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(b2s(raw), 64)
	if err != nil {
		return Number{}, err
	}
	return NumberFromFloat(f), nil
}

// parseInteger converts a grammatically valid integer literal, reporting
// false on overflow.
func parseInteger(raw []byte) (Number, bool) {
	neg := raw[0] == '-'
	digits := raw
	if neg {
		digits = raw[1:]
	}
	if len(digits) > 20 {
		return Number{}, false
	}

	var u uint64
	for _, c := range digits {
		d := uint64(c - '0')
		if u > (math.MaxUint64-d)/10 {
			return Number{}, false
		}
		u = u*10 + d
	}

	if neg {
		if u > 1<<63 {
			return Number{}, false
		}
		return Number{typ: IntNumber, bits: -u}, true
	}
	return NumberFromUint(u), true
}

// b2s views b as a string without copying.  The string must not outlive b or
// be retained while b is modified.
func b2s(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// s2b views s as a byte slice without copying.  The slice must never be
// written to.
func s2b(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
