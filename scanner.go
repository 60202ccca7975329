// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cibola

import (
	"bytes"
	"fmt"
	"unicode/utf16"
	"unicode/utf8"
)

// TokenKind identifies a lexical token.
type TokenKind uint8

// Token kinds.
const (
	TokenEOF TokenKind = iota
	TokenInvalid
	TokenBeginObject
	TokenEndObject
	TokenBeginArray
	TokenEndArray
	TokenColon
	TokenComma
	TokenString
	TokenNumber
	TokenTrue
	TokenFalse
	TokenNull
)

var tokenKindNames = [...]string{
	TokenEOF:         "end of input",
	TokenInvalid:     "invalid token",
	TokenBeginObject: "'{'",
	TokenEndObject:   "'}'",
	TokenBeginArray:  "'['",
	TokenEndArray:    "']'",
	TokenColon:       "':'",
	TokenComma:       "','",
	TokenString:      "string",
	TokenNumber:      "number",
	TokenTrue:        "true",
	TokenFalse:       "false",
	TokenNull:        "null",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Token is a lexical token.  Start and End delimit its span in the input.
// For strings, the span excludes the quotes.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
	// Escaped is set for strings containing escape sequences, which need
	// AppendUnescaped before use.
	Escaped bool
	// Fraction is set for numbers with a fractional part or an exponent.
	Fraction bool
}

// Scanner splits a byte buffer into tokens.  It never allocates except to
// report errors.  Errors are always *ParseError.
type Scanner struct {
	data []byte
	pos  int
}

// NewScanner returns a scanner positioned at the start of data.
func NewScanner(data []byte) *Scanner {
	return &Scanner{data: data}
}

// Reset repositions the scanner at the start of data.
func (s *Scanner) Reset(data []byte) {
	s.data = data
	s.pos = 0
}

// Offset returns the offset of the next unscanned byte.
func (s *Scanner) Offset() int { return s.pos }

// SetOffset moves the scanner to off.
func (s *Scanner) SetOffset(off int) { s.pos = off }

// Position returns the 1-based line and column of off.
func (s *Scanner) Position(off int) (line, col int) {
	return position(s.data, off)
}

// Peek skips white space and returns the next byte without consuming it.  It
// returns 0 at end of input.
func (s *Scanner) Peek() byte {
	s.skipWS()
	if s.pos >= len(s.data) {
		return 0
	}
	return s.data[s.pos]
}

// More skips white space and reports whether any input remains.
func (s *Scanner) More() bool {
	s.skipWS()
	return s.pos < len(s.data)
}

func (s *Scanner) skipWS() {
	for s.pos < len(s.data) {
		switch s.data[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return
		}
	}
}

// Next skips white space and returns the next token.  At end of input it
// returns a TokenEOF.  A byte that can't begin any token yields a
// TokenInvalid with a nil error so the caller can report what it expected.
func (s *Scanner) Next() (Token, error) {
	s.skipWS()
	start := s.pos
	if start >= len(s.data) {
		return Token{Kind: TokenEOF, Start: start, End: start}, nil
	}

	ch := s.data[start]
	switch ch {
	case '{':
		return s.punct(TokenBeginObject), nil
	case '}':
		return s.punct(TokenEndObject), nil
	case '[':
		return s.punct(TokenBeginArray), nil
	case ']':
		return s.punct(TokenEndArray), nil
	case ':':
		return s.punct(TokenColon), nil
	case ',':
		return s.punct(TokenComma), nil
	case '"':
		return s.scanString()
	case 't':
		return s.scanLiteral(TokenTrue, "true")
	case 'f':
		return s.scanLiteral(TokenFalse, "false")
	case 'n':
		return s.scanLiteral(TokenNull, "null")
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return s.scanNumber()
	}

	invalid := Token{Kind: TokenInvalid, Start: start, End: start + 1}
	if ch >= utf8.RuneSelf {
		r, size := utf8.DecodeRune(s.data[start:])
		if r == utf8.RuneError && size == 1 {
			return invalid, s.errorAt(start, ErrInvalidUTF8, "")
		}
		invalid.End = start + size
	}
	return invalid, nil
}

func (s *Scanner) punct(kind TokenKind) Token {
	s.pos++
	return Token{Kind: kind, Start: s.pos - 1, End: s.pos}
}

func (s *Scanner) errorAt(off int, kind ErrorKind, msg string) error {
	return newParseError(s.data, off, kind, msg)
}

func (s *Scanner) scanLiteral(kind TokenKind, lit string) (Token, error) {
	start := s.pos
	for i := 1; i < len(lit); i++ {
		p := start + i
		if p >= len(s.data) || s.data[p] != lit[i] {
			return Token{Kind: TokenInvalid, Start: start, End: p}, s.errorAt(p, ErrInvalidLiteral, "expecting "+lit)
		}
	}
	s.pos = start + len(lit)
	return Token{Kind: kind, Start: start, End: s.pos}, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// scanNumber follows the JSON number grammar exactly and reports the first
// byte that breaks it.
func (s *Scanner) scanNumber() (Token, error) {
	data := s.data
	start := s.pos
	i := start
	fail := func(at int, msg string) (Token, error) {
		return Token{Kind: TokenInvalid, Start: start, End: at}, s.errorAt(at, ErrInvalidNumber, msg)
	}

	if data[i] == '-' {
		i++
	}
	switch {
	case i >= len(data):
		return fail(i, "expecting digit")
	case data[i] == '0':
		i++
		if i < len(data) && isDigit(data[i]) {
			return fail(i, "leading zero")
		}
	case data[i] >= '1' && data[i] <= '9':
		i++
		for i < len(data) && isDigit(data[i]) {
			i++
		}
	default:
		return fail(i, "expecting digit")
	}

	var fraction bool
	if i < len(data) && data[i] == '.' {
		fraction = true
		i++
		if i >= len(data) || !isDigit(data[i]) {
			return fail(i, "expecting digit after decimal point")
		}
		for i < len(data) && isDigit(data[i]) {
			i++
		}
	}

	if i < len(data) && (data[i] == 'e' || data[i] == 'E') {
		fraction = true
		i++
		if i < len(data) && (data[i] == '+' || data[i] == '-') {
			i++
		}
		if i >= len(data) || !isDigit(data[i]) {
			return fail(i, "expecting exponent digit")
		}
		for i < len(data) && isDigit(data[i]) {
			i++
		}
	}

	s.pos = i
	return Token{Kind: TokenNumber, Start: start, End: i, Fraction: fraction}, nil
}

// strSafe marks bytes that may appear raw in a string with no further
// checks: printable ASCII other than '"' and '\'.
var strSafe [256]bool

func init() {
	for c := 0x20; c < utf8.RuneSelf; c++ {
		strSafe[c] = c != '"' && c != '\\'
	}
}

// scanString finds the closing quote, validating escapes, control characters
// and UTF-8 along the way.  A valid token can always be decoded.
func (s *Scanner) scanString() (Token, error) {
	data := s.data
	quote := s.pos
	i := quote + 1
	var escaped bool

	for {
		for i < len(data) && strSafe[data[i]] {
			i++
		}
		if i >= len(data) {
			return Token{Kind: TokenInvalid, Start: quote, End: i}, s.errorAt(quote, ErrUnterminatedString, "")
		}

		c := data[i]
		switch {
		case c == '"':
			s.pos = i + 1
			return Token{Kind: TokenString, Start: quote + 1, End: i, Escaped: escaped}, nil
		case c == '\\':
			escaped = true
			n, err := s.scanEscape(quote, i)
			if err != nil {
				return Token{Kind: TokenInvalid, Start: quote, End: i}, err
			}
			i += n
		case c < 0x20:
			return Token{Kind: TokenInvalid, Start: quote, End: i},
				s.errorAt(i, ErrInvalidControlCharacter, fmt.Sprintf("byte 0x%02x must be escaped", c))
		default:
			r, size := utf8.DecodeRune(data[i:])
			if r == utf8.RuneError && size == 1 {
				return Token{Kind: TokenInvalid, Start: quote, End: i}, s.errorAt(i, ErrInvalidUTF8, "")
			}
			i += size
		}
	}
}

// scanEscape validates the escape sequence at i and returns its length.
func (s *Scanner) scanEscape(quote, i int) (int, error) {
	data := s.data
	if i+1 >= len(data) {
		return 0, s.errorAt(quote, ErrUnterminatedString, "")
	}

	switch data[i+1] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return 2, nil
	case 'u':
	default:
		return 0, s.errorAt(i, ErrInvalidEscape, fmt.Sprintf("unknown escape '\\%c'", data[i+1]))
	}

	if i+6 > len(data) {
		return 0, s.errorAt(quote, ErrUnterminatedString, "")
	}
	r, ok := hex4(data, i+2)
	if !ok {
		return 0, s.errorAt(i, ErrInvalidUnicodeEscape, "expecting four hex digits")
	}

	switch {
	case r >= 0xDC00 && r <= 0xDFFF:
		return 0, s.errorAt(i, ErrInvalidUnicodeEscape, "unpaired low surrogate")
	case r >= 0xD800 && r <= 0xDBFF:
		j := i + 6
		if j+6 > len(data) || data[j] != '\\' || data[j+1] != 'u' {
			return 0, s.errorAt(i, ErrInvalidUnicodeEscape, "unpaired high surrogate")
		}
		lo, ok := hex4(data, j+2)
		if !ok {
			return 0, s.errorAt(j, ErrInvalidUnicodeEscape, "expecting four hex digits")
		}
		if lo < 0xDC00 || lo > 0xDFFF {
			return 0, s.errorAt(i, ErrInvalidUnicodeEscape, "unpaired high surrogate")
		}
		return 12, nil
	}
	return 6, nil
}

func hex4(data []byte, i int) (rune, bool) {
	if i+4 > len(data) {
		return 0, false
	}
	var r rune
	for _, c := range data[i : i+4] {
		switch {
		case c >= '0' && c <= '9':
			c -= '0'
		case c >= 'a' && c <= 'f':
			c = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(c)
	}
	return r, true
}

// AppendUnescaped decodes the escape sequences in raw and appends the result
// to dst.  raw must be the span of a string token returned by a Scanner,
// which guarantees every escape is well-formed.
func AppendUnescaped(dst, raw []byte) []byte {
	for len(raw) > 0 {
		i := bytes.IndexByte(raw, '\\')
		if i < 0 {
			return append(dst, raw...)
		}
		dst = append(dst, raw[:i]...)
		raw = raw[i:]

		switch raw[1] {
		case 'b':
			dst = append(dst, '\b')
		case 'f':
			dst = append(dst, '\f')
		case 'n':
			dst = append(dst, '\n')
		case 'r':
			dst = append(dst, '\r')
		case 't':
			dst = append(dst, '\t')
		case 'u':
			r, _ := hex4(raw, 2)
			n := 6
			if utf16.IsSurrogate(r) {
				lo, _ := hex4(raw, 8)
				r = utf16.DecodeRune(r, lo)
				n = 12
			}
			dst = utf8.AppendRune(dst, r)
			raw = raw[n:]
			continue
		default:
			// '"', '\\' and '/' stand for themselves.
			dst = append(dst, raw[1])
		}
		raw = raw[2:]
	}
	return dst
}
