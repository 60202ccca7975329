// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cibola

import (
	"bytes"
	"fmt"
)

// Parser converts JSON text into a Value tree.  A Parser keeps scratch
// buffers between calls, so reusing one avoids allocation, but it must not
// be used from more than one goroutine at a time.  See AcquireParser for a
// pool with an explicit hand-off.
type Parser struct {
	curDepth int
	maxDepth int
	borrow   bool
	data     []byte
	scan     Scanner
	// buf holds decoded escaped strings before they are copied out.
	buf []byte
	// indexes holds one reusable key index per nesting level for
	// deduplicating large objects.
	indexes []map[string]int
}

// NewParser returns a new parser with the default maximum depth.
func NewParser() *Parser {
	return &Parser{maxDepth: DefaultMaxDepth}
}

// NewParserWithConfig returns a parser using the parse settings of cfg.
func NewParserWithConfig(cfg Config) (*Parser, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := NewParser()
	p.MaxDepth(cfg.withDefaults().MaxDepth)
	return p, nil
}

// MaxDepth sets the maximum allowed nesting of arrays and objects.  The
// default is 128.  A document nested exactly n deep parses; one nested
// deeper fails with ErrMaxDepthExceeded.  Zero allows only scalar documents.
func (p *Parser) MaxDepth(n int) {
	p.maxDepth = n
}

// Parse converts a single JSON document into a Value.  Every string in the
// result is an owned copy, so data may be reused once Parse returns.
func (p *Parser) Parse(data []byte) (Value, error) {
	p.borrow = false
	return p.parse(data)
}

// ParseString converts a single JSON document into a Value.  Strings with no
// escape sequences are substrings of s rather than copies (Value.Borrowed
// reports true for them), which keeps all of s reachable for as long as any
// of them is.
func (p *Parser) ParseString(s string) (Value, error) {
	p.borrow = true
	return p.parse(s2b(s))
}

func (p *Parser) parse(data []byte) (Value, error) {
	p.data = data
	p.curDepth = 0
	p.scan.Reset(data)
	defer func() {
		// Don't pin the caller's input while the parser sits idle.
		p.data = nil
		p.scan.Reset(nil)
	}()

	n, err := p.handleBOM()
	if err != nil {
		return Value{}, err
	}
	p.scan.SetOffset(n)

	v, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}

	// A document is exactly one value.
	if p.scan.More() {
		off := p.scan.Offset()
		return Value{}, p.errorAt(off, ErrTrailingData, "")
	}
	return v, nil
}

func (p *Parser) errorAt(off int, kind ErrorKind, msg string) error {
	return newParseError(p.data, off, kind, msg)
}

var (
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
	utf16BEBOM = []byte{0xFE, 0xFF}
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf32BEBOM = []byte{0x00, 0x00, 0xFE, 0xFF}
	utf32LEBOM = []byte{0xFF, 0xFE, 0x00, 0x00}
)

// handleBOM returns the length of a leading UTF-8 byte-order-mark, which is
// skipped.  Because only UTF-8 is supported, other BOMs are errors.
func (p *Parser) handleBOM() (int, error) {
	data := p.data
	switch {
	case bytes.HasPrefix(data, utf8BOM):
		return len(utf8BOM), nil
	case bytes.HasPrefix(data, utf32BEBOM), bytes.HasPrefix(data, utf32LEBOM):
		return 0, p.errorAt(0, ErrInvalidUTF8, "unsupported UTF-32 byte order mark")
	case bytes.HasPrefix(data, utf16BEBOM), bytes.HasPrefix(data, utf16LEBOM):
		return 0, p.errorAt(0, ErrInvalidUTF8, "unsupported UTF-16 byte order mark")
	}
	return 0, nil
}

// keyIndex returns the scratch key index for the current depth.
func (p *Parser) keyIndex() map[string]int {
	for len(p.indexes) <= p.curDepth {
		p.indexes = append(p.indexes, nil)
	}
	if p.indexes[p.curDepth] == nil {
		p.indexes[p.curDepth] = make(map[string]int)
	}
	return p.indexes[p.curDepth]
}

// describe names a token for an error message.
func (p *Parser) describe(tok Token) string {
	if tok.Kind == TokenInvalid {
		return fmt.Sprintf("'%s'", p.data[tok.Start:tok.End])
	}
	return tok.Kind.String()
}

// Parse converts a single JSON document into a Value using the default
// configuration.
func Parse(data []byte) (Value, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.Parse(data)
}

// ParseString is like Parse, but strings without escapes in the result
// borrow from s instead of being copied.
func ParseString(s string) (Value, error) {
	p := AcquireParser()
	defer ReleaseParser(p)
	return p.ParseString(s)
}

// ParseWithConfig converts a single JSON document into a Value using the
// parse settings of cfg.
func ParseWithConfig(data []byte, cfg Config) (Value, error) {
	if err := cfg.Validate(); err != nil {
		return Value{}, err
	}
	p := AcquireParser()
	defer ReleaseParser(p)
	p.MaxDepth(cfg.withDefaults().MaxDepth)
	return p.Parse(data)
}
