// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cibola

import (
	"fmt"
)

func (p *Parser) parseValue() (Value, error) {
	tok, err := p.scan.Next()
	if err != nil {
		return Value{}, err
	}
	return p.convertToken(tok)
}

func (p *Parser) convertToken(tok Token) (Value, error) {
	switch tok.Kind {
	case TokenBeginObject:
		return p.parseObject(tok)
	case TokenBeginArray:
		return p.parseArray(tok)
	case TokenString:
		s, borrowed := p.decodeString(tok)
		return Value{kind: StringKind, str: s, borrowed: borrowed}, nil
	case TokenNumber:
		return p.convertNumber(tok)
	case TokenTrue:
		return Bool(true), nil
	case TokenFalse:
		return Bool(false), nil
	case TokenNull:
		return Null(), nil
	}
	return Value{}, p.unexpected(tok, "expecting value")
}

// unexpected reports a grammar violation at tok.  Running out of input is
// reported as ErrUnexpectedEOF rather than a bad token.
func (p *Parser) unexpected(tok Token, msg string) error {
	if tok.Kind == TokenEOF {
		return p.errorAt(tok.Start, ErrUnexpectedEOF, msg)
	}
	return p.errorAt(tok.Start, ErrUnexpectedToken, fmt.Sprintf("%s, found %s", msg, p.describe(tok)))
}

func (p *Parser) enter(open Token) error {
	p.curDepth++
	if p.curDepth > p.maxDepth {
		return p.errorAt(open.Start, ErrMaxDepthExceeded, fmt.Sprintf("limit is %d", p.maxDepth))
	}
	return nil
}

func (p *Parser) parseObject(open Token) (Value, error) {
	// Depth check
	err := p.enter(open)
	defer func() { p.curDepth-- }()
	if err != nil {
		return Value{}, err
	}

	tok, err := p.scan.Next()
	if err != nil {
		return Value{}, err
	}

	// Case: empty object
	if tok.Kind == TokenEndObject {
		return Value{kind: ObjectKind, members: []Member{}}, nil
	}

	b := objectBuilder{scratch: p.keyIndex()}
	defer b.release()
	expect := "expecting key or end of object"

	for {
		if tok.Kind != TokenString {
			return Value{}, p.unexpected(tok, expect)
		}
		key, _ := p.decodeString(tok)

		// Next token must be ':' for separator
		tok, err = p.scan.Next()
		if err != nil {
			return Value{}, err
		}
		if tok.Kind != TokenColon {
			return Value{}, p.unexpected(tok, "expecting ':'")
		}

		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		b.add(key, v)

		tok, err = p.scan.Next()
		if err != nil {
			return Value{}, err
		}
		switch tok.Kind {
		case TokenComma:
			tok, err = p.scan.Next()
			if err != nil {
				return Value{}, err
			}
			expect = "expecting key"
		case TokenEndObject:
			return Value{kind: ObjectKind, members: b.members}, nil
		default:
			return Value{}, p.unexpected(tok, "expecting value-separator or end of object")
		}
	}
}

func (p *Parser) parseArray(open Token) (Value, error) {
	// Depth check
	err := p.enter(open)
	defer func() { p.curDepth-- }()
	if err != nil {
		return Value{}, err
	}

	tok, err := p.scan.Next()
	if err != nil {
		return Value{}, err
	}

	// Case: empty array
	if tok.Kind == TokenEndArray {
		return Value{kind: ArrayKind, elems: []Value{}}, nil
	}

	elems := make([]Value, 0, 4)
	for {
		v, err := p.convertToken(tok)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)

		tok, err = p.scan.Next()
		if err != nil {
			return Value{}, err
		}
		switch tok.Kind {
		case TokenComma:
			tok, err = p.scan.Next()
			if err != nil {
				return Value{}, err
			}
		case TokenEndArray:
			return Value{kind: ArrayKind, elems: elems}, nil
		default:
			return Value{}, p.unexpected(tok, "expecting value-separator or end of array")
		}
	}
}

// decodeString returns the text of a string token and whether it borrows from
// the input.  Only escape-free strings in ParseString mode borrow.
func (p *Parser) decodeString(tok Token) (string, bool) {
	raw := p.data[tok.Start:tok.End]
	if !tok.Escaped {
		if p.borrow {
			return b2s(raw), true
		}
		return string(raw), false
	}
	p.buf = AppendUnescaped(p.buf[:0], raw)
	return string(p.buf), false
}

func (p *Parser) convertNumber(tok Token) (Value, error) {
	n, err := parseNumber(p.data[tok.Start:tok.End], tok.Fraction)
	if err != nil {
		// The scanner already enforced the grammar, so only range
		// errors reach here.
		return Value{}, p.errorAt(tok.Start, ErrInvalidNumber, "value out of range")
	}
	return Value{kind: NumberKind, num: n}, nil
}
