// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cibola

import (
	"bytes"
	"fmt"
	"strings"
)

// ErrorKind classifies a parse failure.  ErrorKind values are errors
// themselves, so a *ParseError can be matched with errors.Is:
//
//	if errors.Is(err, cibola.ErrInvalidNumber) { ... }
type ErrorKind int

const (
	// ErrUnexpectedEOF means input ended where more was required, including
	// empty input.
	ErrUnexpectedEOF ErrorKind = iota + 1
	// ErrUnterminatedString means a string had no closing quote.
	ErrUnterminatedString
	// ErrInvalidControlCharacter means a raw byte below 0x20 appeared in a
	// string.
	ErrInvalidControlCharacter
	// ErrInvalidEscape means a backslash was followed by an unknown
	// character.
	ErrInvalidEscape
	// ErrInvalidUnicodeEscape means a \u escape had bad hex digits or an
	// unpaired surrogate.
	ErrInvalidUnicodeEscape
	// ErrInvalidNumber means a number did not follow the JSON grammar or
	// could not be represented.
	ErrInvalidNumber
	// ErrInvalidLiteral means a partial or misspelled true, false or null.
	ErrInvalidLiteral
	// ErrTrailingData means non-whitespace followed the top-level value.
	ErrTrailingData
	// ErrMaxDepthExceeded means containers nested beyond the configured
	// limit.
	ErrMaxDepthExceeded
	// ErrInvalidUTF8 means the input held an invalid UTF-8 sequence.
	ErrInvalidUTF8
	// ErrUnexpectedToken covers all other grammar violations.
	ErrUnexpectedToken
)

var errorKindNames = map[ErrorKind]string{
	ErrUnexpectedEOF:           "unexpected end of input",
	ErrUnterminatedString:      "unterminated string",
	ErrInvalidControlCharacter: "invalid control character in string",
	ErrInvalidEscape:           "invalid escape",
	ErrInvalidUnicodeEscape:    "invalid unicode escape",
	ErrInvalidNumber:           "invalid number",
	ErrInvalidLiteral:          "invalid literal",
	ErrTrailingData:            "trailing data after value",
	ErrMaxDepthExceeded:        "maximum depth exceeded",
	ErrInvalidUTF8:             "invalid UTF-8",
	ErrUnexpectedToken:         "unexpected token",
}

func (k ErrorKind) Error() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("unknown error kind %d", int(k))
}

// ParseError records a JSON parsing error.  It carries the byte offset of the
// offending byte, its 1-based line and (byte) column, and a small excerpt of
// the text at that point.
type ParseError struct {
	Kind   ErrorKind
	Offset int
	Line   int
	Column int
	// Near holds up to nearLength bytes of input starting at Offset.
	Near string

	msg string
}

const nearLength = 20

func (pe *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString("parse error: ")
	sb.WriteString(pe.Kind.Error())
	if pe.msg != "" {
		sb.WriteString(": ")
		sb.WriteString(pe.msg)
	}
	fmt.Fprintf(&sb, " at line %d, column %d (offset %d)", pe.Line, pe.Column, pe.Offset)
	if pe.Near != "" {
		fmt.Fprintf(&sb, ", near %q", pe.Near)
	}
	return sb.String()
}

// Unwrap returns the error's Kind.
func (pe *ParseError) Unwrap() error { return pe.Kind }

// Caret renders the input line containing the error with a caret beneath the
// offending byte.  The input must be the buffer that was parsed.
func (pe *ParseError) Caret(input []byte) string {
	if pe.Offset < 0 || pe.Offset > len(input) {
		return ""
	}
	start := bytes.LastIndexByte(input[:pe.Offset], '\n') + 1
	end := bytes.IndexByte(input[pe.Offset:], '\n')
	if end < 0 {
		end = len(input)
	} else {
		end += pe.Offset
	}
	line := bytes.TrimSuffix(input[start:end], []byte{'\r'})

	var sb strings.Builder
	sb.Write(line)
	sb.WriteByte('\n')
	for _, c := range input[start:pe.Offset] {
		// Keep tabs so the caret lines up in a terminal.
		if c == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	sb.WriteByte('^')
	return sb.String()
}

// newParseError locates offset within data and builds a *ParseError.
func newParseError(data []byte, offset int, kind ErrorKind, msg string) *ParseError {
	line, col := position(data, offset)
	pe := &ParseError{
		Kind:   kind,
		Offset: offset,
		Line:   line,
		Column: col,
		msg:    msg,
	}
	if offset < len(data) {
		end := offset + nearLength
		if end > len(data) {
			end = len(data)
		}
		pe.Near = string(data[offset:end])
	}
	return pe
}

// position converts a byte offset into a 1-based line and column.  It is only
// computed on the error path so scanning doesn't pay for line tracking.
func position(data []byte, offset int) (int, int) {
	if offset > len(data) {
		offset = len(data)
	}
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	col := offset - (bytes.LastIndexByte(prefix, '\n') + 1) + 1
	return line, col
}
