// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cibola

import "github.com/pkg/errors"

// Defaults and limits for Config.
const (
	DefaultMaxDepth    = 128
	DefaultIndentWidth = 2
	MaxIndentWidth     = 16
)

// ErrInvalidConfig is returned (wrapped) when a Config has an out-of-range
// setting.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the parsing and serialization options.  The zero Config is
// usable: zero fields take their defaults.
type Config struct {
	// MaxDepth bounds container nesting while parsing.  Zero means
	// DefaultMaxDepth.
	MaxDepth int
	// Pretty enables indented output when serializing.
	Pretty bool
	// IndentWidth is the number of spaces per level when Pretty is set.
	// Zero means DefaultIndentWidth.
	IndentWidth int
	// Newline is the line break used when Pretty is set: "\n" (the default)
	// or "\r\n".
	Newline string
	// EscapeNonASCII writes every non-ASCII character as a \u escape.  By
	// default non-ASCII text is written as raw UTF-8.
	EscapeNonASCII bool
}

// DefaultConfig returns the default configuration: depth 128, compact output,
// raw non-ASCII.
func DefaultConfig() Config {
	return Config{MaxDepth: DefaultMaxDepth, Newline: "\n"}
}

// Validate checks that every setting is in range.
func (c Config) Validate() error {
	if c.MaxDepth < 0 {
		return errors.Wrapf(ErrInvalidConfig, "max depth %d is negative", c.MaxDepth)
	}
	if c.IndentWidth < 0 || c.IndentWidth > MaxIndentWidth {
		return errors.Wrapf(ErrInvalidConfig, "indent width %d is outside 0..%d", c.IndentWidth, MaxIndentWidth)
	}
	switch c.Newline {
	case "", "\n", "\r\n":
	default:
		return errors.Wrapf(ErrInvalidConfig, "newline %q must be \"\\n\" or \"\\r\\n\"", c.Newline)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.IndentWidth == 0 {
		c.IndentWidth = DefaultIndentWidth
	}
	if c.Newline == "" {
		c.Newline = "\n"
	}
	return c
}
