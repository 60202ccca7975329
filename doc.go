// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package cibola is a high-performance JSON parser and serializer.  It
// converts a UTF-8 byte buffer into an in-memory Value tree and back while
// minimizing allocation.
//
// Parsing
//
// Parse and ParseString accept exactly one JSON value per RFC 8259.  There is
// no error recovery: the first lexical or grammatical violation stops parsing
// and returns a *ParseError with the byte offset, line and column of the
// offending byte.  A leading UTF-8 byte-order-mark is skipped.  Nesting is
// bounded by Parser.MaxDepth (default 128), so hostile input can't exhaust
// the stack.
//
// Objects keep their member order.  When a key repeats, the last value wins
// and keeps the position of the key's first occurrence.
//
// Integer literals are held exactly as int64, or as uint64 above
// math.MaxInt64.  Literals with a fraction or exponent, and integers beyond 64
// bits, become float64.
//
// Ownership
//
// Parse copies every string out of its input.  ParseString returns strings
// without escape sequences as substrings of its input (zero-copy), which is
// safe because Go strings are immutable.  Value.Borrowed reports which
// strings borrow.
//
// Serializing
//
// Marshal writes canonical compact JSON.  Quote, backslash and control
// characters are escaped; other non-ASCII text is written as raw UTF-8 unless
// Config.EscapeNonASCII is set.  Floats use the fewest digits that round-trip
// and always carry a fraction or exponent, so that parse(serialize(v))
// equals v.  Config.Pretty enables indented output.
//
// Concurrency
//
// Package-level functions may be called from any goroutine.  A Parser holds
// scratch buffers and belongs to one goroutine at a time; AcquireParser and
// ReleaseParser hand parsers out of a shared pool.
//
// BSON
//
// Value.AppendBSON and FromBSON convert objects to and from BSON documents
// using the MongoDB Go driver.
package cibola
