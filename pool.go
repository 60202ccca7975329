// Copyright 2020 by David A. Golden. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package cibola

import "sync"

// maxPooledBuf caps the scratch buffer kept by a pooled parser.
const maxPooledBuf = 64 << 10

var parserPool = sync.Pool{
	New: func() any { return NewParser() },
}

// AcquireParser checks a parser out of a shared pool.  The caller owns it
// exclusively until it is handed back with ReleaseParser.
func AcquireParser() *Parser {
	return parserPool.Get().(*Parser)
}

// ReleaseParser returns p to the pool and restores its default settings.  p
// must not be used after it is released.  Values it returned stay valid.
func ReleaseParser(p *Parser) {
	p.maxDepth = DefaultMaxDepth
	p.borrow = false
	if cap(p.buf) > maxPooledBuf {
		p.buf = nil
	}
	parserPool.Put(p)
}
