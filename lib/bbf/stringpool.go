// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package bbf

import (
	"bytes"
	"fmt"
)

// StringPool is an append-only buffer of interned UTF-8 strings,
// stored back-to-back and NUL-terminated. Strings are addressed by
// their byte offset within the pool and are immutable once appended.
//
// Strings must not contain embedded NUL bytes: NUL is the terminator,
// so an embedded NUL truncates the string at lookup time.
type StringPool struct {
	buf []byte
}

// Append interns s and returns its offset within the pool. The same
// string appended twice gets two offsets; the pool never deduplicates
// or removes entries.
func (p *StringPool) Append(s string) uint32 {
	offset := uint32(len(p.buf))
	p.buf = append(p.buf, s...)
	p.buf = append(p.buf, 0)
	return offset
}

// Lookup returns the string starting at offset. The offset must be
// the start of an interned string: either 0 or immediately after a
// NUL terminator, with a terminator following. Anything else —
// including offsets at or past the end of the pool and offsets into
// the middle of a string — fails with [ErrOffsetOutOfRange].
func (p *StringPool) Lookup(offset uint32) (string, error) {
	if uint64(offset) >= uint64(len(p.buf)) {
		return "", fmt.Errorf("%w: offset %d, pool size %d", ErrOffsetOutOfRange, offset, len(p.buf))
	}
	if offset > 0 && p.buf[offset-1] != 0 {
		return "", fmt.Errorf("%w: offset %d is not a string start", ErrOffsetOutOfRange, offset)
	}
	end := bytes.IndexByte(p.buf[offset:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: offset %d has no terminator", ErrOffsetOutOfRange, offset)
	}
	return string(p.buf[offset : int(offset)+end]), nil
}

// Size returns the pool length in bytes, including terminators.
func (p *StringPool) Size() int {
	return len(p.buf)
}

// Bytes returns the raw pool buffer. The caller must not modify it.
func (p *StringPool) Bytes() []byte {
	return p.buf
}

// poolFromBytes wraps a raw pool span read from an archive.
func poolFromBytes(buf []byte) StringPool {
	return StringPool{buf: buf}
}
