// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package bbf

import "errors"

// Sentinel errors for the failure classes callers need to distinguish.
// All are wrapped with context at the failure site; match with
// [errors.Is].
var (
	// ErrOpen indicates a file could not be opened as a BBF archive:
	// missing file, short read, or a magic/version mismatch in the
	// header or footer. Open-time validation failures abort the whole
	// operation — no partial reads are attempted.
	ErrOpen = errors.New("not a valid BBF archive")

	// ErrOffsetOutOfRange indicates a string pool reference that does
	// not point at the start of an interned string (corrupt or
	// invalid offset).
	ErrOffsetOutOfRange = errors.New("string pool offset out of range")

	// ErrIntegrity indicates one or more assets failed hash
	// verification.
	ErrIntegrity = errors.New("asset integrity mismatch")

	// ErrSectionNotFound indicates an extraction target section name
	// that matches no section in the archive.
	ErrSectionNotFound = errors.New("section not found")

	// ErrFinalize indicates a write failure while encoding an archive
	// (disk full, permission error, stream closed prematurely) or a
	// table invariant violation detected at finalize time.
	ErrFinalize = errors.New("finalizing archive")
)
