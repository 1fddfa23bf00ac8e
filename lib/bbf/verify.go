// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package bbf

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// Fingerprint is the 32-byte domain-keyed BLAKE3 digest of an entire
// archive file. Unlike the per-asset XXH64 hashes it covers every
// byte of the container (header, padding, tables, footer), giving the
// archive a stable catalog identity independent of its filename.
type Fingerprint [32]byte

// String returns the canonical hex form of a fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// archiveDomainKey is the BLAKE3 key for archive fingerprints. A
// fixed constant — changing it invalidates all recorded fingerprints.
// The value is the ASCII domain name zero-padded to 32 bytes so it is
// inspectable in hex dumps.
var archiveDomainKey = [32]byte{
	'b', 'b', 'f', '.', 'a', 'r', 'c', 'h', 'i', 'v', 'e',
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// VerifyReport is the result of a full integrity scan.
type VerifyReport struct {
	// AssetCount is the number of assets checked.
	AssetCount int

	// Mismatched lists the asset indices whose recomputed content
	// hash differed from the stored hash, in table order.
	Mismatched []int

	// Fingerprint is the whole-file archive fingerprint.
	Fingerprint Fingerprint
}

// OK reports whether the scan found zero mismatches.
func (rep *VerifyReport) OK() bool {
	return len(rep.Mismatched) == 0
}

// Err returns nil for a clean report, or an error wrapping
// [ErrIntegrity] naming the mismatched assets.
func (rep *VerifyReport) Err() error {
	if rep.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d of %d assets failed verification", ErrIntegrity, len(rep.Mismatched), rep.AssetCount)
}

// Verify re-reads every asset's byte range, recomputes its XXH64
// content hash, and compares it to the stored hash. Every asset is
// checked regardless of earlier mismatches — the scan never aborts
// early on a bad hash (it does fail fast on an unrecoverable I/O
// error). The whole-file fingerprint is computed as part of the same
// scan.
func (r *Reader) Verify() (*VerifyReport, error) {
	assets, err := r.Assets()
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{AssetCount: len(assets)}
	for i, entry := range assets {
		data, err := r.ReadAssetData(entry)
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		if xxhash.Sum64(data) != entry.Hash {
			report.Mismatched = append(report.Mismatched, i)
		}
	}

	fingerprint, err := r.fingerprint()
	if err != nil {
		return nil, err
	}
	report.Fingerprint = fingerprint
	return report, nil
}

// fingerprint streams the whole file through a keyed BLAKE3 hasher.
func (r *Reader) fingerprint() (Fingerprint, error) {
	hasher, err := blake3.NewKeyed(archiveDomainKey[:])
	if err != nil {
		return Fingerprint{}, fmt.Errorf("initializing fingerprint hasher: %w", err)
	}
	if _, err := io.Copy(hasher, io.NewSectionReader(r.file, 0, r.size)); err != nil {
		return Fingerprint{}, fmt.Errorf("fingerprinting archive: %w", err)
	}
	var fingerprint Fingerprint
	copy(fingerprint[:], hasher.Sum(nil))
	return fingerprint, nil
}
