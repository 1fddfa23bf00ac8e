// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

// Package bbf implements the Bound Book Format (BBF), a single-file
// archival container for sequential page-image collections such as
// scanned comics and manga. One .bbf file holds many page images with
// deduplicated storage for repeated images, hierarchical volume and
// chapter metadata, and per-asset content integrity hashes.
//
// The package is organized in layers, each usable independently:
//
//   - Format: the byte-exact on-disk contract. A fixed 5-byte header
//     ("BBF1" magic + version), fixed-width little-endian table
//     records, a NUL-terminated string pool, and a fixed 68-byte
//     trailing footer recording every table's offset and element
//     count. All serialization is explicit field-by-field encoding —
//     never in-memory struct reinterpretation — so the format is
//     portable and bit-exact across implementations.
//
//   - Assets: content-addressed storage of unique image payloads.
//     Each asset records a 64-bit XXH64 content hash; a write-session
//     map from hash to asset index deduplicates repeated images
//     (covers, interstitials) so they are stored exactly once. Asset
//     data is aligned to 4096-byte sector boundaries for efficient
//     block I/O on the read path.
//
//   - Pages: the reading order of the book. Every source page gets
//     its own page entry regardless of shared assets — deduplication
//     is purely storage-side.
//
//   - Sections: named hierarchical ranges over pages (volumes,
//     chapters) stored as a flat table with parent indices. Range
//     resolution finds the next later-starting sibling at the same
//     nesting level; intervening descendants fold into the range.
//
//   - Writer: single-pass builder. Asset bytes stream to the output
//     as pages are added; tables accumulate in memory and are
//     concatenated in fixed order at finalize, followed by the
//     footer.
//
//   - Reader: validates header and footer at open, loads the string
//     pool eagerly, deserializes the other tables on demand, and
//     provides the verify and extract operations on top.
//
// Verification recomputes every asset's XXH64 hash against the stored
// value (the scan always completes; mismatches are reported per
// asset) and additionally computes a domain-keyed BLAKE3 fingerprint
// of the whole file as a stable catalog identity for the archive.
package bbf
