// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package bbf

import (
	"fmt"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Writer builds a BBF archive in a single pass. Asset bytes are
// streamed to the output file as pages are added (with sector
// alignment padding interleaved); the string pool and the four tables
// accumulate in memory and are written at [Writer.Finalize], followed
// by the footer.
//
// A Writer is single-use: after Finalize succeeds the archive is
// complete and no further additions are valid.
type Writer struct {
	file   *os.File
	offset uint64

	pool     StringPool
	assets   []AssetEntry
	pages    []PageEntry
	sections []Section
	metadata []MetadataEntry

	// dedup maps content hash to previously assigned asset index.
	// Write-session scoped: it exists only for the lifetime of this
	// Writer and is never persisted.
	dedup map[uint64]uint32

	finalized bool
}

// Create opens path for writing and writes the archive header. An
// existing file at path is truncated.
func Create(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}

	var header [headerSize]byte
	copy(header[0:4], fileMagic[:])
	header[4] = FormatVersion
	if _, err := file.Write(header[:]); err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: writing header: %w", ErrFinalize, err)
	}

	return &Writer{
		file:   file,
		offset: headerSize,
		dedup:  make(map[uint64]uint32),
	}, nil
}

// AddAsset stores data as an asset and returns its asset table index.
// If an asset with the same XXH64 content hash was already stored in
// this write session, its index is returned and no bytes are written
// (hash equality is treated as content equality — the accepted risk
// of the 64-bit hash choice). Otherwise the write cursor advances to
// the next sector boundary, the gap is zero-filled, and data is
// appended as a new asset.
func (w *Writer) AddAsset(data []byte, typ AssetType) (uint32, error) {
	if w.finalized {
		return 0, fmt.Errorf("archive already finalized")
	}
	if err := checkAssetLength(uint64(len(data))); err != nil {
		return 0, err
	}

	hash := xxhash.Sum64(data)
	if index, ok := w.dedup[hash]; ok {
		return index, nil
	}

	if err := w.alignToSector(); err != nil {
		return 0, err
	}

	entry := AssetEntry{
		Offset: w.offset,
		Hash:   hash,
		Length: uint32(len(data)),
		Type:   typ,
	}
	if err := w.write(data); err != nil {
		return 0, fmt.Errorf("%w: writing asset %d: %w", ErrFinalize, len(w.assets), err)
	}

	index := uint32(len(w.assets))
	w.assets = append(w.assets, entry)
	w.dedup[hash] = index
	return index, nil
}

// AddPage stores data as a page in reading order: the asset is added
// (or deduplicated) via [Writer.AddAsset] and a new page entry
// referencing it is appended. Returns the 0-based page index. Call
// order defines the final reading order; pages are never merged or
// reordered.
func (w *Writer) AddPage(data []byte, typ AssetType) (int, error) {
	assetIndex, err := w.AddAsset(data, typ)
	if err != nil {
		return 0, err
	}
	w.pages = append(w.pages, PageEntry{AssetIndex: assetIndex})
	return len(w.pages) - 1, nil
}

// AddSection interns title, appends a section record, and returns its
// table index. startPage is the 0-based index of the section's first
// page; parent is the index of the enclosing section or [NoParent]
// for a root-level section. A non-sentinel parent must reference a
// section added earlier.
func (w *Writer) AddSection(title string, startPage uint32, parent uint32) (uint32, error) {
	if w.finalized {
		return 0, fmt.Errorf("archive already finalized")
	}
	if parent != NoParent && int(parent) >= len(w.sections) {
		return 0, fmt.Errorf("parent index %d does not reference an earlier section (have %d)", parent, len(w.sections))
	}

	index := uint32(len(w.sections))
	w.sections = append(w.sections, Section{
		TitleOffset: w.pool.Append(title),
		StartPage:   startPage,
		Parent:      parent,
	})
	return index, nil
}

// AddMetadata appends a key/value archival metadata pair. Keys are
// not required to be unique; duplicates are retained in insertion
// order.
func (w *Writer) AddMetadata(key, value string) error {
	if w.finalized {
		return fmt.Errorf("archive already finalized")
	}
	w.metadata = append(w.metadata, MetadataEntry{
		KeyOffset:   w.pool.Append(key),
		ValueOffset: w.pool.Append(value),
	})
	return nil
}

// PageCount returns the number of pages added so far.
func (w *Writer) PageCount() int {
	return len(w.pages)
}

// AssetCount returns the number of unique assets stored so far.
func (w *Writer) AssetCount() int {
	return len(w.assets)
}

// Finalize validates table invariants, writes the string pool, the
// four tables, and the footer, then syncs and closes the file. On
// success the archive is complete; on failure the partial file is
// left behind for the caller to remove. All failures wrap
// [ErrFinalize].
func (w *Writer) Finalize() error {
	if w.finalized {
		return fmt.Errorf("archive already finalized")
	}

	// Every section must start inside the book. A start equal to the
	// page count is allowed: it denotes an empty trailing section.
	for i, section := range w.sections {
		if uint64(section.StartPage) > uint64(len(w.pages)) {
			return fmt.Errorf("%w: section %d starts at page %d, book has %d pages",
				ErrFinalize, i, section.StartPage, len(w.pages))
		}
	}

	f := footer{
		stringPoolOffset: w.offset,
		stringPoolSize:   uint64(w.pool.Size()),
		assetCount:       uint32(len(w.assets)),
		pageCount:        uint32(len(w.pages)),
		sectionCount:     uint32(len(w.sections)),
		metadataCount:    uint32(len(w.metadata)),
	}

	if err := w.write(w.pool.Bytes()); err != nil {
		return fmt.Errorf("%w: writing string pool: %w", ErrFinalize, err)
	}

	f.assetTableOffset = w.offset
	buf := make([]byte, assetEntrySize)
	for _, entry := range w.assets {
		encodeAssetEntry(buf, entry)
		if err := w.write(buf); err != nil {
			return fmt.Errorf("%w: writing asset table: %w", ErrFinalize, err)
		}
	}

	f.pageTableOffset = w.offset
	buf = buf[:pageEntrySize]
	for _, entry := range w.pages {
		encodePageEntry(buf, entry)
		if err := w.write(buf); err != nil {
			return fmt.Errorf("%w: writing page table: %w", ErrFinalize, err)
		}
	}

	f.sectionTableOffset = w.offset
	buf = make([]byte, sectionEntrySize)
	for _, section := range w.sections {
		encodeSection(buf, section)
		if err := w.write(buf); err != nil {
			return fmt.Errorf("%w: writing section table: %w", ErrFinalize, err)
		}
	}

	f.metaTableOffset = w.offset
	buf = buf[:metadataEntrySize]
	for _, entry := range w.metadata {
		encodeMetadataEntry(buf, entry)
		if err := w.write(buf); err != nil {
			return fmt.Errorf("%w: writing metadata table: %w", ErrFinalize, err)
		}
	}

	footerBuf := make([]byte, footerSize)
	encodeFooter(footerBuf, f)
	if err := w.write(footerBuf); err != nil {
		return fmt.Errorf("%w: writing footer: %w", ErrFinalize, err)
	}

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("%w: syncing archive: %w", ErrFinalize, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("%w: closing archive: %w", ErrFinalize, err)
	}

	w.finalized = true
	w.dedup = nil
	return nil
}

// Abort closes and removes the partial output file. It is a no-op
// after a successful Finalize, so callers can defer it
// unconditionally.
func (w *Writer) Abort() error {
	if w.finalized {
		return nil
	}
	w.file.Close()
	if err := os.Remove(w.file.Name()); err != nil {
		return fmt.Errorf("removing partial archive: %w", err)
	}
	return nil
}

// checkAssetLength rejects payloads whose byte length does not fit the
// asset entry's u32 length field. Truncating would record a length that
// disagrees with the bytes written and corrupt the archive.
func checkAssetLength(length uint64) error {
	if length > math.MaxUint32 {
		return fmt.Errorf("asset is %d bytes, exceeds the format's %d-byte limit", length, uint32(math.MaxUint32))
	}
	return nil
}

// zeroSector is the shared padding source for sector alignment.
var zeroSector [SectorSize]byte

// alignToSector advances the write cursor to the next multiple of
// SectorSize, zero-filling the gap. A cursor already on a boundary is
// left unchanged.
func (w *Writer) alignToSector() error {
	padding := (SectorSize - w.offset%SectorSize) % SectorSize
	if padding == 0 {
		return nil
	}
	if err := w.write(zeroSector[:padding]); err != nil {
		return fmt.Errorf("%w: writing alignment padding: %w", ErrFinalize, err)
	}
	return nil
}

// write appends data at the current cursor and advances it.
func (w *Writer) write(data []byte) error {
	n, err := w.file.Write(data)
	w.offset += uint64(n)
	return err
}
