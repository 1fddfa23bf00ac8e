// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package bbf

import (
	"fmt"
	"io"
	"os"
)

// Reader provides access to a finished BBF archive. Open validates
// the header and footer and loads the full string pool eagerly; the
// four tables are deserialized on demand, once per call, with no
// caching across calls.
//
// A precondition of every read operation is that the file is not
// being concurrently mutated by another process.
type Reader struct {
	file    *os.File
	size    int64
	version byte
	footer  footer
	pool    StringPool
}

// Open opens the archive at path. It fails with an error wrapping
// [ErrOpen] on any magic or version mismatch, short read, or
// out-of-bounds table location — no partial reads are attempted after
// a validation failure.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	reader, err := newReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrOpen, path, err)
	}
	return reader, nil
}

// newReader validates the archive structure and loads the string
// pool. Errors are returned unwrapped; Open adds the ErrOpen class
// and the path.
func newReader(file *os.File) (*Reader, error) {
	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	size := info.Size()
	if size < headerSize+footerSize {
		return nil, fmt.Errorf("file is %d bytes, smaller than header + footer (%d)", size, headerSize+footerSize)
	}

	var header [headerSize]byte
	if _, err := io.ReadFull(file, header[:]); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if [4]byte(header[0:4]) != fileMagic {
		return nil, fmt.Errorf("bad header magic %q", header[0:4])
	}
	version := header[4]
	if version > FormatVersion {
		return nil, fmt.Errorf("format version %d is not supported (this code supports up to %d)", version, FormatVersion)
	}

	footerBuf := make([]byte, footerSize)
	if _, err := file.ReadAt(footerBuf, size-footerSize); err != nil {
		return nil, fmt.Errorf("reading footer: %w", err)
	}
	if [4]byte(footerBuf[0:4]) != fileMagic {
		return nil, fmt.Errorf("bad footer magic %q", footerBuf[0:4])
	}
	f := decodeFooter(footerBuf)

	// Every table span must lie inside the file. The checks use
	// uint64 arithmetic on values read from disk; the spans are
	// small enough that overflow would already fail the comparison.
	fileSize := uint64(size)
	spans := []struct {
		name   string
		offset uint64
		length uint64
	}{
		{"string pool", f.stringPoolOffset, f.stringPoolSize},
		{"asset table", f.assetTableOffset, uint64(f.assetCount) * assetEntrySize},
		{"page table", f.pageTableOffset, uint64(f.pageCount) * pageEntrySize},
		{"section table", f.sectionTableOffset, uint64(f.sectionCount) * sectionEntrySize},
		{"metadata table", f.metaTableOffset, uint64(f.metadataCount) * metadataEntrySize},
	}
	for _, span := range spans {
		if span.offset < headerSize || span.offset > fileSize || fileSize-span.offset < span.length {
			return nil, fmt.Errorf("%s span [%d, %d+%d) lies outside the file (%d bytes)",
				span.name, span.offset, span.offset, span.length, fileSize)
		}
	}

	poolBuf := make([]byte, f.stringPoolSize)
	if _, err := file.ReadAt(poolBuf, int64(f.stringPoolOffset)); err != nil {
		return nil, fmt.Errorf("loading string pool: %w", err)
	}

	return &Reader{
		file:    file,
		size:    size,
		version: version,
		footer:  f,
		pool:    poolFromBytes(poolBuf),
	}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Version returns the archive's format version byte.
func (r *Reader) Version() byte {
	return r.version
}

// PageCount returns the number of pages in reading order.
func (r *Reader) PageCount() int {
	return int(r.footer.pageCount)
}

// AssetCount returns the number of unique stored assets.
func (r *Reader) AssetCount() int {
	return int(r.footer.assetCount)
}

// SectionCount returns the number of section records.
func (r *Reader) SectionCount() int {
	return int(r.footer.sectionCount)
}

// MetadataCount returns the number of metadata records.
func (r *Reader) MetadataCount() int {
	return int(r.footer.metadataCount)
}

// Assets deserializes the asset table. Each entry is validated:
// reserved bytes must be zero, the payload offset must be sector
// aligned, and the payload span must lie inside the file.
func (r *Reader) Assets() ([]AssetEntry, error) {
	raw, err := r.readTable("asset table", r.footer.assetTableOffset, int(r.footer.assetCount), assetEntrySize)
	if err != nil {
		return nil, err
	}

	assets := make([]AssetEntry, r.footer.assetCount)
	for i := range assets {
		entry, err := decodeAssetEntry(raw[i*assetEntrySize : (i+1)*assetEntrySize])
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		if entry.Offset%SectorSize != 0 {
			return nil, fmt.Errorf("asset %d offset %d is not sector aligned", i, entry.Offset)
		}
		if entry.Offset > uint64(r.size) || uint64(r.size)-entry.Offset < uint64(entry.Length) {
			return nil, fmt.Errorf("asset %d span [%d, %d+%d) lies outside the file", i, entry.Offset, entry.Offset, entry.Length)
		}
		assets[i] = entry
	}
	return assets, nil
}

// Pages deserializes the page table. Every page's asset index is
// validated against the asset count.
func (r *Reader) Pages() ([]PageEntry, error) {
	raw, err := r.readTable("page table", r.footer.pageTableOffset, int(r.footer.pageCount), pageEntrySize)
	if err != nil {
		return nil, err
	}

	pages := make([]PageEntry, r.footer.pageCount)
	for i := range pages {
		pages[i] = decodePageEntry(raw[i*pageEntrySize : (i+1)*pageEntrySize])
		if pages[i].AssetIndex >= r.footer.assetCount {
			return nil, fmt.Errorf("page %d references asset %d, archive has %d assets",
				i, pages[i].AssetIndex, r.footer.assetCount)
		}
	}
	return pages, nil
}

// Sections deserializes the section table. Sections are in insertion
// order, which need not match page order. Every section's start page
// is validated against the page count (equality is legal — an empty
// trailing section) and every parent against table order, so resolved
// page ranges never index past the page table.
func (r *Reader) Sections() ([]Section, error) {
	raw, err := r.readTable("section table", r.footer.sectionTableOffset, int(r.footer.sectionCount), sectionEntrySize)
	if err != nil {
		return nil, err
	}

	sections := make([]Section, r.footer.sectionCount)
	for i := range sections {
		sections[i] = decodeSection(raw[i*sectionEntrySize : (i+1)*sectionEntrySize])
		if sections[i].StartPage > r.footer.pageCount {
			return nil, fmt.Errorf("section %d starts at page %d, archive has %d pages",
				i, sections[i].StartPage, r.footer.pageCount)
		}
		if sections[i].Parent != NoParent && int(sections[i].Parent) >= i {
			return nil, fmt.Errorf("section %d parent %d does not reference an earlier section", i, sections[i].Parent)
		}
	}
	return sections, nil
}

// Metadata deserializes the metadata table, in insertion order.
func (r *Reader) Metadata() ([]MetadataEntry, error) {
	raw, err := r.readTable("metadata table", r.footer.metaTableOffset, int(r.footer.metadataCount), metadataEntrySize)
	if err != nil {
		return nil, err
	}

	metadata := make([]MetadataEntry, r.footer.metadataCount)
	for i := range metadata {
		metadata[i] = decodeMetadataEntry(raw[i*metadataEntrySize : (i+1)*metadataEntrySize])
	}
	return metadata, nil
}

// LookupString resolves a string pool offset from the eagerly loaded
// pool. Fails with [ErrOffsetOutOfRange] for offsets that are not
// valid interned-string starts.
func (r *Reader) LookupString(offset uint32) (string, error) {
	return r.pool.Lookup(offset)
}

// ReadAssetData reads one asset's payload bytes. The buffer is sized
// exactly to the payload.
func (r *Reader) ReadAssetData(entry AssetEntry) ([]byte, error) {
	if entry.Offset > uint64(r.size) || uint64(r.size)-entry.Offset < uint64(entry.Length) {
		return nil, fmt.Errorf("asset span [%d, %d+%d) lies outside the file", entry.Offset, entry.Offset, entry.Length)
	}
	data := make([]byte, entry.Length)
	if _, err := r.file.ReadAt(data, int64(entry.Offset)); err != nil {
		return nil, fmt.Errorf("reading asset at offset %d (%d bytes): %w", entry.Offset, entry.Length, err)
	}
	return data, nil
}

// readTable reads count fixed-size records starting at offset. The
// span was bounds-checked at open; the buffer is sized exactly to the
// record span.
func (r *Reader) readTable(name string, offset uint64, count, recordSize int) ([]byte, error) {
	raw := make([]byte, count*recordSize)
	if _, err := r.file.ReadAt(raw, int64(offset)); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return raw, nil
}
