// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package bbf

import (
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
)

// Format constants. These values are protocol constants — changing
// any of them breaks compatibility with existing .bbf files.
const (
	// FormatVersion is the BBF format version this code writes. The
	// reader accepts files with a version less than or equal to this.
	FormatVersion byte = 1

	// headerSize is the fixed file header: 4-byte magic + 1 version
	// byte, at offset 0.
	headerSize = 5

	// footerSize is the fixed trailing footer: 4-byte magic, string
	// pool offset and byte length (two u64), then offset (u64) and
	// count (u32) for each of the asset, page, section, and metadata
	// tables. Located at fileSize − footerSize; it is the single
	// entry point for locating every other structure.
	footerSize = 4 + 16 + 4*12

	// SectorSize is the alignment unit for asset data. Every asset's
	// byte offset is a multiple of this; gaps are zero-filled.
	SectorSize = 4096

	// assetEntrySize is each asset table record: offset u64, XXH64
	// content hash u64, byte length u32, type tag u8, 3 reserved
	// zero bytes. The reserved bytes give the entry an 8-byte stride.
	assetEntrySize = 24

	// pageEntrySize is each page table record: asset index u32.
	pageEntrySize = 4

	// sectionEntrySize is each section table record: title string
	// pool offset u32, 0-based start page u32, parent index u32.
	sectionEntrySize = 12

	// metadataEntrySize is each metadata table record: key and value
	// string pool offsets (two u32).
	metadataEntrySize = 8

	// NoParent is the parent index sentinel for root-level sections.
	NoParent uint32 = 0xFFFFFFFF
)

// fileMagic is the 4-byte signature at the start of the file and the
// start of the footer.
var fileMagic = [4]byte{'B', 'B', 'F', '1'}

// AssetType identifies the image encoding of an asset's payload.
// Stored as a 1-byte tag in each asset entry. Values 1 and 2 are
// inherited from format version 1 files; readers pass unknown tags
// through so newer files still extract (with a .bin extension).
type AssetType uint8

const (
	// AssetAVIF is an AVIF-encoded image.
	AssetAVIF AssetType = 1

	// AssetPNG is a PNG-encoded image.
	AssetPNG AssetType = 2

	// AssetJPEG is a JPEG-encoded image.
	AssetJPEG AssetType = 3

	// AssetWebP is a WebP-encoded image.
	AssetWebP AssetType = 4
)

// String returns the human-readable name of an asset type.
func (t AssetType) String() string {
	switch t {
	case AssetAVIF:
		return "avif"
	case AssetPNG:
		return "png"
	case AssetJPEG:
		return "jpeg"
	case AssetWebP:
		return "webp"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Extension returns the output filename extension for an asset type,
// including the leading dot. Unknown tags extract as ".bin".
func (t AssetType) Extension() string {
	switch t {
	case AssetAVIF:
		return ".avif"
	case AssetPNG:
		return ".png"
	case AssetJPEG:
		return ".jpg"
	case AssetWebP:
		return ".webp"
	default:
		return ".bin"
	}
}

// TypeForPath maps an input filename extension to an asset type.
// Unrecognized extensions are treated as PNG, matching the original
// muxer's behavior for version 1 files.
func TypeForPath(path string) AssetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".avif":
		return AssetAVIF
	case ".jpg", ".jpeg":
		return AssetJPEG
	case ".webp":
		return AssetWebP
	default:
		return AssetPNG
	}
}

// AssetEntry describes one unique stored payload.
type AssetEntry struct {
	// Offset is the absolute byte position of the payload, always a
	// multiple of SectorSize.
	Offset uint64

	// Hash is the XXH64 content hash of the payload bytes. Two
	// entries never share a hash unless their bytes are equal (the
	// deduplication precondition).
	Hash uint64

	// Length is the payload byte length.
	Length uint32

	// Type is the image encoding tag.
	Type AssetType
}

// PageEntry is one unit of reading order, referencing exactly one
// asset. Pages are never deduplicated — one entry per source page
// regardless of shared assets.
type PageEntry struct {
	// AssetIndex is the index into the asset table.
	AssetIndex uint32
}

// Section is a named hierarchical range over pages (volume, chapter).
type Section struct {
	// TitleOffset is the string pool offset of the section title.
	TitleOffset uint32

	// StartPage is the 0-based index of the section's first page.
	StartPage uint32

	// Parent is the table index of the enclosing section, or
	// NoParent for root-level sections. A non-sentinel parent always
	// references an earlier table position.
	Parent uint32
}

// MetadataEntry is one free-form key/value archival metadata pair.
// Duplicate keys are legal; all entries are retained in insertion
// order.
type MetadataEntry struct {
	// KeyOffset is the string pool offset of the key.
	KeyOffset uint32

	// ValueOffset is the string pool offset of the value.
	ValueOffset uint32
}

// footer is the parsed trailing footer. Offsets are absolute byte
// positions from the start of the file.
type footer struct {
	stringPoolOffset uint64
	stringPoolSize   uint64

	assetTableOffset uint64
	assetCount       uint32

	pageTableOffset uint64
	pageCount       uint32

	sectionTableOffset uint64
	sectionCount       uint32

	metaTableOffset uint64
	metadataCount   uint32
}

// encodeAssetEntry serializes an asset entry into dst, which must be
// assetEntrySize bytes.
func encodeAssetEntry(dst []byte, e AssetEntry) {
	binary.LittleEndian.PutUint64(dst[0:8], e.Offset)
	binary.LittleEndian.PutUint64(dst[8:16], e.Hash)
	binary.LittleEndian.PutUint32(dst[16:20], e.Length)
	dst[20] = byte(e.Type)
	dst[21], dst[22], dst[23] = 0, 0, 0
}

// decodeAssetEntry parses an asset entry from src, which must be
// assetEntrySize bytes. Non-zero reserved bytes indicate corruption
// (or a future format revision) and are rejected.
func decodeAssetEntry(src []byte) (AssetEntry, error) {
	if src[21] != 0 || src[22] != 0 || src[23] != 0 {
		return AssetEntry{}, fmt.Errorf("non-zero reserved bytes in asset entry: %x", src[21:24])
	}
	return AssetEntry{
		Offset: binary.LittleEndian.Uint64(src[0:8]),
		Hash:   binary.LittleEndian.Uint64(src[8:16]),
		Length: binary.LittleEndian.Uint32(src[16:20]),
		Type:   AssetType(src[20]),
	}, nil
}

// encodePageEntry serializes a page entry into dst (pageEntrySize
// bytes).
func encodePageEntry(dst []byte, e PageEntry) {
	binary.LittleEndian.PutUint32(dst, e.AssetIndex)
}

// decodePageEntry parses a page entry from src (pageEntrySize bytes).
func decodePageEntry(src []byte) PageEntry {
	return PageEntry{AssetIndex: binary.LittleEndian.Uint32(src)}
}

// encodeSection serializes a section record into dst
// (sectionEntrySize bytes).
func encodeSection(dst []byte, s Section) {
	binary.LittleEndian.PutUint32(dst[0:4], s.TitleOffset)
	binary.LittleEndian.PutUint32(dst[4:8], s.StartPage)
	binary.LittleEndian.PutUint32(dst[8:12], s.Parent)
}

// decodeSection parses a section record from src (sectionEntrySize
// bytes).
func decodeSection(src []byte) Section {
	return Section{
		TitleOffset: binary.LittleEndian.Uint32(src[0:4]),
		StartPage:   binary.LittleEndian.Uint32(src[4:8]),
		Parent:      binary.LittleEndian.Uint32(src[8:12]),
	}
}

// encodeMetadataEntry serializes a metadata record into dst
// (metadataEntrySize bytes).
func encodeMetadataEntry(dst []byte, m MetadataEntry) {
	binary.LittleEndian.PutUint32(dst[0:4], m.KeyOffset)
	binary.LittleEndian.PutUint32(dst[4:8], m.ValueOffset)
}

// decodeMetadataEntry parses a metadata record from src
// (metadataEntrySize bytes).
func decodeMetadataEntry(src []byte) MetadataEntry {
	return MetadataEntry{
		KeyOffset:   binary.LittleEndian.Uint32(src[0:4]),
		ValueOffset: binary.LittleEndian.Uint32(src[4:8]),
	}
}

// encodeFooter serializes the footer into dst (footerSize bytes).
func encodeFooter(dst []byte, f footer) {
	copy(dst[0:4], fileMagic[:])
	binary.LittleEndian.PutUint64(dst[4:12], f.stringPoolOffset)
	binary.LittleEndian.PutUint64(dst[12:20], f.stringPoolSize)
	binary.LittleEndian.PutUint64(dst[20:28], f.assetTableOffset)
	binary.LittleEndian.PutUint32(dst[28:32], f.assetCount)
	binary.LittleEndian.PutUint64(dst[32:40], f.pageTableOffset)
	binary.LittleEndian.PutUint32(dst[40:44], f.pageCount)
	binary.LittleEndian.PutUint64(dst[44:52], f.sectionTableOffset)
	binary.LittleEndian.PutUint32(dst[52:56], f.sectionCount)
	binary.LittleEndian.PutUint64(dst[56:64], f.metaTableOffset)
	binary.LittleEndian.PutUint32(dst[64:68], f.metadataCount)
}

// decodeFooter parses the footer from src (footerSize bytes). The
// magic must already have been checked by the caller.
func decodeFooter(src []byte) footer {
	return footer{
		stringPoolOffset:   binary.LittleEndian.Uint64(src[4:12]),
		stringPoolSize:     binary.LittleEndian.Uint64(src[12:20]),
		assetTableOffset:   binary.LittleEndian.Uint64(src[20:28]),
		assetCount:         binary.LittleEndian.Uint32(src[28:32]),
		pageTableOffset:    binary.LittleEndian.Uint64(src[32:40]),
		pageCount:          binary.LittleEndian.Uint32(src[40:44]),
		sectionTableOffset: binary.LittleEndian.Uint64(src[44:52]),
		sectionCount:       binary.LittleEndian.Uint32(src[52:56]),
		metaTableOffset:    binary.LittleEndian.Uint64(src[56:64]),
		metadataCount:      binary.LittleEndian.Uint32(src[64:68]),
	}
}
