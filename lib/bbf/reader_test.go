// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package bbf

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// corruptBook builds a valid single-page archive, then lets mutate
// rewrite its bytes in place before the open attempt.
func corruptBook(t *testing.T, mutate func(t *testing.T, path string)) string {
	t.Helper()
	path := buildBook(t, [][]byte{testPage(1, 300)}, nil)
	mutate(t, path)
	return path
}

// writeAt overwrites bytes at a fixed position in an existing file.
func writeAt(t *testing.T, path string, offset int64, data []byte) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatalf("opening %s for corruption: %v", path, err)
	}
	defer file.Close()
	if _, err := file.WriteAt(data, offset); err != nil {
		t.Fatalf("corrupting %s: %v", path, err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.bbf"))
	if !errors.Is(err, ErrOpen) {
		t.Errorf("Open error = %v, want ErrOpen", err)
	}
}

func TestOpenFileTooSmall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.bbf")
	if err := os.WriteFile(path, []byte("BBF1"), 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, ErrOpen) {
		t.Errorf("Open error = %v, want ErrOpen", err)
	}
}

func TestOpenBadHeaderMagic(t *testing.T) {
	path := corruptBook(t, func(t *testing.T, path string) {
		writeAt(t, path, 0, []byte("XXXX"))
	})
	if _, err := Open(path); !errors.Is(err, ErrOpen) {
		t.Errorf("Open error = %v, want ErrOpen", err)
	}
}

func TestOpenUnsupportedVersion(t *testing.T) {
	path := corruptBook(t, func(t *testing.T, path string) {
		writeAt(t, path, 4, []byte{FormatVersion + 1})
	})
	if _, err := Open(path); !errors.Is(err, ErrOpen) {
		t.Errorf("Open error = %v, want ErrOpen", err)
	}
}

func TestOpenBadFooterMagic(t *testing.T) {
	path := corruptBook(t, func(t *testing.T, path string) {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		writeAt(t, path, info.Size()-footerSize, []byte("XXXX"))
	})
	if _, err := Open(path); !errors.Is(err, ErrOpen) {
		t.Errorf("Open error = %v, want ErrOpen", err)
	}
}

func TestOpenTableSpanOutOfBounds(t *testing.T) {
	// Point the footer's asset table offset far past the end of the
	// file; the span check must reject it before any table read.
	path := corruptBook(t, func(t *testing.T, path string) {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		var huge [8]byte
		binary.LittleEndian.PutUint64(huge[:], uint64(info.Size())*16)
		// Asset table offset sits 20 bytes into the footer.
		writeAt(t, path, info.Size()-footerSize+20, huge[:])
	})
	if _, err := Open(path); !errors.Is(err, ErrOpen) {
		t.Errorf("Open error = %v, want ErrOpen", err)
	}
}

func TestSectionsRejectStartPastPageCount(t *testing.T) {
	// A corrupt-but-openable file whose section starts exceed the
	// page count must fail section deserialization, not crash range
	// resolution or extraction downstream.
	path := buildBook(t, [][]byte{testPage(1, 100), testPage(2, 100)}, func(w *Writer) {
		if _, err := w.AddSection("A", 0, NoParent); err != nil {
			t.Fatalf("AddSection failed: %v", err)
		}
		if _, err := w.AddSection("B", 1, NoParent); err != nil {
			t.Fatalf("AddSection failed: %v", err)
		}
	})

	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	tableOffset := int64(reader.footer.sectionTableOffset)
	reader.Close()

	// Patch both sections' start pages (4 bytes into each 12-byte
	// record) to indices past the 2-page book.
	var start [4]byte
	binary.LittleEndian.PutUint32(start[:], 5)
	writeAt(t, path, tableOffset+4, start[:])
	binary.LittleEndian.PutUint32(start[:], 7)
	writeAt(t, path, tableOffset+sectionEntrySize+4, start[:])

	reader, err = Open(path)
	if err != nil {
		t.Fatalf("reopening patched archive: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Sections(); err == nil {
		t.Error("Sections accepted a start page past the page count")
	}
	if _, _, err := reader.SectionRange("A"); err == nil {
		t.Error("SectionRange accepted a start page past the page count")
	}
	if _, err := reader.Extract(ExtractOptions{OutDir: filepath.Join(t.TempDir(), "out"), Section: "A"}); err == nil {
		t.Error("Extract accepted a start page past the page count")
	}
}

func TestSectionsAllowStartAtPageCount(t *testing.T) {
	// Start equal to the page count is a legal empty trailing section
	// and must survive the reader's bounds check.
	path := buildBook(t, [][]byte{testPage(1, 100)}, func(w *Writer) {
		if _, err := w.AddSection("Trailing", 1, NoParent); err != nil {
			t.Fatalf("AddSection failed: %v", err)
		}
	})

	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	sections, err := reader.Sections()
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}
	if len(sections) != 1 || sections[0].StartPage != 1 {
		t.Errorf("sections = %+v, want one section starting at 1", sections)
	}
}

func TestOpenTruncatedArchive(t *testing.T) {
	// Chopping the tail off moves the footer window onto asset data,
	// which fails the footer magic check.
	path := corruptBook(t, func(t *testing.T, path string) {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat: %v", err)
		}
		if err := os.Truncate(path, info.Size()/2); err != nil {
			t.Fatalf("truncating: %v", err)
		}
	})
	if _, err := Open(path); !errors.Is(err, ErrOpen) {
		t.Errorf("Open error = %v, want ErrOpen", err)
	}
}

func TestOpenOlderVersionAccepted(t *testing.T) {
	// Version bytes below the current one stay readable; only newer
	// versions are rejected. Version 0 predates the format but the
	// reader's contract is <= FormatVersion.
	path := corruptBook(t, func(t *testing.T, path string) {
		writeAt(t, path, 4, []byte{0})
	})
	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()
	if reader.Version() != 0 {
		t.Errorf("Version() = %d, want 0", reader.Version())
	}
}

func TestReaderTableAccessors(t *testing.T) {
	path := buildBook(t, [][]byte{testPage(1, 100), testPage(2, 100)}, func(w *Writer) {
		if _, err := w.AddSection("Volume 1", 0, NoParent); err != nil {
			t.Fatalf("AddSection failed: %v", err)
		}
		if err := w.AddMetadata("Title", "Test Book"); err != nil {
			t.Fatalf("AddMetadata failed: %v", err)
		}
	})

	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	if reader.SectionCount() != 1 {
		t.Errorf("SectionCount() = %d, want 1", reader.SectionCount())
	}
	if reader.MetadataCount() != 1 {
		t.Errorf("MetadataCount() = %d, want 1", reader.MetadataCount())
	}

	sections, err := reader.Sections()
	if err != nil {
		t.Fatalf("Sections failed: %v", err)
	}
	title, err := reader.LookupString(sections[0].TitleOffset)
	if err != nil {
		t.Fatalf("LookupString failed: %v", err)
	}
	if title != "Volume 1" {
		t.Errorf("section title = %q, want %q", title, "Volume 1")
	}

	metadata, err := reader.Metadata()
	if err != nil {
		t.Fatalf("Metadata failed: %v", err)
	}
	key, err := reader.LookupString(metadata[0].KeyOffset)
	if err != nil {
		t.Fatalf("LookupString failed: %v", err)
	}
	value, err := reader.LookupString(metadata[0].ValueOffset)
	if err != nil {
		t.Fatalf("LookupString failed: %v", err)
	}
	if key != "Title" || value != "Test Book" {
		t.Errorf("metadata = %s:%s, want Title:Test Book", key, value)
	}
}
