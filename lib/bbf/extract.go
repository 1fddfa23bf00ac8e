// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package bbf

import (
	"archive/tar"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// ExtractOptions controls page extraction.
type ExtractOptions struct {
	// OutDir is the output directory for page files. Defaults to
	// "extracted" when empty. Ignored when ArchivePath is set.
	OutDir string

	// Section optionally restricts extraction to the page range of
	// the named section. Empty means the whole book.
	Section string

	// ArchivePath, when non-empty, writes the extracted pages into a
	// single zstd-compressed tar archive at this path instead of a
	// directory of files.
	ArchivePath string
}

// ExtractResult reports what an extraction produced.
type ExtractResult struct {
	// Start and End are the resolved half-open page range.
	Start, End uint32

	// Written is the number of page files produced.
	Written int
}

// Extract re-materializes pages as individual image files, one file
// per page even when pages share a deduplicated asset. Files are
// named page_<n><ext> where n is the 1-based page number within the
// whole book and ext derives from the asset's type tag.
//
// When opts.Section names a section, only that section's page range
// is extracted; an unknown name fails with [ErrSectionNotFound]
// before any output is created.
func (r *Reader) Extract(opts ExtractOptions) (*ExtractResult, error) {
	start, end := uint32(0), uint32(r.PageCount())
	if opts.Section != "" {
		var err error
		start, end, err = r.SectionRange(opts.Section)
		if err != nil {
			return nil, err
		}
	}

	pages, err := r.Pages()
	if err != nil {
		return nil, err
	}
	assets, err := r.Assets()
	if err != nil {
		return nil, err
	}

	result := &ExtractResult{Start: start, End: end}

	var emit func(name string, data []byte) error
	var finish func() error

	if opts.ArchivePath != "" {
		emit, finish, err = tarEmitter(opts.ArchivePath)
		if err != nil {
			return nil, err
		}
	} else {
		outDir := opts.OutDir
		if outDir == "" {
			outDir = "extracted"
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output directory: %w", err)
		}
		emit = func(name string, data []byte) error {
			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			return nil
		}
		finish = func() error { return nil }
	}

	for i := start; i < end; i++ {
		asset := assets[pages[i].AssetIndex]
		data, err := r.ReadAssetData(asset)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		name := fmt.Sprintf("page_%d%s", i+1, asset.Type.Extension())
		if err := emit(name, data); err != nil {
			return nil, err
		}
		result.Written++
	}

	if err := finish(); err != nil {
		return nil, err
	}
	return result, nil
}

// tarEmitter returns an emit function that writes page files into a
// zstd-compressed tar archive, and a finish function that flushes and
// closes it.
func tarEmitter(path string) (emit func(string, []byte) error, finish func() error, err error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating archive %s: %w", path, err)
	}
	compressor, err := zstd.NewWriter(file)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("initializing zstd writer: %w", err)
	}
	tarWriter := tar.NewWriter(compressor)

	modTime := time.Now()
	emit = func(name string, data []byte) error {
		header := &tar.Header{
			Name:    name,
			Mode:    0o644,
			Size:    int64(len(data)),
			ModTime: modTime,
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			return fmt.Errorf("writing tar header for %s: %w", name, err)
		}
		if _, err := tarWriter.Write(data); err != nil {
			return fmt.Errorf("writing %s to archive: %w", name, err)
		}
		return nil
	}
	finish = func() error {
		if err := tarWriter.Close(); err != nil {
			return fmt.Errorf("closing tar stream: %w", err)
		}
		if err := compressor.Close(); err != nil {
			return fmt.Errorf("closing zstd stream: %w", err)
		}
		if err := file.Close(); err != nil {
			return fmt.Errorf("closing archive %s: %w", path, err)
		}
		return nil
	}
	return emit, finish, nil
}
