// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest provides YAML book-manifest loading for the mux
// command. A manifest declares the section hierarchy and archival
// metadata of a book in one file, as an alternative to repeated
// --section/--meta flags. Unlike the flag syntax it imposes no
// delimiter restrictions, so titles may contain colons and quotes.
//
// Manifests are loaded from a single explicitly named file. There is
// no discovery and no fallback path.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/boundbook/bbf/lib/bbf"
)

// Manifest is the book description applied during muxing. Sections
// and metadata are applied in declaration order.
type Manifest struct {
	// Sections declares the volume/chapter hierarchy.
	Sections []SectionDecl `yaml:"sections"`

	// Metadata declares archival key/value pairs. Duplicate keys are
	// legal and all retained.
	Metadata []MetadataDecl `yaml:"metadata"`
}

// SectionDecl declares one section.
type SectionDecl struct {
	// Name is the section title.
	Name string `yaml:"name"`

	// Page is the 1-based page number the section starts on.
	Page uint32 `yaml:"page"`

	// Parent optionally names the enclosing section. It must match
	// the Name of a section declared earlier; an unknown name
	// degrades to a root-level section.
	Parent string `yaml:"parent,omitempty"`
}

// MetadataDecl declares one metadata pair.
type MetadataDecl struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Parse unmarshals manifest YAML. Unknown fields are rejected so
// typos (e.g. "section:" for "sections:") fail loudly instead of
// silently producing an empty book structure.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// validate checks structural requirements that YAML cannot express.
func (m *Manifest) validate() error {
	for i, section := range m.Sections {
		if section.Name == "" {
			return fmt.Errorf("section %d has no name", i)
		}
		if section.Page == 0 {
			return fmt.Errorf("section %q: page numbers are 1-based; page 0 is invalid", section.Name)
		}
	}
	for i, entry := range m.Metadata {
		if entry.Key == "" {
			return fmt.Errorf("metadata entry %d has no key", i)
		}
	}
	return nil
}

// Apply adds the manifest's sections and metadata to a writer. Parent
// names resolve against sections declared earlier in this manifest;
// unknown parents degrade to root level. Page numbers convert from
// the manifest's 1-based form to the stored 0-based form.
func (m *Manifest) Apply(w *bbf.Writer) error {
	nameToIndex := make(map[string]uint32, len(m.Sections))
	for _, section := range m.Sections {
		parent := bbf.NoParent
		if section.Parent != "" {
			if index, ok := nameToIndex[section.Parent]; ok {
				parent = index
			}
		}
		index, err := w.AddSection(section.Name, section.Page-1, parent)
		if err != nil {
			return fmt.Errorf("section %q: %w", section.Name, err)
		}
		nameToIndex[section.Name] = index
	}

	for _, entry := range m.Metadata {
		if err := w.AddMetadata(entry.Key, entry.Value); err != nil {
			return fmt.Errorf("metadata %q: %w", entry.Key, err)
		}
	}
	return nil
}
