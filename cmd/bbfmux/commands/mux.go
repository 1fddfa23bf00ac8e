// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/boundbook/bbf/cmd/bbfmux/cli"
	"github.com/boundbook/bbf/lib/bbf"
	"github.com/boundbook/bbf/lib/manifest"
)

type muxParams struct {
	Sections     []string
	Metadata     []string
	ManifestPath string
}

func muxCommand() *cli.Command {
	var params muxParams

	return &cli.Command{
		Name:    "mux",
		Summary: "Build a .bbf archive from page images",
		Usage:   "bbfmux mux <inputs...> <output.bbf> [flags]",
		Description: `Build a new Bound Book Format archive.

Inputs are image files or directories (expanded non-recursively).
The combined file list is sorted lexicographically to fix the page
reading order. Identical images are stored once; asset data is
4096-byte sector-aligned for efficient block I/O.

Section and metadata flags use colon-delimited values; section pages
are 1-based. Names containing colons must be declared in a YAML
manifest (--manifest) instead, which has no delimiter restrictions.
A --section parent name that matches no earlier section silently
degrades to a root-level section.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("mux", pflag.ContinueOnError)
			flagSet.StringArrayVar(&params.Sections, "section", nil,
				`section marker, "Name:Page[:Parent]" (1-based page, repeatable)`)
			flagSet.StringArrayVar(&params.Metadata, "meta", nil,
				`archival metadata, "Key:Value" (repeatable)`)
			flagSet.StringVar(&params.ManifestPath, "manifest", "",
				"YAML manifest declaring sections and metadata")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Create an archive with a nested chapter",
				Command:     `bbfmux mux ./vol1/ out.bbf --section "Volume 1:1" --section "Chapter 1:1:Volume 1"`,
			},
			{
				Description: "Create an archive from a manifest",
				Command:     "bbfmux mux ./pages/ out.bbf --manifest book.yaml",
			},
		},
		Run: func(args []string) error {
			return runMux(&params, args)
		},
	}
}

func runMux(params *muxParams, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("mux requires at least one input and an output filename")
	}
	output := args[len(args)-1]
	inputs := args[:len(args)-1]

	book, err := buildBookManifest(params)
	if err != nil {
		return err
	}

	paths, err := expandInputs(inputs)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no input files found")
	}
	sort.Strings(paths)

	logger := cli.NewCommandLogger().With("command", "mux")

	writer, err := bbf.Create(output)
	if err != nil {
		return err
	}
	defer writer.Abort()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if _, err := writer.AddPage(data, bbf.TypeForPath(path)); err != nil {
			return fmt.Errorf("adding %s: %w", path, err)
		}
	}

	if err := book.Apply(writer); err != nil {
		return err
	}

	pages, assets := writer.PageCount(), writer.AssetCount()
	if err := writer.Finalize(); err != nil {
		return err
	}

	logger.Info("archive created",
		"path", output,
		"pages", pages,
		"assets", assets,
		"deduplicated", pages-assets)
	fmt.Printf("Successfully created %s (%d pages, %d assets)\n", output, pages, assets)
	return nil
}

// buildBookManifest merges the --manifest file (if any) with the
// --section and --meta flags into one manifest. Flag-declared
// sections may name manifest-declared sections as parents since the
// merged list is applied in order.
func buildBookManifest(params *muxParams) (*manifest.Manifest, error) {
	book := &manifest.Manifest{}
	if params.ManifestPath != "" {
		loaded, err := manifest.Load(params.ManifestPath)
		if err != nil {
			return nil, err
		}
		book = loaded
	}

	for _, value := range params.Sections {
		decl, err := parseSectionFlag(value)
		if err != nil {
			return nil, err
		}
		book.Sections = append(book.Sections, decl)
	}

	for _, value := range params.Metadata {
		key, val, ok := strings.Cut(value, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --meta %q: want \"Key:Value\"", value)
		}
		book.Metadata = append(book.Metadata, manifest.MetadataDecl{
			Key:   trimQuotes(key),
			Value: trimQuotes(val),
		})
	}

	return book, nil
}

// parseSectionFlag parses "Name:Page[:Parent]". The page is 1-based.
func parseSectionFlag(value string) (manifest.SectionDecl, error) {
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return manifest.SectionDecl{}, fmt.Errorf("invalid --section %q: want \"Name:Page[:Parent]\"", value)
	}

	page, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || page == 0 {
		return manifest.SectionDecl{}, fmt.Errorf("invalid --section %q: page must be a 1-based number", value)
	}

	decl := manifest.SectionDecl{
		Name: trimQuotes(parts[0]),
		Page: uint32(page),
	}
	if len(parts) == 3 {
		decl.Parent = trimQuotes(parts[2])
	}
	return decl, nil
}

// expandInputs resolves a mix of files and directories into a flat
// file list. Directories expand non-recursively to their regular
// files; the caller sorts the combined list.
func expandInputs(inputs []string) ([]string, error) {
	var paths []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", input, err)
		}
		if !info.IsDir() {
			paths = append(paths, input)
			continue
		}

		entries, err := os.ReadDir(input)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", input, err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				paths = append(paths, filepath.Join(input, entry.Name()))
			}
		}
	}
	return paths, nil
}

// trimQuotes strips one pair of surrounding double quotes, if
// present. Shells usually remove quotes, but quoted values survive
// on Windows and inside manifest-less scripts.
func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
