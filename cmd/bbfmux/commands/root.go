// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands defines the bbfmux command tree: mux, info,
// verify, and extract. Each command is thin glue over lib/bbf — it
// collects inputs and options, drives the writer or reader, and
// formats output.
package commands

import (
	"github.com/boundbook/bbf/cmd/bbfmux/cli"
)

// Root returns the top-level bbfmux command.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "bbfmux",
		Summary: "Bound Book Format muxer — archival sequential image container",
		Description: `bbfmux builds and inspects Bound Book Format (.bbf) archives: single
files holding an ordered collection of page images (scanned comics,
manga) with deduplicated storage, hierarchical volume/chapter
sections, and per-asset integrity hashes.`,
		Subcommands: []*cli.Command{
			muxCommand(),
			infoCommand(),
			verifyCommand(),
			extractCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Create an archive from a directory of page images",
				Command:     `bbfmux mux ./vol1/ out.bbf --section "Volume 1:1" --meta "Title:Akira"`,
			},
			{
				Description: "Show book structure and metadata",
				Command:     "bbfmux info comic.bbf",
			},
			{
				Description: "Check asset integrity",
				Command:     "bbfmux verify comic.bbf",
			},
			{
				Description: "Extract one volume",
				Command:     `bbfmux extract comic.bbf --section "Volume 1" --outdir ./V1`,
			},
		},
	}
}
