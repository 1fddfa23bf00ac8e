// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/boundbook/bbf/cmd/bbfmux/cli"
	"github.com/boundbook/bbf/lib/bbf"
)

type extractParams struct {
	OutDir      string
	Section     string
	ArchivePath string
}

func extractCommand() *cli.Command {
	var params extractParams

	return &cli.Command{
		Name:    "extract",
		Summary: "Extract pages to image files",
		Usage:   "bbfmux extract <file.bbf> [flags]",
		Description: `Extract pages to individual image files named page_<n>.<ext>, where
n is the 1-based page number within the whole book and the extension
derives from the stored image type. Every page produces its own file
even when pages share a deduplicated asset.

With --section, only the named section's page range is extracted;
nested child sections fold into their parent's range. With --archive,
pages are written into a single zstd-compressed tar instead of a
directory.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			flagSet.StringVar(&params.OutDir, "outdir", "extracted", "output directory")
			flagSet.StringVar(&params.Section, "section", "", "extract only the named section")
			flagSet.StringVar(&params.ArchivePath, "archive", "", "write a .tar.zst archive instead of a directory")
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Extract a single volume",
				Command:     `bbfmux extract comic.bbf --section "Volume 1" --outdir ./V1`,
			},
			{
				Description: "Repackage the whole book as a compressed tar",
				Command:     "bbfmux extract comic.bbf --archive comic.tar.zst",
			},
		},
		Run: func(args []string) error {
			return runExtract(&params, args)
		},
	}
}

func runExtract(params *extractParams, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("extract requires exactly one .bbf file")
	}

	reader, err := bbf.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	result, err := reader.Extract(bbf.ExtractOptions{
		OutDir:      params.OutDir,
		Section:     params.Section,
		ArchivePath: params.ArchivePath,
	})
	if err != nil {
		return err
	}

	destination := params.OutDir
	if params.ArchivePath != "" {
		destination = params.ArchivePath
	}
	fmt.Println(extractSummary(result, destination))
	return nil
}

// extractSummary formats the result line. An empty section yields an
// inverted 1-based range, so the zero-page case is reported without
// one.
func extractSummary(result *bbf.ExtractResult, destination string) string {
	if result.Written == 0 {
		return fmt.Sprintf("Extracted 0 pages to %s", destination)
	}
	return fmt.Sprintf("Extracted %d pages (pages %d to %d) to %s",
		result.Written, result.Start+1, result.End, destination)
}
