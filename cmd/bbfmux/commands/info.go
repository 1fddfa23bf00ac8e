// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/boundbook/bbf/cmd/bbfmux/cli"
	"github.com/boundbook/bbf/lib/bbf"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:    "info",
		Summary: "Show book structure and metadata",
		Usage:   "bbfmux info <file.bbf>",
		Description: `Print the archive's format version, page and asset counts, section
hierarchy (with 1-based starting pages), and archival metadata, in
table order.`,
		Run: runInfo,
	}
}

func runInfo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("info requires exactly one .bbf file")
	}

	reader, err := bbf.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	fmt.Println("Bound Book Format (.bbf) Info")
	fmt.Println("------------------------------")
	fmt.Printf("BBF Version: %d\n", reader.Version())
	fmt.Printf("Pages:       %d\n", reader.PageCount())
	fmt.Printf("Assets:      %d (Deduplicated)\n", reader.AssetCount())

	fmt.Println("\n[Sections]")
	sections, err := reader.Sections()
	if err != nil {
		return err
	}
	if len(sections) == 0 {
		fmt.Println(" No sections defined.")
	}
	for i, section := range sections {
		title, err := reader.LookupString(section.TitleOffset)
		if err != nil {
			return fmt.Errorf("section %d title: %w", i, err)
		}
		fmt.Printf(" - %-20s (Starting Page: %d)\n", title, section.StartPage+1)
	}

	fmt.Println("\n[Metadata]")
	metadata, err := reader.Metadata()
	if err != nil {
		return err
	}
	if len(metadata) == 0 {
		fmt.Println(" No metadata found.")
	}
	for i, entry := range metadata {
		key, err := reader.LookupString(entry.KeyOffset)
		if err != nil {
			return fmt.Errorf("metadata %d key: %w", i, err)
		}
		value, err := reader.LookupString(entry.ValueOffset)
		if err != nil {
			return fmt.Errorf("metadata %d value: %w", i, err)
		}
		fmt.Printf(" - %-15s%s\n", key+":", value)
	}

	return nil
}
