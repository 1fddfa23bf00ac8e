// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/boundbook/bbf/cmd/bbfmux/cli"
	"github.com/boundbook/bbf/lib/bbf"
)

func verifyCommand() *cli.Command {
	return &cli.Command{
		Name:    "verify",
		Summary: "Check every asset's content hash",
		Usage:   "bbfmux verify <file.bbf>",
		Description: `Re-read every asset and compare its recomputed XXH64 content hash to
the stored value. Every asset is checked even after a mismatch is
found; mismatches are reported individually by asset index.

Also prints the whole-archive BLAKE3 fingerprint, a stable identity
for the file usable in catalogs independent of its name.

Exits 1 if any asset fails verification.`,
		Run: runVerify,
	}
}

func runVerify(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("verify requires exactly one .bbf file")
	}

	reader, err := bbf.Open(args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	fmt.Println("Verifying asset integrity...")
	report, err := reader.Verify()
	if err != nil {
		return err
	}

	for _, index := range report.Mismatched {
		fmt.Fprintf(os.Stderr, "Mismatch in asset %d\n", index)
	}

	fmt.Printf("Archive fingerprint: %s\n", report.Fingerprint)
	if !report.OK() {
		fmt.Printf("Integrity check FAILED: %d of %d assets corrupt.\n",
			len(report.Mismatched), report.AssetCount)
		return &cli.ExitError{Code: 1}
	}

	fmt.Println("Integrity Check Passed.")
	return nil
}
