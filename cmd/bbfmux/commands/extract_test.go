// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"testing"

	"github.com/boundbook/bbf/lib/bbf"
)

func TestExtractSummary(t *testing.T) {
	tests := []struct {
		name   string
		result *bbf.ExtractResult
		want   string
	}{
		{
			"whole book",
			&bbf.ExtractResult{Start: 0, End: 10, Written: 10},
			"Extracted 10 pages (pages 1 to 10) to out",
		},
		{
			"section slice",
			&bbf.ExtractResult{Start: 6, End: 10, Written: 4},
			"Extracted 4 pages (pages 7 to 10) to out",
		},
		{
			"empty trailing section",
			&bbf.ExtractResult{Start: 10, End: 10, Written: 0},
			"Extracted 0 pages to out",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := extractSummary(test.result, "out")
			if got != test.want {
				t.Errorf("extractSummary() = %q, want %q", got, test.want)
			}
		})
	}
}
