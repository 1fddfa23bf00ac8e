// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package bbf

import (
	"errors"
	"testing"
)

func TestPageRangeNestedHierarchy(t *testing.T) {
	// A 10-page book with a nested chapter:
	//   A starts at 0 (root), B starts at 5 (child of A), C starts
	//   at 10 (root, empty trailing section).
	// A runs to the end of the book: C starts later at the same
	// level but at page 10, which is the page count. B, a child,
	// folds into A rather than ending it.
	sections := []Section{
		{TitleOffset: 0, StartPage: 0, Parent: NoParent},  // A
		{TitleOffset: 1, StartPage: 5, Parent: 0},         // B
		{TitleOffset: 2, StartPage: 10, Parent: NoParent}, // C
	}

	tests := []struct {
		name      string
		index     int
		wantStart uint32
		wantEnd   uint32
	}{
		{"A spans to C's start", 0, 0, 10},
		{"B runs to end of book", 1, 5, 10},
		{"C is empty", 2, 10, 10},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			start, end := PageRange(sections, test.index, 10)
			if start != test.wantStart || end != test.wantEnd {
				t.Errorf("PageRange(%d) = [%d, %d), want [%d, %d)",
					test.index, start, end, test.wantStart, test.wantEnd)
			}
		})
	}
}

func TestPageRangeUnorderedTable(t *testing.T) {
	// The section table is in insertion order, which here does not
	// match page order. The later-start guard must skip earlier-
	// starting sections when searching for the next sibling.
	sections := []Section{
		{StartPage: 5, Parent: NoParent}, // A
		{StartPage: 0, Parent: NoParent}, // B, starts before A
		{StartPage: 8, Parent: NoParent}, // C
	}

	// A's next later-starting sibling is C, not B.
	if start, end := PageRange(sections, 0, 10); start != 5 || end != 8 {
		t.Errorf("PageRange(A) = [%d, %d), want [5, 8)", start, end)
	}
	// B's next later-starting sibling is C.
	if start, end := PageRange(sections, 1, 10); start != 0 || end != 8 {
		t.Errorf("PageRange(B) = [%d, %d), want [0, 8)", start, end)
	}
	// C is last in the table; it runs to the end.
	if start, end := PageRange(sections, 2, 10); start != 8 || end != 10 {
		t.Errorf("PageRange(C) = [%d, %d), want [8, 10)", start, end)
	}
}

func TestSectionRangeByTitle(t *testing.T) {
	pages := make([][]byte, 10)
	for i := range pages {
		pages[i] = testPage(byte(i+1), 100+i)
	}
	path := buildBook(t, pages, func(w *Writer) {
		a, err := w.AddSection("Volume 1", 0, NoParent)
		if err != nil {
			t.Fatalf("AddSection failed: %v", err)
		}
		if _, err := w.AddSection("Chapter 2", 5, a); err != nil {
			t.Fatalf("AddSection failed: %v", err)
		}
		if _, err := w.AddSection("Volume 2", 10, NoParent); err != nil {
			t.Fatalf("AddSection failed: %v", err)
		}
	})

	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	tests := []struct {
		title     string
		wantStart uint32
		wantEnd   uint32
	}{
		{"Volume 1", 0, 10},
		{"Chapter 2", 5, 10},
		{"Volume 2", 10, 10},
	}
	for _, test := range tests {
		start, end, err := reader.SectionRange(test.title)
		if err != nil {
			t.Fatalf("SectionRange(%q) failed: %v", test.title, err)
		}
		if start != test.wantStart || end != test.wantEnd {
			t.Errorf("SectionRange(%q) = [%d, %d), want [%d, %d)",
				test.title, start, end, test.wantStart, test.wantEnd)
		}
	}
}

func TestSectionRangeUnknownTitle(t *testing.T) {
	path := buildBook(t, [][]byte{testPage(1, 100)}, func(w *Writer) {
		if _, err := w.AddSection("Volume 1", 0, NoParent); err != nil {
			t.Fatalf("AddSection failed: %v", err)
		}
	})

	reader, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	if _, _, err := reader.SectionRange("Volume 99"); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("SectionRange error = %v, want ErrSectionNotFound", err)
	}
}

func TestAddSectionRejectsForwardParent(t *testing.T) {
	path := buildBook(t, [][]byte{testPage(1, 100)}, func(w *Writer) {
		if _, err := w.AddSection("first", 0, 5); err == nil {
			t.Error("AddSection with a forward parent index succeeded, want error")
		}
		// A valid root section keeps the book finalizable.
		if _, err := w.AddSection("first", 0, NoParent); err != nil {
			t.Fatalf("AddSection failed: %v", err)
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
}
