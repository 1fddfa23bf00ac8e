// Copyright 2026 The BBF Authors
// SPDX-License-Identifier: Apache-2.0

package bbf

import "fmt"

// PageRange resolves the half-open page range [start, end) covered by
// the section at index. A section runs from its own start page to the
// start of the next sibling — the next section in table order that
// starts at a later page AND has the same parent. Intervening
// sections with a different parent are descendants and fold into the
// range. If no later sibling exists the section runs to the end of
// the book.
//
// The later-start guard keeps the resolution correct even when the
// section table is not ordered by starting page.
func PageRange(sections []Section, index int, pageCount int) (start, end uint32) {
	start = sections[index].StartPage
	end = uint32(pageCount)
	for j := index + 1; j < len(sections); j++ {
		if sections[j].StartPage > start && sections[j].Parent == sections[index].Parent {
			end = sections[j].StartPage
			break
		}
	}
	return start, end
}

// SectionRange resolves a section title to its page range. The title
// must match a section exactly; the first match in table order wins.
// Fails with [ErrSectionNotFound] if no section has that title.
func (r *Reader) SectionRange(title string) (start, end uint32, err error) {
	sections, err := r.Sections()
	if err != nil {
		return 0, 0, err
	}

	for i, section := range sections {
		sectionTitle, err := r.LookupString(section.TitleOffset)
		if err != nil {
			return 0, 0, fmt.Errorf("section %d title: %w", i, err)
		}
		if sectionTitle == title {
			start, end = PageRange(sections, i, r.PageCount())
			return start, end, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrSectionNotFound, title)
}
