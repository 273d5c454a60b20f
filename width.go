package termengine

import "sort"

// widthRange is one entry of a sorted, non-overlapping table mapping a
// contiguous rune range to a display width.
type widthRange struct {
	lo, hi rune
	width  int
}

// zeroWidthRanges covers C0/C1 controls, combining marks, variation
// selectors, zero-width spaces, bidi controls, and other invisible
// formatting characters that occupy no terminal column.
var zeroWidthRanges = []widthRange{
	{0x0000, 0x001F, 0},
	{0x007F, 0x009F, 0},
	{0x0300, 0x036F, 0}, // combining diacritical marks
	{0x0483, 0x0489, 0},
	{0x0591, 0x05BD, 0},
	{0x05BF, 0x05BF, 0},
	{0x05C1, 0x05C2, 0},
	{0x05C4, 0x05C5, 0},
	{0x05C7, 0x05C7, 0},
	{0x0610, 0x061A, 0},
	{0x064B, 0x065F, 0},
	{0x0670, 0x0670, 0},
	{0x200B, 0x200F, 0}, // zero-width space/joiners, marks
	{0x2028, 0x202E, 0}, // line/paragraph separators, bidi controls
	{0x2060, 0x2064, 0}, // word joiner and friends
	{0xFE00, 0xFE0F, 0}, // variation selectors
	{0xFEFF, 0xFEFF, 0}, // BOM / zero-width no-break space
}

// wideRanges covers CJK ideographs and related scripts, fullwidth forms, and
// the principal emoji blocks: all occupy two terminal columns.
var wideRanges = []widthRange{
	{0x1100, 0x115F, 2},   // Hangul Jamo
	{0x2E80, 0x303E, 2},   // CJK Radicals, Kangxi, CJK Symbols and Punctuation
	{0x3041, 0x33BF, 2},   // Hiragana .. Katakana .. Bopomofo .. Hangul Compat .. Kanbun .. CJK Compat
	{0x3400, 0x4DBF, 2},   // CJK Unified Ideographs Extension A
	{0x4E00, 0xA4CF, 2},   // CJK Unified Ideographs .. Yi
	{0xA960, 0xA97C, 2},   // Hangul Jamo Extended-A
	{0xAC00, 0xD7A3, 2},   // Hangul Syllables
	{0xF900, 0xFAFF, 2},   // CJK Compatibility Ideographs
	{0xFE30, 0xFE6F, 2},   // CJK Compatibility Forms, Small Form Variants
	{0xFF01, 0xFF60, 2},   // Fullwidth Forms
	{0xFFE0, 0xFFE6, 2},   // Fullwidth Signs
	{0x1F300, 0x1F9FF, 2}, // Misc Symbols and Pictographs .. Supplemental Symbols
	{0x1FA00, 0x1FA6F, 2}, // Chess Symbols
	{0x1FA70, 0x1FAFF, 2}, // Symbols and Pictographs Extended-A
	{0x20000, 0x2FFFD, 2}, // CJK Unified Ideographs Extension B-F
	{0x30000, 0x3FFFD, 2}, // CJK Unified Ideographs Extension G+
}

func lookupWidth(r rune, table []widthRange) (int, bool) {
	i := sort.Search(len(table), func(i int) bool { return table[i].hi >= r })
	if i < len(table) && table[i].lo <= r {
		return table[i].width, true
	}
	return 0, false
}

// runeWidth returns the display width of r: 0 for combining marks and
// control/formatting characters, 2 for wide CJK/emoji glyphs, 1 otherwise.
func runeWidth(r rune) int {
	if w, ok := lookupWidth(r, zeroWidthRanges); ok {
		return w
	}
	if w, ok := lookupWidth(r, wideRanges); ok {
		return w
	}
	return 1
}

// isWideRune reports whether r occupies two terminal columns.
func isWideRune(r rune) bool {
	return runeWidth(r) == 2
}

// StringWidth returns the total display width of s: the sum of each rune's width.
func StringWidth(s string) int {
	total := 0
	for _, r := range s {
		total += runeWidth(r)
	}
	return total
}
