package termengine

import "testing"

func TestBufferDimensions(t *testing.T) {
	b := NewBuffer(24, 80)
	if got := b.Rows(); got != 24 {
		t.Errorf("Rows() = %d, want 24", got)
	}
	if got := b.Cols(); got != 80 {
		t.Errorf("Cols() = %d, want 80", got)
	}
	top, bottom := b.ScrollRegion()
	if top != 0 || bottom != 24 {
		t.Errorf("ScrollRegion() = (%d, %d), want (0, 24)", top, bottom)
	}
}

func TestBufferCellAccess(t *testing.T) {
	b := NewBuffer(24, 80)

	cell := b.Cell(0, 0)
	if cell == nil {
		t.Fatal("Cell(0, 0) = nil, want a cell")
	}
	cell.Char = 'A'
	if got := b.Cell(0, 0).Char; got != 'A' {
		t.Errorf("mutation through Cell() pointer didn't stick, got %q", got)
	}

	out := []struct {
		row, col int
	}{
		{-1, 0}, {0, -1}, {24, 0}, {0, 80},
	}
	for _, oc := range out {
		if b.Cell(oc.row, oc.col) != nil {
			t.Errorf("Cell(%d, %d) = non-nil, want nil (out of bounds)", oc.row, oc.col)
		}
	}
}

func TestBufferPutCharAndLineContent(t *testing.T) {
	b := NewBuffer(24, 80)
	for i, r := range "Hello" {
		b.PutChar(0, i, Cell{Char: r})
	}
	if got := b.LineContent(0); got != "Hello" {
		t.Errorf("LineContent(0) = %q, want %q", got, "Hello")
	}
}

func TestBufferEraseLine(t *testing.T) {
	b := NewBuffer(3, 10)
	for row := 0; row < 3; row++ {
		for col := 0; col < 10; col++ {
			b.PutChar(row, col, Cell{Char: 'x'})
		}
	}

	cases := []struct {
		name     string
		erase    func()
		row, col int
		wantBlank func(col int) bool
	}{
		{
			name:  "right of cursor, inclusive",
			erase: func() { b.EraseLineRight(0, 4) },
			row:   0,
			wantBlank: func(col int) bool { return col >= 4 },
		},
		{
			name:  "left of cursor, inclusive",
			erase: func() { b.EraseLineLeft(1, 4) },
			row:   1,
			wantBlank: func(col int) bool { return col <= 4 },
		},
		{
			name:  "whole line",
			erase: func() { b.EraseLine(2) },
			row:   2,
			wantBlank: func(col int) bool { return true },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.erase()
			for col := 0; col < 10; col++ {
				blank := b.Cell(tc.row, col).Char == ' '
				if blank != tc.wantBlank(col) {
					t.Errorf("col %d: blank=%v, want %v", col, blank, tc.wantBlank(col))
				}
			}
		})
	}
}

func TestBufferEraseDisplay(t *testing.T) {
	b := NewBuffer(4, 5)
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			b.PutChar(row, col, Cell{Char: 'x'})
		}
	}

	b.EraseBelow(1, 2)

	// Row 0 untouched.
	for col := 0; col < 5; col++ {
		if b.Cell(0, col).Char != 'x' {
			t.Errorf("row 0 col %d was erased by EraseBelow", col)
		}
	}
	// Row 1: cols < 2 untouched, cols >= 2 erased.
	for col := 0; col < 5; col++ {
		want := col >= 2
		got := b.Cell(1, col).Char == ' '
		if got != want {
			t.Errorf("row 1 col %d blank=%v, want %v", col, got, want)
		}
	}
	// Rows below fully erased.
	for row := 2; row < 4; row++ {
		for col := 0; col < 5; col++ {
			if b.Cell(row, col).Char != ' ' {
				t.Errorf("row %d col %d not erased by EraseBelow", row, col)
			}
		}
	}

	b2 := NewBuffer(4, 5)
	for row := 0; row < 4; row++ {
		for col := 0; col < 5; col++ {
			b2.PutChar(row, col, Cell{Char: 'x'})
		}
	}
	b2.EraseAbove(2, 1)
	for row := 0; row < 2; row++ {
		for col := 0; col < 5; col++ {
			if b2.Cell(row, col).Char != ' ' {
				t.Errorf("row %d col %d not erased by EraseAbove", row, col)
			}
		}
	}
	for col := 0; col < 5; col++ {
		want := col <= 1
		got := b2.Cell(2, col).Char == ' '
		if got != want {
			t.Errorf("row 2 col %d blank=%v, want %v", col, got, want)
		}
	}
	for col := 0; col < 5; col++ {
		if b2.Cell(3, col).Char != 'x' {
			t.Errorf("row 3 col %d was erased by EraseAbove", col)
		}
	}
}

func TestBufferScrollRegionUpPushesScrollback(t *testing.T) {
	storage := &fakeScrollback{maxLines: 100}
	b := NewBufferWithStorage(5, 10, storage)

	for row := 0; row < 5; row++ {
		b.PutChar(row, 0, Cell{Char: rune('0' + row)})
	}

	b.ScrollRegionUp(1)

	if got := b.Cell(0, 0).Char; got != '1' {
		t.Errorf("row 0 after scroll = %q, want '1'", got)
	}
	if got := b.Cell(4, 0).Char; got != ' ' {
		t.Errorf("bottom row after scroll = %q, want blank", got)
	}
	if got := b.ScrollbackLen(); got != 1 {
		t.Fatalf("ScrollbackLen() = %d, want 1", got)
	}
	if line := b.ScrollbackLine(0); line == nil || line[0].Char != '0' {
		t.Errorf("scrollback line = %v, want first char '0'", line)
	}
}

func TestBufferScrollRegionDown(t *testing.T) {
	b := NewBuffer(5, 10)
	for row := 0; row < 5; row++ {
		b.PutChar(row, 0, Cell{Char: rune('0' + row)})
	}

	b.ScrollRegionDown(1)

	if got := b.Cell(1, 0).Char; got != '0' {
		t.Errorf("row 1 after scroll down = %q, want '0'", got)
	}
	if got := b.Cell(0, 0).Char; got != ' ' {
		t.Errorf("row 0 after scroll down = %q, want blank", got)
	}
}

func TestBufferSetScrollRegionConfinesScrolling(t *testing.T) {
	b := NewBuffer(6, 5)
	for row := 0; row < 6; row++ {
		b.PutChar(row, 0, Cell{Char: rune('0' + row)})
	}
	b.SetScrollRegion(1, 4) // rows [1,4) scroll; rows 0 and 4-5 don't

	b.ScrollRegionUp(1)

	if got := b.Cell(0, 0).Char; got != '0' {
		t.Errorf("row 0 outside region changed to %q", got)
	}
	if got := b.Cell(1, 0).Char; got != '2' {
		t.Errorf("row 1 = %q, want '2' (shifted from row 2)", got)
	}
	if got := b.Cell(4, 0).Char; got != '4' {
		t.Errorf("row 4 outside region changed to %q", got)
	}
	if got := b.Cell(5, 0).Char; got != '5' {
		t.Errorf("row 5 outside region changed to %q", got)
	}
}

func TestBufferIndexScrollsAtRegionBottom(t *testing.T) {
	b := NewBuffer(3, 5)
	for row := 0; row < 3; row++ {
		b.PutChar(row, 0, Cell{Char: rune('0' + row)})
	}

	if got := b.Index(0); got != 1 {
		t.Errorf("Index(0) = %d, want 1 (no scroll yet)", got)
	}
	if got := b.Index(2); got != 2 {
		t.Errorf("Index(2) at bottom edge = %d, want 2 (row held, region scrolled)", got)
	}
	if got := b.Cell(0, 0).Char; got != '1' {
		t.Errorf("row 0 after Index-triggered scroll = %q, want '1'", got)
	}
}

func TestBufferReverseIndexScrollsAtRegionTop(t *testing.T) {
	b := NewBuffer(3, 5)
	for row := 0; row < 3; row++ {
		b.PutChar(row, 0, Cell{Char: rune('0' + row)})
	}

	if got := b.ReverseIndex(2); got != 1 {
		t.Errorf("ReverseIndex(2) = %d, want 1", got)
	}
	if got := b.ReverseIndex(0); got != 0 {
		t.Errorf("ReverseIndex(0) at top edge = %d, want 0 (row held, region scrolled)", got)
	}
	if got := b.Cell(2, 0).Char; got != '1' {
		t.Errorf("row 2 after ReverseIndex-triggered scroll = %q, want '1'", got)
	}
}

func TestBufferInsertAndDeleteLines(t *testing.T) {
	b := NewBuffer(5, 5)
	for row := 0; row < 5; row++ {
		b.PutChar(row, 0, Cell{Char: rune('0' + row)})
	}

	b.InsertLines(1, 2)
	want := []rune{'0', ' ', ' ', '1', '2'}
	for row, w := range want {
		if got := b.Cell(row, 0).Char; got != w {
			t.Errorf("after InsertLines, row %d = %q, want %q", row, got, w)
		}
	}

	b.DeleteLines(1, 2)
	want = []rune{'0', '1', '2', ' ', ' '}
	for row, w := range want {
		if got := b.Cell(row, 0).Char; got != w {
			t.Errorf("after DeleteLines, row %d = %q, want %q", row, got, w)
		}
	}
}

func TestBufferInsertLinesOutsideRegionIsNoop(t *testing.T) {
	b := NewBuffer(5, 5)
	b.SetScrollRegion(2, 4)
	b.PutChar(0, 0, Cell{Char: 'Z'})

	b.InsertLines(0, 1) // row 0 is outside [2,4)

	if got := b.Cell(0, 0).Char; got != 'Z' {
		t.Errorf("InsertLines outside region mutated row 0: got %q", got)
	}
}

func TestBufferInsertAndDeleteChars(t *testing.T) {
	b := NewBuffer(1, 5)
	for col, r := range "ABCD" {
		b.PutChar(0, col, Cell{Char: r})
	}

	b.InsertChars(0, 1, 2)
	if got := b.LineContent(0); got != "A  BC" {
		t.Errorf("after InsertChars, line = %q, want %q", got, "A  BC")
	}

	b.DeleteChars(0, 1, 2)
	if got := b.LineContent(0); got != "ABC" {
		t.Errorf("after DeleteChars, line = %q, want %q", got, "ABC")
	}
}

func TestBufferResizeResetsScrollRegion(t *testing.T) {
	b := NewBuffer(10, 20)
	b.SetScrollRegion(2, 8)
	b.PutChar(0, 0, Cell{Char: 'A'})
	b.PutChar(5, 10, Cell{Char: 'B'})

	b.Resize(20, 40)

	if got := b.Rows(); got != 20 {
		t.Errorf("Rows() after resize = %d, want 20", got)
	}
	if got := b.Cols(); got != 40 {
		t.Errorf("Cols() after resize = %d, want 40", got)
	}
	if got := b.Cell(0, 0).Char; got != 'A' {
		t.Error("content at (0,0) lost across resize")
	}
	if got := b.Cell(5, 10).Char; got != 'B' {
		t.Error("content at (5,10) lost across resize")
	}
	top, bottom := b.ScrollRegion()
	if top != 0 || bottom != 20 {
		t.Errorf("ScrollRegion() after resize = (%d, %d), want full grid (0, 20)", top, bottom)
	}
}

func TestBufferTabStops(t *testing.T) {
	b := NewBuffer(24, 80)

	if next := b.NextTabStop(0); next != 8 {
		t.Errorf("NextTabStop(0) = %d, want 8", next)
	}
	if next := b.NextTabStop(8); next != 16 {
		t.Errorf("NextTabStop(8) = %d, want 16", next)
	}
	if prev := b.PrevTabStop(16); prev != 8 {
		t.Errorf("PrevTabStop(16) = %d, want 8", prev)
	}

	b.ClearTabStop(8)
	if next := b.NextTabStop(0); next != 16 {
		t.Errorf("NextTabStop(0) after clearing 8 = %d, want 16", next)
	}

	b.ClearAllTabStops()
	if next := b.NextTabStop(0); next != b.Cols()-1 {
		t.Errorf("NextTabStop(0) with no stops = %d, want last column", next)
	}
}

func TestBufferDirtyTracking(t *testing.T) {
	b := NewBuffer(24, 80)
	b.ClearAllDirty()
	if b.HasDirty() {
		t.Fatal("HasDirty() true right after ClearAllDirty")
	}

	b.MarkDirty(3, 4)
	if !b.HasDirty() {
		t.Fatal("HasDirty() false after MarkDirty")
	}
	dirty := b.DirtyCells()
	if len(dirty) != 1 || !dirty[0].Equal(Position{Row: 3, Col: 4}) {
		t.Errorf("DirtyCells() = %v, want [{3 4}]", dirty)
	}
}

func TestBufferWrappedLineTrackingSurvivesScroll(t *testing.T) {
	b := NewBuffer(5, 10)
	b.SetWrapped(0, true)
	b.SetWrapped(2, true)

	if b.IsWrapped(1) {
		t.Error("row 1 wrapped before any scroll")
	}

	b.ScrollRegionUp(1)

	if b.IsWrapped(0) {
		t.Error("row 0 should carry row 1's (unwrapped) flag after scroll")
	}
	if !b.IsWrapped(1) {
		t.Error("row 1 should carry row 2's (wrapped) flag after scroll")
	}
	if b.IsWrapped(4) {
		t.Error("newly scrolled-in bottom row should not be wrapped")
	}

	// Out-of-range access never panics.
	b.SetWrapped(-1, true)
	b.SetWrapped(100, true)
	if b.IsWrapped(-1) || b.IsWrapped(100) {
		t.Error("out-of-bounds IsWrapped should report false")
	}
}

func TestBufferGrowRowsExtendsFullScrollRegion(t *testing.T) {
	b := NewBuffer(5, 10)
	b.PutChar(4, 0, Cell{Char: 'E'})

	b.GrowRows(3)

	if got := b.Rows(); got != 8 {
		t.Fatalf("Rows() after GrowRows = %d, want 8", got)
	}
	if got := b.Cell(4, 0).Char; got != 'E' {
		t.Error("existing content lost by GrowRows")
	}
	if got := b.Cell(7, 0).Char; got != ' ' {
		t.Error("new row from GrowRows should start blank")
	}
	_, bottom := b.ScrollRegion()
	if bottom != 8 {
		t.Errorf("ScrollRegion() bottom after GrowRows = %d, want 8 (region was full-grid)", bottom)
	}
}

func TestBufferGrowRowsLeavesCustomRegionAlone(t *testing.T) {
	b := NewBuffer(5, 10)
	b.SetScrollRegion(0, 3)

	b.GrowRows(2)

	_, bottom := b.ScrollRegion()
	if bottom != 3 {
		t.Errorf("ScrollRegion() bottom after GrowRows = %d, want 3 (custom region preserved)", bottom)
	}
}

func TestBufferGrowCols(t *testing.T) {
	b := NewBuffer(5, 10)
	b.PutChar(0, 9, Cell{Char: 'B'})

	b.GrowCols(0, 20)

	if got := b.Cols(); got != 20 {
		t.Errorf("Cols() after GrowCols = %d, want 20", got)
	}
	if got := b.Cell(0, 9).Char; got != 'B' {
		t.Error("existing content lost by GrowCols")
	}
	if got := b.Cell(0, 15).Char; got != ' ' {
		t.Error("new cell from GrowCols should start blank")
	}
}

// fakeScrollback is a minimal ScrollbackProvider for exercising Buffer's
// scrollback delegation without pulling in the package's default storage.
type fakeScrollback struct {
	lines    [][]Cell
	maxLines int
}

func (s *fakeScrollback) Push(line []Cell) {
	lineCopy := make([]Cell, len(line))
	copy(lineCopy, line)
	s.lines = append(s.lines, lineCopy)
	if s.maxLines > 0 && len(s.lines) > s.maxLines {
		s.lines = s.lines[len(s.lines)-s.maxLines:]
	}
}

func (s *fakeScrollback) Len() int              { return len(s.lines) }
func (s *fakeScrollback) Line(index int) []Cell { return s.lines[index] }
func (s *fakeScrollback) Clear()                { s.lines = nil }
func (s *fakeScrollback) SetMaxLines(max int)   { s.maxLines = max }
func (s *fakeScrollback) MaxLines() int         { return s.maxLines }

func (s *fakeScrollback) Pop() []Cell {
	if len(s.lines) == 0 {
		return nil
	}
	line := s.lines[len(s.lines)-1]
	s.lines = s.lines[:len(s.lines)-1]
	return line
}
