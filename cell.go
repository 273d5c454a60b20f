package termengine

import "image/color"

// CellAttr is a bitmask of SGR rendering attributes applied to a cell.
type CellAttr uint16

const (
	AttrBold CellAttr = 1 << iota
	AttrDim
	AttrItalic
	AttrUnderline
	AttrInverse
	AttrHidden
	AttrStrikethrough

	// attrWide and attrWideSpacer are bookkeeping flags, not SGR attributes:
	// they mark the leading and trailing cell of a two-column glyph so callers
	// can skip the spacer half when extracting text.
	attrWide
	attrWideSpacer
	attrDirty
)

// Cell is a single grid position: a codepoint, its SGR attribute bitset, and
// its foreground/background colors. The sentinel NUL codepoint marks the
// spacer half of a preceding wide glyph.
type Cell struct {
	Char rune
	Attr CellAttr
	Fg   color.RGBA
	Bg   color.RGBA
}

// blankCell returns the default cell: a space with default colors and no attributes.
func blankCell() Cell {
	return Cell{Char: ' ', Fg: DefaultForeground, Bg: DefaultBackground}
}

// Reset clears a cell back to its default state.
func (c *Cell) Reset() {
	*c = blankCell()
}

// HasAttr reports whether the given attribute bit is set.
func (c *Cell) HasAttr(a CellAttr) bool { return c.Attr&a != 0 }

// SetAttr sets the given attribute bit without disturbing the others.
func (c *Cell) SetAttr(a CellAttr) { c.Attr |= a }

// ClearAttr clears the given attribute bit without disturbing the others.
func (c *Cell) ClearAttr(a CellAttr) { c.Attr &^= a }

// IsDirty reports whether the cell was touched since the last ClearDirty.
func (c *Cell) IsDirty() bool { return c.HasAttr(attrDirty) }

// MarkDirty flags the cell as touched for dirty-region tracking.
func (c *Cell) MarkDirty() { c.SetAttr(attrDirty) }

// ClearDirty resets dirty-region tracking for the cell.
func (c *Cell) ClearDirty() { c.ClearAttr(attrDirty) }

// IsWide reports whether this cell holds the leading column of a two-cell-wide glyph.
func (c *Cell) IsWide() bool { return c.HasAttr(attrWide) }

// IsWideSpacer reports whether this cell is the trailing half of a wide glyph
// and should be skipped when rendering or extracting text.
func (c *Cell) IsWideSpacer() bool { return c.HasAttr(attrWideSpacer) }

// Copy returns a value copy of the cell. Cell has no pointer fields, so this
// is equivalent to assignment; kept for parity with callers that expect an
// explicit copy method.
func (c Cell) Copy() Cell { return c }
