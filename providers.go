package termengine

import "io"

// ResponseProvider writes terminal responses (cursor position reports,
// device attributes, OSC 52 query replies) back to the PTY. Typically an
// io.Writer connected to the PTY input; Terminal also buffers every reply
// internally and returns it from TakeWriteback regardless of whether a
// ResponseProvider is installed.
type ResponseProvider = io.Writer

// NoopResponse discards all response data.
type NoopResponse struct{}

func (NoopResponse) Write(p []byte) (n int, err error) {
	return len(p), nil
}

// --- Bell Provider ---

// BellProvider handles bell events triggered by BEL (0x07).
type BellProvider interface {
	// Ring is called when a bell character is received.
	Ring()
}

// NoopBell ignores all bell events.
type NoopBell struct{}

func (NoopBell) Ring() {}

// --- Title Provider ---

// TitleProvider handles window title changes (OSC 0/2).
type TitleProvider interface {
	// SetTitle is called when the title changes.
	SetTitle(title string)
}

// NoopTitle ignores all title changes.
type NoopTitle struct{}

func (NoopTitle) SetTitle(title string) {}

// --- Clipboard Provider ---

// ClipboardProvider handles clipboard read/write operations (OSC 52).
type ClipboardProvider interface {
	// Read returns content from the specified selection ('c' clipboard, 'p' primary).
	Read(selection byte) []byte
	// Write stores content to the specified selection.
	Write(selection byte, data []byte)
}

// NoopClipboard ignores all clipboard operations.
type NoopClipboard struct{}

func (NoopClipboard) Read(selection byte) []byte        { return nil }
func (NoopClipboard) Write(selection byte, data []byte) {}

// --- Scrollback Provider ---

// ScrollbackProvider stores lines scrolled off the top of the primary
// buffer. Implementations can back this with memory, disk, or a database.
type ScrollbackProvider interface {
	// Push appends a line to scrollback, evicting the oldest line if MaxLines is exceeded.
	Push(line []Cell)
	// Len returns the current number of stored lines.
	Len() int
	// Line returns the line at index, where 0 is the oldest line. Returns nil if out of range.
	Line(index int) []Cell
	// Clear removes all stored lines.
	Clear()
	// SetMaxLines sets the maximum capacity, trimming the oldest lines if needed.
	SetMaxLines(max int)
	// MaxLines returns the current maximum capacity.
	MaxLines() int
}

// NoopScrollback discards all scrollback lines. Used for the alternate
// screen, which never retains history.
type NoopScrollback struct{}

func (NoopScrollback) Push(line []Cell)      {}
func (NoopScrollback) Len() int              { return 0 }
func (NoopScrollback) Line(index int) []Cell { return nil }
func (NoopScrollback) Clear()                {}
func (NoopScrollback) SetMaxLines(max int)   {}
func (NoopScrollback) MaxLines() int         { return 0 }

// MemoryScrollback is a ScrollbackProvider backed by a bounded in-memory FIFO.
type MemoryScrollback struct {
	lines []([]Cell)
	max   int
}

// NewMemoryScrollback returns a MemoryScrollback capped at max lines. A
// non-positive max disables retention: Push becomes a no-op.
func NewMemoryScrollback(max int) *MemoryScrollback {
	if max < 0 {
		max = 0
	}
	return &MemoryScrollback{max: max}
}

func (s *MemoryScrollback) Push(line []Cell) {
	if s.max <= 0 {
		return
	}
	cp := make([]Cell, len(line))
	copy(cp, line)
	s.lines = append(s.lines, cp)
	if over := len(s.lines) - s.max; over > 0 {
		s.lines = s.lines[over:]
	}
}

func (s *MemoryScrollback) Len() int { return len(s.lines) }

func (s *MemoryScrollback) Line(index int) []Cell {
	if index < 0 || index >= len(s.lines) {
		return nil
	}
	return s.lines[index]
}

func (s *MemoryScrollback) Clear() { s.lines = nil }

func (s *MemoryScrollback) SetMaxLines(max int) {
	if max < 0 {
		max = 0
	}
	s.max = max
	if over := len(s.lines) - s.max; over > 0 {
		s.lines = s.lines[over:]
	}
}

func (s *MemoryScrollback) MaxLines() int { return s.max }

// Ensure implementations satisfy their interfaces.
var _ ResponseProvider = NoopResponse{}
var _ BellProvider = (*NoopBell)(nil)
var _ TitleProvider = (*NoopTitle)(nil)
var _ ClipboardProvider = (*NoopClipboard)(nil)
var _ ScrollbackProvider = (*NoopScrollback)(nil)
var _ ScrollbackProvider = (*MemoryScrollback)(nil)
