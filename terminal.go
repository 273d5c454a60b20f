package termengine

import (
	"image/color"
	"strings"
	"sync"
)

// TerminalMode is a bitmask of terminal behavior flags. Multiple modes can be
// active simultaneously.
type TerminalMode uint32

const (
	// ModeCursorKeys enables cursor-key application mode (DECCKM).
	ModeCursorKeys TerminalMode = 1 << iota
	// ModeInsert enables insert mode (characters shift right instead of overwrite).
	ModeInsert
	// ModeOrigin enables origin mode (DECOM): CUP/HVP relative to scroll_top.
	ModeOrigin
	// ModeLineWrap enables auto-wrap (DECAWM).
	ModeLineWrap
	// ModeLineFeedNewLine makes line feed also return to column 0 (LNM).
	ModeLineFeedNewLine
	// ModeShowCursor makes the cursor visible (DECTCEM).
	ModeShowCursor
	// ModeKeypadApplication enables application keypad mode.
	ModeKeypadApplication
	// ModeBracketedPaste enables bracketed paste mode (2004).
	ModeBracketedPaste
)

// MouseMode selects which mouse events are reported.
type MouseMode int

const (
	MouseModeOff MouseMode = iota
	MouseModeX10
	MouseModeNormal // 1000
	MouseModeButton // 1002
	MouseModeAny    // 1003
)

// MouseEncoding selects how reported mouse coordinates are encoded.
type MouseEncoding int

const (
	MouseEncodingX10 MouseEncoding = iota
	MouseEncodingSGR                 // 1006
)

const (
	// DefaultRows is the terminal height used by New when no size option is given.
	DefaultRows = 24
	// DefaultCols is the terminal width used by New when no size option is given.
	DefaultCols = 80
)

// Terminal is a headless VT100/xterm-compatible terminal core: it parses a
// byte stream of UTF-8 text interleaved with ANSI/VT escape sequences and
// applies the resulting edits to an in-memory grid. It performs no I/O of
// its own; callers feed it bytes via Write and drain any replies it queues
// (DSR/DA) via TakeWriteback.
//
// All exported methods are safe for concurrent use.
type Terminal struct {
	mu sync.RWMutex

	rows, cols int

	defaultFg color.RGBA // current theme-bound default colors
	defaultBg color.RGBA

	mainGrid *Buffer
	altGrid  *Buffer // nil unless the alternate screen is active
	grid     *Buffer // the currently active grid (mainGrid or altGrid)

	cursor      *Cursor
	savedCursor *SavedCursor // nil until first save
	template    Cell         // SGR state applied to newly printed characters
	pendingWrap bool

	modes         TerminalMode
	mouseMode     MouseMode
	mouseEncoding MouseEncoding

	title string

	oscCwd   string
	osc52    string
	lastChar rune // most recently printed character, for REP

	writeback []byte

	parser *Parser
	utf8   utf8Decoder

	shell *ShellIntegration

	scrollbackStorage ScrollbackProvider
	bellProvider      BellProvider
	titleProvider     TitleProvider
	clipboardProvider ClipboardProvider
	responseProvider  ResponseProvider
	middleware        *Middleware
}

// Option configures a Terminal at construction time.
type Option func(*Terminal)

// WithSize sets the initial terminal dimensions. Values <= 0 fall back to
// DefaultRows/DefaultCols.
func WithSize(rows, cols int) Option {
	return func(t *Terminal) {
		if rows <= 0 {
			rows = DefaultRows
		}
		if cols <= 0 {
			cols = DefaultCols
		}
		t.rows, t.cols = rows, cols
	}
}

// WithScrollback sets the scrollback storage implementation for the primary buffer.
func WithScrollback(p ScrollbackProvider) Option {
	return func(t *Terminal) { t.scrollbackStorage = p }
}

// WithBell sets the handler invoked when a BEL (0x07) is received.
func WithBell(p BellProvider) Option {
	return func(t *Terminal) { t.bellProvider = p }
}

// WithTitle sets the handler invoked when the window title changes.
func WithTitle(p TitleProvider) Option {
	return func(t *Terminal) { t.titleProvider = p }
}

// WithClipboard sets the handler for OSC 52 clipboard read/write.
func WithClipboard(p ClipboardProvider) Option {
	return func(t *Terminal) { t.clipboardProvider = p }
}

// WithResponseProvider additionally forwards every write-back reply to w as
// it is queued, in case a caller wants immediate delivery instead of polling
// TakeWriteback.
func WithResponseProvider(w ResponseProvider) Option {
	return func(t *Terminal) { t.responseProvider = w }
}

// WithMiddleware installs hooks that observe or override side-effecting
// operations. May be called more than once; hooks merge, last-set wins per field.
func WithMiddleware(mw *Middleware) Option {
	return func(t *Terminal) {
		if t.middleware == nil {
			t.middleware = &Middleware{}
		}
		t.middleware.Merge(mw)
	}
}

// New creates a terminal with the given options, defaulting to 24x80 with
// auto-wrap and cursor visibility on.
func New(opts ...Option) *Terminal {
	t := &Terminal{
		rows:              DefaultRows,
		cols:              DefaultCols,
		bellProvider:      NoopBell{},
		titleProvider:     NoopTitle{},
		clipboardProvider: NoopClipboard{},
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.scrollbackStorage == nil {
		t.scrollbackStorage = NewMemoryScrollback(10000)
	}

	t.resetState()
	return t
}

// resetState rebuilds every field from scratch at the current dimensions,
// keeping only the configured providers, middleware, and the default colors
// bound by SetDefaultColors. It is the single reset path shared by New and
// RIS (ESC c); RIS additionally empties the scrollback storage.
func (t *Terminal) resetState() {
	t.mainGrid = NewBufferWithStorage(t.rows, t.cols, t.scrollbackStorage)
	t.altGrid = nil
	t.grid = t.mainGrid

	if t.defaultFg == (color.RGBA{}) {
		t.defaultFg = DefaultForeground
	}
	if t.defaultBg == (color.RGBA{}) {
		t.defaultBg = DefaultBackground
	}

	t.cursor = NewCursor()
	t.savedCursor = nil
	t.template = Cell{Char: ' ', Fg: t.defaultFg, Bg: t.defaultBg}
	t.pendingWrap = false

	t.modes = ModeLineWrap | ModeShowCursor
	t.mouseMode = MouseModeOff
	t.mouseEncoding = MouseEncodingX10

	t.title = ""
	t.oscCwd = ""
	t.osc52 = ""
	t.lastChar = 0

	t.writeback = nil
	t.parser = NewParser()
	t.utf8 = utf8Decoder{}
	t.shell = NewShellIntegration(1000)
}

// Rows returns the terminal height in character rows.
func (t *Terminal) Rows() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.rows
}

// Cols returns the terminal width in character columns.
func (t *Terminal) Cols() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cols
}

// Cell returns a copy of the cell at (row, col) in the active grid.
// The second return value is false if the coordinates are out of bounds.
func (t *Terminal) Cell(row, col int) (Cell, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := t.grid.Cell(row, col)
	if c == nil {
		return Cell{}, false
	}
	return *c, true
}

// CursorPos returns the current cursor position (0-based). Col may equal
// Cols() to represent the pending-wrap state.
func (t *Terminal) CursorPos() (row, col int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cursor.Row, t.cursor.Col
}

// CursorVisible reports whether the cursor should currently be rendered.
func (t *Terminal) CursorVisible() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.modes&ModeShowCursor != 0
}

// Title returns the current window title.
func (t *Terminal) Title() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.title
}

// WorkingDirectory returns the last working directory reported via OSC 7,
// exactly as received (the raw "file://host/path" payload).
func (t *Terminal) WorkingDirectory() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.oscCwd
}

// WorkingDirectoryPath returns the last OSC 7 working directory with the
// "file://host" prefix stripped, as tracked by the shell-integration handle.
func (t *Terminal) WorkingDirectoryPath() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shell.WorkingDirectory()
}

// LastClipboardData returns the most recently decoded OSC 52 payload, or
// empty string if none has been received.
func (t *Terminal) LastClipboardData() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.osc52
}

// HasMode reports whether the given mode flag is currently set.
func (t *Terminal) HasMode(m TerminalMode) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.modes&m != 0
}

// MouseMode returns the currently active mouse-reporting level.
func (t *Terminal) MouseMode() MouseMode {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mouseMode
}

// MouseEncoding returns the currently active mouse coordinate encoding.
func (t *Terminal) MouseEncoding() MouseEncoding {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mouseEncoding
}

// InAltScreen reports whether the alternate screen is currently active.
func (t *Terminal) InAltScreen() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.altGrid != nil
}

// ShellIntegration returns the shell-integration tracker driven by OSC 133/7.
func (t *Terminal) ShellIntegration() *ShellIntegration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.shell
}

// ScrollbackLen returns the number of lines stored in scrollback (primary buffer only).
func (t *Terminal) ScrollbackLen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mainGrid.ScrollbackLen()
}

// ScrollbackLine returns a scrollback line, where 0 is the oldest line.
func (t *Terminal) ScrollbackLine(index int) []Cell {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mainGrid.ScrollbackLine(index)
}

// Resize changes the terminal dimensions, preserving content from (0,0) to
// min(old, new) in both axes, clamping the cursor, and resetting the scroll
// region to the full grid. Reflow is never performed. Dimensions <= 0 are
// ignored.
func (t *Terminal) Resize(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows, t.cols = rows, cols
	t.mainGrid.Resize(rows, cols)
	if t.altGrid != nil {
		t.altGrid.Resize(rows, cols)
	}

	t.cursor.Row = clampInt(t.cursor.Row, 0, rows-1)
	t.cursor.Col = clampInt(t.cursor.Col, 0, cols-1)
	t.pendingWrap = false
}

// SetDefaultColors rebinds the distinguished default foreground/background
// colors applied by SGR 0/39/49 going forward, and moves the current SGR
// template onto them where it still carries the previous defaults. Cells
// already painted with the previous default are not retroactively
// recolored: the spec treats "default" as a value carried by convention, not
// a persistent tag. Cells blanked by erase, scroll, insert/delete, or resize
// take the package-level DefaultForeground/DefaultBackground, not these
// colors.
func (t *Terminal) SetDefaultColors(fg, bg color.RGBA) {
	t.mu.Lock()
	defer t.mu.Unlock()
	oldFg, oldBg := t.defaultFg, t.defaultBg
	t.defaultFg, t.defaultBg = fg, bg
	if t.template.Fg == oldFg {
		t.template.Fg = fg
	}
	if t.template.Bg == oldBg {
		t.template.Bg = bg
	}
}

// Write parses data as a stream of UTF-8 text and VT escape sequences,
// applying the resulting edits to the grid. It implements io.Writer and
// never returns an error: every byte is accepted.
func (t *Terminal) Write(data []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, b := range data {
		t.feedByte(b)
	}
	return len(data), nil
}

// WriteString is a convenience wrapper around Write.
func (t *Terminal) WriteString(s string) (int, error) {
	return t.Write([]byte(s))
}

// TakeWriteback returns and clears any bytes queued for the host to send
// back to the PTY (DSR/DA replies, OSC 52 query responses).
func (t *Terminal) TakeWriteback() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.writeback
	t.writeback = nil
	return out
}

func (t *Terminal) queueWriteback(data []byte) {
	t.writeback = append(t.writeback, data...)
	if t.responseProvider != nil {
		t.responseProvider.Write(data)
	}
}

// String renders the visible grid as plain text, one line per row, trailing
// blanks trimmed. Implements fmt.Stringer.
func (t *Terminal) String() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	lines := make([]string, t.rows)
	for row := 0; row < t.rows; row++ {
		lines[row] = t.grid.LineContent(row)
	}
	return strings.Join(lines, "\n")
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
