package termengine

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"strconv"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
)

// feedByte routes one input byte through the parser (and, for non-ASCII
// bytes, the UTF-8 decoder) and applies the resulting action to the grid.
// Callers hold t.mu for the duration of a Write call.
func (t *Terminal) feedByte(b byte) {
	act := t.parser.Advance(b)

	if t.utf8.isPending() {
		if b&0xC0 == 0x80 {
			if r, ok := t.utf8.feed(b); ok {
				t.printRune(r)
			}
			return
		}
		// b can't continue the pending sequence: flush it to U+FFFD first,
		// then handle b fresh rather than replaying the stale parser action
		// computed above — if b can itself start a new sequence, it goes
		// to the decoder instead of being printed as a second replacement.
		t.printRune(t.utf8.flush())
		if b >= 0x80 {
			if r, ok := t.utf8.feed(b); ok {
				t.printRune(r)
			}
			return
		}
	} else if act.Kind == ActionPrint && act.Char == replacementChar && b >= 0x80 {
		if r, ok := t.utf8.feed(b); ok {
			t.printRune(r)
		}
		return
	}

	t.applyAction(act)
}

func (t *Terminal) applyAction(act Action) {
	switch act.Kind {
	case ActionPrint:
		t.printRune(act.Char)
	case ActionExecute:
		t.execute(act.Byte)
	case ActionCsiDispatch:
		t.csiDispatch(act)
	case ActionEscDispatch:
		t.escDispatch(act)
	case ActionOscDispatch:
		t.oscDispatch(act.OscData)
	}
}

// printRune writes r at the cursor, handling pending-wrap resolution,
// double-width placement, and auto-wrap.
func (t *Terminal) printRune(r rune) {
	w := runeWidth(r)
	if w == 0 {
		return
	}

	autoWrap := t.modes&ModeLineWrap != 0

	if t.pendingWrap {
		t.pendingWrap = false
		if autoWrap {
			t.grid.SetWrapped(t.cursor.Row, true)
			t.cursor.Col = 0
			t.index()
		} else {
			t.cursor.Col = t.cols - 1
		}
	}

	if w == 2 && t.cursor.Col == t.cols-1 {
		if autoWrap {
			t.grid.SetWrapped(t.cursor.Row, true)
			t.cursor.Col = 0
			t.index()
		} else {
			t.cursor.Col = t.cols - 2
		}
	}

	if t.modes&ModeInsert != 0 {
		t.grid.InsertChars(t.cursor.Row, t.cursor.Col, w)
	}

	cell := t.template
	cell.Char = r
	if w == 2 {
		cell.SetAttr(attrWide)
	}
	t.grid.SetCell(t.cursor.Row, t.cursor.Col, cell)
	t.lastChar = r
	t.cursor.Col++

	if w == 2 {
		spacer := t.template
		spacer.Char = 0
		spacer.SetAttr(attrWideSpacer)
		t.grid.SetCell(t.cursor.Row, t.cursor.Col, spacer)
		t.cursor.Col++
	}

	if t.cursor.Col >= t.cols {
		if autoWrap {
			t.pendingWrap = true
			t.cursor.Col = t.cols
		} else {
			t.cursor.Col = t.cols - 1
		}
	}
}

// index moves the cursor down one row, scrolling the active region up if
// already at its bottom edge.
func (t *Terminal) index() {
	t.cursor.Row = t.grid.Index(t.cursor.Row)
}

// reverseIndex moves the cursor up one row, scrolling the active region down
// if already at its top edge.
func (t *Terminal) reverseIndex() {
	t.cursor.Row = t.grid.ReverseIndex(t.cursor.Row)
}

func (t *Terminal) execute(b byte) {
	switch b {
	case 0x07: // BEL
		t.ringBell()
	case 0x08: // BS
		if t.cursor.Col > 0 {
			t.cursor.Col--
		}
		t.pendingWrap = false
	case 0x09: // HT
		t.cursor.Col = t.grid.NextTabStop(t.cursor.Col)
		t.pendingWrap = false
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		t.index()
		if t.modes&ModeLineFeedNewLine != 0 {
			t.cursor.Col = 0
		}
		t.pendingWrap = false
	case 0x0D: // CR
		t.cursor.Col = 0
		t.pendingWrap = false
	}
}

func (t *Terminal) ringBell() {
	if t.middleware != nil && t.middleware.Bell != nil {
		t.middleware.Bell(t.bellProvider.Ring)
		return
	}
	t.bellProvider.Ring()
}

func (t *Terminal) setTitle(title string) {
	if t.middleware != nil && t.middleware.SetTitle != nil {
		t.middleware.SetTitle(title, t.applyTitle)
		return
	}
	t.applyTitle(title)
}

func (t *Terminal) applyTitle(title string) {
	t.title = title
	t.titleProvider.SetTitle(title)
}

func (t *Terminal) setWorkingDirectory(dir string) {
	if t.middleware != nil && t.middleware.SetWorkingDirectory != nil {
		t.middleware.SetWorkingDirectory(dir, t.applyWorkingDirectory)
		return
	}
	t.applyWorkingDirectory(dir)
}

func (t *Terminal) applyWorkingDirectory(dir string) {
	t.oscCwd = dir
	t.shell.HandleOSC7(dir)
}

// --- CSI dispatch ---

func csiParam(params []uint16, idx, def int) int {
	if idx < 0 || idx >= len(params) || params[idx] == 0 {
		return def
	}
	return int(params[idx])
}

func isPrivateCSI(intermediates []byte) bool {
	return len(intermediates) > 0 && intermediates[0] == '?'
}

func (t *Terminal) csiDispatch(act Action) {
	params := act.Params
	private := isPrivateCSI(act.Intermediates)

	switch act.Final {
	case 'A': // CUU
		t.cursor.Row = clampInt(t.cursor.Row-csiParam(params, 0, 1), 0, t.rows-1)
		t.pendingWrap = false
	case 'B', 'e': // CUD / VPR
		t.cursor.Row = clampInt(t.cursor.Row+csiParam(params, 0, 1), 0, t.rows-1)
		t.pendingWrap = false
	case 'C', 'a': // CUF / HPR
		t.cursor.Col = clampInt(t.cursor.Col+csiParam(params, 0, 1), 0, t.cols-1)
		t.pendingWrap = false
	case 'D': // CUB
		t.cursor.Col = clampInt(t.cursor.Col-csiParam(params, 0, 1), 0, t.cols-1)
		t.pendingWrap = false
	case 'E': // CNL
		t.cursor.Row = clampInt(t.cursor.Row+csiParam(params, 0, 1), 0, t.rows-1)
		t.cursor.Col = 0
		t.pendingWrap = false
	case 'F': // CPL
		t.cursor.Row = clampInt(t.cursor.Row-csiParam(params, 0, 1), 0, t.rows-1)
		t.cursor.Col = 0
		t.pendingWrap = false
	case 'G', '`': // CHA / HPA
		t.cursor.Col = clampInt(csiParam(params, 0, 1)-1, 0, t.cols-1)
		t.pendingWrap = false
	case 'd': // VPA
		t.moveToRow(csiParam(params, 0, 1) - 1)
		t.pendingWrap = false
	case 'H', 'f': // CUP / HVP
		t.moveToRow(csiParam(params, 0, 1) - 1)
		t.cursor.Col = clampInt(csiParam(params, 1, 1)-1, 0, t.cols-1)
		t.pendingWrap = false
	case 'I': // CHT
		n := csiParam(params, 0, 1)
		for i := 0; i < n; i++ {
			t.cursor.Col = t.grid.NextTabStop(t.cursor.Col)
		}
	case 'Z': // CBT
		n := csiParam(params, 0, 1)
		for i := 0; i < n; i++ {
			t.cursor.Col = t.grid.PrevTabStop(t.cursor.Col)
		}
	case 'J': // ED
		t.eraseDisplay(csiParam(params, 0, 0))
	case 'K': // EL
		t.eraseLine(csiParam(params, 0, 0))
	case 'X': // ECH
		n := csiParam(params, 0, 1)
		t.grid.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cursor.Col+n)
	case 'L': // IL
		t.grid.InsertLines(t.cursor.Row, csiParam(params, 0, 1))
		t.cursor.Col = 0
		t.pendingWrap = false
	case 'M': // DL
		t.grid.DeleteLines(t.cursor.Row, csiParam(params, 0, 1))
		t.cursor.Col = 0
		t.pendingWrap = false
	case 'P': // DCH
		t.grid.DeleteChars(t.cursor.Row, t.cursor.Col, csiParam(params, 0, 1))
	case '@': // ICH
		t.grid.InsertChars(t.cursor.Row, t.cursor.Col, csiParam(params, 0, 1))
	case 'S': // SU
		t.grid.ScrollRegionUp(csiParam(params, 0, 1))
	case 'T': // SD
		t.grid.ScrollRegionDown(csiParam(params, 0, 1))
	case 'b': // REP
		if t.lastChar != 0 {
			n := csiParam(params, 0, 1)
			for i := 0; i < n; i++ {
				t.printRune(t.lastChar)
			}
		}
	case 'm': // SGR
		t.handleSGR(params)
	case 'r': // DECSTBM
		top := csiParam(params, 0, 1) - 1
		bottom := csiParam(params, 1, t.rows)
		t.grid.SetScrollRegion(top, bottom)
		if t.modes&ModeOrigin != 0 {
			scrollTop, _ := t.grid.ScrollRegion()
			t.cursor.Row, t.cursor.Col = scrollTop, 0
		} else {
			t.cursor.Row, t.cursor.Col = 0, 0
		}
		t.pendingWrap = false
	case 's': // ANSI save cursor
		t.saveCursor()
	case 'u': // ANSI restore cursor
		t.restoreCursor()
	case 'n': // DSR
		t.deviceStatusReport(csiParam(params, 0, 0), private)
	case 'c': // DA
		if csiParam(params, 0, 0) == 0 && !private {
			t.queueWriteback([]byte("\x1b[?62;22c"))
		}
	case 'g': // TBC
		switch csiParam(params, 0, 0) {
		case 0:
			t.grid.ClearTabStop(t.cursor.Col)
		case 3:
			t.grid.ClearAllTabStops()
		}
	case 'h':
		t.setModes(params, private, true)
	case 'l':
		t.setModes(params, private, false)
	}
}

// moveToRow applies origin-mode-relative row positioning shared by CUP/HVP/VPA.
func (t *Terminal) moveToRow(row int) {
	if t.modes&ModeOrigin != 0 {
		top, bottom := t.grid.ScrollRegion()
		row = clampInt(top+row, top, bottom-1)
	} else {
		row = clampInt(row, 0, t.rows-1)
	}
	t.cursor.Row = row
}

func (t *Terminal) eraseDisplay(mode int) {
	switch mode {
	case 0:
		t.grid.EraseBelow(t.cursor.Row, t.cursor.Col)
	case 1:
		t.grid.EraseAbove(t.cursor.Row, t.cursor.Col)
	case 2:
		t.grid.ClearAll()
	}
}

func (t *Terminal) eraseLine(mode int) {
	switch mode {
	case 0:
		t.grid.EraseLineRight(t.cursor.Row, t.cursor.Col)
	case 1:
		t.grid.EraseLineLeft(t.cursor.Row, t.cursor.Col)
	case 2:
		t.grid.EraseLine(t.cursor.Row)
	}
}

func (t *Terminal) saveCursor() {
	t.savedCursor = &SavedCursor{
		Row:        t.cursor.Row,
		Col:        t.cursor.Col,
		Template:   t.template,
		OriginMode: t.modes&ModeOrigin != 0,
	}
}

func (t *Terminal) restoreCursor() {
	if t.savedCursor == nil {
		t.cursor.Row, t.cursor.Col = 0, 0
		t.pendingWrap = false
		return
	}
	t.cursor.Row, t.cursor.Col = t.savedCursor.Row, t.savedCursor.Col
	t.template = t.savedCursor.Template
	if t.savedCursor.OriginMode {
		t.modes |= ModeOrigin
	} else {
		t.modes &^= ModeOrigin
	}
	t.pendingWrap = false
}

func (t *Terminal) deviceStatusReport(code int, private bool) {
	switch code {
	case 5:
		t.queueWriteback([]byte("\x1b[0n"))
	case 6:
		row, col := t.cursor.Row+1, t.cursor.Col+1
		if private {
			t.queueWriteback([]byte("\x1b[?" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "R"))
		} else {
			t.queueWriteback([]byte("\x1b[" + strconv.Itoa(row) + ";" + strconv.Itoa(col) + "R"))
		}
	}
}

func (t *Terminal) setModes(params []uint16, private, set bool) {
	if private {
		for _, p := range params {
			t.setDECMode(int(p), set)
		}
		return
	}
	for _, p := range params {
		switch p {
		case 4:
			t.setMode(ModeInsert, set)
		case 20:
			t.setMode(ModeLineFeedNewLine, set)
		}
	}
}

func (t *Terminal) setMode(m TerminalMode, set bool) {
	if set {
		t.modes |= m
	} else {
		t.modes &^= m
	}
}

func (t *Terminal) setDECMode(p int, set bool) {
	switch p {
	case 1:
		t.setMode(ModeCursorKeys, set)
	case 6:
		t.setMode(ModeOrigin, set)
		if set {
			scrollTop, _ := t.grid.ScrollRegion()
			t.cursor.Row, t.cursor.Col = scrollTop, 0
		} else {
			t.cursor.Row, t.cursor.Col = 0, 0
		}
		t.pendingWrap = false
	case 7:
		t.setMode(ModeLineWrap, set)
	case 9:
		if set {
			t.mouseMode = MouseModeX10
		} else {
			t.mouseMode = MouseModeOff
		}
	case 25:
		t.setMode(ModeShowCursor, set)
	case 1000:
		if set {
			t.mouseMode = MouseModeNormal
		} else {
			t.mouseMode = MouseModeOff
		}
	case 1002:
		if set {
			t.mouseMode = MouseModeButton
		} else {
			t.mouseMode = MouseModeOff
		}
	case 1003:
		if set {
			t.mouseMode = MouseModeAny
		} else {
			t.mouseMode = MouseModeOff
		}
	case 1006:
		if set {
			t.mouseEncoding = MouseEncodingSGR
		} else {
			t.mouseEncoding = MouseEncodingX10
		}
	case 47, 1047:
		if set {
			t.enterAltScreen()
		} else {
			t.exitAltScreen()
		}
	case 1048:
		if set {
			t.saveCursor()
		} else {
			t.restoreCursor()
		}
	case 1049:
		if set {
			t.saveCursor()
			t.enterAltScreen()
		} else {
			t.exitAltScreen()
			t.restoreCursor()
		}
	case 2004:
		t.setMode(ModeBracketedPaste, set)
	}
}

func (t *Terminal) enterAltScreen() {
	if t.altGrid != nil {
		return
	}
	t.altGrid = NewBuffer(t.rows, t.cols)
	t.grid = t.altGrid
}

func (t *Terminal) exitAltScreen() {
	if t.altGrid == nil {
		return
	}
	t.altGrid = nil
	t.grid = t.mainGrid
}

// --- SGR ---

func (t *Terminal) handleSGR(params []uint16) {
	if len(params) == 0 {
		t.template.Attr = 0
		t.template.Fg = t.defaultFg
		t.template.Bg = t.defaultBg
		return
	}

	for i := 0; i < len(params); i++ {
		p := int(params[i])
		switch {
		case p == 0:
			t.template.Attr = 0
			t.template.Fg = t.defaultFg
			t.template.Bg = t.defaultBg
		case p == 1:
			t.template.SetAttr(AttrBold)
		case p == 2:
			t.template.SetAttr(AttrDim)
		case p == 3:
			t.template.SetAttr(AttrItalic)
		case p == 4:
			t.template.SetAttr(AttrUnderline)
		case p == 7:
			t.template.SetAttr(AttrInverse)
		case p == 8:
			t.template.SetAttr(AttrHidden)
		case p == 9:
			t.template.SetAttr(AttrStrikethrough)
		case p == 21 || p == 22:
			t.template.ClearAttr(AttrBold)
			t.template.ClearAttr(AttrDim)
		case p == 23:
			t.template.ClearAttr(AttrItalic)
		case p == 24:
			t.template.ClearAttr(AttrUnderline)
		case p == 27:
			t.template.ClearAttr(AttrInverse)
		case p == 28:
			t.template.ClearAttr(AttrHidden)
		case p == 29:
			t.template.ClearAttr(AttrStrikethrough)
		case p >= 30 && p <= 37:
			t.template.Fg = colorFromANSI(p-30, false)
		case p == 38:
			col, consumed := t.parseExtendedColor(params[i+1:])
			t.template.Fg = col
			i += consumed
		case p == 39:
			t.template.Fg = t.defaultFg
		case p >= 40 && p <= 47:
			t.template.Bg = colorFromANSI(p-40, false)
		case p == 48:
			col, consumed := t.parseExtendedColor(params[i+1:])
			t.template.Bg = col
			i += consumed
		case p == 49:
			t.template.Bg = t.defaultBg
		case p >= 90 && p <= 97:
			t.template.Fg = colorFromANSI(p-90, true)
		case p >= 100 && p <= 107:
			t.template.Bg = colorFromANSI(p-100, true)
		}
	}
}

// parseExtendedColor parses the SGR 38/48 sub-parameters that follow the
// leading 38/48 code, returning the resolved color and how many additional
// parameters it consumed.
func (t *Terminal) parseExtendedColor(rest []uint16) (colorOut color.RGBA, consumed int) {
	if len(rest) == 0 {
		return t.defaultFg, 0
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return t.defaultFg, len(rest)
		}
		return colorFrom256(int(rest[1])), 2
	case 2:
		if len(rest) < 4 {
			return t.defaultFg, len(rest)
		}
		return color.RGBA{R: byte(rest[1]), G: byte(rest[2]), B: byte(rest[3]), A: 255}, 4
	}
	return t.defaultFg, 0
}

// --- ESC dispatch ---

func (t *Terminal) escDispatch(act Action) {
	if len(act.Intermediates) == 1 && act.Intermediates[0] == '#' && act.Final == '8' {
		t.grid.FillWithE()
		t.pendingWrap = false
		return
	}

	switch act.Final {
	case '7': // DECSC
		t.saveCursor()
	case '8': // DECRC
		t.restoreCursor()
	case 'D': // IND
		t.index()
		t.pendingWrap = false
	case 'M': // RI
		t.reverseIndex()
		t.pendingWrap = false
	case 'E': // NEL
		t.cursor.Col = 0
		t.index()
		t.pendingWrap = false
	case 'H': // HTS
		t.grid.SetTabStop(t.cursor.Col)
	case '=': // DECKPAM
		t.modes |= ModeKeypadApplication
	case '>': // DECKPNM
		t.modes &^= ModeKeypadApplication
	case 'c': // RIS
		t.resetState()
		t.mainGrid.ClearScrollback()
	}
}

// --- OSC dispatch ---

func (t *Terminal) oscDispatch(data []byte) {
	s := string(data)
	selector, rest := s, ""
	if idx := strings.IndexByte(s, ';'); idx >= 0 {
		selector, rest = s[:idx], s[idx+1:]
	}

	switch selector {
	case "0", "2":
		t.setTitle(rest)
	case "7":
		t.setWorkingDirectory(rest)
	case "133":
		t.shellMark(rest)
	case "52":
		t.handleOSC52(rest)
	}
}

func (t *Terminal) shellMark(payload string) {
	if payload == "" {
		return
	}
	kind := payload[0]
	exitCode, hasExit := 0, false
	if kind == 'D' && len(payload) > 2 && payload[1] == ';' {
		if code, err := strconv.Atoi(payload[2:]); err == nil {
			exitCode, hasExit = code, true
		}
	}
	apply := func(kind byte, exitCode int, hasExit bool) {
		mark := string([]byte{kind})
		if hasExit {
			mark += ";" + strconv.Itoa(exitCode)
		}
		t.shell.HandleOSC133(mark, t.cursor.Row)
	}
	if t.middleware != nil && t.middleware.ShellMark != nil {
		t.middleware.ShellMark(kind, exitCode, hasExit, apply)
		return
	}
	apply(kind, exitCode, hasExit)
}

func (t *Terminal) handleOSC52(rest string) {
	parts := strings.SplitN(rest, ";", 2)
	if len(parts) != 2 {
		return
	}
	target := byte('c')
	if len(parts[0]) > 0 {
		target = parts[0][0]
	}
	data := parts[1]

	if data == "?" {
		t.replyOSC52(target)
		return
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return
	}
	t.osc52 = string(decoded)

	store := func(sel byte, d []byte) { t.clipboardProvider.Write(sel, d) }
	if t.middleware != nil && t.middleware.ClipboardStore != nil {
		t.middleware.ClipboardStore(target, decoded, store)
		return
	}
	store(target, decoded)
}

func (t *Terminal) replyOSC52(target byte) {
	load := func(sel byte) []byte { return t.clipboardProvider.Read(sel) }
	var content []byte
	if t.middleware != nil && t.middleware.ClipboardLoad != nil {
		content = t.middleware.ClipboardLoad(target, load)
	} else {
		content = load(target)
	}

	seq := osc52.New(string(content))
	if target == 'p' {
		seq = seq.Primary()
	}
	var buf bytes.Buffer
	_, _ = seq.WriteTo(&buf)
	t.queueWriteback(buf.Bytes())
}
