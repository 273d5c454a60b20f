// Package termengine provides a headless VT220/xterm-compatible terminal
// emulator core: it parses a byte stream of UTF-8 text interleaved with
// ANSI/VT escape sequences and maintains an in-memory character grid with
// scrollback. It performs no rendering and no I/O of its own, which makes
// it suitable for:
//   - Embedding behind a GPU or software terminal renderer
//   - Testing terminal applications without a GUI
//   - Recording and replaying terminal sessions
//   - Screen scraping and automated CLI testing
//
// # Quick Start
//
//	term := termengine.New()
//	term.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	fmt.Println(term.String()) // "Hello World!", then the 23 empty rows
//
// # Architecture
//
// The package is organized around four cooperating pieces:
//
//   - [Terminal]: the public facade; implements [io.Writer] and owns all
//     mutable state behind a mutex
//   - [Parser]: the Paul Williams VT state machine, byte in, [Action] out
//   - [Buffer]: the grid of [Cell] values plus scrollback
//   - The handler (unexported methods on Terminal in handler.go): applies
//     each [Action] to the active [Buffer]
//
// # Dual Buffers
//
// Terminal maintains a primary buffer (with optional scrollback) and an
// alternate buffer (no scrollback, used by full-screen programs like vim
// or htop). Applications switch via DECSET 47/1047/1049:
//
//	if term.InAltScreen() {
//	    // a full-screen program is in control
//	}
//
// # Cells and Colors
//
// Each cell holds a codepoint, an SGR attribute bitset, and two
// [image/color.RGBA] values:
//
//	cell, ok := term.Cell(row, col)
//	if ok {
//	    fmt.Printf("%c bold=%v fg=%v\n", cell.Char, cell.HasAttr(termengine.AttrBold), cell.Fg)
//	}
//
// Colors are always resolved to 24-bit RGB before being stored: 16-color
// ANSI codes, the 256-color cube/grayscale palette, and SGR truecolor all
// collapse to the same [image/color.RGBA] representation.
//
// # Scrollback
//
// Lines scrolled off the top of the primary buffer are retained up to a
// configurable limit:
//
//	term := termengine.New(termengine.WithScrollback(termengine.NewMemoryScrollback(10000)))
//	for i := 0; i < term.ScrollbackLen(); i++ {
//	    line := term.ScrollbackLine(i) // []Cell, oldest first
//	}
//
// # Providers and Middleware
//
// Side channels (bell, title, clipboard, scrollback storage) are handled
// by small provider interfaces with no-op defaults:
//
//	term := termengine.New(
//	    termengine.WithBell(myBellHandler{}),
//	    termengine.WithTitle(myTitleHandler{}),
//	    termengine.WithClipboard(myClipboardHandler{}),
//	)
//
// [Middleware] intercepts the same side channels for observation or
// override, merging hook-by-hook:
//
//	term := termengine.New(termengine.WithMiddleware(&termengine.Middleware{
//	    Bell: func(next func()) {
//	        log.Println("bell")
//	        next()
//	    },
//	}))
//
// # Shell Integration
//
// OSC 133 prompt/command/output markers and OSC 7 working-directory
// reports are tracked by a [ShellIntegration] handle:
//
//	si := term.ShellIntegration()
//	if code, ok := si.LastExitCode(); ok {
//	    fmt.Println("last command exited", code)
//	}
//
// # Thread Safety
//
// Every exported [Terminal] method is safe for concurrent use; a single
// mutex is held for the duration of each call, including the whole of a
// Write. Callers needing several operations to appear atomic must add
// their own synchronization around the call sequence.
package termengine
