package termengine

// Middleware intercepts a small set of side-effecting terminal operations,
// letting a caller observe or override them before the default behavior
// runs. Each field wraps one operation: it receives the operation's
// arguments plus a next function that invokes the default implementation.
// Leaving a field nil, or calling next from within it, preserves default
// behavior; not calling next suppresses it.
type Middleware struct {
	// Bell wraps the BEL (0x07) handler.
	Bell func(next func())

	// SetTitle wraps an OSC 0/2 title change.
	SetTitle func(title string, next func(string))

	// ClipboardLoad wraps an OSC 52 read (query) request for the given
	// selection ('c' clipboard, 'p' primary) and returns the data to report.
	ClipboardLoad func(selection byte, next func(byte) []byte) []byte

	// ClipboardStore wraps an OSC 52 write request.
	ClipboardStore func(selection byte, data []byte, next func(byte, []byte))

	// ShellMark wraps an OSC 133 prompt/command/output transition. kind is
	// 'A', 'B', 'C', or 'D'; exitCode and hasExit are only meaningful for 'D'.
	ShellMark func(kind byte, exitCode int, hasExit bool, next func(byte, int, bool))

	// SetWorkingDirectory wraps an OSC 7 working-directory update.
	SetWorkingDirectory func(dir string, next func(string))
}

// Merge copies non-nil fields from other into m, overwriting existing values.
func (m *Middleware) Merge(other *Middleware) {
	if other == nil {
		return
	}
	if other.Bell != nil {
		m.Bell = other.Bell
	}
	if other.SetTitle != nil {
		m.SetTitle = other.SetTitle
	}
	if other.ClipboardLoad != nil {
		m.ClipboardLoad = other.ClipboardLoad
	}
	if other.ClipboardStore != nil {
		m.ClipboardStore = other.ClipboardStore
	}
	if other.ShellMark != nil {
		m.ShellMark = other.ShellMark
	}
	if other.SetWorkingDirectory != nil {
		m.SetWorkingDirectory = other.SetWorkingDirectory
	}
}
