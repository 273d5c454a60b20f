package termengine

import "testing"

func TestTerminalWorkingDirectoryTracksRawOSC7Payload(t *testing.T) {
	cases := []struct {
		name       string
		sequence   string
		wantRaw    string
	}{
		{
			name:     "BEL terminator",
			sequence: "\x1b]7;file://localhost/home/user\x07",
			wantRaw:  "file://localhost/home/user",
		},
		{
			name:     "ST terminator",
			sequence: "\x1b]7;file://myhost/var/log\x1b\\",
			wantRaw:  "file://myhost/var/log",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			term := New(WithSize(24, 80))
			term.WriteString(tc.sequence)
			if got := term.WorkingDirectory(); got != tc.wantRaw {
				t.Errorf("WorkingDirectory() = %q, want %q", got, tc.wantRaw)
			}
		})
	}
}

func TestTerminalWorkingDirectoryOverwritesOnEachMark(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]7;file://localhost/home/user\x07")
	if got := term.WorkingDirectory(); got != "file://localhost/home/user" {
		t.Fatalf("WorkingDirectory() after first mark = %q", got)
	}

	term.WriteString("\x1b]7;file://localhost/tmp\x07")
	if got := term.WorkingDirectory(); got != "file://localhost/tmp" {
		t.Errorf("WorkingDirectory() after second mark = %q, want the newer path", got)
	}
}

func TestTerminalWorkingDirectoryEmptyUntilSet(t *testing.T) {
	term := New(WithSize(24, 80))
	if got := term.WorkingDirectory(); got != "" {
		t.Errorf("WorkingDirectory() before any OSC 7 = %q, want empty", got)
	}
	if got := term.WorkingDirectoryPath(); got != "" {
		t.Errorf("WorkingDirectoryPath() before any OSC 7 = %q, want empty", got)
	}
}

func TestTerminalWorkingDirectoryPathStripsFileScheme(t *testing.T) {
	cases := []struct {
		name     string
		sequence string
		wantPath string
	}{
		{
			name:     "with hostname",
			sequence: "\x1b]7;file://localhost/home/user\x07",
			wantPath: "/home/user",
		},
		{
			name:     "hostname with dots",
			sequence: "\x1b]7;file://mycomputer.local/var/log/system\x07",
			wantPath: "/var/log/system",
		},
		{
			name:     "empty hostname (file:///path form)",
			sequence: "\x1b]7;file:///home/user\x07",
			wantPath: "/home/user",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			term := New(WithSize(24, 80))
			term.WriteString(tc.sequence)
			if got := term.WorkingDirectoryPath(); got != tc.wantPath {
				t.Errorf("WorkingDirectoryPath() = %q, want %q", got, tc.wantPath)
			}
		})
	}
}

func TestTerminalWorkingDirectoryMiddlewareObservesRawPayload(t *testing.T) {
	var called bool
	var seen string

	mw := &Middleware{
		SetWorkingDirectory: func(uri string, next func(string)) {
			called = true
			seen = uri
			next(uri)
		},
	}

	term := New(WithSize(24, 80), WithMiddleware(mw))
	term.WriteString("\x1b]7;file://localhost/test\x07")

	if !called {
		t.Fatal("expected SetWorkingDirectory middleware hook to run")
	}
	if seen != "file://localhost/test" {
		t.Errorf("middleware saw %q, want the raw OSC 7 payload", seen)
	}
	if got := term.WorkingDirectory(); got != "file://localhost/test" {
		t.Errorf("WorkingDirectory() after middleware ran = %q", got)
	}
}
