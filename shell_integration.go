package termengine

import (
	"strconv"
	"strings"
	"time"
)

// CommandRegion records the row range, text, outcome, and duration of one
// shell command, delimited by an OSC 133 A...D cycle.
type CommandRegion struct {
	PromptRow   int // row of the "A" mark (prompt start)
	CommandRow  int // row of the "B" mark (input begins)
	OutputRow   int // row of the "C" mark (command started executing)
	EndRow      int // row of the "D" mark (command finished)
	CommandText string
	WorkingDir  string // tracker's working directory as of the "D" mark
	ExitCode    int
	HasExit     bool
	Duration    time.Duration
	HasDuration bool
}

type shellPhase int

const (
	phaseIdle shellPhase = iota
	phasePrompt
	phaseCommand
	phaseOutput
)

// ShellIntegration tracks shell prompt/command/output boundaries reported
// via OSC 133 and the working directory reported via OSC 7. It keeps a
// bounded FIFO history of completed commands so callers can walk between
// prompts or inspect the exit code of the last one.
type ShellIntegration struct {
	phase        shellPhase
	current      CommandRegion
	commandText  string
	commandStart time.Time
	inFlight     bool // commandStart is valid
	history      []CommandRegion
	maxHistory   int
	workingDir   string
}

// NewShellIntegration returns a tracker retaining at most maxHistory
// completed commands. A non-positive maxHistory disables retention.
func NewShellIntegration(maxHistory int) *ShellIntegration {
	if maxHistory < 0 {
		maxHistory = 0
	}
	return &ShellIntegration{maxHistory: maxHistory}
}

// HandleOSC133 advances the prompt/command/output state machine. payload is
// everything after "133;" (e.g. "A", "B", "C", "D", or "D;0" with an exit
// code); row is the grid row the marker was observed on.
func (s *ShellIntegration) HandleOSC133(payload string, row int) {
	if payload == "" {
		return
	}
	kind := payload[0]
	rest := ""
	if len(payload) > 1 && payload[1] == ';' {
		rest = payload[2:]
	}

	switch kind {
	case 'A':
		s.current = CommandRegion{PromptRow: row}
		s.commandText = ""
		s.inFlight = false
		s.phase = phasePrompt
	case 'B':
		s.current.CommandRow = row
		s.commandStart = time.Now()
		s.inFlight = true
		s.phase = phaseCommand
	case 'C':
		s.current.OutputRow = row
		s.phase = phaseOutput
	case 'D':
		s.current.EndRow = row
		s.current.CommandText = s.commandText
		s.current.WorkingDir = s.workingDir
		if rest != "" {
			if code, err := strconv.Atoi(rest); err == nil {
				s.current.ExitCode = code
				s.current.HasExit = true
			}
		}
		if s.inFlight {
			s.current.Duration = time.Since(s.commandStart)
			s.current.HasDuration = true
		}
		s.pushHistory(s.current)
		s.current = CommandRegion{}
		s.commandText = ""
		s.inFlight = false
		s.phase = phaseIdle
	}
}

// SetCommandText records the text of the command currently being entered so
// it is attached to the CommandRegion once the "D" mark closes it. Callers
// typically supply this from whatever captured the user's keystrokes, since
// the output stream alone doesn't reliably distinguish typed input from
// echoed prompt decoration.
func (s *ShellIntegration) SetCommandText(text string) {
	s.commandText = text
}

func (s *ShellIntegration) pushHistory(r CommandRegion) {
	if s.maxHistory <= 0 {
		return
	}
	s.history = append(s.history, r)
	if over := len(s.history) - s.maxHistory; over > 0 {
		s.history = s.history[over:]
	}
}

// HandleOSC7 updates the tracked working directory from an OSC 7 payload in
// "file://host/path" form. Payloads without the file:// scheme are kept as-is.
func (s *ShellIntegration) HandleOSC7(raw string) {
	const prefix = "file://"
	if !strings.HasPrefix(raw, prefix) {
		s.workingDir = raw
		return
	}
	rest := raw[len(prefix):]
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		s.workingDir = rest[i:]
		return
	}
	s.workingDir = ""
}

// WorkingDirectory returns the most recently parsed OSC 7 path.
func (s *ShellIntegration) WorkingDirectory() string {
	return s.workingDir
}

// InCommand reports whether a command is currently running or producing output.
func (s *ShellIntegration) InCommand() bool {
	return s.phase == phaseCommand || s.phase == phaseOutput
}

// History returns completed command regions, oldest first.
func (s *ShellIntegration) History() []CommandRegion {
	out := make([]CommandRegion, len(s.history))
	copy(out, s.history)
	return out
}

// LastExitCode returns the exit code of the most recently completed command,
// and whether one was ever reported.
func (s *ShellIntegration) LastExitCode() (int, bool) {
	if len(s.history) == 0 {
		return 0, false
	}
	last := s.history[len(s.history)-1]
	return last.ExitCode, last.HasExit
}

// NextPromptRow returns the first recorded prompt row strictly after "after".
func (s *ShellIntegration) NextPromptRow(after int) (int, bool) {
	for _, r := range s.history {
		if r.PromptRow > after {
			return r.PromptRow, true
		}
	}
	return 0, false
}

// PrevPromptRow returns the last recorded prompt row strictly before "before".
func (s *ShellIntegration) PrevPromptRow(before int) (int, bool) {
	row, found := 0, false
	for _, r := range s.history {
		if r.PromptRow < before {
			row, found = r.PromptRow, true
		}
	}
	return row, found
}
