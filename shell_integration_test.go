package termengine

import "testing"

func TestShellIntegrationFullCycle(t *testing.T) {
	term := New(WithSize(24, 80))

	term.WriteString("\x1b]133;A\x07")
	term.WriteString("$ ")
	term.WriteString("\x1b]133;B\x07")
	term.WriteString("echo hi")
	term.WriteString("\x1b]133;C\x07")
	term.WriteString("hi\n")
	term.WriteString("\x1b]133;D;0\x07")

	si := term.ShellIntegration()
	if si.InCommand() {
		t.Error("expected idle after D mark")
	}

	history := si.History()
	if len(history) != 1 {
		t.Fatalf("got %d history entries, want 1", len(history))
	}
	if code, ok := si.LastExitCode(); !ok || code != 0 {
		t.Errorf("got exit code (%d, %v), want (0, true)", code, ok)
	}
}

func TestShellIntegrationInCommandDuringOutput(t *testing.T) {
	si := NewShellIntegration(10)
	si.HandleOSC133("A", 0)
	si.HandleOSC133("B", 1)
	si.HandleOSC133("C", 2)
	if !si.InCommand() {
		t.Error("expected InCommand true between C and D")
	}
	si.HandleOSC133("D;1", 3)
	if si.InCommand() {
		t.Error("expected InCommand false after D")
	}
	code, ok := si.LastExitCode()
	if !ok || code != 1 {
		t.Errorf("got (%d, %v), want (1, true)", code, ok)
	}
}

func TestShellIntegrationHistoryEviction(t *testing.T) {
	si := NewShellIntegration(2)
	for i := 0; i < 5; i++ {
		si.HandleOSC133("A", i*10)
		si.HandleOSC133("D", i*10+1)
	}
	history := si.History()
	if len(history) != 2 {
		t.Fatalf("got %d entries, want 2 (bounded)", len(history))
	}
	if history[0].PromptRow != 30 || history[1].PromptRow != 40 {
		t.Errorf("got rows %d,%d, want 30,40 (oldest evicted)", history[0].PromptRow, history[1].PromptRow)
	}
}

func TestShellIntegrationPromptNavigation(t *testing.T) {
	si := NewShellIntegration(10)
	si.HandleOSC133("A", 0)
	si.HandleOSC133("D", 1)
	si.HandleOSC133("A", 5)
	si.HandleOSC133("D", 6)
	si.HandleOSC133("A", 10)
	si.HandleOSC133("D", 11)

	next, ok := si.NextPromptRow(5)
	if !ok || next != 10 {
		t.Errorf("NextPromptRow(5) = (%d, %v), want (10, true)", next, ok)
	}
	prev, ok := si.PrevPromptRow(10)
	if !ok || prev != 5 {
		t.Errorf("PrevPromptRow(10) = (%d, %v), want (5, true)", prev, ok)
	}
	if _, ok := si.NextPromptRow(10); ok {
		t.Error("NextPromptRow(10) should find nothing past the last prompt")
	}
}

func TestShellIntegrationOSC7WorkingDirectory(t *testing.T) {
	term := New(WithSize(24, 80))
	term.WriteString("\x1b]7;file://host/home/user/project\x07")

	if got := term.WorkingDirectory(); got != "file://host/home/user/project" {
		t.Errorf("Terminal.WorkingDirectory() = %q, want raw OSC 7 payload", got)
	}
	if got := term.ShellIntegration().WorkingDirectory(); got != "/home/user/project" {
		t.Errorf("ShellIntegration.WorkingDirectory() = %q, want parsed path", got)
	}
}

func TestShellIntegrationOSC7WithoutFileScheme(t *testing.T) {
	si := NewShellIntegration(10)
	si.HandleOSC7("/plain/path")
	if got := si.WorkingDirectory(); got != "/plain/path" {
		t.Errorf("got %q, want /plain/path", got)
	}
}

func TestShellIntegrationRecordsCommandTextAndWorkingDir(t *testing.T) {
	si := NewShellIntegration(10)
	si.HandleOSC7("file://host/home/user/project")
	si.HandleOSC133("A", 0)
	si.HandleOSC133("B", 1)
	si.SetCommandText("make test")
	si.HandleOSC133("C", 2)
	si.HandleOSC133("D;0", 3)

	history := si.History()
	if len(history) != 1 {
		t.Fatalf("got %d history entries, want 1", len(history))
	}
	got := history[0]
	if got.CommandText != "make test" {
		t.Errorf("CommandText = %q, want %q", got.CommandText, "make test")
	}
	if got.WorkingDir != "/home/user/project" {
		t.Errorf("WorkingDir = %q, want /home/user/project", got.WorkingDir)
	}
	if !got.HasDuration {
		t.Error("expected HasDuration true for a command that reached B")
	}
}

func TestShellIntegrationNoDurationWithoutCommandStart(t *testing.T) {
	// A mark followed directly by D, with no B in between, never starts the
	// duration clock.
	si := NewShellIntegration(10)
	si.HandleOSC133("A", 0)
	si.HandleOSC133("D;0", 1)

	history := si.History()
	if len(history) != 1 {
		t.Fatalf("got %d history entries, want 1", len(history))
	}
	if history[0].HasDuration {
		t.Error("expected HasDuration false when B was never observed")
	}
}

func TestShellIntegrationCommandTextResetsBetweenCommands(t *testing.T) {
	si := NewShellIntegration(10)
	si.HandleOSC133("A", 0)
	si.HandleOSC133("B", 1)
	si.SetCommandText("first")
	si.HandleOSC133("D;0", 2)

	si.HandleOSC133("A", 3)
	si.HandleOSC133("B", 4)
	si.HandleOSC133("D;0", 5)

	history := si.History()
	if len(history) != 2 {
		t.Fatalf("got %d history entries, want 2", len(history))
	}
	if history[0].CommandText != "first" {
		t.Errorf("history[0].CommandText = %q, want %q", history[0].CommandText, "first")
	}
	if history[1].CommandText != "" {
		t.Errorf("history[1].CommandText = %q, want empty (not carried over)", history[1].CommandText)
	}
}
