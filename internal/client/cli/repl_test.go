package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls    []string
	listArgs []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) List(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "list")
	f.listArgs = args
	return nil
}
func (f *fakeExec) Read(ctx context.Context) error   { f.calls = append(f.calls, "read"); return nil }
func (f *fakeExec) Send(ctx context.Context) error   { f.calls = append(f.calls, "send"); return nil }
func (f *fakeExec) Delete(ctx context.Context) error { f.calls = append(f.calls, "delete"); return nil }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func silencePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		parts := make([]string, 0, len(a))
		for _, v := range a {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		lines = append(lines, strings.Join(parts, " "))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	silencePrintln(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"register",
		"login",
		"help",
		"",
		"list unread",
		"read",
		"send",
		"delete",
		"logout",
		"foobar",
		"exit",
		"list",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(input))

	want := []string{"register", "login", "list", "read", "send", "delete", "logout"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if len(exec.listArgs) != 1 || exec.listArgs[0] != "unread" {
		t.Fatalf("list args = %v", exec.listArgs)
	}
}

func TestRunREPL_HelpDependsOnLogin(t *testing.T) {
	lines := silencePrintln(t)

	input := strings.NewReader("help\nlogin\nhelp\nquit\n")
	runREPL(context.Background(), &fakeExec{}, func() string { return "" }, bufio.NewReader(input))

	var helps []string
	for _, l := range *lines {
		if strings.HasPrefix(l, "Available commands") {
			helps = append(helps, l)
		}
	}
	if len(helps) != 2 {
		t.Fatalf("help lines = %v", helps)
	}
	if strings.Contains(helps[0], "send") || !strings.Contains(helps[1], "send") {
		t.Fatalf("unexpected help output: %v", helps)
	}
}

func TestRunREPL_UnknownAndEOF(t *testing.T) {
	lines := silencePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("get 42")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	found := false
	for _, l := range *lines {
		if l == "Unknown command: get" {
			found = true
		}
	}
	if !found {
		t.Fatalf("no unknown command notice in %v", *lines)
	}
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	silencePrintln(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("login\n")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
