package termio

import "testing"

func TestStripAnsi(t *testing.T) {
	in := "\033[31mfail\033[0m"
	if got := StripAnsi(in); got != "fail" {
		t.Errorf("StripAnsi(%q) = %q, want %q", in, got, "fail")
	}
}

func TestShellQuoteArgs(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"--filter", "FullyQualifiedName~Foo"}, "--filter 'FullyQualifiedName~Foo'"},
		{[]string{"run", "tests"}, "run tests"},
		{[]string{"it's"}, "'it'\"'\"'s'"},
	}
	for _, c := range cases {
		if got := ShellQuoteArgs(c.args); got != c.want {
			t.Errorf("ShellQuoteArgs(%v) = %q, want %q", c.args, got, c.want)
		}
	}
}

func TestTerminal_PlainModeSuppressesColor(t *testing.T) {
	term := &Terminal{plain: true}
	var buf []byte
	term.w = writerFunc(func(p []byte) (int, error) {
		buf = append(buf, p...)
		return len(p), nil
	})

	term.Success("ok %d", 3)

	if got := string(buf); got != "ok 3\n" {
		t.Errorf("Success in plain mode wrote %q", got)
	}
}

func TestTerminal_ColoredModeWrapsWithCode(t *testing.T) {
	term := &Terminal{plain: false}
	var buf []byte
	term.w = writerFunc(func(p []byte) (int, error) {
		buf = append(buf, p...)
		return len(p), nil
	})

	term.Success("ok")

	want := ColorGreen + "ok" + ColorReset + "\n"
	if got := string(buf); got != want {
		t.Errorf("Success in colored mode = %q, want %q", got, want)
	}
}

func TestTerminal_QuietSuppressesOutput(t *testing.T) {
	term := &Terminal{plain: true, quiet: true}
	var buf []byte
	term.w = writerFunc(func(p []byte) (int, error) {
		buf = append(buf, p...)
		return len(p), nil
	})

	term.Info("hidden")

	if len(buf) != 0 {
		t.Errorf("expected no output while quiet, got %q", buf)
	}
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
