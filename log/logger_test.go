package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	type spec struct {
		name   string
		exp    Level
		expErr bool
	}
	specs := []spec{
		{"debug", Debug, false},
		{"INFO", Info, false},
		{"Warning", Warning, false},
		{"error", Error, false},
		{"loud", Notice, true},
	}

	for index, s := range specs {
		l, err := ParseLevel(s.name)
		if (err != nil) != s.expErr {
			t.Fatalf("[spec %d] expected error to be %t; got %v", index, s.expErr, err)
		}
		if l != s.exp {
			t.Fatalf("[spec %d] expected level %s; got %s", index, s.exp, l)
		}
	}
}

func TestVerbosity(t *testing.T) {
	expLevels := []Level{Notice, Info, Debug, Debug}
	for count, exp := range expLevels {
		if got := Verbosity(count); got != exp {
			t.Fatalf("[spec %d] expected level %s; got %s", count, exp, got)
		}
	}
}

func TestSinkAndLevel(t *testing.T) {
	defer SetLevel(GetLevel())

	var buf bytes.Buffer
	SetSink(&buf)
	SetLevel(Warning)

	logger := New("test")
	logger.Noticef("hidden %d", 1)
	logger.Warningf("visible %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible 2") {
		t.Fatalf("expected only the warning to be logged; got %q", out)
	}
	if !strings.Contains(out, "[test]") {
		t.Fatalf("expected module name in output; got %q", out)
	}

	// Changing the sink keeps the level
	buf.Reset()
	SetSink(&buf)
	logger.Infof("still hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected level to survive sink change; got %q", buf.String())
	}
}
