package logger

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
)

func TestLevelsArePrefixed(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Info("fish %d loaded", 3)
	log.Warn("fish with id %d not found", 9)
	log.Error("fetch failed")

	out := buf.String()
	for _, want := range []string{"[AQUA-INFO] fish 3 loaded", "[AQUA-WARN] fish with id 9 not found", "[AQUA-ERROR] fetch failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}

func TestDebugIsGated(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf)

	log.Debug("amountIsExact: %v", true)
	if buf.Len() != 0 {
		t.Fatalf("expected no debug output before SetDebug, got %q", buf.String())
	}

	log.SetDebug(true)
	log.Debug("amountIsExact: %v", true)
	if !strings.Contains(buf.String(), "[AQUA-DEBUG] amountIsExact: true") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestEventFormat(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf).Event("FEED_ACCEPTED", "fish-1", "health STANDARD -> GOOD")

	want := "[EVENT:FEED_ACCEPTED] fish-1 | health STANDARD -> GOOD"
	if !strings.Contains(buf.String(), want) {
		t.Errorf("expected %q in %q", want, buf.String())
	}
}

func TestMessageWithoutArgsIsNotFormatted(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter(&buf).Info("100% of fish fed")

	if !strings.Contains(buf.String(), "100% of fish fed") {
		t.Errorf("expected literal message, got %q", buf.String())
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

func TestOutputReportsCallerAndToleratesWriteErrors(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{infoLogger: log.New(&buf, "", log.Lshortfile)}
	l.Info("tank ready")
	if out := buf.String(); !strings.HasPrefix(out, "logger_test.go:") {
		t.Errorf("expected the caller's file in %q", out)
	}

	w := &failingWriter{}
	broken := NewWithWriter(w)
	broken.Error("first")
	broken.Error("second")
	if w.calls != 2 {
		t.Errorf("expected every message to reach the writer, got %d writes", w.calls)
	}
}
