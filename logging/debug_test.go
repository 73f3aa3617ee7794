package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
}

func TestNewLoggerInvalidPath(t *testing.T) {
	if _, err := NewLogger("/nonexistent/directory/debug.log"); err == nil {
		t.Fatal("expected error for invalid path")
	}
}

func TestDebugfWritesTaggedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.Debugf("connected to %s", "10.0.0.1:102")
	l.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(content), "[s7] connected to 10.0.0.1:102") {
		t.Fatalf("expected tagged debug line, got:\n%s", content)
	}
}

func TestLogPublishWritesTaggedLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.LogPublish("publishing tag %s", "temperature")
	l.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(content), "[publish] publishing tag temperature") {
		t.Fatalf("expected tagged publish line, got:\n%s", content)
	}
}

func TestLogTXIncludesHexDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.LogTX([]byte{0x03, 0x00, 0x00, 0x16})
	l.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(content), "03 00 00 16") {
		t.Fatalf("expected hex dump of frame, got:\n%s", content)
	}
}

func TestCloseIsIdempotentAndNilSafe(t *testing.T) {
	var l *Logger
	if err := l.Close(); err != nil {
		t.Fatalf("nil Logger Close: %v", err)
	}

	path := filepath.Join(t.TempDir(), "debug.log")
	real, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if err := real.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := real.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestGlobalLoggerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l, err := NewLogger(path)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	SetGlobal(l)
	defer SetGlobal(nil)

	if Global() != l {
		t.Fatal("Global() did not return the installed logger")
	}
}

func TestHexDumpEmpty(t *testing.T) {
	if got := hexDump(nil); got != "    (empty)" {
		t.Fatalf("hexDump(nil) = %q", got)
	}
}
