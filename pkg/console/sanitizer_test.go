package console

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeInput_PassThrough(t *testing.T) {
	in := `{"command":"setInputLevel","input":0,"level":-6}`
	out, err := SanitizeInput(in)
	if err != nil {
		t.Fatalf("SanitizeInput failed: %v", err)
	}
	if out != in {
		t.Errorf("Expected clean input unchanged, got %q", out)
	}
}

func TestSanitizeInput_StripsControlChars(t *testing.T) {
	out, err := SanitizeInput("hello\x1b[31mworld\x00")
	if err != nil {
		t.Fatalf("SanitizeInput failed: %v", err)
	}
	if strings.ContainsRune(out, '\x1b') || strings.ContainsRune(out, '\x00') {
		t.Errorf("Expected control characters stripped, got %q", out)
	}
	if !strings.Contains(out, "hello") || !strings.Contains(out, "world") {
		t.Errorf("Expected printable text preserved, got %q", out)
	}
}

func TestSanitizeInput_PreservesSafeWhitespace(t *testing.T) {
	out, err := SanitizeInput("a\tb")
	if err != nil {
		t.Fatalf("SanitizeInput failed: %v", err)
	}
	if out != "a\tb" {
		t.Errorf("Expected tab preserved, got %q", out)
	}
}

func TestSanitizeInput_RejectsOversize(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	_, err := SanitizeInput(strings.Repeat("a", 11))
	if !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("Expected ErrInputTooLarge, got %v", err)
	}
}

func TestSanitizeInput_RejectsInvalidUTF8(t *testing.T) {
	_, err := SanitizeInput(string([]byte{0xff, 0xfe}))
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}
