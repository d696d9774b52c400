package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolvePath(file, false)
	if err != nil {
		t.Fatalf("ResolvePath(file) error = %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("ResolvePath(file) = %q, want absolute", got)
	}

	if _, err := ResolvePath(file, true); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("ResolvePath(file, true) error = %v, want ErrNotDirectory", err)
	}
	if _, err := ResolvePath(dir, true); err != nil {
		t.Errorf("ResolvePath(dir, true) error = %v", err)
	}
	if _, err := ResolvePath(filepath.Join(dir, "missing"), false); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ResolvePath(missing) error = %v, want os.ErrNotExist", err)
	}
	if _, err := ResolvePath("", false); err == nil {
		t.Error("ResolvePath(\"\") expected error")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, map[string]int{"width": 100}); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\n  \"width\": 100\n}\n" {
		t.Errorf("PrintJSON() = %q", got)
	}
}

func TestPromptForPath(t *testing.T) {
	var out bytes.Buffer
	got := PromptForPath(strings.NewReader("/tmp/photos\n"), &out, "Path")
	if got != "/tmp/photos" {
		t.Errorf("PromptForPath() = %q, want /tmp/photos", got)
	}
	if !strings.HasPrefix(out.String(), "Path [") {
		t.Errorf("prompt = %q", out.String())
	}

	cwd, _ := os.Getwd()
	if got := PromptForPath(strings.NewReader("\n"), &out, "Path"); got != cwd {
		t.Errorf("PromptForPath(empty) = %q, want %q", got, cwd)
	}
	if got := PromptForPath(strings.NewReader(""), &out, "Path"); got != cwd {
		t.Errorf("PromptForPath(EOF) = %q, want %q", got, cwd)
	}
}
