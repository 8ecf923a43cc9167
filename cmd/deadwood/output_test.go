package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestWriteOutput_Stdout(t *testing.T) {
	var buf bytes.Buffer
	if err := writeOutput(&buf, "", "function bar in: a\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "function bar in: a\n" {
		t.Errorf("stdout = %q", buf.String())
	}
}

func TestWriteOutput_PlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.txt")
	if err := writeOutput(io.Discard, path, "hello\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello\n" {
		t.Errorf("file = %q", data)
	}
}

func TestWriteOutput_Zstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json.zst")
	text := `{"deadExports": []}` + "\n"
	if err := writeOutput(io.Discard, path, text); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(data) != text {
		t.Errorf("decompressed = %q, want %q", data, text)
	}
}

func TestWriteOutput_BadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.txt")
	if err := writeOutput(io.Discard, path, "x"); err == nil {
		t.Error("expected error for missing directory")
	}
}
