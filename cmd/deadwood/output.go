package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// writeOutput writes text to path, or to stdout when path is empty. A
// ".zst" suffix compresses the file.
func writeOutput(stdout io.Writer, path, text string) error {
	if path == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeReport(f, path, text); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeReport(w io.Writer, path, text string) error {
	if !strings.HasSuffix(path, ".zst") {
		_, err := io.WriteString(w, text)
		return err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	if _, err := io.WriteString(enc, text); err != nil {
		_ = enc.Close()
		return fmt.Errorf("failed to compress %s: %w", path, err)
	}
	return enc.Close()
}
