package modules

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"deadwood/internal/errors"
	"deadwood/internal/logging"
)

// DiscoverOptions controls the source walk
type DiscoverOptions struct {
	// Extensions is the allow-list of file suffixes (".ts", ".d.ts", ...)
	Extensions []string

	// Ignore lists directory names skipped wherever they appear
	Ignore []string
}

// Discover walks root and returns the ids of every file whose name ends in
// an allowed extension, sorted. A missing or non-directory root is a
// ROOT_NOT_FOUND error; cancellation yields CANCELED.
func Discover(ctx context.Context, root string, opts DiscoverOptions, logger *logging.Logger) ([]ModuleID, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.New(errors.RootNotFound, fmt.Sprintf("source root %s is not readable", root), err)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.RootNotFound, "source root %s is not a directory", root)
	}

	ignoreMap := make(map[string]bool, len(opts.Ignore))
	for _, dir := range opts.Ignore {
		ignoreMap[dir] = true
	}

	var ids []ModuleID
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if p == root {
				return err
			}
			logger.Warn("Skipping unreadable path", map[string]interface{}{
				"path":  p,
				"error": err.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p != root && ignoreMap[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || !hasAllowedExtension(d.Name(), opts.Extensions) {
			return nil
		}

		id, err := NewModuleID(p)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.New(errors.Canceled, "discovery interrupted", ctx.Err())
		}
		return nil, errors.New(errors.RootNotFound, fmt.Sprintf("cannot walk %s", root), err)
	}

	sortModuleIDs(ids)
	logger.Debug("Discovery completed", map[string]interface{}{
		"root":  root,
		"files": len(ids),
	})
	return ids, nil
}

func hasAllowedExtension(name string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// ReadSource reads a discovered file, refusing files larger than maxBytes
// with a PARSE_FAILED error.
func ReadSource(p string, maxBytes int) ([]byte, error) {
	f, err := os.Open(filepath.FromSlash(p))
	if err != nil {
		return nil, errors.New(errors.ParseFailed, "cannot open file", err)
	}
	defer func() { _ = f.Close() }()

	if maxBytes <= 0 {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, errors.New(errors.ParseFailed, "cannot read file", err)
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)+1))
	if err != nil {
		return nil, errors.New(errors.ParseFailed, "cannot read file", err)
	}
	if len(data) > maxBytes {
		return nil, errors.Newf(errors.ParseFailed, "file exceeds %d bytes", maxBytes)
	}
	return data, nil
}
