package installer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// extractZip unpacks every entry of archivePath under destDir, overwriting
// existing files. It returns the destination paths of the extracted files.
// Entries that would land outside destDir are rejected.
func extractZip(ctx context.Context, archivePath, destDir string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		if r != nil {
			_ = r.Close()
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrExtraction, archivePath, err)
	}
	defer func() {
		_ = r.Close()
	}()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var files []string
	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return files, fmt.Errorf("%w: %v", ErrExtraction, err)
		}

		target, err := entryPath(root, f.Name)
		if err != nil {
			return files, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return files, fmt.Errorf("%w: %v", ErrExtraction, err)
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return files, err
		}
		files = append(files, target)
	}

	slog.Debug("archive extracted", "archive", archivePath, "destination", root, "files", len(files))

	return files, nil
}

// entryPath joins name onto root and rejects names escaping root.
func entryPath(root, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", fmt.Errorf("%w: absolute entry path %q", ErrExtraction, name)
	}

	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: entry %q escapes the game directory", ErrExtraction, name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %v", ErrExtraction, f.Name, err)
	}
	defer func() {
		_ = src.Close()
	}()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("%w: write %s: %v", ErrExtraction, target, err)
	}

	if err := dst.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return nil
}
