// utils/unzip.go
package utils

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// UnzipFlat extracts the entries of a zip archive whose base name passes
// accept into dest, dropping any directory structure. It returns the names
// written. Entries with an absolute path or a ".." segment are skipped.
func UnzipFlat(src, dest string, accept func(name string) bool) ([]string, error) {
	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if err := os.MkdirAll(dest, os.ModePerm); err != nil {
		return nil, err
	}

	var written []string
	for _, f := range r.File {
		// zip slip
		if unsafeEntry(f.Name) {
			Log.WithField("entry", f.Name).Warn("⚠️  [UNZIP] skipping entry outside archive root")
			continue
		}
		if f.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(filepath.FromSlash(f.Name))
		if strings.HasPrefix(name, ".") || !accept(name) {
			continue
		}

		if err := extractOne(f, filepath.Join(dest, name)); err != nil {
			return written, err
		}
		written = append(written, name)
	}
	return written, nil
}

func unsafeEntry(name string) bool {
	name = filepath.ToSlash(name)
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return true
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

func extractOne(f *zip.File, path string) error {
	outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		outFile.Close()
		return err
	}

	_, err = io.Copy(outFile, rc)

	outFile.Close()
	rc.Close()
	return err
}
