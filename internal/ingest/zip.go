package ingest

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractArchive unpacks a measurement zip archive into destDir. Both paths
// are explicit parameters; the extractor keeps no global state. Archive
// entries that would escape destDir are rejected.
func ExtractArchive(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		// Insecure entry paths surface here too (zip.ErrInsecurePath) and
		// come with a non-nil reader.
		if r != nil {
			r.Close()
		}
		return NewIngestError(archivePath, ErrCodeOpen, "failed to open archive", err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return NewIngestError(archivePath, ErrCodeExtraction, "failed to create destination", err)
	}

	for _, f := range r.File {
		if err := extractEntry(f, destDir); err != nil {
			return NewIngestError(archivePath, ErrCodeExtraction,
				fmt.Sprintf("failed to extract %q", f.Name), err)
		}
	}

	return nil
}

func extractEntry(f *zip.File, destDir string) error {
	target := filepath.Join(destDir, filepath.FromSlash(f.Name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("entry path escapes destination directory")
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, f.Mode())
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
