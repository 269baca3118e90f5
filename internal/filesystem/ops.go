// Package filesystem handles archive directory inspection and naming.
package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/arkive-app/arkive/internal/constants"
	"github.com/arkive-app/arkive/internal/domain"
)

// Entry is one artifact found in the archive directory.
type Entry struct {
	Name string
	Size int64
}

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// IsMediaFile reports whether the filename carries a recognized audio/video
// extension.
func IsMediaFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return constants.MediaExtensions[ext]
}

// IsArtifact reports whether the filename is something the archive tracks:
// an HTML document or a media file.
func IsArtifact(filename string) bool {
	if strings.ToLower(filepath.Ext(filename)) == ".html" {
		return true
	}
	return IsMediaFile(filename)
}

// TimestampedFilename builds the deterministic artifact name for a capture:
// a millisecond timestamp prefix plus the slugified title.
func TimestampedFilename(timestampMillis int64, title string) string {
	return fmt.Sprintf("%d-%s", timestampMillis, domain.Slugify(title))
}

// PathSize returns the byte size of the file at path, or the summed size of
// all files underneath it when path is a directory. Some capture tools
// produce a directory of assets rather than a single file.
func PathSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}

	if !info.IsDir() {
		return info.Size(), nil
	}

	var size int64
	err = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		size += fi.Size()
		return nil
	})
	return size, err
}

// ScanArchive walks the archive directory collecting recognized artifacts and
// the running total of their sizes.
func ScanArchive(path string) ([]Entry, int64, error) {
	var entries []Entry
	var total int64

	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsArtifact(d.Name()) {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Name: d.Name(), Size: fi.Size()})
		total += fi.Size()
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// FormatBytes renders a byte count for display.
func FormatBytes(bytes int64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes < kb:
		return fmt.Sprintf("%d B", bytes)
	case bytes < mb:
		return fmt.Sprintf("%.2f KB", float64(bytes)/kb)
	case bytes < gb:
		return fmt.Sprintf("%.2f MB", float64(bytes)/mb)
	default:
		return fmt.Sprintf("%.2f GB", float64(bytes)/gb)
	}
}
