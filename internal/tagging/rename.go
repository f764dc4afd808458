package tagging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/desertthunder/tunesync/internal/shared"
)

var unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename replaces characters that are invalid in file names on common filesystems.
func SanitizeFilename(name string) string {
	return strings.TrimSpace(unsafeChars.ReplaceAllString(name, "_"))
}

// TargetName returns "{artist} - {title}{ext}" for path, sanitized.
func TargetName(path, artist, title string) string {
	return SanitizeFilename(fmt.Sprintf("%s - %s", artist, title)) + filepath.Ext(path)
}

// Rename moves path to its "{artist} - {title}" name inside the same directory.
//
// The file is left alone, with renamed false and a nil error, when it already has that name or
// another file occupies the target. Missing artist or title is an error.
func Rename(path, artist, title string) (newPath string, renamed bool, err error) {
	if strings.TrimSpace(artist) == "" || strings.TrimSpace(title) == "" {
		return path, false, fmt.Errorf("%w: artist and title are required to rename %s", shared.ErrInvalidInput, filepath.Base(path))
	}

	target := filepath.Join(filepath.Dir(path), TargetName(path, artist, title))
	if target == path {
		return path, false, nil
	}

	if _, err := os.Stat(target); err == nil {
		return path, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return path, false, fmt.Errorf("failed to stat %s: %w", target, err)
	}

	if err := os.Rename(path, target); err != nil {
		return path, false, fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return target, true, nil
}
