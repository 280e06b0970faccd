// Package vault locates and reads the daily note files the sync operates on.
package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jaketoday/daysync/pkg/note"
)

// Resolve returns the path of the daily note for a date inside the vault
// directory.
func Resolve(dir string, date time.Time) string {
	return filepath.Join(dir, date.Format("2006-01-02")+".md")
}

// DateFromPath extracts the note's date from its file name. The name must
// start with YYYY-MM-DD; anything after the date is ignored.
func DateFromPath(path string, loc *time.Location) (time.Time, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	date, ok := note.DateFromName(base, loc)
	if !ok {
		return time.Time{}, fmt.Errorf("note name must start with YYYY-MM-DD: %s", base)
	}
	return date, nil
}

// Read returns the note's full text.
func Read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read note %s: %w", path, err)
	}
	return string(b), nil
}

// Write replaces the note's full text.
func Write(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write note %s: %w", path, err)
	}
	return nil
}
