package docs

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/glamour"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// WriteFile replaces the file at path with content while holding its lock,
// creating parent directories as needed. It reports whether the content changed.
func WriteFile(path, content string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, errors.Wrapf(err, "failed to create directory for %s", path)
	}

	changed := false
	err := lockedfile.Transform(path, func(old []byte) ([]byte, error) {
		changed = !bytes.Equal(old, []byte(content))
		return []byte(content), nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "failed to write %s", path)
	}
	return changed, nil
}

// SpliceFile replaces the marked region of an existing document with content.
func SpliceFile(path, content string, m Markers) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		return false, errors.Wrapf(err, "project document %s", path)
	}

	changed := false
	err := lockedfile.Transform(path, func(old []byte) ([]byte, error) {
		updated, err := Splice(string(old), content, m)
		if err != nil {
			return nil, err
		}
		changed = updated != string(old)
		return []byte(updated), nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "failed to update %s", path)
	}
	return changed, nil
}

// CheckFile returns a unified diff between the file at path and expected,
// or an empty string when they match. A missing file diffs against nothing.
func CheckFile(path, expected string) (string, error) {
	current, err := readIfExists(path)
	if err != nil {
		return "", err
	}
	return Diff(path, current, expected), nil
}

// CheckSplice is CheckFile for the marked region of a document.
func CheckSplice(path, content string, m Markers) (string, error) {
	current, err := lockedfile.Read(path)
	if err != nil {
		return "", errors.Wrapf(err, "project document %s", path)
	}

	expected, err := Splice(string(current), content, m)
	if err != nil {
		return "", errors.Wrapf(err, "failed to check %s", path)
	}
	return Diff(path, string(current), expected), nil
}

// Diff renders a unified diff from current to expected.
func Diff(name, current, expected string) string {
	return udiff.Unified(name+" (current)", name+" (generated)", current, expected)
}

func readIfExists(path string) (string, error) {
	data, err := lockedfile.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}
	return string(data), nil
}

// Render formats Markdown for the terminal.
func Render(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", errors.Wrap(err, "failed to create markdown renderer")
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return out, nil
}
