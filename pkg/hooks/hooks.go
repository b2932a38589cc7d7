// Package hooks decodes the assistant's PostToolUse hook payload and decides
// whether an edit touched a skill, so that the skill can be re-audited right
// after the assistant changes it.
package hooks

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// EventPostToolUse is the hook event fired after a tool call completes.
const EventPostToolUse = "PostToolUse"

// skillFilePattern matches any file below a skill directory, relative to the skills dir.
const skillFilePattern = "*/**/*"

// EditTools are the tools whose calls modify files.
var EditTools = []string{"Write", "Edit", "MultiEdit", "NotebookEdit"}

// ErrUnexpectedEvent is returned when the payload is for another hook event.
var ErrUnexpectedEvent = errors.New("unexpected hook event")

// BasePayload contains fields common to all hook payloads
type BasePayload struct {
	Event          string `json:"hook_event_name"`
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path,omitempty"`
	CWD            string `json:"cwd"`
}

// ToolInput holds the file-related arguments of an editing tool call.
type ToolInput struct {
	FilePath     string `json:"file_path,omitempty"`
	NotebookPath string `json:"notebook_path,omitempty"`
}

// Path returns the edited path, whichever argument carried it.
func (i ToolInput) Path() string {
	if i.FilePath != "" {
		return i.FilePath
	}
	return i.NotebookPath
}

// PostToolUsePayload is sent to PostToolUse hooks
type PostToolUsePayload struct {
	BasePayload
	ToolName  string    `json:"tool_name"`
	ToolInput ToolInput `json:"tool_input"`
}

// ParsePostToolUse decodes a PostToolUse payload from r.
func ParsePostToolUse(r io.Reader) (*PostToolUsePayload, error) {
	var p PostToolUsePayload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.Wrap(err, "failed to decode hook payload")
	}
	if p.Event != EventPostToolUse {
		return nil, errors.Wrapf(ErrUnexpectedEvent, "got %q, want %q", p.Event, EventPostToolUse)
	}
	return &p, nil
}

// IsEditTool reports whether the named tool modifies files.
func IsEditTool(name string) bool {
	for _, tool := range EditTools {
		if tool == name {
			return true
		}
	}
	return false
}

// AffectedSkill returns the directory name of the skill touched by the tool
// call, if any. Relative paths, including skillsDir, resolve against the
// payload's working directory.
func AffectedSkill(p *PostToolUsePayload, skillsDir string) (string, bool) {
	if p == nil || !IsEditTool(p.ToolName) {
		return "", false
	}
	path := p.ToolInput.Path()
	if path == "" {
		return "", false
	}

	root, err := resolve(skillsDir, p.CWD)
	if err != nil {
		return "", false
	}
	path, err = resolve(path, p.CWD)
	if err != nil {
		return "", false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)

	if ok, _ := doublestar.Match(skillFilePattern, rel); !ok {
		return "", false
	}

	dir, _, _ := strings.Cut(rel, "/")
	if dir == ".." || strings.HasPrefix(dir, ".") {
		return "", false
	}
	return dir, true
}

func resolve(path, cwd string) (string, error) {
	if !filepath.IsAbs(path) && cwd != "" {
		path = filepath.Join(cwd, path)
	}
	return filepath.Abs(path)
}
