package hooks

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePostToolUse(t *testing.T) {
	input := `{
  "session_id": "abc123",
  "transcript_path": "/tmp/t.jsonl",
  "cwd": "/work/project",
  "hook_event_name": "PostToolUse",
  "tool_name": "Edit",
  "tool_input": {"file_path": "/work/project/.claude/skills/commit/rules.yaml", "old_string": "a", "new_string": "b"},
  "tool_response": {"success": true}
}`

	p, err := ParsePostToolUse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, EventPostToolUse, p.Event)
	assert.Equal(t, "abc123", p.SessionID)
	assert.Equal(t, "/work/project", p.CWD)
	assert.Equal(t, "Edit", p.ToolName)
	assert.Equal(t, "/work/project/.claude/skills/commit/rules.yaml", p.ToolInput.Path())
}

func TestParsePostToolUseErrors(t *testing.T) {
	_, err := ParsePostToolUse(strings.NewReader(`{"hook_event_name": "PreToolUse"}`))
	assert.True(t, errors.Is(err, ErrUnexpectedEvent))

	_, err = ParsePostToolUse(strings.NewReader(`not json`))
	assert.ErrorContains(t, err, "failed to decode hook payload")

	_, err = ParsePostToolUse(strings.NewReader(``))
	assert.Error(t, err)
}

func TestToolInputPath(t *testing.T) {
	assert.Equal(t, "a.md", ToolInput{FilePath: "a.md"}.Path())
	assert.Equal(t, "b.ipynb", ToolInput{NotebookPath: "b.ipynb"}.Path())
	assert.Empty(t, ToolInput{}.Path())
}

func TestIsEditTool(t *testing.T) {
	for _, tool := range []string{"Write", "Edit", "MultiEdit", "NotebookEdit"} {
		assert.True(t, IsEditTool(tool), tool)
	}
	for _, tool := range []string{"Read", "Bash", "Grep", "write"} {
		assert.False(t, IsEditTool(tool), tool)
	}
}

func TestAffectedSkill(t *testing.T) {
	cwd := filepath.Join(t.TempDir(), "project")
	skillsDir := ".claude/skills"
	abs := func(rel string) string { return filepath.Join(cwd, filepath.FromSlash(rel)) }

	tests := []struct {
		name  string
		tool  string
		input ToolInput
		skill string
		ok    bool
	}{
		{"absolute pointer edit", "Edit", ToolInput{FilePath: abs(".claude/skills/commit/SKILL.md")}, "commit", true},
		{"relative yaml write", "Write", ToolInput{FilePath: ".claude/skills/pr-create/rules.yaml"}, "pr-create", true},
		{"nested file", "MultiEdit", ToolInput{FilePath: abs(".claude/skills/commit/examples/one.md")}, "commit", true},
		{"notebook", "NotebookEdit", ToolInput{NotebookPath: abs(".claude/skills/data/demo.ipynb")}, "data", true},
		{"read is not an edit", "Read", ToolInput{FilePath: abs(".claude/skills/commit/SKILL.md")}, "", false},
		{"outside skills dir", "Edit", ToolInput{FilePath: abs("main.go")}, "", false},
		{"file directly in skills dir", "Write", ToolInput{FilePath: abs(".claude/skills/README.md")}, "", false},
		{"hidden directory", "Write", ToolInput{FilePath: abs(".claude/skills/.cache/x.yaml")}, "", false},
		{"sibling with shared prefix", "Edit", ToolInput{FilePath: abs(".claude/skills-old/commit/SKILL.md")}, "", false},
		{"no path", "Edit", ToolInput{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PostToolUsePayload{
				BasePayload: BasePayload{Event: EventPostToolUse, CWD: cwd},
				ToolName:    tt.tool,
				ToolInput:   tt.input,
			}
			skill, ok := AffectedSkill(p, skillsDir)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.skill, skill)
		})
	}
}

func TestAffectedSkillAbsoluteSkillsDir(t *testing.T) {
	root := t.TempDir()
	p := &PostToolUsePayload{
		BasePayload: BasePayload{Event: EventPostToolUse, CWD: "/somewhere/else"},
		ToolName:    "Write",
		ToolInput:   ToolInput{FilePath: filepath.Join(root, "commit", "pitfalls.yaml")},
	}

	skill, ok := AffectedSkill(p, root)
	assert.True(t, ok)
	assert.Equal(t, "commit", skill)

	_, ok = AffectedSkill(nil, root)
	assert.False(t, ok)
}
