package skills

import (
	"testing"

	"github.com/jingkaihe/skillctl/pkg/skills/skilltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSkill(t *testing.T) {
	root := t.TempDir()
	dir := skilltest.Write(t, root, "commit", skilltest.Files{
		"SKILL.md": `---
name: commit
description: Create conventional commits. Use when committing.
kind: workflow
user-invocable: false
allowed-tools: Bash, Read ,  Grep
hooks:
  post-complete: skillctl validate commit
---

# Commit

See [rules](rules.yaml), [pitfalls](./pitfalls.yaml#top) and
[collaboration](collaboration.yaml). Also [docs](https://example.com) and [here](#usage).
Missing: [gone](gone.md).
`,
		"rules.yaml": `summary: Commit rules.
rules:
  - id: COMMIT-001
    rule: Use conventional commit prefixes.
    severity: must
    rationale: Changelogs are generated from them.
`,
		"collaboration.yaml": `dependencies: [branch]
compositions:
  - name: ship
    sequence: [commit, pr]
triggers:
  - when: the commit is pushed
    suggest: pr
`,
		"pitfalls.yaml": `pitfalls:
  - id: COMMIT-P001
    title: Giant commits
    fix: Split them.
`,
		"scripts/helper.sh": "#!/bin/sh\n",
	})

	s, err := LoadSkill(dir)
	require.NoError(t, err)
	assert.Empty(t, s.LoadErrors)

	require.NotNil(t, s.Header)
	assert.Equal(t, "commit", s.Name())
	assert.Equal(t, KindWorkflow, s.Kind())
	assert.False(t, s.Invocable())
	assert.Equal(t, []string{"Bash", "Read", "Grep"}, s.Header.AllowedTools)
	assert.Equal(t, "skillctl validate commit", s.Header.Hooks.PostComplete)

	assert.Equal(t, []string{"SKILL.md", "collaboration.yaml", "pitfalls.yaml", "rules.yaml"}, s.Files)
	assert.True(t, s.HasFile(RulesFile))
	assert.False(t, s.HasFile("helper.sh"))

	assert.Equal(t, []Link{
		{Target: "rules.yaml", Exists: true},
		{Target: "pitfalls.yaml", Exists: true},
		{Target: "collaboration.yaml", Exists: true},
		{Target: "gone.md", Exists: false},
	}, s.Links)
	assert.Equal(t, 5, s.PointerLines)

	require.NotNil(t, s.Rules)
	assert.Equal(t, "must", s.Rules.Rules[0].Severity)
	require.NotNil(t, s.Pitfalls)
	assert.Equal(t, "Giant commits", s.Pitfalls.Pitfalls[0].Title)

	assert.Equal(t, []Reference{
		{Target: "branch", Source: "dependencies"},
		{Target: "commit", Source: "compositions[ship]"},
		{Target: "pr", Source: "compositions[ship]"},
		{Target: "pr", Source: "triggers"},
	}, s.References())
}

func TestLoadSkillRecordsErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   skilltest.Files
		errFile string
		errText string
	}{
		{
			name:    "no front matter",
			files:   skilltest.Files{"SKILL.md": "# Just a heading\n"},
			errFile: PointerFile,
			errText: "missing front matter",
		},
		{
			name:    "invalid front matter yaml",
			files:   skilltest.Files{"SKILL.md": "---\nname: [unterminated\n---\n"},
			errFile: PointerFile,
			errText: "invalid front matter",
		},
		{
			name:    "front matter type mismatch",
			files:   skilltest.Files{"SKILL.md": "---\nname: x\nuser-invocable: sometimes\n---\n"},
			errFile: PointerFile,
			errText: "invalid front matter",
		},
		{
			name:    "unknown rules field",
			files:   skilltest.Files{"rules.yaml": "rulez: []\n"},
			errFile: RulesFile,
			errText: "failed to parse rules.yaml",
		},
		{
			name:    "collaboration not a mapping",
			files:   skilltest.Files{"collaboration.yaml": "- a\n- b\n"},
			errFile: CollaborationFile,
			errText: "failed to parse collaboration.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := skilltest.Write(t, t.TempDir(), "broken", tt.files)

			s, err := LoadSkill(dir)
			require.NoError(t, err)
			require.Contains(t, s.LoadErrors, tt.errFile)
			assert.ErrorContains(t, s.LoadErrors[tt.errFile], tt.errText)
		})
	}
}

func TestLoadSkillEmptyDocuments(t *testing.T) {
	dir := skilltest.Write(t, t.TempDir(), "empty", skilltest.Files{
		"rules.yaml":    "",
		"pitfalls.yaml": "\n",
	})

	s, err := LoadSkill(dir)
	require.NoError(t, err)
	assert.Empty(t, s.LoadErrors)
	require.NotNil(t, s.Rules)
	assert.Empty(t, s.Rules.Rules)
	require.NotNil(t, s.Pitfalls)
	assert.Nil(t, s.Header)
	assert.Equal(t, "empty", s.Name())
	assert.Equal(t, DefaultKind, s.Kind())
	assert.True(t, s.Invocable())
}

func TestLocalTarget(t *testing.T) {
	tests := []struct {
		dest   string
		target string
		ok     bool
	}{
		{"rules.yaml", "rules.yaml", true},
		{"./docs/../rules.yaml", "rules.yaml", true},
		{"pitfalls.yaml#section", "pitfalls.yaml", true},
		{"my%20notes.md", "my notes.md", true},
		{"#anchor", "", false},
		{"https://example.com/x", "", false},
		{"mailto:a@b.c", "", false},
		{"/abs/path", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.dest, func(t *testing.T) {
			target, ok := localTarget(tt.dest)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.target, target)
		})
	}
}

func TestExtractBodyContent(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "with frontmatter",
			input:    "---\nname: test\n---\n\n# Content\n\nBody text.",
			expected: "# Content\n\nBody text.",
		},
		{
			name:     "no frontmatter",
			input:    "# Just content\nNo frontmatter.",
			expected: "# Just content\nNo frontmatter.",
		},
		{
			name:     "incomplete frontmatter",
			input:    "---\nname: test\n# No closing",
			expected: "---\nname: test\n# No closing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractBodyContent(tt.input))
		})
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, countLines(""))
	assert.Equal(t, 0, countLines("\n\n"))
	assert.Equal(t, 1, countLines("one\n"))
	assert.Equal(t, 3, countLines("one\n\nthree\n"))
}
