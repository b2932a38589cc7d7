// Package skilltest writes skill fixtures for tests.
package skilltest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Files maps a file name inside a skill directory to its content.
type Files map[string]string

// Write creates dir below root and writes files into it.
func Write(t testing.TB, root, dir string, files Files) string {
	t.Helper()

	skillDir := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	for name, content := range files {
		path := filepath.Join(skillDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return skillDir
}

// Pointer renders a SKILL.md with the given front matter lines and a body
// linking the three canonical documents.
func Pointer(frontmatter ...string) string {
	return "---\n" + strings.Join(frontmatter, "\n") + "\n---\n\n" +
		"# Skill\n\n" +
		"- [Rules](rules.yaml)\n" +
		"- [Collaboration](collaboration.yaml)\n" +
		"- [Pitfalls](pitfalls.yaml)\n"
}

// Workflow returns a complete, warning-free workflow skill named name that
// depends on deps.
func Workflow(name string, deps ...string) Files {
	collab := "dependencies: []\n"
	if len(deps) > 0 {
		collab = "dependencies:\n"
		for _, dep := range deps {
			collab += "  - " + dep + "\n"
		}
	}

	prefix := strings.ToUpper(name)
	return Files{
		"SKILL.md": Pointer(
			"name: "+name,
			fmt.Sprintf("description: Handles %s work. Use when the user asks for %s.", name, name),
			"allowed-tools: [Bash, Read]",
		),
		"rules.yaml": fmt.Sprintf(`summary: Rules for %s.
rules:
  - id: %s-001
    rule: Keep it simple.
    severity: must
`, name, prefix),
		"collaboration.yaml": collab,
		"pitfalls.yaml": fmt.Sprintf(`pitfalls:
  - id: %s-P001
    title: Forgetting the basics
    symptom: Things break.
    fix: Read the rules.
`, prefix),
	}
}
