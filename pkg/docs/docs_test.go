package docs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jingkaihe/skillctl/pkg/skills"
	"github.com/jingkaihe/skillctl/pkg/skills/skilltest"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) []*skills.Skill {
	t.Helper()

	root := t.TempDir()
	skilltest.Write(t, root, "pr-create", skilltest.Files{
		"SKILL.md": skilltest.Pointer(
			"name: pr-create",
			"description: Open pull requests | with templates. Use when a branch is ready.",
			"kind: reference",
			"user-invocable: false",
		),
		"rules.yaml": "rules:\n  - id: PR-001\n    rule: Link the issue.\n",
	})
	files := skilltest.Workflow("commit", "pr-create")
	files["SKILL.md"] = skilltest.Pointer(
		"name: commit",
		"description: Create commits.\n  Use when committing.",
		"allowed-tools: [Bash, Read]",
		"hooks:",
		"  post-complete: skillctl validate commit",
	)
	files["collaboration.yaml"] = `dependencies: [pr-create]
compositions:
  - name: ship
    description: commit then open a PR
    sequence: [commit, pr-create]
triggers:
  - when: the branch is pushed
    suggest: pr-create
`
	skilltest.Write(t, root, "commit", files)

	d, err := skills.NewDiscovery(skills.WithSkillsDir(root))
	require.NoError(t, err)
	all, err := d.Discover(context.Background())
	require.NoError(t, err)
	return all
}

func TestTable(t *testing.T) {
	all := loadFixture(t)

	expected := "| Skill | Kind | Description | Invocable |\n" +
		"|-------|------|-------------|-----------|\n" +
		"| `commit` | workflow | Create commits. Use when committing. | yes |\n" +
		"| `pr-create` | reference | Open pull requests \\| with templates. Use when a branch is ready. | no |\n"
	assert.Equal(t, expected, Table(all))
}

func TestTableIsOrderIndependent(t *testing.T) {
	all := loadFixture(t)
	reversed := []*skills.Skill{all[1], all[0]}

	assert.Equal(t, Table(all), Table(reversed))
	assert.Equal(t, Reference(all), Reference(reversed))
}

func TestReference(t *testing.T) {
	ref := Reference(loadFixture(t))

	assert.True(t, strings.HasPrefix(ref, GeneratedNotice+"\n\n# Skills Reference\n\n2 skill(s).\n"))
	assert.Contains(t, ref, "\n## commit\n\nCreate commits. Use when committing.\n\n- **Kind:** workflow\n")
	assert.Contains(t, ref, "- **Allowed tools:** `Bash`, `Read`\n")
	assert.Contains(t, ref, "- **Post-complete hook:** `skillctl validate commit`\n")
	assert.Contains(t, ref, "- **Depends on:** `pr-create`\n")
	assert.Contains(t, ref, "| COMMIT-001 | must | Keep it simple. |\n")
	assert.Contains(t, ref, "- **ship:** `commit` → `pr-create` (commit then open a PR)\n")
	assert.Contains(t, ref, "- When the branch is pushed, suggest `pr-create`.\n")
	assert.Contains(t, ref, "- **COMMIT-P001 Forgetting the basics.** Symptom: Things break. Fix: Read the rules.\n")
	assert.Contains(t, ref, "## pr-create\n")
	assert.Contains(t, ref, "- **User invocable:** no\n")
	assert.Less(t, strings.Index(ref, "## commit"), strings.Index(ref, "## pr-create"))
}

func TestSplice(t *testing.T) {
	m := DefaultMarkers()
	doc := "# Project\n\n" + m.Start + "\nold table\n" + m.End + "\n\nFooter\n"

	out, err := Splice(doc, "| new |\n", m)
	require.NoError(t, err)
	assert.Equal(t, "# Project\n\n"+m.Start+"\n| new |\n"+m.End+"\n\nFooter\n", out)

	again, err := Splice(out, "| new |\n", m)
	require.NoError(t, err)
	assert.Equal(t, out, again)

	noNewline, err := Splice(doc, "| new |", m)
	require.NoError(t, err)
	assert.Equal(t, out, noNewline)
}

func TestSpliceErrors(t *testing.T) {
	m := DefaultMarkers()

	_, err := Splice("no markers here", "x", m)
	assert.True(t, errors.Is(err, ErrMarkerNotFound))

	_, err = Splice(m.Start+"\nunterminated", "x", m)
	assert.True(t, errors.Is(err, ErrMarkerNotFound))
	assert.ErrorContains(t, err, "end marker")

	_, err = Splice(m.End+"\n"+m.Start+"\n", "x", m)
	assert.True(t, errors.Is(err, ErrMarkersOutOfOrder))
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs", "skills.md")

	changed, err := WriteFile(path, "hello\n")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = WriteFile(path, "hello\n")
	require.NoError(t, err)
	assert.False(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	changed, err = WriteFile(path, "hi\n")
	require.NoError(t, err)
	assert.True(t, changed)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(data))
}

func TestSpliceFileAndCheck(t *testing.T) {
	m := DefaultMarkers()
	path := filepath.Join(t.TempDir(), "CLAUDE.md")
	require.NoError(t, os.WriteFile(path, []byte("# P\n"+m.Start+"\n"+m.End+"\n"), 0o644))

	table := Table(loadFixture(t))

	diff, err := CheckSplice(path, table, m)
	require.NoError(t, err)
	assert.Contains(t, diff, "+| `commit` | workflow |")

	changed, err := SpliceFile(path, table, m)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = SpliceFile(path, table, m)
	require.NoError(t, err)
	assert.False(t, changed)

	diff, err = CheckSplice(path, table, m)
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestSpliceFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := SpliceFile(filepath.Join(dir, "missing.md"), "x", DefaultMarkers())
	assert.ErrorContains(t, err, "project document")

	path := filepath.Join(dir, "CLAUDE.md")
	require.NoError(t, os.WriteFile(path, []byte("no markers\n"), 0o644))
	_, err = SpliceFile(path, "x", DefaultMarkers())
	assert.True(t, errors.Is(err, ErrMarkerNotFound))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "no markers\n", string(data))
}

func TestCheckFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ref.md")

	diff, err := CheckFile(path, "content\n")
	require.NoError(t, err)
	assert.Contains(t, diff, "+content")

	require.NoError(t, os.WriteFile(path, []byte("content\n"), 0o644))
	diff, err = CheckFile(path, "content\n")
	require.NoError(t, err)
	assert.Empty(t, diff)
}

func TestRender(t *testing.T) {
	out, err := Render("# Skills\n\nThe commit skill.\n", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "commit skill")
}
